package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	appleads "github.com/chimehq/roi-capture/internal/application/leads"
	domain "github.com/chimehq/roi-capture/internal/domain/leads"
	"github.com/chimehq/roi-capture/internal/middleware"
)

// Options carries the router's middleware knobs.
type Options struct {
	AllowedOrigins []string
	InternalKeys   []string
	RateCapacity   int
	RateRefill     int
	HealthCheckers map[string]middleware.HealthChecker
}

type Router struct {
	svc *appleads.Service
	log *zap.Logger
}

func NewRouter(svc *appleads.Service, log *zap.Logger, opts Options) http.Handler {
	r := &Router{svc: svc, log: log}
	mux := chi.NewRouter()

	mux.Use(middleware.LoggingMiddleware(log))
	mux.Use(middleware.MetricsMiddleware)
	if opts.RateCapacity > 0 {
		mux.Use(middleware.RateLimitMiddleware(opts.RateCapacity, opts.RateRefill))
	}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	mux.Get("/health", middleware.HealthHandler(opts.HealthCheckers))

	mux.Route("/api", func(rt chi.Router) {
		rt.Post("/roi-calculator/calculate", r.wrap(r.handleCalculate))
		rt.Post("/roi-calculator/submit", r.wrap(r.handleSubmit))
		rt.Get("/roi-calculator/status/{id}", r.wrap(r.handleStatus))

		// Older form embeds still post to these paths.
		rt.Post("/roi/submit", r.wrap(r.handleSubmit))
		rt.Post("/submit", r.wrap(r.handleSubmit))
	})

	mux.Route("/internal", func(rt chi.Router) {
		rt.Use(middleware.APIKeyAuth(opts.InternalKeys))
		rt.Get("/metrics", middleware.MetricsHandler)
		rt.Get("/summary", r.wrap(r.handleSummary))
		rt.Get("/leads/latest", r.wrap(r.handleLatest))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			if fieldErrs, ok := domain.AsFieldErrors(err); ok {
				writeJSON(w, http.StatusBadRequest, map[string]any{
					"status": "error",
					"errors": fieldErrs,
				})
				return
			}
			if errors.Is(err, domain.ErrNotFound) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			r.log.Error("handler error",
				zap.String("path", req.URL.Path), zap.Error(err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func decodeBody(w http.ResponseWriter, req *http.Request) (map[string]interface{}, error) {
	var data map[string]interface{}
	if err := json.NewDecoder(http.MaxBytesReader(w, req.Body, 1<<20)).Decode(&data); err != nil {
		return nil, domain.FieldErrors{"body": "invalid JSON payload"}
	}
	return data, nil
}

// POST /api/roi-calculator/calculate
// Stateless projection preview while the visitor fills the form.
func (r *Router) handleCalculate(w http.ResponseWriter, req *http.Request) error {
	data, err := decodeBody(w, req)
	if err != nil {
		return err
	}

	sub, fieldErrs := middleware.ValidateCalculation(data)
	if fieldErrs != nil {
		return fieldErrs
	}

	projections := r.svc.Calculate(sub.MonthlyRevenue)
	return writeJSON(w, http.StatusOK, map[string]any{
		"status":      "success",
		"projections": projections,
	})
}

// POST /api/roi-calculator/submit (also /api/roi/submit, /api/submit)
func (r *Router) handleSubmit(w http.ResponseWriter, req *http.Request) error {
	data, err := decodeBody(w, req)
	if err != nil {
		return err
	}

	sub, fieldErrs := middleware.ValidateSubmission(data)
	if fieldErrs != nil {
		return fieldErrs
	}

	raw, _ := json.Marshal(data)
	result, err := r.svc.Submit(req.Context(), appleads.SubmitCommand{
		Submission: sub,
		RawPayload: raw,
		ClientIP:   middleware.ClientIP(req),
	})
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, result)
}

// GET /api/roi-calculator/status/{id}
func (r *Router) handleStatus(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	status, err := r.svc.Status(req.Context(), domain.SubmissionID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, status)
}

// GET /internal/summary?days=7
func (r *Router) handleSummary(w http.ResponseWriter, req *http.Request) error {
	days, _ := strconv.Atoi(req.URL.Query().Get("days"))
	summary, err := r.svc.Summary(req.Context(), middleware.ValidateDays(days))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, summary)
}

// GET /internal/leads/latest?limit=20
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	list, err := r.svc.Repo.Latest(req.Context(), middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}
