// Package roiform is the embeddable form kit for the ROI calculator:
// it validates user-entered numbers, derives the growth metrics shown
// on the page, and delivers the submission to the capture backend,
// spilling over a fixed list of candidate endpoints when the primary
// one is unreachable.
package roiform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Defaults used when an optional numeric field is missing or unparsable.
const (
	DefaultConversionRate  = 2.5
	DefaultCartAbandonment = 70
	DefaultAdSpend         = 5000
	DefaultManualHours     = 35
)

const (
	revenueGainRate  = 0.25
	timeSavedRate    = 0.8
	hourlyValue      = 50
	adEfficiencyRate = 0.15

	sourceTag = "roi_calculator"
)

// DefaultEndpoints are the candidate submit paths, tried strictly in
// this order. The first path is the primary backend route; the rest
// exist for older deployments that mount the API elsewhere.
var DefaultEndpoints = []string{
	"/api/roi-calculator/submit",
	"/api/roi/submit",
	"/api/submit",
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Input holds the raw form fields as the visitor entered them. Numeric
// fields stay strings here; parsing happens in Compute. Extra carries
// any additional form fields through to the submit payload untouched.
type Input struct {
	Revenue         string
	ConversionRate  string
	CartAbandonment string
	AdSpend         string
	ManualHours     string
	Email           string
	Extra           map[string]string
}

// Metrics are the five derived outputs, rounded to whole units.
type Metrics struct {
	MonthlyGain    int `json:"monthly_gain"`
	AnnualGain     int `json:"annual_gain"`
	TimeSavedHours int `json:"time_saved_hours"`
	EfficiencyGain int `json:"efficiency_gain"`
	ROIPercentage  int `json:"roi_percentage"`
}

// Result is the outcome of Submit. Calculations is populated on every
// path, including failures, so the page can still render an offline
// estimate when the backend is down.
type Result struct {
	OK           bool            `json:"success"`
	Error        string          `json:"error,omitempty"`
	Calculations Metrics         `json:"calculations"`
	Response     json.RawMessage `json:"response,omitempty"`
	Endpoint     string          `json:"endpoint,omitempty"`
}

// Calculator validates, computes and delivers ROI form submissions.
type Calculator struct {
	BaseURL   string
	Endpoints []string
	Client    *http.Client
	Log       *zap.Logger
	Now       func() time.Time
}

func New(baseURL string, log *zap.Logger) *Calculator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Calculator{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		Endpoints: DefaultEndpoints,
		Client:    &http.Client{Timeout: 15 * time.Second},
		Log:       log,
		Now:       time.Now,
	}
}

// Validate checks the two constrained fields: revenue must be present
// and a supplied email must look like an address. All other fields are
// optional free text.
func (c *Calculator) Validate(in Input) error {
	if strings.TrimSpace(in.Revenue) == "" {
		return fmt.Errorf("monthly revenue is required")
	}
	if email := strings.TrimSpace(in.Email); email != "" && !emailPattern.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// Compute derives the five metrics from the raw input. Pure: identical
// input always yields identical output.
func (c *Calculator) Compute(in Input) Metrics {
	revenue := parseNumber(in.Revenue, 0)
	adSpend := parseNumber(in.AdSpend, DefaultAdSpend)
	manualHours := parseNumber(in.ManualHours, DefaultManualHours)

	revenueGain := revenue * revenueGainRate
	timeSaved := manualHours * timeSavedRate
	timeValue := timeSaved * hourlyValue
	adEfficiency := adSpend * adEfficiencyRate

	monthly := revenueGain + timeValue + adEfficiency
	annual := monthly * 12

	roi := 0.0
	if adSpend > 0 {
		roi = annual / (adSpend * 12) * 100
	}

	return Metrics{
		MonthlyGain:    int(math.Round(monthly)),
		AnnualGain:     int(math.Round(annual)),
		TimeSavedHours: int(math.Round(timeSaved)),
		EfficiencyGain: int(math.Round(adEfficiency)),
		ROIPercentage:  int(math.Round(roi)),
	}
}

// Submit validates the input, then tries each candidate endpoint in
// order until one accepts the payload. The loop is sequential on
// purpose: the primary endpoint takes the load before any spillover.
// Every failure path still carries the computed metrics.
func (c *Calculator) Submit(ctx context.Context, in Input) Result {
	metrics := c.Compute(in)

	if err := c.Validate(in); err != nil {
		return Result{Error: err.Error(), Calculations: metrics}
	}

	body, err := json.Marshal(c.payload(in, metrics))
	if err != nil {
		return Result{Error: err.Error(), Calculations: metrics}
	}

	var lastErr error
	for _, path := range c.endpoints() {
		resp, err := c.post(ctx, path, body)
		if err != nil {
			c.Log.Warn("submit attempt failed",
				zap.String("endpoint", path), zap.Error(err))
			lastErr = err
			continue
		}
		return Result{OK: true, Calculations: metrics, Response: resp, Endpoint: path}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no candidate endpoints configured")
	}
	return Result{Error: lastErr.Error(), Calculations: metrics}
}

func (c *Calculator) endpoints() []string {
	if len(c.Endpoints) > 0 {
		return c.Endpoints
	}
	return DefaultEndpoints
}

func (c *Calculator) payload(in Input, m Metrics) map[string]any {
	p := make(map[string]any, len(in.Extra)+12)
	for k, v := range in.Extra {
		p[k] = v
	}

	p["monthly_revenue"] = in.Revenue
	if in.ConversionRate != "" {
		p["conversion_rate"] = in.ConversionRate
	}
	if in.CartAbandonment != "" {
		p["cart_abandonment_rate"] = in.CartAbandonment
	}
	if in.AdSpend != "" {
		p["monthly_ad_spend"] = in.AdSpend
	}
	if in.ManualHours != "" {
		p["manual_hours_per_week"] = in.ManualHours
	}
	if in.Email != "" {
		p["email"] = in.Email
	}

	p["monthly_gain"] = m.MonthlyGain
	p["annual_gain"] = m.AnnualGain
	p["time_saved_hours"] = m.TimeSavedHours
	p["efficiency_gain"] = m.EfficiencyGain
	p["roi_percentage"] = m.ROIPercentage

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	p["timestamp"] = now().UTC().Format(time.RFC3339)
	p["source"] = sourceTag
	return p
}

func (c *Calculator) post(ctx context.Context, path string, body []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil, fmt.Errorf("endpoint %s returned status %d", path, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte(`{}`)
	}
	return json.RawMessage(raw), nil
}

// parseNumber turns free-text numeric input into a float. Currency
// symbols, commas and spaces are stripped first; anything that still
// fails to parse falls back to def.
func parseNumber(s string, def float64) float64 {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '$', ',', ' ':
			return -1
		}
		return r
	}, strings.TrimSpace(s))
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}
