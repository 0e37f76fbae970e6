package roiform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateMissingRevenue(t *testing.T) {
	c := New("http://example.com", nil)

	for _, in := range []Input{
		{},
		{Revenue: ""},
		{Revenue: "   "},
		{Revenue: "", Email: "a@b.co"},
	} {
		err := c.Validate(in)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "revenue")
	}
}

func TestValidateEmail(t *testing.T) {
	c := New("http://example.com", nil)

	assert.NoError(t, c.Validate(Input{Revenue: "1000"}))
	assert.NoError(t, c.Validate(Input{Revenue: "1000", Email: "jane@shop.example"}))

	for _, email := range []string{"nope", "a@b", "@b.co", "a b@c.io", "a@"} {
		err := c.Validate(Input{Revenue: "1000", Email: email})
		assert.Error(t, err, "email %q should be rejected", email)
	}
}

func TestComputeDefaults(t *testing.T) {
	c := New("http://example.com", nil)

	m := c.Compute(Input{Revenue: "10000"})
	assert.Equal(t, 4650, m.MonthlyGain)  // 2500 + 1400 + 750
	assert.Equal(t, 55800, m.AnnualGain)  // 4650 * 12
	assert.Equal(t, 28, m.TimeSavedHours) // 35 * 0.8
	assert.Equal(t, 750, m.EfficiencyGain)
	assert.Equal(t, 93, m.ROIPercentage) // round(55800/60000*100)
}

func TestComputeIsPure(t *testing.T) {
	c := New("http://example.com", nil)
	in := Input{Revenue: "42000", AdSpend: "7500", ManualHours: "12"}

	assert.Equal(t, c.Compute(in), c.Compute(in))
}

func TestComputeNonNumericFallsBackToDefaults(t *testing.T) {
	c := New("http://example.com", nil)

	withDefaults := c.Compute(Input{Revenue: "10000"})
	withGarbage := c.Compute(Input{
		Revenue:         "10000",
		ConversionRate:  "lots",
		CartAbandonment: "???",
		AdSpend:         "a fortune",
		ManualHours:     "many",
	})
	assert.Equal(t, withDefaults, withGarbage)
}

func TestComputeParsesFormattedNumbers(t *testing.T) {
	c := New("http://example.com", nil)

	m := c.Compute(Input{Revenue: "$10,000"})
	assert.Equal(t, 4650, m.MonthlyGain)
}

// endpointRecorder counts hits per path and returns the configured
// status for each.
type endpointRecorder struct {
	mu     sync.Mutex
	hits   []string
	status map[string]int
}

func (r *endpointRecorder) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		r.mu.Lock()
		r.hits = append(r.hits, req.URL.Path)
		code := r.status[req.URL.Path]
		r.mu.Unlock()
		if code == 0 {
			code = http.StatusOK
		}
		w.WriteHeader(code)
		if code < 300 {
			json.NewEncoder(w).Encode(map[string]string{"status": "success", "via": req.URL.Path})
		}
	}
}

func TestSubmitFirstEndpointShortCircuits(t *testing.T) {
	rec := &endpointRecorder{status: map[string]int{}}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	c := New(srv.URL, nil)
	res := c.Submit(context.Background(), Input{Revenue: "10000", Email: "jane@shop.example"})

	require.True(t, res.OK)
	assert.Equal(t, DefaultEndpoints[0], res.Endpoint)
	assert.Equal(t, []string{DefaultEndpoints[0]}, rec.hits, "no later candidate may be attempted")

	var body map[string]string
	require.NoError(t, json.Unmarshal(res.Response, &body))
	assert.Equal(t, "success", body["status"])
}

func TestSubmitFallsBackInOrder(t *testing.T) {
	rec := &endpointRecorder{status: map[string]int{
		DefaultEndpoints[0]: http.StatusBadGateway,
		DefaultEndpoints[1]: http.StatusServiceUnavailable,
	}}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	c := New(srv.URL, nil)
	res := c.Submit(context.Background(), Input{Revenue: "10000"})

	require.True(t, res.OK)
	assert.Equal(t, DefaultEndpoints[2], res.Endpoint)
	assert.Equal(t, []string{DefaultEndpoints[0], DefaultEndpoints[1], DefaultEndpoints[2]}, rec.hits)
}

func TestSubmitAllEndpointsFail(t *testing.T) {
	rec := &endpointRecorder{status: map[string]int{
		DefaultEndpoints[0]: http.StatusInternalServerError,
		DefaultEndpoints[1]: http.StatusInternalServerError,
		DefaultEndpoints[2]: http.StatusInternalServerError,
	}}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	c := New(srv.URL, nil)
	in := Input{Revenue: "10000"}
	res := c.Submit(context.Background(), in)

	assert.False(t, res.OK)
	assert.NotEmpty(t, res.Error)
	assert.Equal(t, c.Compute(in), res.Calculations, "offline estimate must still be populated")
	assert.Len(t, rec.hits, len(DefaultEndpoints), "each candidate is tried exactly once")
}

func TestSubmitUnreachableHost(t *testing.T) {
	// Closed server: every attempt errors at the transport.
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := New(srv.URL, nil)
	in := Input{Revenue: "5000"}
	res := c.Submit(context.Background(), in)

	assert.False(t, res.OK)
	assert.NotEmpty(t, res.Error)
	assert.Equal(t, c.Compute(in), res.Calculations)
}

func TestSubmitValidationFailureSkipsNetwork(t *testing.T) {
	rec := &endpointRecorder{status: map[string]int{}}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	c := New(srv.URL, nil)
	in := Input{Email: "broken"}
	res := c.Submit(context.Background(), in)

	assert.False(t, res.OK)
	assert.Contains(t, res.Error, "revenue")
	assert.Empty(t, rec.hits, "validation failure must not reach the network")
	assert.Equal(t, c.Compute(in), res.Calculations, "partial results are still attached")
}

func TestSubmitPayloadShape(t *testing.T) {
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		require.NoError(t, json.NewDecoder(req.Body).Decode(&payload))
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	res := c.Submit(context.Background(), Input{
		Revenue: "10000",
		Email:   "jane@shop.example",
		Extra:   map[string]string{"first_name": "Jane"},
	})
	require.True(t, res.OK)

	assert.Equal(t, "10000", payload["monthly_revenue"])
	assert.Equal(t, "jane@shop.example", payload["email"])
	assert.Equal(t, "Jane", payload["first_name"])
	assert.Equal(t, sourceTag, payload["source"])
	assert.NotEmpty(t, payload["timestamp"])
	assert.EqualValues(t, 4650, payload["monthly_gain"])
	assert.EqualValues(t, 55800, payload["annual_gain"])
	assert.EqualValues(t, 93, payload["roi_percentage"])
}
