package roiform

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource is a deterministic FormSource for tests: forms are
// announced by calling Announce, and Stop cuts delivery off.
type fakeSource struct {
	mu      sync.Mutex
	fn      func(Form)
	stopped bool
}

func (s *fakeSource) Subscribe(fn func(Form)) (Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fn = fn
	return fakeSubscription{s}, nil
}

func (s *fakeSource) Announce(f Form) {
	s.mu.Lock()
	fn, stopped := s.fn, s.stopped
	s.mu.Unlock()
	if fn != nil && !stopped {
		fn(f)
	}
}

type fakeSubscription struct{ src *fakeSource }

func (h fakeSubscription) Stop() {
	h.src.mu.Lock()
	h.src.stopped = true
	h.src.mu.Unlock()
}

type mapStore struct{ data map[string]string }

func (m *mapStore) Keys() []string {
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys
}

func (m *mapStore) Remove(key string) { delete(m.data, key) }

func TestInterceptorBindsMatchingForms(t *testing.T) {
	src := &fakeSource{}
	i := NewInterceptor(New("http://example.com", nil), nil)

	var bound []Form
	sub, err := i.Start(src, func(f Form, _ SubmitFunc) {
		bound = append(bound, f)
	})
	require.NoError(t, err)
	defer sub.Stop()

	src.Announce(Form{ID: "f1", Action: "/roi-calculator/lead"})
	src.Announce(Form{ID: "f2", Action: "/newsletter/signup"})
	src.Announce(Form{ID: "f3", Action: "https://site.example/Calculator/submit"})

	require.Len(t, bound, 2)
	assert.Equal(t, "f1", bound[0].ID)
	assert.Equal(t, "f3", bound[1].ID)
}

func TestInterceptorCatchesLateForms(t *testing.T) {
	src := &fakeSource{}
	i := NewInterceptor(New("http://example.com", nil), nil)

	var bound int
	sub, err := i.Start(src, func(Form, SubmitFunc) { bound++ })
	require.NoError(t, err)

	// Nothing matched yet; that is not an error.
	assert.Equal(t, 0, bound)

	// Injected later, same handler applies.
	src.Announce(Form{ID: "late", Action: "/roi-calculator/lead"})
	assert.Equal(t, 1, bound)

	// Re-announcing an already bound form is a no-op.
	src.Announce(Form{ID: "late", Action: "/roi-calculator/lead"})
	assert.Equal(t, 1, bound)

	sub.Stop()
	src.Announce(Form{ID: "after-stop", Action: "/roi-calculator/lead"})
	assert.Equal(t, 1, bound, "no binding after teardown")
}

func TestInterceptorCleansSessionOnStart(t *testing.T) {
	store := &mapStore{data: map[string]string{
		"hubspotutk":    "tracking",
		"_hs_session":   "stale",
		"cart_contents": "keep",
	}}

	src := &fakeSource{}
	i := NewInterceptor(New("http://example.com", nil), nil)
	i.Session = store

	sub, err := i.Start(src, func(Form, SubmitFunc) {})
	require.NoError(t, err)
	defer sub.Stop()

	assert.NotContains(t, store.data, "hubspotutk")
	assert.NotContains(t, store.data, "_hs_session")
	assert.Contains(t, store.data, "cart_contents")
}
