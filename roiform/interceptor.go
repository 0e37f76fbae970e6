package roiform

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Form is a minimal view of a page form: an identifier and the action
// URL its submission would target.
type Form struct {
	ID     string
	Action string
}

// FormSource announces the forms present on a page, including ones
// injected after the initial load. Subscribe delivers currently-known
// forms first, then future additions, until the returned subscription
// is stopped.
type FormSource interface {
	Subscribe(fn func(Form)) (Subscription, error)
}

// Subscription is the teardown handle for a form watch.
type Subscription interface {
	Stop()
}

// SubmitFunc is what gets attached to a matched form in place of its
// default submission.
type SubmitFunc func(context.Context, Input) Result

// Interceptor binds the calculator to every form whose action mentions
// the configured keyword. Forms announced after Start are bound the
// same way; forms that never match are left alone and matching nothing
// at all is not an error.
type Interceptor struct {
	Calc    *Calculator
	Keyword string
	Session SessionStore // optional, cleaned once at Start
	Cleanup KeyPredicate
	Log     *zap.Logger

	mu    sync.Mutex
	bound map[string]bool
}

func NewInterceptor(calc *Calculator, log *zap.Logger) *Interceptor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Interceptor{
		Calc:    calc,
		Keyword: "calculator",
		Cleanup: HasSubstring("hubspot", "_hs"),
		Log:     log,
		bound:   make(map[string]bool),
	}
}

// Start clears stale session keys, then subscribes to src. For each
// matching form, bind is invoked once with the form and the submit
// handler that replaces its default submission. The caller owns the
// returned subscription and tears the watch down with Stop.
func (i *Interceptor) Start(src FormSource, bind func(Form, SubmitFunc)) (Subscription, error) {
	if i.Session != nil {
		if n := CleanSessionState(i.Session, i.Cleanup); n > 0 {
			i.Log.Info("cleared stale session keys", zap.Int("removed", n))
		}
	}

	keyword := strings.ToLower(i.Keyword)
	return src.Subscribe(func(f Form) {
		if keyword != "" && !strings.Contains(strings.ToLower(f.Action), keyword) {
			return
		}

		i.mu.Lock()
		if i.bound == nil {
			i.bound = make(map[string]bool)
		}
		if i.bound[f.ID] {
			i.mu.Unlock()
			return
		}
		i.bound[f.ID] = true
		i.mu.Unlock()

		i.Log.Info("form intercepted",
			zap.String("form_id", f.ID), zap.String("action", f.Action))
		bind(f, i.Calc.Submit)
	})
}
