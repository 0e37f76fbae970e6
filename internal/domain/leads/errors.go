package leads

import (
	"errors"
	"sort"
	"strings"
)

// ErrNotFound indicates the requested submission does not exist.
var ErrNotFound = errors.New("submission not found")

// FieldErrors maps field names to human-readable validation messages.
// It aggregates every failing field so the form can mark them all at
// once instead of surfacing one error per round trip.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + e[f]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsFieldErrors unwraps err into FieldErrors if possible.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
