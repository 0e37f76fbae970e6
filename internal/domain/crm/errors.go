package crm

import "errors"

// ErrNotConfigured indicates no CRM credentials were provided; sync is
// skipped rather than failed.
var ErrNotConfigured = errors.New("crm not configured")
