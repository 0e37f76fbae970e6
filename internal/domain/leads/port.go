package leads

import (
	"context"
	"time"
)

// Repository port (interface for persistence)
type Repository interface {
	Save(ctx context.Context, s *Submission) error
	Get(ctx context.Context, id SubmissionID) (*Submission, error)
	Latest(ctx context.Context, limit int) ([]*Submission, error)
	UpdateSyncState(ctx context.Context, id SubmissionID, emailSent, crmSynced bool, contactID, dealID string) error
	Summary(ctx context.Context, since time.Time) (TierSummary, error)
}

// TierSummary counts submissions per tier over a window.
type TierSummary struct {
	Total int `json:"total"`
	Hot   int `json:"hot"`
	Warm  int `json:"warm"`
	Cold  int `json:"cold"`
}

// Archiver port: stores the raw submission payload for audit/export.
type Archiver interface {
	ArchivePayload(ctx context.Context, id SubmissionID, payload []byte) (string, error)
}

// StatusCache port: short-lived cache in front of the status lookup.
type StatusCache interface {
	GetStatus(ctx context.Context, id SubmissionID) (*SyncStatus, bool, error)
	SetStatus(ctx context.Context, status *SyncStatus) error
}
