package mail

import "context"

// Priority decides queue ordering: high-priority mail (customer
// confirmations) is drained before normal mail.
type Priority int

const (
	PriorityNormal Priority = iota
	PriorityHigh
)

// Message is one outbound email.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string

	// SubmissionID ties the message back to the lead it belongs to.
	SubmissionID string
	Kind         string // confirmation | internal_notification
}

// Sender delivers a single message synchronously.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Queue accepts messages for asynchronous delivery with retries.
type Queue interface {
	Enqueue(msg Message, priority Priority) (string, error)
}
