package crm

import (
	"context"
	"time"
)

// Client port for the CRM leads are synced into.
type Client interface {
	UpsertContact(ctx context.Context, c Contact) (string, error)
	CreateDeal(ctx context.Context, d Deal) (string, error)
}

// Contact is the CRM-facing view of a lead.
type Contact struct {
	Email          string
	FirstName      string
	LastName       string
	Company        string
	Phone          string
	Website        string
	Industry       string
	BusinessStage  string
	MonthlyRevenue float64
	LeadScore      int
	Tier           string
	LifecycleStage string
}

// Deal is a sales opportunity attached to a contact.
type Deal struct {
	Name      string
	Amount    float64
	ContactID string
	Stage     string
	Pipeline  string
	CloseDate time.Time
}
