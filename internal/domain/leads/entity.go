package leads

import (
	"time"
)

// ID tipe for a submission
type SubmissionID string

// Tier enum
type Tier string

const (
	TierHot  Tier = "Hot"
	TierWarm Tier = "Warm"
	TierCold Tier = "Cold"
)

// BusinessStage enum (frontend values)
type BusinessStage string

const (
	StageStartup     BusinessStage = "Startup"
	StageGrowth      BusinessStage = "Growth"
	StageEstablished BusinessStage = "Established"
	StageMature      BusinessStage = "Mature"
)

// Aggregate Root: Submission, one completed ROI calculator form.
type Submission struct {
	ID        SubmissionID `json:"submission_id"`
	Timestamp time.Time    `json:"timestamp"`
	IPAddress string       `json:"ip_address,omitempty"`

	// Business metrics
	MonthlyRevenue      float64       `json:"monthly_revenue"`
	AverageOrderValue   float64       `json:"average_order_value"`
	MonthlyOrders       int           `json:"monthly_orders"`
	Industry            string        `json:"industry"`
	ConversionRate      float64       `json:"conversion_rate"`
	CartAbandonmentRate float64       `json:"cart_abandonment_rate"`
	MonthlyAdSpend      float64       `json:"monthly_ad_spend,omitempty"`
	ManualHoursPerWeek  int           `json:"manual_hours_per_week"`
	BusinessStage       BusinessStage `json:"business_stage"`
	Challenges          []string      `json:"challenges,omitempty"`

	// Contact
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	BusinessName string `json:"business_name"`
	Website      string `json:"website,omitempty"`
	Phone        string `json:"phone,omitempty"`

	// Scoring
	LeadScore int  `json:"lead_score"`
	Tier      Tier `json:"tier"`

	// Integration tracking
	CRMContactID string `json:"crm_contact_id,omitempty"`
	CRMDealID    string `json:"crm_deal_id,omitempty"`
	EmailSent    bool   `json:"email_sent"`
	CRMSynced    bool   `json:"crm_synced"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SyncStatus is the integration view returned by the status endpoint.
type SyncStatus struct {
	SubmissionID SubmissionID `json:"submission_id"`
	EmailSent    bool         `json:"email_sent"`
	CRMSynced    bool         `json:"crm_synced"`
	CRMContactID string       `json:"crm_contact_id,omitempty"`
	CRMDealID    string       `json:"crm_deal_id,omitempty"`
	LeadScore    int          `json:"lead_score"`
	Tier         Tier         `json:"tier"`
	BusinessName string       `json:"business_name"`
	CreatedAt    time.Time    `json:"created_at"`
}

// Status builds the sync view of a submission.
func (s *Submission) Status() SyncStatus {
	return SyncStatus{
		SubmissionID: s.ID,
		EmailSent:    s.EmailSent,
		CRMSynced:    s.CRMSynced,
		CRMContactID: s.CRMContactID,
		CRMDealID:    s.CRMDealID,
		LeadScore:    s.LeadScore,
		Tier:         s.Tier,
		BusinessName: s.BusinessName,
		CreatedAt:    s.CreatedAt,
	}
}
