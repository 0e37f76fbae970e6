package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	domain "github.com/chimehq/roi-capture/internal/domain/leads"
)

type SubmissionRepository struct{ db *sql.DB }

func NewSubmissionRepository(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

const submissionColumns = `
id, created_at, updated_at, ip_address,
monthly_revenue, average_order_value, monthly_orders, industry,
conversion_rate, cart_abandonment_rate, monthly_ad_spend, manual_hours_per_week,
business_stage, challenges,
first_name, last_name, email, business_name, website, phone,
lead_score, tier, crm_contact_id, crm_deal_id, email_sent, crm_synced`

// Save insert/update Submission record
func (r *SubmissionRepository) Save(ctx context.Context, s *domain.Submission) error {
	const q = `
INSERT INTO roi_submissions
(id, created_at, updated_at, ip_address,
 monthly_revenue, average_order_value, monthly_orders, industry,
 conversion_rate, cart_abandonment_rate, monthly_ad_spend, manual_hours_per_week,
 business_stage, challenges,
 first_name, last_name, email, business_name, website, phone,
 lead_score, tier, crm_contact_id, crm_deal_id, email_sent, crm_synced)
VALUES ($1,$2,$3,$4,
        $5,$6,$7,$8,
        $9,$10,$11,$12,
        $13,$14,
        $15,$16,$17,$18,$19,$20,
        $21,$22,$23,$24,$25,$26)
ON CONFLICT (id) DO UPDATE SET
 updated_at = EXCLUDED.updated_at,
 lead_score = EXCLUDED.lead_score,
 tier = EXCLUDED.tier,
 crm_contact_id = EXCLUDED.crm_contact_id,
 crm_deal_id = EXCLUDED.crm_deal_id,
 email_sent = EXCLUDED.email_sent,
 crm_synced = EXCLUDED.crm_synced;`

	created := s.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	updated := s.UpdatedAt
	if updated.IsZero() {
		updated = created
	}
	tier := stringOrDash(string(s.Tier))
	stage := stringOrDash(string(s.BusinessStage))

	challenges, err := json.Marshal(s.Challenges)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, q,
		s.ID, created, updated, s.IPAddress,
		s.MonthlyRevenue, s.AverageOrderValue, s.MonthlyOrders, s.Industry,
		s.ConversionRate, s.CartAbandonmentRate, s.MonthlyAdSpend, s.ManualHoursPerWeek,
		stage, string(challenges),
		s.FirstName, s.LastName, s.Email, s.BusinessName, s.Website, s.Phone,
		s.LeadScore, tier, s.CRMContactID, s.CRMDealID, s.EmailSent, s.CRMSynced,
	)
	return err
}

func scanSubmission(row interface{ Scan(...interface{}) error }) (*domain.Submission, error) {
	var s domain.Submission
	var challenges string
	if err := row.Scan(
		&s.ID, &s.CreatedAt, &s.UpdatedAt, &s.IPAddress,
		&s.MonthlyRevenue, &s.AverageOrderValue, &s.MonthlyOrders, &s.Industry,
		&s.ConversionRate, &s.CartAbandonmentRate, &s.MonthlyAdSpend, &s.ManualHoursPerWeek,
		&s.BusinessStage, &challenges,
		&s.FirstName, &s.LastName, &s.Email, &s.BusinessName, &s.Website, &s.Phone,
		&s.LeadScore, &s.Tier, &s.CRMContactID, &s.CRMDealID, &s.EmailSent, &s.CRMSynced,
	); err != nil {
		return nil, err
	}
	if challenges != "" && challenges != "null" {
		if err := json.Unmarshal([]byte(challenges), &s.Challenges); err != nil {
			return nil, err
		}
	}
	s.Timestamp = s.CreatedAt
	return &s, nil
}

// Get by ID
func (r *SubmissionRepository) Get(ctx context.Context, id domain.SubmissionID) (*domain.Submission, error) {
	const q = `
SELECT ` + submissionColumns + `
FROM roi_submissions
WHERE id=$1
LIMIT 1;`
	s, err := scanSubmission(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return s, err
}

// Latest submissions, newest first
func (r *SubmissionRepository) Latest(ctx context.Context, limit int) ([]*domain.Submission, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT ` + submissionColumns + `
FROM roi_submissions
ORDER BY created_at DESC
LIMIT $1;`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpdateSyncState updates the integration columns after email/CRM side effects
func (r *SubmissionRepository) UpdateSyncState(ctx context.Context, id domain.SubmissionID, emailSent, crmSynced bool, contactID, dealID string) error {
	const q = `
UPDATE roi_submissions
SET email_sent = $1,
    crm_synced = $2,
    crm_contact_id = $3,
    crm_deal_id = $4,
    updated_at = $5
WHERE id = $6;`
	res, err := r.db.ExecContext(ctx, q, emailSent, crmSynced, contactID, dealID, time.Now(), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Summary counts submissions per tier since the cutoff
func (r *SubmissionRepository) Summary(ctx context.Context, since time.Time) (domain.TierSummary, error) {
	const q = `
SELECT COUNT(*) AS total,
       COUNT(*) FILTER (WHERE tier = 'Hot')  AS hot,
       COUNT(*) FILTER (WHERE tier = 'Warm') AS warm,
       COUNT(*) FILTER (WHERE tier = 'Cold') AS cold
FROM roi_submissions
WHERE created_at >= $1;`
	var sum domain.TierSummary
	if err := r.db.QueryRowContext(ctx, q, since).Scan(&sum.Total, &sum.Hot, &sum.Warm, &sum.Cold); err != nil {
		return domain.TierSummary{}, err
	}
	return sum, nil
}
