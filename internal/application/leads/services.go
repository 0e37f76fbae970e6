package leads

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chimehq/roi-capture/internal/application"
	"github.com/chimehq/roi-capture/internal/domain/crm"
	domain "github.com/chimehq/roi-capture/internal/domain/leads"
	"github.com/chimehq/roi-capture/internal/domain/mail"
	"github.com/chimehq/roi-capture/internal/infra/mailer"
	"github.com/chimehq/roi-capture/internal/middleware"
)

// Service implements the lead-capture use cases. CRM, mail, archive
// and cache are optional collaborators: a missing integration degrades
// that side effect, never the submission itself.
type Service struct {
	Repo    domain.Repository
	CRM     crm.Client
	Mail    mail.Queue
	Archive domain.Archiver
	Cache   domain.StatusCache
	Clock   application.Clock
	Log     *zap.Logger

	// InternalEmail receives the sales notification for each lead.
	InternalEmail string
}

// SubmitCommand is the validated submission plus request metadata.
type SubmitCommand struct {
	Submission *domain.Submission
	RawPayload []byte
	ClientIP   string
}

// SubmitResult is what the form receives back.
type SubmitResult struct {
	Status       string              `json:"status"`
	SubmissionID string              `json:"submission_id"`
	LeadScore    int                 `json:"lead_score"`
	Tier         domain.Tier         `json:"tier"`
	Projections  domain.Projections  `json:"projections"`
	Message      string              `json:"message"`
}

// Calculate returns stateless projections for live recalculation as
// the visitor types. Nothing is stored.
func (s *Service) Calculate(monthlyRevenue float64) domain.Projections {
	return domain.Project(monthlyRevenue)
}

// Submit runs the full pipeline: score, persist, archive, email, CRM
// sync. Integration failures are logged and recorded on the
// submission; only persistence failures fail the call.
func (s *Service) Submit(ctx context.Context, cmd SubmitCommand) (*SubmitResult, error) {
	sub := cmd.Submission
	now := s.Clock.Now()

	sub.ID = domain.SubmissionID(uuid.New().String())
	sub.Timestamp = now
	sub.CreatedAt = now
	sub.UpdatedAt = now
	sub.IPAddress = cmd.ClientIP

	score, tier, breakdown := domain.Score(sub)
	sub.LeadScore = score
	sub.Tier = tier

	if err := s.Repo.Save(ctx, sub); err != nil {
		middleware.IncrementSubmissionsFailed()
		return nil, fmt.Errorf("saving submission: %w", err)
	}
	middleware.IncrementSubmissions()

	if s.Archive != nil && len(cmd.RawPayload) > 0 {
		if _, err := s.Archive.ArchivePayload(ctx, sub.ID, cmd.RawPayload); err != nil {
			s.Log.Warn("payload archive failed",
				zap.String("submission_id", string(sub.ID)), zap.Error(err))
		}
	}

	projections := domain.Project(sub.MonthlyRevenue)

	emailSent := s.enqueueEmails(sub, projections, breakdown)
	contactID, dealID, crmSynced := s.syncCRM(ctx, sub, projections)

	sub.EmailSent = emailSent
	sub.CRMSynced = crmSynced
	sub.CRMContactID = contactID
	sub.CRMDealID = dealID
	if err := s.Repo.UpdateSyncState(ctx, sub.ID, emailSent, crmSynced, contactID, dealID); err != nil {
		s.Log.Warn("sync state update failed",
			zap.String("submission_id", string(sub.ID)), zap.Error(err))
	}

	if s.Cache != nil {
		status := sub.Status()
		if err := s.Cache.SetStatus(ctx, &status); err != nil {
			s.Log.Warn("status cache write failed", zap.Error(err))
		}
	}

	return &SubmitResult{
		Status:       "success",
		SubmissionID: string(sub.ID),
		LeadScore:    score,
		Tier:         tier,
		Projections:  projections,
		Message:      fmt.Sprintf("Thank you, %s! Your custom growth blueprint is on the way.", sub.FirstName),
	}, nil
}

// Status returns the integration status for a submission, preferring
// the cache over the repository.
func (s *Service) Status(ctx context.Context, id domain.SubmissionID) (*domain.SyncStatus, error) {
	if s.Cache != nil {
		if status, ok, err := s.Cache.GetStatus(ctx, id); err == nil && ok {
			return status, nil
		}
	}

	sub, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	status := sub.Status()

	if s.Cache != nil {
		if err := s.Cache.SetStatus(ctx, &status); err != nil {
			s.Log.Warn("status cache write failed", zap.Error(err))
		}
	}
	return &status, nil
}

// Summary aggregates submissions per tier over the last N days.
func (s *Service) Summary(ctx context.Context, sinceDays int) (domain.TierSummary, error) {
	if sinceDays <= 0 {
		sinceDays = 7
	}
	since := s.Clock.Now().AddDate(0, 0, -sinceDays)
	return s.Repo.Summary(ctx, since)
}

func (s *Service) enqueueEmails(sub *domain.Submission, p domain.Projections, breakdown domain.ScoreBreakdown) bool {
	if s.Mail == nil || sub.Email == "" {
		return false
	}

	sent := false
	confirmation := mailer.ConfirmationMessage(sub, p)
	if _, err := s.Mail.Enqueue(confirmation, mail.PriorityHigh); err != nil {
		middleware.IncrementEmailsFailed()
		s.Log.Warn("confirmation email enqueue failed",
			zap.String("submission_id", string(sub.ID)), zap.Error(err))
	} else {
		middleware.IncrementEmailsQueued()
		sent = true
	}

	if s.InternalEmail != "" {
		notification := mailer.InternalNotification(s.InternalEmail, sub, breakdown)
		if _, err := s.Mail.Enqueue(notification, mail.PriorityNormal); err != nil {
			middleware.IncrementEmailsFailed()
			s.Log.Warn("internal notification enqueue failed",
				zap.String("submission_id", string(sub.ID)), zap.Error(err))
		} else {
			middleware.IncrementEmailsQueued()
		}
	}
	return sent
}

func (s *Service) syncCRM(ctx context.Context, sub *domain.Submission, p domain.Projections) (contactID, dealID string, synced bool) {
	if s.CRM == nil {
		return "", "", false
	}

	contact := crm.Contact{
		Email:          sub.Email,
		FirstName:      sub.FirstName,
		LastName:       sub.LastName,
		Company:        sub.BusinessName,
		Phone:          sub.Phone,
		Website:        sub.Website,
		Industry:       sub.Industry,
		BusinessStage:  string(sub.BusinessStage),
		MonthlyRevenue: sub.MonthlyRevenue,
		LeadScore:      sub.LeadScore,
		Tier:           string(sub.Tier),
		LifecycleStage: domain.LifecycleStage(sub.Tier),
	}

	id, err := s.CRM.UpsertContact(ctx, contact)
	if err != nil {
		middleware.IncrementCRMSyncFailures()
		s.Log.Warn("crm contact upsert failed",
			zap.String("submission_id", string(sub.ID)), zap.Error(err))
		return "", "", false
	}
	contactID = id

	deal := crm.Deal{
		Name:      "ROI Calculator Lead - " + sub.BusinessName,
		Amount:    p.Expected.AnnualBenefit,
		ContactID: contactID,
		Stage:     string(sub.Tier),
		Pipeline:  "default",
		CloseDate: s.Clock.Now().Add(90 * 24 * time.Hour),
	}
	did, err := s.CRM.CreateDeal(ctx, deal)
	if err != nil {
		middleware.IncrementCRMSyncFailures()
		s.Log.Warn("crm deal create failed",
			zap.String("submission_id", string(sub.ID)),
			zap.String("contact_id", contactID), zap.Error(err))
		// Contact exists even though the deal failed; expose the id.
		return contactID, "", false
	}

	middleware.IncrementCRMSyncs()
	return contactID, did, true
}
