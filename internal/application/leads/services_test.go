package leads

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chimehq/roi-capture/internal/domain/crm"
	domain "github.com/chimehq/roi-capture/internal/domain/leads"
	"github.com/chimehq/roi-capture/internal/domain/mail"
)

type stubRepo struct {
	saved        *domain.Submission
	saveErr      error
	syncCalls    int
	emailSent    bool
	crmSynced    bool
	contactID    string
	dealID       string
	getResult    *domain.Submission
	getErr       error
	getCalls     int
	summarySince time.Time
}

func (r *stubRepo) Save(_ context.Context, s *domain.Submission) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	cp := *s
	r.saved = &cp
	return nil
}

func (r *stubRepo) Get(_ context.Context, _ domain.SubmissionID) (*domain.Submission, error) {
	r.getCalls++
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.getResult, nil
}

func (r *stubRepo) Latest(_ context.Context, _ int) ([]*domain.Submission, error) {
	return nil, nil
}

func (r *stubRepo) UpdateSyncState(_ context.Context, _ domain.SubmissionID, emailSent, crmSynced bool, contactID, dealID string) error {
	r.syncCalls++
	r.emailSent = emailSent
	r.crmSynced = crmSynced
	r.contactID = contactID
	r.dealID = dealID
	return nil
}

func (r *stubRepo) Summary(_ context.Context, since time.Time) (domain.TierSummary, error) {
	r.summarySince = since
	return domain.TierSummary{Total: 3, Hot: 1, Warm: 1, Cold: 1}, nil
}

type stubCRM struct {
	contactErr error
	dealErr    error
	contacts   []crm.Contact
	deals      []crm.Deal
}

func (c *stubCRM) UpsertContact(_ context.Context, contact crm.Contact) (string, error) {
	if c.contactErr != nil {
		return "", c.contactErr
	}
	c.contacts = append(c.contacts, contact)
	return "contact-1", nil
}

func (c *stubCRM) CreateDeal(_ context.Context, deal crm.Deal) (string, error) {
	if c.dealErr != nil {
		return "", c.dealErr
	}
	c.deals = append(c.deals, deal)
	return "deal-1", nil
}

type stubQueue struct {
	enqueueErr error
	messages   []mail.Message
}

func (q *stubQueue) Enqueue(msg mail.Message, _ mail.Priority) (string, error) {
	if q.enqueueErr != nil {
		return "", q.enqueueErr
	}
	q.messages = append(q.messages, msg)
	return "queued-1", nil
}

type stubCache struct {
	statuses map[domain.SubmissionID]*domain.SyncStatus
}

func (c *stubCache) GetStatus(_ context.Context, id domain.SubmissionID) (*domain.SyncStatus, bool, error) {
	s, ok := c.statuses[id]
	return s, ok, nil
}

func (c *stubCache) SetStatus(_ context.Context, status *domain.SyncStatus) error {
	if c.statuses == nil {
		c.statuses = make(map[domain.SubmissionID]*domain.SyncStatus)
	}
	c.statuses[status.SubmissionID] = status
	return nil
}

type stubClock struct{ t time.Time }

func (c stubClock) Now() time.Time { return c.t }

func sampleSubmission() *domain.Submission {
	return &domain.Submission{
		MonthlyRevenue:     50000,
		AverageOrderValue:  85,
		MonthlyOrders:      588,
		ManualHoursPerWeek: 25,
		Industry:           "Electronics",
		BusinessStage:      domain.StageGrowth,
		FirstName:          "Jane",
		LastName:           "Doe",
		Email:              "jane@example.com",
		BusinessName:       "Acme Widgets",
	}
}

func newService(repo *stubRepo, crmClient crm.Client, q mail.Queue, cache domain.StatusCache) *Service {
	return &Service{
		Repo:          repo,
		CRM:           crmClient,
		Mail:          q,
		Cache:         cache,
		Clock:         stubClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
		Log:           zap.NewNop(),
		InternalEmail: "sales@example.com",
	}
}

func TestSubmitFullPipeline(t *testing.T) {
	repo := &stubRepo{}
	crmClient := &stubCRM{}
	q := &stubQueue{}
	cache := &stubCache{}
	svc := newService(repo, crmClient, q, cache)

	result, err := svc.Submit(context.Background(), SubmitCommand{
		Submission: sampleSubmission(),
		ClientIP:   "203.0.113.7",
	})
	require.NoError(t, err)

	assert.Equal(t, "success", result.Status)
	assert.NotEmpty(t, result.SubmissionID)
	assert.Greater(t, result.LeadScore, 0)
	assert.Contains(t, result.Message, "Jane")

	require.NotNil(t, repo.saved)
	assert.Equal(t, "203.0.113.7", repo.saved.IPAddress)
	assert.Equal(t, result.LeadScore, repo.saved.LeadScore)

	// Both confirmation and internal notification queued
	require.Len(t, q.messages, 2)
	assert.Equal(t, "jane@example.com", q.messages[0].To)
	assert.Equal(t, "sales@example.com", q.messages[1].To)

	// CRM contact and deal
	require.Len(t, crmClient.contacts, 1)
	require.Len(t, crmClient.deals, 1)
	assert.Equal(t, "ROI Calculator Lead - Acme Widgets", crmClient.deals[0].Name)
	assert.Equal(t, "contact-1", crmClient.deals[0].ContactID)

	// Sync state recorded
	assert.Equal(t, 1, repo.syncCalls)
	assert.True(t, repo.emailSent)
	assert.True(t, repo.crmSynced)
	assert.Equal(t, "contact-1", repo.contactID)
	assert.Equal(t, "deal-1", repo.dealID)

	// Status cached
	assert.Len(t, cache.statuses, 1)
}

func TestSubmitSaveFailureIsFatal(t *testing.T) {
	repo := &stubRepo{saveErr: errors.New("db down")}
	svc := newService(repo, nil, nil, nil)

	_, err := svc.Submit(context.Background(), SubmitCommand{Submission: sampleSubmission()})
	assert.ErrorContains(t, err, "db down")
}

func TestSubmitSurvivesCRMFailure(t *testing.T) {
	repo := &stubRepo{}
	crmClient := &stubCRM{contactErr: errors.New("hubspot 500")}
	svc := newService(repo, crmClient, &stubQueue{}, nil)

	result, err := svc.Submit(context.Background(), SubmitCommand{Submission: sampleSubmission()})
	require.NoError(t, err)
	assert.Equal(t, "success", result.Status)
	assert.False(t, repo.crmSynced)
	assert.Empty(t, repo.contactID)
}

func TestSubmitDealFailureKeepsContact(t *testing.T) {
	repo := &stubRepo{}
	crmClient := &stubCRM{dealErr: errors.New("deal create failed")}
	svc := newService(repo, crmClient, &stubQueue{}, nil)

	_, err := svc.Submit(context.Background(), SubmitCommand{Submission: sampleSubmission()})
	require.NoError(t, err)
	assert.False(t, repo.crmSynced)
	assert.Equal(t, "contact-1", repo.contactID, "contact id kept even though deal failed")
	assert.Empty(t, repo.dealID)
}

func TestSubmitSurvivesEmailFailure(t *testing.T) {
	repo := &stubRepo{}
	q := &stubQueue{enqueueErr: errors.New("queue full")}
	svc := newService(repo, &stubCRM{}, q, nil)

	result, err := svc.Submit(context.Background(), SubmitCommand{Submission: sampleSubmission()})
	require.NoError(t, err)
	assert.Equal(t, "success", result.Status)
	assert.False(t, repo.emailSent)
}

func TestSubmitWithoutIntegrations(t *testing.T) {
	repo := &stubRepo{}
	svc := newService(repo, nil, nil, nil)

	result, err := svc.Submit(context.Background(), SubmitCommand{Submission: sampleSubmission()})
	require.NoError(t, err)
	assert.Equal(t, "success", result.Status)
	assert.False(t, repo.emailSent)
	assert.False(t, repo.crmSynced)
}

func TestStatusPrefersCache(t *testing.T) {
	repo := &stubRepo{}
	cache := &stubCache{statuses: map[domain.SubmissionID]*domain.SyncStatus{
		"abc": {SubmissionID: "abc", LeadScore: 120, Tier: domain.TierHot},
	}}
	svc := newService(repo, nil, nil, cache)

	status, err := svc.Status(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, 120, status.LeadScore)
	assert.Zero(t, repo.getCalls, "cache hit skips the repository")
}

func TestStatusFallsBackToRepo(t *testing.T) {
	sub := sampleSubmission()
	sub.ID = "xyz"
	sub.LeadScore = 75
	sub.Tier = domain.TierWarm
	repo := &stubRepo{getResult: sub}
	cache := &stubCache{}
	svc := newService(repo, nil, nil, cache)

	status, err := svc.Status(context.Background(), "xyz")
	require.NoError(t, err)
	assert.Equal(t, 75, status.LeadScore)
	assert.Equal(t, 1, repo.getCalls)
	assert.Contains(t, cache.statuses, domain.SubmissionID("xyz"), "repo result backfills the cache")
}

func TestStatusNotFound(t *testing.T) {
	repo := &stubRepo{getErr: domain.ErrNotFound}
	svc := newService(repo, nil, nil, nil)

	_, err := svc.Status(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSummaryDefaultsToSevenDays(t *testing.T) {
	repo := &stubRepo{}
	svc := newService(repo, nil, nil, nil)

	sum, err := svc.Summary(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Total)

	want := time.Date(2025, 5, 25, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, want, repo.summarySince)
}

func TestCalculateIsStateless(t *testing.T) {
	repo := &stubRepo{}
	svc := newService(repo, nil, nil, nil)

	p := svc.Calculate(50000)
	assert.Equal(t, 5000.0, p.Conservative.MonthlyIncrease)
	assert.Equal(t, 15000.0, p.Expected.MonthlyIncrease)
	assert.Nil(t, repo.saved)
}
