package workers

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/syntra-learn/syntra-api/internal/i18n"
	"github.com/syntra-learn/syntra-api/internal/models"
	"github.com/syntra-learn/syntra-api/internal/queue"
	"github.com/syntra-learn/syntra-api/internal/services/ai"
)

// mockAIProvider is a mock implementation of AIProvider
type mockAIProvider struct {
	welcomeEmailFunc func(ctx context.Context, profile *models.Profile, lang i18n.Language) (string, error)
}

func (m *mockAIProvider) Chat(ctx context.Context, systemInstruction string, messages []ai.ChatMessage) (string, error) {
	return "", errors.New("not implemented")
}

func (m *mockAIProvider) GenerateRoadmap(ctx context.Context, goal string, profile *models.Profile, lang i18n.Language) (*models.Roadmap, error) {
	return nil, errors.New("not implemented")
}

func (m *mockAIProvider) MagicBreakdown(ctx context.Context, goal string, lang i18n.Language) ([]string, error) {
	return nil, errors.New("not implemented")
}

func (m *mockAIProvider) JournalInsight(ctx context.Context, entry string, lang i18n.Language) (string, error) {
	return "", errors.New("not implemented")
}

func (m *mockAIProvider) WelcomeEmail(ctx context.Context, profile *models.Profile, lang i18n.Language) (string, error) {
	if m.welcomeEmailFunc != nil {
		return m.welcomeEmailFunc(ctx, profile, lang)
	}
	return "Welcome aboard!", nil
}

var _ ai.AIProvider = (*mockAIProvider)(nil)

// mockProfileRepo is a mock implementation of ProfileRepositoryInterface
type mockProfileRepo struct {
	getByUserIDFunc func(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
}

func (m *mockProfileRepo) Create(ctx context.Context, profile *models.Profile) error {
	return nil
}

func (m *mockProfileRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	if m.getByUserIDFunc != nil {
		return m.getByUserIDFunc(ctx, userID)
	}
	return &models.Profile{
		UserID:                 userID,
		Name:                   "Nada",
		Age:                    "19",
		ConscientiousnessScore: 75,
		OpennessScore:          65,
	}, nil
}

// mockInboxRepo is a mock implementation of InboxRepositoryInterface
type mockInboxRepo struct {
	created   []*models.InboxMessage
	createErr error
}

func (m *mockInboxRepo) Create(ctx context.Context, msg *models.InboxMessage) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, msg)
	return nil
}

func (m *mockInboxRepo) GetByUserID(ctx context.Context, userID uuid.UUID) ([]models.InboxMessage, error) {
	return nil, nil
}

func (m *mockInboxRepo) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	return nil
}

// mockMessage is an in-memory MessageInterface for driving ProcessJob
type mockMessage struct {
	job     *queue.Job
	acked   bool
	nacked  bool
	requeue bool
}

func (m *mockMessage) Ack() error {
	m.acked = true
	return nil
}

func (m *mockMessage) Nack(requeue bool) error {
	m.nacked = true
	m.requeue = requeue
	return nil
}

func (m *mockMessage) GetJob() *queue.Job {
	return m.job
}

// mockJobQueue captures re-enqueued jobs
type mockJobQueue struct {
	enqueued []*queue.Job
}

func (m *mockJobQueue) Enqueue(ctx context.Context, job *queue.Job) error {
	m.enqueued = append(m.enqueued, job)
	return nil
}

func (m *mockJobQueue) Consume(ctx context.Context, prefetchCount int) (<-chan *queue.Message, <-chan error, error) {
	return nil, nil, errors.New("not implemented")
}

func (m *mockJobQueue) Close() error                          { return nil }
func (m *mockJobQueue) HealthCheck(ctx context.Context) error { return nil }

func TestProcessWelcomeEmailJob_DeliversToInbox(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	inbox := &mockInboxRepo{}
	provider := &mockAIProvider{
		welcomeEmailFunc: func(ctx context.Context, profile *models.Profile, lang i18n.Language) (string, error) {
			if profile.Name != "Nada" {
				t.Errorf("expected persisted profile, got name %q", profile.Name)
			}
			if lang != i18n.LanguageArabic {
				t.Errorf("expected language ar, got %s", lang)
			}
			return "أهلاً يا ندى!", nil
		},
	}
	mailer := NewMailer(provider, &mockProfileRepo{}, inbox, nil, nil)

	job := queue.NewJob(queue.JobTypeWelcomeEmail, userID, nil)
	job.Metadata["language"] = "ar"

	if err := mailer.ProcessWelcomeEmailJob(context.Background(), job); err != nil {
		t.Fatalf("ProcessWelcomeEmailJob: %v", err)
	}

	if len(inbox.created) != 1 {
		t.Fatalf("expected 1 inbox message, got %d", len(inbox.created))
	}
	msg := inbox.created[0]
	if msg.UserID != userID {
		t.Errorf("inbox message for wrong user: %s", msg.UserID)
	}
	if msg.Subject != i18n.T(i18n.LanguageArabic, i18n.KeyWelcomeSubject) {
		t.Errorf("unexpected subject %q", msg.Subject)
	}
	if msg.Body != "أهلاً يا ندى!" {
		t.Errorf("unexpected body %q", msg.Body)
	}
}

func TestProcessWelcomeEmailJob_GuestProfileFallback(t *testing.T) {
	t.Parallel()

	profiles := &mockProfileRepo{
		getByUserIDFunc: func(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
			return nil, sql.ErrNoRows
		},
	}
	inbox := &mockInboxRepo{}
	provider := &mockAIProvider{
		welcomeEmailFunc: func(ctx context.Context, profile *models.Profile, lang i18n.Language) (string, error) {
			if profile.Name != "Student" {
				t.Errorf("expected guest profile fallback, got name %q", profile.Name)
			}
			return "Welcome!", nil
		},
	}
	mailer := NewMailer(provider, profiles, inbox, nil, nil)

	job := queue.NewJob(queue.JobTypeWelcomeEmail, uuid.New(), nil)
	if err := mailer.ProcessWelcomeEmailJob(context.Background(), job); err != nil {
		t.Fatalf("ProcessWelcomeEmailJob: %v", err)
	}
	if len(inbox.created) != 1 {
		t.Fatalf("expected 1 inbox message, got %d", len(inbox.created))
	}
}

func TestProcessWelcomeEmailJob_DisabledProviderSkips(t *testing.T) {
	t.Parallel()

	inbox := &mockInboxRepo{}
	mailer := NewMailer(ai.DisabledProvider{}, &mockProfileRepo{}, inbox, nil, nil)

	job := queue.NewJob(queue.JobTypeWelcomeEmail, uuid.New(), nil)
	if err := mailer.ProcessWelcomeEmailJob(context.Background(), job); err != nil {
		t.Fatalf("expected disabled provider to be a no-op, got %v", err)
	}
	if len(inbox.created) != 0 {
		t.Errorf("expected no inbox messages, got %d", len(inbox.created))
	}
}

func TestProcessJob_AcksOnSuccess(t *testing.T) {
	t.Parallel()

	mailer := NewMailer(&mockAIProvider{}, &mockProfileRepo{}, &mockInboxRepo{}, nil, nil)
	msg := &mockMessage{job: queue.NewJob(queue.JobTypeWelcomeEmail, uuid.New(), nil)}

	if err := mailer.ProcessJob(context.Background(), msg); err != nil {
		t.Fatalf("ProcessJob: %v", err)
	}
	if !msg.acked {
		t.Error("expected message to be acked")
	}
}

func TestProcessJob_UnknownTypeDeadLetters(t *testing.T) {
	t.Parallel()

	mailer := NewMailer(&mockAIProvider{}, &mockProfileRepo{}, &mockInboxRepo{}, nil, nil)
	job := queue.NewJob(queue.JobType("mystery"), uuid.New(), nil)
	msg := &mockMessage{job: job}

	if err := mailer.ProcessJob(context.Background(), msg); err == nil {
		t.Fatal("expected error for unknown job type")
	}
	if !msg.nacked || msg.requeue {
		t.Error("expected nack without requeue")
	}
}

func TestProcessJob_RateLimitReEnqueuesWithDelay(t *testing.T) {
	t.Parallel()

	jq := &mockJobQueue{}
	provider := &mockAIProvider{
		welcomeEmailFunc: func(context.Context, *models.Profile, i18n.Language) (string, error) {
			return "", &ai.APIError{StatusCode: 429, Type: "rate_limit_exceeded", Message: "slow down"}
		},
	}
	mailer := NewMailer(provider, &mockProfileRepo{}, &mockInboxRepo{}, jq, nil)
	msg := &mockMessage{job: queue.NewJob(queue.JobTypeWelcomeEmail, uuid.New(), nil)}

	if err := mailer.ProcessJob(context.Background(), msg); err != nil {
		t.Fatalf("expected rate limited job to be handled, got %v", err)
	}
	if !msg.acked {
		t.Error("expected original message to be acked")
	}
	if len(jq.enqueued) != 1 {
		t.Fatalf("expected 1 re-enqueued job, got %d", len(jq.enqueued))
	}
	delayed := jq.enqueued[0]
	if delayed.NotBefore == nil {
		t.Error("expected delayed job to carry NotBefore")
	}
	if delayed.RetryCount != 1 {
		t.Errorf("expected retry count 1, got %d", delayed.RetryCount)
	}
}

func TestProcessJob_ExhaustedRetriesDeadLetter(t *testing.T) {
	t.Parallel()

	provider := &mockAIProvider{
		welcomeEmailFunc: func(context.Context, *models.Profile, i18n.Language) (string, error) {
			return "", errors.New("model unavailable")
		},
	}
	mailer := NewMailer(provider, &mockProfileRepo{}, &mockInboxRepo{}, nil, nil)

	job := queue.NewJob(queue.JobTypeWelcomeEmail, uuid.New(), nil)
	job.RetryCount = job.MaxRetries
	msg := &mockMessage{job: job}

	if err := mailer.ProcessJob(context.Background(), msg); err == nil {
		t.Fatal("expected error after max retries")
	}
	if !msg.nacked || msg.requeue {
		t.Error("expected nack without requeue to dead letter")
	}
}
