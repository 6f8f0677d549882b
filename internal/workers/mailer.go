package workers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/syntra-learn/syntra-api/internal/database"
	"github.com/syntra-learn/syntra-api/internal/i18n"
	"github.com/syntra-learn/syntra-api/internal/models"
	"github.com/syntra-learn/syntra-api/internal/queue"
	"github.com/syntra-learn/syntra-api/internal/services/ai"
)

// Mailer processes onboarding jobs: it writes the AI-composed welcome email
// into the user's inbox and records profile analysis completions.
type Mailer struct {
	aiProvider  ai.AIProvider
	profileRepo database.ProfileRepositoryInterface
	inboxRepo   database.InboxRepositoryInterface
	jobQueue    queue.JobQueue // For re-enqueueing jobs with delays
	logger      *zap.Logger
}

// NewMailer creates a new mailer worker
func NewMailer(
	aiProvider ai.AIProvider,
	profileRepo database.ProfileRepositoryInterface,
	inboxRepo database.InboxRepositoryInterface,
	jobQueue queue.JobQueue,
	logger *zap.Logger,
) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mailer{
		aiProvider:  aiProvider,
		profileRepo: profileRepo,
		inboxRepo:   inboxRepo,
		jobQueue:    jobQueue,
		logger:      logger,
	}
}

// ProcessWelcomeEmailJob composes the welcome email for a freshly onboarded
// user and stores it in their inbox.
func (m *Mailer) ProcessWelcomeEmailJob(ctx context.Context, job *queue.Job) error {
	lang := i18n.Normalize(job.MetadataString("language", string(i18n.LanguageEnglish)))

	profile, err := m.profileRepo.GetByUserID(ctx, job.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Guest or racing completion, use the default profile
			profile = models.GuestProfile(job.UserID)
		} else {
			return fmt.Errorf("failed to get profile: %w", err)
		}
	}

	body, err := m.aiProvider.WelcomeEmail(ctx, profile, lang)
	if err != nil {
		if errors.Is(err, ai.ErrDisabled) {
			// No credentials configured; skip rather than retry forever
			m.logger.Info("welcome_email_skipped",
				zap.String("user_id", job.UserID.String()),
				zap.String("reason", "ai_disabled"))
			return nil
		}
		return fmt.Errorf("failed to compose welcome email: %w", err)
	}

	msg := &models.InboxMessage{
		UserID:  job.UserID,
		Subject: i18n.T(lang, i18n.KeyWelcomeSubject),
		Body:    body,
	}
	if err := m.inboxRepo.Create(ctx, msg); err != nil {
		return fmt.Errorf("failed to store welcome email: %w", err)
	}

	m.logger.Info("welcome_email_delivered",
		zap.String("user_id", job.UserID.String()),
		zap.String("language", string(lang)))
	return nil
}

// ProcessProfileAnalysisJob records that onboarding analysis finished for a
// user. The scores themselves are computed at submission time; this job exists
// so a failed write can be retried out of band.
func (m *Mailer) ProcessProfileAnalysisJob(ctx context.Context, job *queue.Job) error {
	profile, err := m.profileRepo.GetByUserID(ctx, job.UserID)
	if err != nil {
		return fmt.Errorf("failed to get profile: %w", err)
	}

	m.logger.Info("profile_analyzed",
		zap.String("user_id", job.UserID.String()),
		zap.Int("conscientiousness", profile.ConscientiousnessScore),
		zap.Int("openness", profile.OpennessScore))
	return nil
}

// ProcessJob processes a job based on its type
func (m *Mailer) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()

	// Check if job should be processed now (respect NotBefore)
	if !job.ShouldProcess() {
		if job.IsExpired() {
			m.logger.Info("job_expired", zap.String("job_id", job.ID.String()))
			if nackErr := msg.Nack(false); nackErr != nil {
				m.logger.Warn("job_nack_failed", zap.Error(nackErr))
			}
			return nil
		}
		// Not ready yet, put it back
		if nackErr := msg.Nack(true); nackErr != nil {
			m.logger.Warn("job_requeue_failed", zap.Error(nackErr))
		}
		return nil
	}

	switch job.Type {
	case queue.JobTypeWelcomeEmail:
		if err := m.ProcessWelcomeEmailJob(ctx, job); err != nil {
			return m.handleJobError(ctx, msg, job, err, "welcome email")
		}
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack job: %w", ackErr)
		}
		return nil

	case queue.JobTypeProfileAnalysis:
		if err := m.ProcessProfileAnalysisJob(ctx, job); err != nil {
			return m.handleJobError(ctx, msg, job, err, "profile analysis")
		}
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack job: %w", ackErr)
		}
		return nil

	default:
		if nackErr := msg.Nack(false); nackErr != nil { // Unknown job type, send to DLQ
			m.logger.Warn("job_nack_failed", zap.Error(nackErr))
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// handleJobError handles errors from job processing with retry logic that
// distinguishes quota exhaustion from transient rate limits.
func (m *Mailer) handleJobError(ctx context.Context, msg queue.MessageInterface, job *queue.Job, err error, jobType string) error {
	// Quota errors should not retry immediately
	if ai.IsQuotaError(err) {
		retryDelay := ai.GetRetryDelay(err, job.RetryCount)
		notBefore := time.Now().Add(retryDelay)

		m.logger.Warn("job_quota_exceeded",
			zap.String("job_type", jobType),
			zap.String("job_id", job.ID.String()),
			zap.Time("not_before", notBefore),
			zap.Error(err))

		delayedJob := m.delayedCopy(job, notBefore)

		if ackErr := msg.Ack(); ackErr != nil {
			m.logger.Warn("job_ack_failed", zap.Error(ackErr))
		}

		if m.jobQueue != nil {
			if enqueueErr := m.jobQueue.Enqueue(ctx, delayedJob); enqueueErr != nil {
				return fmt.Errorf("quota exhausted, failed to re-enqueue: %w", enqueueErr)
			}
			return nil
		}

		m.logger.Warn("job_requeue_unavailable", zap.String("job_id", job.ID.String()))
		return fmt.Errorf("quota exhausted (job %s): %w", job.ID, err)
	}

	// Rate limits retry with backoff via the delayed exchange
	if ai.IsRateLimitError(err) {
		retryDelay := ai.GetRetryDelay(err, job.RetryCount)

		if job.CanRetry() && m.jobQueue != nil {
			notBefore := time.Now().Add(retryDelay)
			delayedJob := m.delayedCopy(job, notBefore)

			if ackErr := msg.Ack(); ackErr != nil {
				m.logger.Warn("job_ack_failed", zap.Error(ackErr))
			}

			if enqueueErr := m.jobQueue.Enqueue(ctx, delayedJob); enqueueErr != nil {
				if nackErr := msg.Nack(true); nackErr != nil {
					m.logger.Warn("job_nack_failed", zap.Error(nackErr))
				}
				return fmt.Errorf("rate limited, failed to re-enqueue: %w", enqueueErr)
			}

			m.logger.Info("job_rate_limited_requeued",
				zap.String("job_type", jobType),
				zap.String("job_id", job.ID.String()),
				zap.Duration("delay", retryDelay))
			return nil
		}

		if job.CanRetry() {
			job.IncrementRetry()
			if nackErr := msg.Nack(true); nackErr != nil {
				m.logger.Warn("job_nack_failed", zap.Error(nackErr))
			}
			return fmt.Errorf("rate limited (will retry): %w", err)
		}
	}

	// Standard retry for everything else
	if job.CanRetry() {
		job.IncrementRetry()
		m.logger.Warn("job_failed_will_retry",
			zap.String("job_type", jobType),
			zap.String("job_id", job.ID.String()),
			zap.Int("attempt", job.RetryCount),
			zap.Int("max_retries", job.MaxRetries),
			zap.Error(err))
		if nackErr := msg.Nack(true); nackErr != nil {
			m.logger.Warn("job_nack_failed", zap.Error(nackErr))
		}
		return fmt.Errorf("job failed (will retry): %w", err)
	}

	// Max retries exceeded, send to DLQ
	m.logger.Error("job_failed_dead_lettered",
		zap.String("job_type", jobType),
		zap.String("job_id", job.ID.String()),
		zap.Int("max_retries", job.MaxRetries),
		zap.Error(err))
	if nackErr := msg.Nack(false); nackErr != nil {
		m.logger.Warn("job_nack_failed", zap.Error(nackErr))
	}
	return fmt.Errorf("job failed (max retries): %w", err)
}

// delayedCopy clones a job for delayed redelivery with one more retry spent.
func (m *Mailer) delayedCopy(job *queue.Job, notBefore time.Time) *queue.Job {
	return &queue.Job{
		ID:         job.ID,
		Type:       job.Type,
		UserID:     job.UserID,
		TaskID:     job.TaskID,
		NotBefore:  &notBefore,
		NotAfter:   job.NotAfter,
		Metadata:   job.Metadata,
		CreatedAt:  job.CreatedAt,
		RetryCount: job.RetryCount + 1,
		MaxRetries: job.MaxRetries,
	}
}
