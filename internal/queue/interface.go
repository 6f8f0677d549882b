package queue

import (
	"context"
	"time"
)

// MessageInterface is the ack surface a worker needs from a delivery. The
// mailer takes this rather than *Message so its tests can drive it without a
// broker.
type MessageInterface interface {
	Ack() error
	Nack(requeue bool) error
	GetJob() *Job
}

// JobQueue publishes and consumes background jobs. The server only
// publishes; the worker consumes.
type JobQueue interface {
	// Enqueue publishes a job, honoring job.Delay when set.
	Enqueue(ctx context.Context, job *Job) error

	// Consume streams deliveries until ctx is cancelled. prefetchCount
	// bounds unacknowledged messages per consumer; the caller must Ack or
	// Nack every message.
	Consume(ctx context.Context, prefetchCount int) (<-chan *Message, <-chan error, error)

	// HealthCheck verifies the broker connection is alive.
	HealthCheck(ctx context.Context) error

	Close() error
}

// DLQPurger drops dead-lettered messages older than a retention window.
// Kept separate from JobQueue so only the garbage collector depends on it.
type DLQPurger interface {
	PurgeOlderThan(ctx context.Context, retention time.Duration) (int, error)
}
