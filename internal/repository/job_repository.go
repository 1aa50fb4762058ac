package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/spaarke-dev/spaarke-sub021/internal/domain"
)

// JobRepository defines the interface for job record persistence.
// Implementations must be safe for concurrent use. The status notification
// core never reads this store; it is the job's non-streaming result channel.
type JobRepository interface {
	// Create inserts a new job record.
	Create(ctx context.Context, job *domain.DocumentJob) error

	// GetByID retrieves a job record by its UUID.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.DocumentJob, error)

	// UpdateStatus atomically updates the status of a job.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.JobStatus) error

	// SetResult stores the terminal state of a job: status plus either the
	// result artifact or the failure description.
	SetResult(ctx context.Context, id uuid.UUID, status domain.JobStatus, result *domain.JobResult, jobErr *domain.JobError) error
}

// IdempotencyStore defines the interface for distributed deduplication locks
// guarding against redelivered work-queue messages.
type IdempotencyStore interface {
	// AcquireLock attempts to acquire an exclusive processing lock for a job.
	// Returns true if the lock was acquired (first time), false if already locked (duplicate).
	AcquireLock(ctx context.Context, jobID uuid.UUID) (bool, error)

	// ReleaseLock releases the processing lock with a TTL for eventual cleanup.
	ReleaseLock(ctx context.Context, jobID uuid.UUID) error
}
