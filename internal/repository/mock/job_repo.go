package mock

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/spaarke-dev/spaarke-sub021/internal/domain"
	"github.com/spaarke-dev/spaarke-sub021/internal/repository"
)

// Ensure JobRepository implements repository.JobRepository.
var _ repository.JobRepository = (*JobRepository)(nil)

// JobRepository is an in-memory mock of the job repository for testing.
type JobRepository struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]*domain.DocumentJob

	// Hook functions for injecting errors
	CreateFunc       func(ctx context.Context, job *domain.DocumentJob) error
	GetByIDFunc      func(ctx context.Context, id uuid.UUID) (*domain.DocumentJob, error)
	UpdateStatusFunc func(ctx context.Context, id uuid.UUID, status domain.JobStatus) error
	SetResultFunc    func(ctx context.Context, id uuid.UUID, status domain.JobStatus, result *domain.JobResult, jobErr *domain.JobError) error
}

// NewJobRepository creates a new mock repository.
func NewJobRepository() *JobRepository {
	return &JobRepository{
		jobs: make(map[uuid.UUID]*domain.DocumentJob),
	}
}

func (m *JobRepository) Create(ctx context.Context, job *domain.DocumentJob) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, job)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.JobID] = job
	return nil
}

func (m *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.DocumentJob, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return job, nil
}

func (m *JobRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.JobStatus) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return domain.ErrJobNotFound
	}
	job.Status = status
	return nil
}

func (m *JobRepository) SetResult(ctx context.Context, id uuid.UUID, status domain.JobStatus, result *domain.JobResult, jobErr *domain.JobError) error {
	if m.SetResultFunc != nil {
		return m.SetResultFunc(ctx, id, status, result, jobErr)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return domain.ErrJobNotFound
	}
	job.Status = status
	job.Result = result
	job.Error = jobErr
	return nil
}

// GetAll returns all stored jobs (for test assertions).
func (m *JobRepository) GetAll() []*domain.DocumentJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.DocumentJob, 0, len(m.jobs))
	for _, j := range m.jobs {
		result = append(result, j)
	}
	return result
}

// Ensure IdempotencyStore implements repository.IdempotencyStore.
var _ repository.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore is a mock deduplication lock for testing.
type IdempotencyStore struct {
	AcquireLockFn func(ctx context.Context, jobID uuid.UUID) (bool, error)
	ReleaseLockFn func(ctx context.Context, jobID uuid.UUID) error
}

func (m *IdempotencyStore) AcquireLock(ctx context.Context, jobID uuid.UUID) (bool, error) {
	if m.AcquireLockFn != nil {
		return m.AcquireLockFn(ctx, jobID)
	}
	return true, nil
}

func (m *IdempotencyStore) ReleaseLock(ctx context.Context, jobID uuid.UUID) error {
	if m.ReleaseLockFn != nil {
		return m.ReleaseLockFn(ctx, jobID)
	}
	return nil
}
