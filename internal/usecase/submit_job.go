package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spaarke-dev/spaarke-sub021/internal/domain"
	"github.com/spaarke-dev/spaarke-sub021/internal/publisher"
	"github.com/spaarke-dev/spaarke-sub021/internal/repository"
)

const maxSourceURLLength = 2048

// SubmitJobUsecase handles the business logic for submitting document-processing jobs.
type SubmitJobUsecase struct {
	repo      repository.JobRepository
	publisher publisher.Publisher
	logger    *zap.Logger
}

// NewSubmitJobUsecase creates a new SubmitJobUsecase.
func NewSubmitJobUsecase(repo repository.JobRepository, pub publisher.Publisher, logger *zap.Logger) *SubmitJobUsecase {
	return &SubmitJobUsecase{
		repo:      repo,
		publisher: pub,
		logger:    logger,
	}
}

// Execute validates the request, creates a job record, dispatches it to the
// work queue, and returns the job ID.
func (uc *SubmitJobUsecase) Execute(ctx context.Context, req *domain.SubmitRequest) (*domain.SubmitResponse, error) {
	if !req.Operation.IsValid() {
		return nil, domain.ErrInvalidOperation
	}
	if strings.TrimSpace(req.DocumentID) == "" {
		return nil, domain.ErrEmptyDocument
	}
	if len(req.SourceURL) > maxSourceURLLength {
		return nil, domain.ErrSourceURLTooLong
	}

	// Generate UUIDv7 (time-ordered)
	jobID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate UUIDv7: %w", err)
	}

	job := &domain.DocumentJob{
		JobID:      jobID,
		DocumentID: req.DocumentID,
		Operation:  req.Operation,
		SourceURL:  req.SourceURL,
		Status:     domain.StatusPending,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}

	// Persist to PostgreSQL
	if err := uc.repo.Create(ctx, job); err != nil {
		uc.logger.Error("Failed to create job in database", zap.Error(err), zap.String("job_id", jobID.String()))
		return nil, fmt.Errorf("create job: %w", err)
	}

	// Dispatch to RabbitMQ
	if err := uc.publisher.Publish(ctx, job); err != nil {
		uc.logger.Error("Failed to publish job to work queue", zap.Error(err), zap.String("job_id", jobID.String()))
		// The job will never be picked up; mark it failed.
		_ = uc.repo.SetResult(ctx, jobID, domain.StatusFailed, nil, &domain.JobError{
			Code:      "E_DISPATCH",
			Message:   "failed to dispatch job to work queue",
			Retryable: true,
		})
		return nil, domain.ErrPublishFailed
	}

	uc.logger.Info("Job submitted",
		zap.String("job_id", jobID.String()),
		zap.String("operation", string(req.Operation)),
	)

	return &domain.SubmitResponse{
		JobID:  jobID,
		Status: domain.StatusPending,
	}, nil
}
