// Package pipeline runs queued document jobs through their staged
// processing plan, reporting every transition through the status service.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spaarke-dev/spaarke-sub021/internal/domain"
	"github.com/spaarke-dev/spaarke-sub021/internal/repository"
	"github.com/spaarke-dev/spaarke-sub021/internal/status"
)

// stage is a single step of a processing plan. progress is the percentage
// reported when the stage finishes.
type stage struct {
	name     string
	progress int
}

// stagesByOperation maps each operation to its processing plan. The plans
// are fixed: the worker simulates the heavy lifting but the reporting
// contract (stage names, progress milestones) is the real one.
var stagesByOperation = map[domain.Operation][]stage{
	domain.OpSummarize: {
		{name: "download", progress: 25},
		{name: "analyze", progress: 70},
		{name: "summarize", progress: 95},
	},
	domain.OpExtract: {
		{name: "download", progress: 30},
		{name: "extract", progress: 90},
	},
	domain.OpRedact: {
		{name: "download", progress: 25},
		{name: "detect", progress: 60},
		{name: "redact", progress: 90},
	},
}

// Processor executes document jobs stage by stage. It is safe for
// concurrent use; all mutable state lives in the job record and the
// status service.
type Processor struct {
	repo       repository.JobRepository
	idem       repository.IdempotencyStore
	statusSvc  *status.Service
	logger     *zap.Logger
	stageDelay time.Duration
}

// NewProcessor creates a processor. stageDelay simulates per-stage work
// and may be zero in tests.
func NewProcessor(repo repository.JobRepository, idem repository.IdempotencyStore, statusSvc *status.Service, stageDelay time.Duration, logger *zap.Logger) *Processor {
	return &Processor{
		repo:       repo,
		idem:       idem,
		statusSvc:  statusSvc,
		logger:     logger,
		stageDelay: stageDelay,
	}
}

// Process runs a job to completion. It returns (true, nil) when the job was
// a redelivered duplicate and was skipped. On failure the job record and the
// status stream both carry the terminal failure before the error returns.
func (p *Processor) Process(ctx context.Context, job *domain.DocumentJob) (bool, error) {
	acquired, err := p.idem.AcquireLock(ctx, job.JobID)
	if err != nil {
		return false, fmt.Errorf("acquiring processing lock: %w", err)
	}
	if !acquired {
		p.logger.Info("Skipping duplicate delivery",
			zap.String("job_id", job.JobID.String()),
		)
		return true, nil
	}

	stages, ok := stagesByOperation[job.Operation]
	if !ok {
		return false, p.fail(ctx, job, &domain.JobError{
			Code:      "E_OPERATION",
			Message:   fmt.Sprintf("unsupported operation %q", job.Operation),
			Retryable: false,
		})
	}

	if err := p.repo.UpdateStatus(ctx, job.JobID, domain.StatusRunning); err != nil {
		return false, fmt.Errorf("marking job running: %w", err)
	}

	for _, st := range stages {
		p.statusSvc.PublishStatusUpdate(ctx, domain.NewStageStartedUpdate(job.JobID, st.progress, st.name))

		started := time.Now()
		if err := p.runStage(ctx, st); err != nil {
			return false, p.fail(ctx, job, &domain.JobError{
				Code:      "E_STAGE",
				Message:   fmt.Sprintf("stage %s: %v", st.name, err),
				Retryable: true,
			})
		}

		p.statusSvc.UpdateJobStatus(ctx, job.JobID, domain.StatusRunning, st.progress, st.name, &domain.CompletedPhase{
			Name:        st.name,
			CompletedAt: time.Now().UTC(),
			DurationMs:  time.Since(started).Milliseconds(),
		})
	}

	result := &domain.JobResult{
		ArtifactType: "document",
		ArtifactID:   fmt.Sprintf("%s-%s", job.DocumentID, job.Operation),
	}

	if err := p.repo.SetResult(ctx, job.JobID, domain.StatusCompleted, result, nil); err != nil {
		return false, fmt.Errorf("storing job result: %w", err)
	}
	p.statusSvc.CompleteJob(ctx, job.JobID, result)

	p.logger.Info("Job completed",
		zap.String("job_id", job.JobID.String()),
		zap.String("operation", string(job.Operation)),
	)
	return false, nil
}

// runStage simulates the stage's work, honoring cancellation.
func (p *Processor) runStage(ctx context.Context, st stage) error {
	if p.stageDelay <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(p.stageDelay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// fail records the terminal failure in the job store and on the status
// stream, then returns an error describing it.
func (p *Processor) fail(ctx context.Context, job *domain.DocumentJob, jobErr *domain.JobError) error {
	if err := p.repo.SetResult(ctx, job.JobID, domain.StatusFailed, nil, jobErr); err != nil {
		p.logger.Error("Failed to persist job failure",
			zap.String("job_id", job.JobID.String()),
			zap.Error(err),
		)
	}
	p.statusSvc.FailJob(ctx, job.JobID, jobErr)

	p.logger.Warn("Job failed",
		zap.String("job_id", job.JobID.String()),
		zap.String("code", jobErr.Code),
		zap.String("message", jobErr.Message),
	)
	return fmt.Errorf("job %s failed: %s (%s)", job.JobID, jobErr.Message, jobErr.Code)
}
