package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spaarke-dev/spaarke-sub021/internal/domain"
	"github.com/spaarke-dev/spaarke-sub021/internal/repository"
)

// Ensure pgJobRepo implements repository.JobRepository.
var _ repository.JobRepository = (*pgJobRepo)(nil)

type pgJobRepo struct {
	pool *pgxpool.Pool
}

// NewPostgresJobRepository creates a new PostgreSQL-backed job repository.
func NewPostgresJobRepository(pool *pgxpool.Pool) repository.JobRepository {
	return &pgJobRepo{pool: pool}
}

func (r *pgJobRepo) Create(ctx context.Context, job *domain.DocumentJob) error {
	query := `
		INSERT INTO document_jobs (job_id, document_id, operation, source_url, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	now := time.Now().UTC()
	_, err := r.pool.Exec(ctx, query,
		job.JobID, job.DocumentID, job.Operation, job.SourceURL, job.Status, now, now,
	)
	if err != nil {
		return fmt.Errorf("postgres: create job: %w", err)
	}
	job.CreatedAt = now
	job.UpdatedAt = now
	return nil
}

func (r *pgJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.DocumentJob, error) {
	query := `
		SELECT job_id, document_id, operation, source_url, status,
		       result_artifact_type, result_artifact_id, result_url,
		       error_code, error_message, error_retryable,
		       created_at, updated_at
		FROM document_jobs
		WHERE job_id = $1`

	job := &domain.DocumentJob{}
	var (
		artifactType, artifactID, resultURL *string
		errCode, errMessage                 *string
		errRetryable                        *bool
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&job.JobID, &job.DocumentID, &job.Operation, &job.SourceURL, &job.Status,
		&artifactType, &artifactID, &resultURL,
		&errCode, &errMessage, &errRetryable,
		&job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("postgres: get job by id: %w", err)
	}

	if artifactType != nil {
		job.Result = &domain.JobResult{ArtifactType: *artifactType}
		if artifactID != nil {
			job.Result.ArtifactID = *artifactID
		}
		if resultURL != nil {
			job.Result.URL = *resultURL
		}
	}
	if errCode != nil {
		job.Error = &domain.JobError{Code: *errCode}
		if errMessage != nil {
			job.Error.Message = *errMessage
		}
		if errRetryable != nil {
			job.Error.Retryable = *errRetryable
		}
	}
	return job, nil
}

func (r *pgJobRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.JobStatus) error {
	query := `UPDATE document_jobs SET status = $1, updated_at = $2 WHERE job_id = $3`
	tag, err := r.pool.Exec(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("postgres: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}

func (r *pgJobRepo) SetResult(ctx context.Context, id uuid.UUID, status domain.JobStatus, result *domain.JobResult, jobErr *domain.JobError) error {
	query := `
		UPDATE document_jobs
		SET status = $1,
		    result_artifact_type = $2, result_artifact_id = $3, result_url = $4,
		    error_code = $5, error_message = $6, error_retryable = $7,
		    updated_at = $8
		WHERE job_id = $9`

	var (
		artifactType, artifactID, resultURL *string
		errCode, errMessage                 *string
		errRetryable                        *bool
	)
	if result != nil {
		artifactType, artifactID = &result.ArtifactType, &result.ArtifactID
		if result.URL != "" {
			resultURL = &result.URL
		}
	}
	if jobErr != nil {
		errCode, errMessage, errRetryable = &jobErr.Code, &jobErr.Message, &jobErr.Retryable
	}

	tag, err := r.pool.Exec(ctx, query,
		status, artifactType, artifactID, resultURL,
		errCode, errMessage, errRetryable,
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("postgres: set result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}
