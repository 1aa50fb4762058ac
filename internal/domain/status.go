package domain

import (
	"time"

	"github.com/google/uuid"
)

// UpdateType identifies the kind of a status notification.
type UpdateType string

const (
	UpdateProgress      UpdateType = "Progress"
	UpdateStageStarted  UpdateType = "StageStarted"
	UpdateStageComplete UpdateType = "StageComplete"
	UpdateJobCompleted  UpdateType = "JobCompleted"
	UpdateJobFailed     UpdateType = "JobFailed"
	UpdateJobCancelled  UpdateType = "JobCancelled"
)

// IsTerminal returns true if the update ends the job's event stream.
func (t UpdateType) IsTerminal() bool {
	switch t {
	case UpdateJobCompleted, UpdateJobFailed, UpdateJobCancelled:
		return true
	}
	return false
}

// JobStatus represents the overall state of a job as of an update.
type JobStatus string

const (
	StatusPending   JobStatus = "Pending"
	StatusRunning   JobStatus = "Running"
	StatusCompleted JobStatus = "Completed"
	StatusFailed    JobStatus = "Failed"
	StatusCancelled JobStatus = "Cancelled"
)

// CompletedPhase describes a just-finished processing stage.
type CompletedPhase struct {
	Name        string    `json:"name"`
	CompletedAt time.Time `json:"completedAt"`
	DurationMs  int64     `json:"durationMs"`
}

// JobResult describes the artifact produced by a completed job.
type JobResult struct {
	ArtifactType string `json:"artifactType"`
	ArtifactID   string `json:"artifactId"`
	URL          string `json:"url,omitempty"`
}

// JobError describes why a job failed.
type JobError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// StatusUpdate is a single point-in-time status notification for a job.
// Values are immutable once constructed; Sequence is assigned by the
// status service, never by the caller. Each update kind carries only the
// fields relevant to it — use the New*Update constructors rather than
// building the struct by hand.
type StatusUpdate struct {
	JobID          uuid.UUID       `json:"jobId"`
	UpdateType     UpdateType      `json:"updateType"`
	Status         JobStatus       `json:"status"`
	Progress       int             `json:"progress"`
	CurrentPhase   string          `json:"currentPhase,omitempty"`
	CompletedPhase *CompletedPhase `json:"completedPhase,omitempty"`
	Sequence       int64           `json:"sequence"`
	Timestamp      time.Time       `json:"timestamp"`
	Result         *JobResult      `json:"result,omitempty"`
	Error          *JobError       `json:"error,omitempty"`
}

// NewProgressUpdate reports incremental progress within the current phase.
func NewProgressUpdate(jobID uuid.UUID, status JobStatus, progress int, currentPhase string) *StatusUpdate {
	return &StatusUpdate{
		JobID:        jobID,
		UpdateType:   UpdateProgress,
		Status:       status,
		Progress:     progress,
		CurrentPhase: currentPhase,
	}
}

// NewStageStartedUpdate marks the beginning of a named processing stage.
func NewStageStartedUpdate(jobID uuid.UUID, progress int, phase string) *StatusUpdate {
	return &StatusUpdate{
		JobID:        jobID,
		UpdateType:   UpdateStageStarted,
		Status:       StatusRunning,
		Progress:     progress,
		CurrentPhase: phase,
	}
}

// NewStageCompleteUpdate marks the end of a processing stage.
func NewStageCompleteUpdate(jobID uuid.UUID, status JobStatus, progress int, currentPhase string, completed *CompletedPhase) *StatusUpdate {
	return &StatusUpdate{
		JobID:          jobID,
		UpdateType:     UpdateStageComplete,
		Status:         status,
		Progress:       progress,
		CurrentPhase:   currentPhase,
		CompletedPhase: completed,
	}
}

// NewJobCompletedUpdate is the canonical terminal-success signal.
// Progress is forced to 100 and status to Completed regardless of
// where the job's reporting left off.
func NewJobCompletedUpdate(jobID uuid.UUID, result *JobResult) *StatusUpdate {
	return &StatusUpdate{
		JobID:      jobID,
		UpdateType: UpdateJobCompleted,
		Status:     StatusCompleted,
		Progress:   100,
		Result:     result,
	}
}

// NewJobFailedUpdate is the canonical terminal-failure signal.
func NewJobFailedUpdate(jobID uuid.UUID, jobErr *JobError) *StatusUpdate {
	return &StatusUpdate{
		JobID:      jobID,
		UpdateType: UpdateJobFailed,
		Status:     StatusFailed,
		Error:      jobErr,
	}
}

// NewJobCancelledUpdate signals that the job was cancelled before completion.
func NewJobCancelledUpdate(jobID uuid.UUID) *StatusUpdate {
	return &StatusUpdate{
		JobID:      jobID,
		UpdateType: UpdateJobCancelled,
		Status:     StatusCancelled,
	}
}
