package domain

import (
	"time"

	"github.com/google/uuid"
)

// Operation represents a supported document-processing operation.
type Operation string

const (
	OpSummarize Operation = "summarize"
	OpExtract   Operation = "extract"
	OpRedact    Operation = "redact"
)

// IsValid checks if the operation is supported.
func (o Operation) IsValid() bool {
	return o == OpSummarize || o == OpExtract || o == OpRedact
}

// DocumentJob represents a document-processing job throughout its lifecycle.
type DocumentJob struct {
	JobID      uuid.UUID  `json:"jobId"`
	DocumentID string     `json:"documentId"`
	Operation  Operation  `json:"operation"`
	SourceURL  string     `json:"sourceUrl"`
	Status     JobStatus  `json:"status"`
	Result     *JobResult `json:"result,omitempty"`
	Error      *JobError  `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// JobMessage wraps a queued job with delivery acknowledgement callbacks.
type JobMessage struct {
	Job  *DocumentJob
	Ack  func() error
	Nack func(requeue bool) error
}

// SubmitRequest represents an incoming processing request from the API.
type SubmitRequest struct {
	DocumentID string    `json:"documentId" binding:"required"`
	Operation  Operation `json:"operation" binding:"required"`
	SourceURL  string    `json:"sourceUrl" binding:"required"`
}

// SubmitResponse is returned after a successful submission.
type SubmitResponse struct {
	JobID  uuid.UUID `json:"jobId"`
	Status JobStatus `json:"status"`
}

// OperationInfo describes a supported operation.
type OperationInfo struct {
	Name        Operation `json:"name"`
	Description string    `json:"description"`
}
