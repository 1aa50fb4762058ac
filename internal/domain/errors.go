package domain

import "errors"

var (
	// ErrJobNotFound is returned when a job cannot be found by ID.
	ErrJobNotFound = errors.New("job not found")

	// ErrInvalidOperation is returned when an unsupported operation is requested.
	ErrInvalidOperation = errors.New("invalid or unsupported operation")

	// ErrEmptyDocument is returned when the document reference is empty.
	ErrEmptyDocument = errors.New("document id cannot be empty")

	// ErrSourceURLTooLong is returned when the source URL exceeds the size limit.
	ErrSourceURLTooLong = errors.New("source url exceeds maximum length")

	// ErrRateLimitExceeded is returned when API rate limit is hit.
	ErrRateLimitExceeded = errors.New("rate limit exceeded, try again later")

	// ErrPublishFailed is returned when the work-queue publish fails.
	ErrPublishFailed = errors.New("failed to publish job to work queue")

	// ErrBrokerUnavailable is returned by the broker adapter when no broker
	// is configured or the connection is down. Callers treat it as a soft
	// failure: notification loss never fails the job itself.
	ErrBrokerUnavailable = errors.New("status broker unavailable")

	// ErrStreamingUnsupported is returned when the response writer cannot
	// be flushed incrementally.
	ErrStreamingUnsupported = errors.New("response writer does not support streaming")
)
