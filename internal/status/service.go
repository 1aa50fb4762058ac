// Package status implements the job status notification core: per-job
// sequence numbering, broadcast of lifecycle updates over the broker, and
// a pull-based subscription API for streaming handlers.
package status

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spaarke-dev/spaarke-sub021/internal/broker"
	"github.com/spaarke-dev/spaarke-sub021/internal/domain"
	"github.com/spaarke-dev/spaarke-sub021/internal/metrics"
)

// DefaultHealthTimeout is the latency budget for the broker liveness probe.
const DefaultHealthTimeout = 1000 * time.Millisecond

const subscribeBuffer = 16

// Service publishes sequenced job status updates to the broker and exposes
// live subscriptions per job. Every public operation is broker-exception
// safe: an outage degrades to "notifications silently dropped" rather than
// surfacing errors to the job-execution path.
type Service struct {
	broker        broker.Broker
	healthTimeout time.Duration
	logger        *zap.Logger

	// Per-job monotonic counters. The mutex guards only lazy insertion;
	// increments are atomic so unrelated jobs never serialize each other.
	// Counters live for the lifetime of the Service and are not evicted:
	// a restart resets sequencing for jobs in flight.
	mu       sync.Mutex
	counters map[uuid.UUID]*atomic.Int64
}

// NewService creates a job status service on top of the given broker.
// healthTimeout bounds the liveness probe; zero selects DefaultHealthTimeout.
func NewService(b broker.Broker, healthTimeout time.Duration, logger *zap.Logger) *Service {
	if healthTimeout <= 0 {
		healthTimeout = DefaultHealthTimeout
	}
	return &Service{
		broker:        b,
		healthTimeout: healthTimeout,
		logger:        logger,
		counters:      make(map[uuid.UUID]*atomic.Int64),
	}
}

// ChannelFor returns the broker channel carrying a job's status updates.
func ChannelFor(jobID uuid.UUID) string {
	return fmt.Sprintf("job:%s:status", jobID)
}

func (s *Service) nextSequence(jobID uuid.UUID) int64 {
	s.mu.Lock()
	c, ok := s.counters[jobID]
	if !ok {
		c = &atomic.Int64{}
		s.counters[jobID] = c
	}
	s.mu.Unlock()
	return c.Add(1)
}

// PublishStatusUpdate stamps the next sequence number for the update's job,
// serializes it, and publishes it to the job's channel. Returns true iff the
// broker accepted the publish; subscriber count does not matter. A broker
// outage yields false, never an error — retry policy belongs to the caller.
func (s *Service) PublishStatusUpdate(ctx context.Context, update *domain.StatusUpdate) bool {
	update.Sequence = s.nextSequence(update.JobID)
	if update.Timestamp.IsZero() {
		update.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(update)
	if err != nil {
		// Cannot happen for well-typed updates; surface loudly rather than swallow.
		s.logger.Error("Failed to serialize status update",
			zap.String("job_id", update.JobID.String()),
			zap.Error(err),
		)
		return false
	}

	if _, err := s.broker.Publish(ctx, ChannelFor(update.JobID), payload); err != nil {
		s.logger.Warn("Status update dropped (broker unavailable)",
			zap.String("job_id", update.JobID.String()),
			zap.String("update_type", string(update.UpdateType)),
			zap.Error(err),
		)
		metrics.StatusPublishFailures.Inc()
		return false
	}

	metrics.StatusUpdatesPublished.WithLabelValues(string(update.UpdateType)).Inc()
	return true
}

// UpdateJobStatus publishes a Progress update, or a StageComplete update
// when completedPhase is supplied.
func (s *Service) UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status domain.JobStatus, progress int, currentPhase string, completedPhase *domain.CompletedPhase) bool {
	var update *domain.StatusUpdate
	if completedPhase != nil {
		update = domain.NewStageCompleteUpdate(jobID, status, progress, currentPhase, completedPhase)
	} else {
		update = domain.NewProgressUpdate(jobID, status, progress, currentPhase)
	}
	return s.PublishStatusUpdate(ctx, update)
}

// CompleteJob publishes the canonical terminal-success update: progress 100,
// status Completed, carrying the result artifact descriptor.
func (s *Service) CompleteJob(ctx context.Context, jobID uuid.UUID, result *domain.JobResult) bool {
	return s.PublishStatusUpdate(ctx, domain.NewJobCompletedUpdate(jobID, result))
}

// FailJob publishes the canonical terminal-failure update.
func (s *Service) FailJob(ctx context.Context, jobID uuid.UUID, jobErr *domain.JobError) bool {
	return s.PublishStatusUpdate(ctx, domain.NewJobFailedUpdate(jobID, jobErr))
}

// SubscribeToJob subscribes to a job's channel and returns a live, ordered
// sequence of updates. The channel closes when a terminal update is observed,
// the context is cancelled, or immediately if the broker is unavailable.
// There is no replay: a subscriber that attaches late misses prior updates.
func (s *Service) SubscribeToJob(ctx context.Context, jobID uuid.UUID) <-chan domain.StatusUpdate {
	out := make(chan domain.StatusUpdate, subscribeBuffer)

	raw, stop, err := s.broker.Subscribe(ctx, ChannelFor(jobID))
	if err != nil {
		s.logger.Warn("Status subscription unavailable",
			zap.String("job_id", jobID.String()),
			zap.Error(err),
		)
		close(out)
		return out
	}

	metrics.StreamSubscribersActive.Inc()

	go func() {
		defer close(out)
		defer stop()
		defer metrics.StreamSubscribersActive.Dec()

		for {
			select {
			case <-ctx.Done():
				return
			case payload, ok := <-raw:
				if !ok {
					return
				}

				var update domain.StatusUpdate
				if err := json.Unmarshal(payload, &update); err != nil {
					s.logger.Warn("Discarding malformed status payload",
						zap.String("job_id", jobID.String()),
						zap.Error(err),
					)
					continue
				}

				select {
				case out <- update:
				case <-ctx.Done():
					return
				}

				if update.UpdateType.IsTerminal() {
					return
				}
			}
		}
	}()

	return out
}

// IsHealthy probes the broker and reports true iff the round trip completes
// within the health latency budget. Any error yields false.
func (s *Service) IsHealthy(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, s.healthTimeout)
	defer cancel()

	latency, err := s.broker.Ping(probeCtx)
	if err != nil {
		return false
	}
	return latency <= s.healthTimeout
}
