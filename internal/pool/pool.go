// Package pool runs a fixed-size set of worker goroutines that drain the
// job channel and drive each job through the processing pipeline.
package pool

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spaarke-dev/spaarke-sub021/internal/domain"
	"github.com/spaarke-dev/spaarke-sub021/internal/metrics"
	"github.com/spaarke-dev/spaarke-sub021/internal/pipeline"
)

// WorkerPool manages a fixed-size pool of goroutines that process jobs.
type WorkerPool struct {
	size      int
	jobs      <-chan *domain.JobMessage
	processor *pipeline.Processor
	logger    *zap.Logger
	wg        sync.WaitGroup
}

// NewWorkerPool creates a new fixed-size worker pool.
func NewWorkerPool(size int, jobs <-chan *domain.JobMessage, processor *pipeline.Processor, logger *zap.Logger) *WorkerPool {
	return &WorkerPool{
		size:      size,
		jobs:      jobs,
		processor: processor,
		logger:    logger,
	}
}

// Start launches all worker goroutines. Call Stop to wait for them to finish.
func (p *WorkerPool) Start(ctx context.Context) {
	p.logger.Info("Starting worker pool", zap.Int("pool_size", p.size))

	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Stop waits for all workers to finish their current jobs and exit.
func (p *WorkerPool) Stop() {
	p.wg.Wait()
	p.logger.Info("Worker pool stopped")
}

func (p *WorkerPool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Worker panic recovered",
				zap.Int("worker_id", id),
				zap.Any("panic", r),
			)
		}
	}()

	p.logger.Debug("Worker started", zap.Int("worker_id", id))

	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("Worker shutting down", zap.Int("worker_id", id))
			return
		case msg, ok := <-p.jobs:
			if !ok {
				p.logger.Debug("Job channel closed", zap.Int("worker_id", id))
				return
			}

			job := msg.Job

			p.logger.Info("Worker processing job",
				zap.Int("worker_id", id),
				zap.String("job_id", job.JobID.String()),
				zap.String("operation", string(job.Operation)),
			)

			metrics.WorkersActive.Inc()
			startTime := time.Now()

			isDuplicate, err := p.processor.Process(ctx, job)
			elapsed := time.Since(startTime).Seconds()

			metrics.WorkersActive.Dec()

			if err != nil {
				p.logger.Error("Job processing failed",
					zap.Int("worker_id", id),
					zap.String("job_id", job.JobID.String()),
					zap.Error(err),
				)

				// Nack without requeue — failed jobs go to the DLQ.
				// Requeuing a deterministic failure would loop forever.
				if nackErr := msg.Nack(false); nackErr != nil {
					p.logger.Error("Failed to NACK message",
						zap.String("job_id", job.JobID.String()),
						zap.Error(nackErr),
					)
				}

				metrics.JobsProcessed.WithLabelValues(string(job.Operation), "error").Inc()
				metrics.ProcessingDuration.WithLabelValues(string(job.Operation)).Observe(elapsed)
				continue
			}

			if isDuplicate {
				p.logger.Debug("Duplicate job skipped",
					zap.Int("worker_id", id),
					zap.String("job_id", job.JobID.String()),
				)
				// Duplicate → still ACK so the message leaves the queue.
				if ackErr := msg.Ack(); ackErr != nil {
					p.logger.Error("Failed to ACK duplicate message",
						zap.String("job_id", job.JobID.String()),
						zap.Error(ackErr),
					)
				}
				metrics.JobsProcessed.WithLabelValues(string(job.Operation), "duplicate").Inc()
				continue
			}

			if ackErr := msg.Ack(); ackErr != nil {
				p.logger.Error("Failed to ACK message after processing",
					zap.String("job_id", job.JobID.String()),
					zap.Error(ackErr),
				)
			}

			metrics.JobsProcessed.WithLabelValues(string(job.Operation), "success").Inc()
			metrics.ProcessingDuration.WithLabelValues(string(job.Operation)).Observe(elapsed)
		}
	}
}
