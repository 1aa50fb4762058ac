package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StatusUpdatesPublished counts published job status updates by update type.
	StatusUpdatesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spaarke_status_updates_published_total",
			Help: "Total number of job status updates published to the broker",
		},
		[]string{"update_type"},
	)

	// StatusPublishFailures counts status updates dropped because the broker was unavailable.
	StatusPublishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "spaarke_status_publish_failures_total",
			Help: "Total number of status updates dropped due to broker unavailability",
		},
	)

	// StreamSubscribersActive tracks currently connected status stream subscribers.
	StreamSubscribersActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "spaarke_stream_subscribers_active",
			Help: "Number of currently active job status subscriptions",
		},
	)

	// StreamFramesWritten counts server-push frames written by event type.
	StreamFramesWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spaarke_stream_frames_total",
			Help: "Total number of server-push stream frames written",
		},
		[]string{"event"},
	)

	// JobsProcessed counts processed document jobs by operation and outcome.
	JobsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spaarke_jobs_processed_total",
			Help: "Total number of document-processing jobs handled by the worker",
		},
		[]string{"operation", "status"},
	)

	// ProcessingDuration tracks document-processing duration in seconds.
	ProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spaarke_processing_duration_seconds",
			Help:    "Duration of document-processing jobs in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~200s
		},
		[]string{"operation"},
	)

	// WorkersActive tracks the number of currently busy worker goroutines.
	WorkersActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "spaarke_workers_active",
			Help: "Number of currently active worker goroutines",
		},
	)
)
