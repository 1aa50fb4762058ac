package broker

import (
	"context"
	"time"
)

// Broker is the publish/subscribe transport used for job status fan-out.
// It is the only abstraction in the system aware of the concrete pub/sub
// mechanism. Implementations must be safe for concurrent use and must
// tolerate being constructed without a configured backend, in which case
// every operation reports domain.ErrBrokerUnavailable instead of panicking.
type Broker interface {
	// Publish sends payload to the named channel and returns the number of
	// subscribers that received it. Zero subscribers is not an error.
	Publish(ctx context.Context, channel string, payload []byte) (int64, error)

	// Subscribe opens a live stream of raw payloads for the named channel.
	// The returned stop function releases the subscription; the channel is
	// closed when the subscription ends via any path.
	Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error)

	// Ping issues a liveness probe and returns the round-trip latency.
	Ping(ctx context.Context) (time.Duration, error)
}
