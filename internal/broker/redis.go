package broker

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spaarke-dev/spaarke-sub021/internal/domain"
)

var _ Broker = (*redisBroker)(nil)

const subscribeBuffer = 16

type redisBroker struct {
	client *goredis.Client
	logger *zap.Logger
}

// NewRedisBroker creates a Redis-backed pub/sub broker. A nil client is
// valid and represents "no broker configured" (e.g. local/dev mode): every
// operation then deterministically reports unavailability, so callers have
// a single code path regardless of deployment topology.
func NewRedisBroker(client *goredis.Client, logger *zap.Logger) Broker {
	return &redisBroker{client: client, logger: logger}
}

func (b *redisBroker) Publish(ctx context.Context, channel string, payload []byte) (int64, error) {
	if b.client == nil {
		return 0, domain.ErrBrokerUnavailable
	}
	n, err := b.client.Publish(ctx, channel, payload).Result()
	if err != nil {
		return 0, fmt.Errorf("redis: publish to %s: %w", channel, err)
	}
	return n, nil
}

func (b *redisBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error) {
	if b.client == nil {
		return nil, nil, domain.ErrBrokerUnavailable
	}

	sub := b.client.Subscribe(ctx, channel)

	// Confirm the subscription is established before handing out the stream,
	// so a publish issued after Subscribe returns is guaranteed to be seen.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("redis: subscribe to %s: %w", channel, err)
	}

	out := make(chan []byte, subscribeBuffer)
	msgs := sub.Channel()

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- []byte(m.Payload):
				case <-ctx.Done():
					_ = sub.Close()
					return
				}
			}
		}
	}()

	stop := func() { _ = sub.Close() }
	return out, stop, nil
}

func (b *redisBroker) Ping(ctx context.Context) (time.Duration, error) {
	if b.client == nil {
		return 0, domain.ErrBrokerUnavailable
	}
	start := time.Now()
	if err := b.client.Ping(ctx).Err(); err != nil {
		return 0, fmt.Errorf("redis: ping: %w", err)
	}
	return time.Since(start), nil
}
