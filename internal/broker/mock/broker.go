package mock

import (
	"context"
	"sync"
	"time"

	"github.com/spaarke-dev/spaarke-sub021/internal/broker"
)

// Ensure Broker implements broker.Broker.
var _ broker.Broker = (*Broker)(nil)

// Publication records one published payload (for test assertions).
type Publication struct {
	Channel string
	Payload []byte
}

// Broker is an in-memory pub/sub broker for testing. It records every
// publish and fans payloads out to live subscribers.
type Broker struct {
	mu        sync.Mutex
	Published []Publication
	subs      map[string][]chan []byte

	// Hook functions for injecting behavior
	PublishFn   func(ctx context.Context, channel string, payload []byte) (int64, error)
	SubscribeFn func(ctx context.Context, channel string) (<-chan []byte, func(), error)
	PingFn      func(ctx context.Context) (time.Duration, error)
}

// NewBroker creates a new in-memory mock broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[string][]chan []byte)}
}

func (b *Broker) Publish(ctx context.Context, channel string, payload []byte) (int64, error) {
	if b.PublishFn != nil {
		return b.PublishFn(ctx, channel, payload)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Published = append(b.Published, Publication{Channel: channel, Payload: payload})
	var delivered int64
	for _, ch := range b.subs[channel] {
		select {
		case ch <- payload:
			delivered++
		default:
		}
	}
	return delivered, nil
}

func (b *Broker) Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error) {
	if b.SubscribeFn != nil {
		return b.SubscribeFn(ctx, channel)
	}
	ch := make(chan []byte, 64)
	b.mu.Lock()
	b.subs[channel] = append(b.subs[channel], ch)
	b.mu.Unlock()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			live := b.subs[channel][:0]
			for _, c := range b.subs[channel] {
				if c != ch {
					live = append(live, c)
				}
			}
			b.subs[channel] = live
			close(ch)
		})
	}
	return ch, stop, nil
}

func (b *Broker) Ping(ctx context.Context) (time.Duration, error) {
	if b.PingFn != nil {
		return b.PingFn(ctx)
	}
	return time.Millisecond, nil
}

// SubscriberCount returns the number of live subscribers on a channel
// (for test synchronization).
func (b *Broker) SubscriberCount(channel string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[channel])
}

// PublishedOn returns all payloads published to a channel.
func (b *Broker) PublishedOn(channel string) [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out [][]byte
	for _, p := range b.Published {
		if p.Channel == channel {
			out = append(out, p.Payload)
		}
	}
	return out
}
