package mock

import (
	"context"

	"github.com/spaarke-dev/spaarke-sub021/internal/domain"
	"github.com/spaarke-dev/spaarke-sub021/internal/publisher"
)

// Ensure Publisher implements publisher.Publisher.
var _ publisher.Publisher = (*Publisher)(nil)

// Publisher is a mock work-queue publisher for testing.
type Publisher struct {
	Published []*domain.DocumentJob
	PublishFn func(ctx context.Context, job *domain.DocumentJob) error
}

// NewPublisher creates a new mock publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

func (m *Publisher) Publish(ctx context.Context, job *domain.DocumentJob) error {
	if m.PublishFn != nil {
		return m.PublishFn(ctx, job)
	}
	m.Published = append(m.Published, job)
	return nil
}

func (m *Publisher) Close() error {
	return nil
}
