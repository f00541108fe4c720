package nop

import (
	"context"

	"github.com/dhvanilabs/sadhana/pkg/eventstream"
)

// Publisher is a no-op eventstream publisher used for tests and disabled mode.
type Publisher struct{}

// NewPublisher creates a new no-op eventstream publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishPractice validates input and otherwise does nothing.
func (p *Publisher) PublishPractice(_ context.Context, event *eventstream.PracticeEvent) error {
	if event == nil {
		return eventstream.ErrNilPracticeEvent
	}

	return nil
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}
