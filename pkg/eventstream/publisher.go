package eventstream

import "context"

// Publisher publishes practice events to an event stream backend.
type Publisher interface {
	PublishPractice(ctx context.Context, event *PracticeEvent) error
	Close() error
}
