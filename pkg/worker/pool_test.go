package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/dhvanilabs/sadhana/pkg/eventstream"
)

// recordingPublisher captures published events; block lets a test hold
// workers busy so queue overflow can be exercised.
type recordingPublisher struct {
	mu     sync.Mutex
	events []*eventstream.PracticeEvent
	block  chan struct{}
}

func (p *recordingPublisher) PublishPractice(ctx context.Context, event *eventstream.PracticeEvent) error {
	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() []*eventstream.PracticeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*eventstream.PracticeEvent, len(p.events))
	copy(out, p.events)
	return out
}

func event(session string) *eventstream.PracticeEvent {
	return &eventstream.PracticeEvent{
		SchemaVersion: eventstream.SchemaVersionV1,
		EventType:     eventstream.EventTypeStageEvaluated,
		SessionID:     session,
	}
}

var _ = Describe("Worker Pool", func() {
	It("requires a publisher", func() {
		_, err := NewPool(&Config{})
		Expect(err).To(MatchError(ContainSubstring("publisher")))
	})

	It("publishes enqueued events and drains on Close", func() {
		sink := &recordingPublisher{}
		pool, err := NewPool(&Config{Publisher: sink})
		Expect(err).NotTo(HaveOccurred())

		for i := 0; i < 10; i++ {
			Expect(pool.Enqueue(Job{Event: event(fmt.Sprintf("s%d", i))})).To(BeTrue())
		}
		pool.Close()

		Expect(sink.published()).To(HaveLen(10))
	})

	It("rejects nil events without queuing", func() {
		sink := &recordingPublisher{}
		pool, err := NewPool(&Config{Publisher: sink})
		Expect(err).NotTo(HaveOccurred())
		defer pool.Close()

		Expect(pool.Enqueue(Job{})).To(BeFalse())
	})

	It("drops jobs when the queue is full", func() {
		sink := &recordingPublisher{block: make(chan struct{})}
		pool, err := NewPool(&Config{
			Publisher:      sink,
			NumWorkers:     1,
			QueueSize:      1,
			PublishTimeout: 50 * time.Millisecond,
		})
		Expect(err).NotTo(HaveOccurred())

		// First job occupies the worker, second fills the queue; the rest
		// must be dropped rather than block the caller.
		pool.Enqueue(Job{Event: event("busy")})
		Eventually(func() bool {
			return pool.Enqueue(Job{Event: event("queued")}) == false
		}).Should(BeTrue())

		close(sink.block)
		pool.Close()
	})
})
