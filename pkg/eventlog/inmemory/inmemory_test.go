package inmemory_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/dhvanilabs/sadhana/pkg/eventlog"
	"github.com/dhvanilabs/sadhana/pkg/eventlog/inmemory"
)

var _ = Describe("Store", func() {
	var (
		store *inmemory.Store
		ctx   context.Context
	)

	BeforeEach(func() {
		store = inmemory.New()
		ctx = context.Background()
	})

	event := func(session, key string) eventlog.Event {
		return eventlog.Event{
			SessionID:      session,
			IdempotencyKey: key,
			Type:           eventlog.TypeQueueState,
			Payload:        json.RawMessage(`{"queued":true}`),
		}
	}

	It("assigns strictly increasing sequence numbers per session", func() {
		first, err := store.Append(ctx, event("s1", "k1"))
		Expect(err).NotTo(HaveOccurred())
		second, err := store.Append(ctx, event("s1", "k2"))
		Expect(err).NotTo(HaveOccurred())
		other, err := store.Append(ctx, event("s2", "k1"))
		Expect(err).NotTo(HaveOccurred())

		Expect(first.Event.Seq).To(Equal(int64(1)))
		Expect(second.Event.Seq).To(Equal(int64(2)))
		Expect(other.Event.Seq).To(Equal(int64(1)))
	})

	It("absorbs duplicate idempotency keys and returns the original", func() {
		first, err := store.Append(ctx, event("s1", "k1"))
		Expect(err).NotTo(HaveOccurred())

		replay := event("s1", "k1")
		replay.Payload = json.RawMessage(`{"queued":false}`)
		second, err := store.Append(ctx, replay)
		Expect(err).NotTo(HaveOccurred())

		Expect(second.Duplicate).To(BeTrue())
		Expect(second.Event).To(Equal(first.Event))

		events, err := store.Read(ctx, "s1")
		Expect(err).NotTo(HaveOccurred())
		Expect(events).To(HaveLen(1))
	})

	It("reads events back in sequence order", func() {
		for i := 1; i <= 5; i++ {
			_, err := store.Append(ctx, event("s1", fmt.Sprintf("k%d", i)))
			Expect(err).NotTo(HaveOccurred())
		}

		events, err := store.Read(ctx, "s1")
		Expect(err).NotTo(HaveOccurred())
		Expect(events).To(HaveLen(5))
		for i, stored := range events {
			Expect(stored.Seq).To(Equal(int64(i + 1)))
		}
	})

	It("reads an unknown session as empty", func() {
		events, err := store.Read(ctx, "nowhere")
		Expect(err).NotTo(HaveOccurred())
		Expect(events).To(BeEmpty())
	})

	It("rejects invalid events", func() {
		_, err := store.Append(ctx, eventlog.Event{SessionID: "s1"})
		Expect(err).To(BeAssignableToTypeOf(eventlog.InvalidEventError{}))
	})

	It("lists sessions with at least one event", func() {
		_, err := store.Append(ctx, event("s2", "k1"))
		Expect(err).NotTo(HaveOccurred())
		_, err = store.Append(ctx, event("s1", "k1"))
		Expect(err).NotTo(HaveOccurred())

		Expect(store.Sessions(ctx)).To(Equal([]string{"s1", "s2"}))
	})

	It("keeps sequences dense under concurrent appends to one session", func() {
		const appends = 50
		var wg sync.WaitGroup
		wg.Add(appends)
		for i := 0; i < appends; i++ {
			go func(i int) {
				defer wg.Done()
				defer GinkgoRecover()
				_, err := store.Append(ctx, event("s1", fmt.Sprintf("k%d", i)))
				Expect(err).NotTo(HaveOccurred())
			}(i)
		}
		wg.Wait()

		events, err := store.Read(ctx, "s1")
		Expect(err).NotTo(HaveOccurred())
		Expect(events).To(HaveLen(appends))
		seen := map[int64]bool{}
		for _, stored := range events {
			seen[stored.Seq] = true
		}
		for seq := int64(1); seq <= appends; seq++ {
			Expect(seen[seq]).To(BeTrue())
		}
	})
})
