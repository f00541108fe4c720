package kafka

import (
	"context"
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/dhvanilabs/sadhana/pkg/eventstream"
)

type capturingWriter struct {
	messages []kafkago.Message
	err      error
	closed   bool
}

func (w *capturingWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *capturingWriter) Close() error {
	w.closed = true
	return nil
}

var _ = Describe("Publisher", func() {
	Describe("NewPublisher", func() {
		It("requires brokers and a topic", func() {
			_, err := NewPublisher(Config{Topic: "practice"})
			Expect(err).To(MatchError(ContainSubstring("broker")))

			_, err = NewPublisher(Config{Brokers: []string{"localhost:9092"}})
			Expect(err).To(MatchError(ContainSubstring("topic")))
		})

		It("builds a writer for valid config", func() {
			publisher, err := NewPublisher(Config{Brokers: []string{"localhost:9092"}, Topic: "practice"})
			Expect(err).NotTo(HaveOccurred())
			Expect(publisher.Close()).To(Succeed())
		})
	})

	Describe("PublishPractice", func() {
		var (
			sink      *capturingWriter
			publisher *Publisher
		)

		BeforeEach(func() {
			sink = &capturingWriter{}
			publisher = &Publisher{writer: sink}
		})

		It("keys the message by session id and carries type headers", func() {
			event := &eventstream.PracticeEvent{
				SchemaVersion: eventstream.SchemaVersionV1,
				EventType:     eventstream.EventTypeStageEvaluated,
				EventID:       "evt_1",
				SessionID:     "session-9",
				Payload:       json.RawMessage(`{"stage":"guided"}`),
			}

			Expect(publisher.PublishPractice(context.Background(), event)).To(Succeed())
			Expect(sink.messages).To(HaveLen(1))

			msg := sink.messages[0]
			Expect(string(msg.Key)).To(Equal("session-9"))

			var decoded eventstream.PracticeEvent
			Expect(json.Unmarshal(msg.Value, &decoded)).To(Succeed())
			Expect(decoded.EventType).To(Equal(eventstream.EventTypeStageEvaluated))
			Expect(decoded.SessionID).To(Equal("session-9"))

			headers := map[string]string{}
			for _, h := range msg.Headers {
				headers[h.Key] = string(h.Value)
			}
			Expect(headers).To(HaveKeyWithValue("event_type", eventstream.EventTypeStageEvaluated))
			Expect(headers).To(HaveKeyWithValue("event_id", "evt_1"))
		})

		It("rejects a nil event", func() {
			Expect(publisher.PublishPractice(context.Background(), nil)).To(MatchError(eventstream.ErrNilPracticeEvent))
			Expect(sink.messages).To(BeEmpty())
		})

		It("surfaces writer failures", func() {
			sink.err = errors.New("broker unreachable")
			err := publisher.PublishPractice(context.Background(), &eventstream.PracticeEvent{SessionID: "s"})
			Expect(err).To(MatchError(ContainSubstring("broker unreachable")))
		})

		It("closes the underlying writer", func() {
			Expect(publisher.Close()).To(Succeed())
			Expect(sink.closed).To(BeTrue())
		})
	})
})
