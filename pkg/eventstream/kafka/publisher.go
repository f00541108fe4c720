// Package kafka provides the Kafka-backed eventstream publisher. Events are
// keyed by session id so one session's events land on one partition in
// order.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/dhvanilabs/sadhana/pkg/eventstream"
)

// writer is the subset of kafka-go's Writer the publisher uses, extracted so
// tests can capture messages without a broker.
type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher publishes practice events to a Kafka topic.
type Publisher struct {
	writer writer
}

// Config holds the Kafka connection settings.
type Config struct {
	Brokers []string
	Topic   string

	// BatchTimeout bounds how long the writer buffers before flushing.
	BatchTimeout time.Duration
}

// NewPublisher creates a Kafka publisher for the configured brokers and topic.
func NewPublisher(cfg Config) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one kafka broker is required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}

	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = 100 * time.Millisecond
	}

	return &Publisher{
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafkago.Hash{},
			BatchTimeout: batchTimeout,
			RequiredAcks: kafkago.RequireOne,
		},
	}, nil
}

// PublishPractice encodes the event as JSON and writes it keyed by session id.
func (p *Publisher) PublishPractice(ctx context.Context, event *eventstream.PracticeEvent) error {
	if event == nil {
		return eventstream.ErrNilPracticeEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding practice event: %w", err)
	}

	msg := kafkago.Message{
		Key:   []byte(event.SessionID),
		Value: payload,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "event_id", Value: []byte(event.EventID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing practice event: %w", err)
	}
	return nil
}

// Close flushes buffered messages and releases the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
