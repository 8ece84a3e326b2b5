package eventbus

import (
	"context"
	"encoding/json"
	"time"
)

// Topic names a base topic and its dead-letter companion.
type Topic struct {
	base string
}

func NewTopic(base string) Topic {
	return Topic{base: base}
}

func (t Topic) Base() string {
	return t.base
}

// DLQ returns the dead-letter topic, e.g. my_topic.dlq.
func (t Topic) DLQ() string {
	return t.base + ".dlq"
}

// Event is the Kafka message envelope.
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
	LastError  string          `json:"last_error,omitempty"`
}

// Publisher publishes events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, topic string, event Event) error
	Close()
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, Event) error { return nil }
func (NopPublisher) Close()                                       {}
