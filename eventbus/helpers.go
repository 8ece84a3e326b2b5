package eventbus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewJSONEvent JSON-encodes payload into an Event of the given type.
func NewJSONEvent(eventType string, payload any) (Event, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("eventbus: marshal payload: %w", err)
	}
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    b,
	}, nil
}

// DecodeJSON unmarshals evt.Payload into T.
func DecodeJSON[T any](evt Event) (T, error) {
	var out T
	if err := json.Unmarshal(evt.Payload, &out); err != nil {
		var zero T
		return zero, fmt.Errorf("eventbus: unmarshal payload: %w", err)
	}
	return out, nil
}
