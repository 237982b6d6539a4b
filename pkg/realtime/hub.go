// Package realtime fans out change notifications to connected staff clients.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/noah-isme/academy-api/pkg/cache"
)

// Event is a single change notification on a topic.
type Event struct {
	Topic string          `json:"topic"`
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data,omitempty"`
	At    time.Time       `json:"at"`
}

// Subscription is a live feed for one topic. Close releases it; Events is closed afterwards.
type Subscription interface {
	Events() <-chan Event
	Close() error
}

// Hub publishes and subscribes to topic events.
type Hub interface {
	Publish(ctx context.Context, topic, eventType string, payload interface{}) error
	Subscribe(ctx context.Context, topic string) (Subscription, error)
}

// Topic builders.
func VolunteersTopic(academyID string) string {
	return cache.AcademyKey(academyID, "volunteers")
}

func newEvent(topic, eventType string, payload interface{}) (Event, error) {
	evt := Event{Topic: topic, Type: eventType, At: time.Now().UTC()}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return Event{}, fmt.Errorf("marshal event payload: %w", err)
		}
		evt.Data = raw
	}
	return evt, nil
}
