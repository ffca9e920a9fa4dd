package event

import (
	"time"

	"github.com/dshills/mcmark/internal/event/topic"
)

// Event is a published notification.
type Event struct {
	Topic     topic.Topic
	Payload   any
	Source    string
	Timestamp time.Time
}

// NewEvent creates an event stamped with the current time.
func NewEvent(t topic.Topic, payload any, source string) Event {
	return Event{
		Topic:     t,
		Payload:   payload,
		Source:    source,
		Timestamp: time.Now(),
	}
}
