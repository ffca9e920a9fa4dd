package event

import (
	"context"
	"sync/atomic"

	"github.com/dshills/mcmark/internal/event/topic"
)

// Handler handles events.
type Handler interface {
	Handle(ctx context.Context, e Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, e Event) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, e Event) error {
	return f(ctx, e)
}

// Subscription is a registered handler.
type Subscription struct {
	id        string
	pattern   topic.Topic
	handler   Handler
	config    subscriptionConfig
	seq       uint64
	cancelled atomic.Bool
}

// ID returns the unique subscription identifier.
func (s *Subscription) ID() string {
	return s.id
}

// Topic returns the subscribed topic pattern.
func (s *Subscription) Topic() topic.Topic {
	return s.pattern
}

// IsActive returns true until the subscription is cancelled.
func (s *Subscription) IsActive() bool {
	return !s.cancelled.Load()
}

// Cancel stops delivery to this subscription.
func (s *Subscription) Cancel() {
	s.cancelled.Store(true)
}

func (s *Subscription) accepts(e Event) bool {
	if !s.IsActive() || !e.Topic.Matches(s.pattern) {
		return false
	}
	return s.config.filter == nil || s.config.filter(e)
}
