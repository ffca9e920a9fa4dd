package event

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/mcmark/internal/event/topic"
)

// Stats holds bus counters.
type Stats struct {
	Subscriptions   int
	EventsPublished uint64
	EventsDelivered uint64
	HandlerErrors   uint64
	HandlerPanics   uint64
}

// Bus is a synchronous publish/subscribe bus.
type Bus struct {
	mu   sync.RWMutex
	subs []*Subscription
	seq  uint64

	panicHandler PanicHandler

	eventsPublished atomic.Uint64
	eventsDelivered atomic.Uint64
	handlerErrors   atomic.Uint64
	handlerPanics   atomic.Uint64
}

// NewBus creates a new event bus.
func NewBus(opts ...BusOption) *Bus {
	b := &Bus{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers handler for events whose topic matches pattern.
func (b *Bus) Subscribe(pattern topic.Topic, handler Handler, opts ...SubscriptionOption) (*Subscription, error) {
	if !pattern.IsValid() {
		return nil, ErrInvalidTopic
	}
	if handler == nil {
		return nil, ErrNilHandler
	}

	cfg := defaultSubscriptionConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	sub := &Subscription{
		id:      uuid.NewString(),
		pattern: pattern,
		handler: handler,
		config:  cfg,
		seq:     b.seq,
	}
	b.subs = append(b.subs, sub)
	slices.SortStableFunc(b.subs, func(a, c *Subscription) int {
		if a.config.priority != c.config.priority {
			return int(c.config.priority) - int(a.config.priority)
		}
		return int(a.seq) - int(c.seq)
	})
	return sub, nil
}

// SubscribeFunc registers a function handler.
func (b *Bus) SubscribeFunc(pattern topic.Topic, fn HandlerFunc, opts ...SubscriptionOption) (*Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return b.Subscribe(pattern, fn, opts...)
}

// Unsubscribe removes a subscription.
func (b *Bus) Unsubscribe(sub *Subscription) error {
	if sub == nil {
		return ErrSubscriptionNotFound
	}
	sub.Cancel()

	b.mu.Lock()
	defer b.mu.Unlock()

	idx := slices.Index(b.subs, sub)
	if idx < 0 {
		return ErrSubscriptionNotFound
	}
	b.subs = slices.Delete(b.subs, idx, idx+1)
	return nil
}

// Publish delivers e to every matching subscription in priority order.
// Handler errors are joined and returned after all handlers ran.
func (b *Bus) Publish(ctx context.Context, e Event) error {
	if !e.Topic.IsValid() || e.Topic.IsWildcard() {
		return ErrInvalidTopic
	}

	b.mu.RLock()
	subs := slices.Clone(b.subs)
	b.mu.RUnlock()

	b.eventsPublished.Add(1)

	var errs []error
	for _, sub := range subs {
		if !sub.accepts(e) {
			continue
		}
		if err := b.deliver(ctx, e, sub); err != nil {
			b.handlerErrors.Add(1)
			errs = append(errs, &HandlerError{
				SubscriptionID: sub.id,
				Topic:          e.Topic.String(),
				Err:            err,
			})
			continue
		}
		b.eventsDelivered.Add(1)
		if sub.config.once {
			_ = b.Unsubscribe(sub)
		}
	}
	return errors.Join(errs...)
}

func (b *Bus) deliver(ctx context.Context, e Event, sub *Subscription) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.handlerPanics.Add(1)
			if b.panicHandler != nil {
				b.panicHandler(e, sub, r)
			}
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return sub.handler.Handle(ctx, e)
}

// Stats returns a snapshot of the bus counters.
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	n := len(b.subs)
	b.mu.RUnlock()

	return Stats{
		Subscriptions:   n,
		EventsPublished: b.eventsPublished.Load(),
		EventsDelivered: b.eventsDelivered.Load(),
		HandlerErrors:   b.handlerErrors.Load(),
		HandlerPanics:   b.handlerPanics.Load(),
	}
}
