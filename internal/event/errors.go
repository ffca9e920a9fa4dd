package event

import (
	"errors"
	"fmt"
)

// Sentinel errors for the event bus.
var (
	ErrInvalidTopic         = errors.New("invalid topic")
	ErrNilHandler           = errors.New("handler cannot be nil")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrHandlerPanic         = errors.New("handler panicked")
)

// HandlerError wraps an error from a handler with the subscription it came from.
type HandlerError struct {
	SubscriptionID string
	Topic          string
	Err            error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler %s for %s: %v", e.SubscriptionID, e.Topic, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}
