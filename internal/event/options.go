package event

// Priority orders handlers for the same event. Higher runs first.
type Priority int

// Standard priorities.
const (
	PriorityLow      Priority = 25
	PriorityNormal   Priority = 50
	PriorityHigh     Priority = 75
	PriorityCritical Priority = 100
)

// FilterFunc decides whether an event is delivered to a subscription.
type FilterFunc func(Event) bool

// PanicHandler is called when a handler panics.
type PanicHandler func(e Event, sub *Subscription, recovered any)

// SubscriptionOption configures a subscription.
type SubscriptionOption func(*subscriptionConfig)

type subscriptionConfig struct {
	priority Priority
	filter   FilterFunc
	once     bool
}

func defaultSubscriptionConfig() subscriptionConfig {
	return subscriptionConfig{priority: PriorityNormal}
}

// WithPriority sets the handler priority.
func WithPriority(p Priority) SubscriptionOption {
	return func(c *subscriptionConfig) {
		c.priority = p
	}
}

// WithFilter delivers only events accepted by f.
func WithFilter(f FilterFunc) SubscriptionOption {
	return func(c *subscriptionConfig) {
		c.filter = f
	}
}

// Once cancels the subscription after its first successful delivery.
func Once() SubscriptionOption {
	return func(c *subscriptionConfig) {
		c.once = true
	}
}

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithPanicHandler sets the function called when a handler panics.
func WithPanicHandler(h PanicHandler) BusOption {
	return func(b *Bus) {
		b.panicHandler = h
	}
}
