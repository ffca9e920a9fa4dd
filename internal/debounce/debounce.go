// Package debounce provides keyed trailing-edge debouncing.
//
// Each key owns at most one scheduled call. Triggering a key cancels its
// pending call and schedules a new one after the delay, so a burst of
// triggers results in a single call once the key has been quiet for the whole
// delay.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is used when a non-positive delay is given.
const DefaultDelay = 100 * time.Millisecond

type pendingCall struct {
	timer *time.Timer
	gen   uint64
}

// Debouncer coalesces triggers per key.
type Debouncer struct {
	fn func(key string)

	mu      sync.Mutex
	delay   time.Duration
	pending map[string]*pendingCall
	gen     uint64
	stopped bool
}

// New creates a debouncer that calls fn(key) once a key settles.
// fn runs on a timer goroutine.
func New(delay time.Duration, fn func(key string)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{
		fn:      fn,
		delay:   delay,
		pending: make(map[string]*pendingCall),
	}
}

// Trigger schedules fn(key) after the delay, replacing any pending call for key.
func (d *Debouncer) Trigger(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if p, ok := d.pending[key]; ok {
		p.timer.Stop()
	}

	d.gen++
	gen := d.gen
	d.pending[key] = &pendingCall{
		gen: gen,
		timer: time.AfterFunc(d.delay, func() {
			d.fire(key, gen)
		}),
	}
}

// fire runs fn for key unless the call was replaced or cancelled.
func (d *Debouncer) fire(key string, gen uint64) {
	d.mu.Lock()
	p, ok := d.pending[key]
	if !ok || p.gen != gen {
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.mu.Unlock()

	d.fn(key)
}

// Cancel drops the pending call for key. It reports whether one was pending.
func (d *Debouncer) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.pending[key]
	if !ok {
		return false
	}
	p.timer.Stop()
	delete(d.pending, key)
	return true
}

// Flush runs every pending call now, in the calling goroutine.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	keys := make([]string, 0, len(d.pending))
	for key, p := range d.pending {
		p.timer.Stop()
		keys = append(keys, key)
	}
	clear(d.pending)
	d.mu.Unlock()

	for _, key := range keys {
		d.fn(key)
	}
}

// Stop cancels every pending call. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	for key, p := range d.pending {
		p.timer.Stop()
		delete(d.pending, key)
	}
}

// Pending returns the number of scheduled calls.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
