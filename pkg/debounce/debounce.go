// Package debounce delays propagation of a rapidly-changing value until it
// has been stable for a fixed quiet period. It is used between the price
// range slider and the product pipeline so that every intermediate value does
// not trigger a full re-filter.
package debounce

import (
	"sync"
	"time"
)

// Debouncer publishes the most recent value passed to Set once no further
// Set call has arrived for the configured quiet period. Only the latest value
// is ever eligible for publication; earlier pending values are discarded.
type Debouncer[T any] struct {
	quiet   time.Duration
	publish func(T)

	mu      sync.Mutex
	timer   *time.Timer
	pending T
	gen     uint64
	stopped bool
}

// New creates a Debouncer that calls publish after quiet elapses without a
// newer value. The publish callback runs on the timer goroutine.
func New[T any](quiet time.Duration, publish func(T)) *Debouncer[T] {
	return &Debouncer[T]{quiet: quiet, publish: publish}
}

// Set records v as the latest value and restarts the quiet-period countdown,
// discarding any previously pending publication.
func (d *Debouncer[T]) Set(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.pending = v
	if d.timer != nil {
		d.timer.Stop()
	}
	// Each Set starts a new generation. A timer callback that already left
	// Stop's reach compares its captured generation and no-ops once a newer
	// Set has rescheduled, so a value is published at most once and only
	// after its own quiet period.
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.quiet, func() { d.fire(gen) })
}

// fire publishes the pending value unless the debouncer was stopped or the
// generation has moved on since this timer was armed.
func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	v := d.pending
	d.timer = nil
	d.mu.Unlock()

	d.publish(v)
}

// Stop cancels any pending publication. After Stop, Set calls are ignored;
// no value will ever be published. Safe to call multiple times.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Flush publishes the pending value immediately if a publication is pending.
func (d *Debouncer[T]) Flush() {
	d.mu.Lock()
	if d.stopped || d.timer == nil {
		d.mu.Unlock()
		return
	}
	d.timer.Stop()
	d.timer = nil
	d.gen++
	v := d.pending
	d.mu.Unlock()

	d.publish(v)
}
