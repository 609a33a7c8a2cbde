// Package debounce delays an action until its trigger has been quiet for a while.
package debounce

import (
	"sync"
	"time"
)

// Timer is the part of *time.Timer a Debouncer needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run once after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Debouncer runs the most recent action after Delay of silence (trailing edge).
// Each Trigger stops the pending timer and starts a new one, so at most one
// timer is live. A generation counter drops a timer that fired while it was
// being replaced.
type Debouncer struct {
	delay time.Duration
	after AfterFunc

	mu    sync.Mutex
	timer Timer
	gen   uint64
}

// Option configures a Debouncer.
type Option func(*Debouncer)

// WithAfterFunc swaps the scheduler, mainly for tests.
func WithAfterFunc(fn AfterFunc) Option {
	return func(d *Debouncer) {
		if fn != nil {
			d.after = fn
		}
	}
}

// New returns a Debouncer with the given quiet period.
func New(delay time.Duration, opts ...Option) *Debouncer {
	d := &Debouncer{delay: delay, after: realAfterFunc}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Delay is the configured quiet period.
func (d *Debouncer) Delay() time.Duration { return d.delay }

// Trigger cancels any pending action and schedules fn. fn receives the
// generation it was scheduled under; the return value is the same number.
func (d *Debouncer) Trigger(fn func(gen uint64)) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.after(d.delay, func() {
		d.mu.Lock()
		live := gen == d.gen
		if live {
			d.timer = nil
		}
		d.mu.Unlock()
		if live {
			fn(gen)
		}
	})
	return gen
}

// Generation returns the generation of the latest Trigger.
func (d *Debouncer) Generation() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gen
}

// Pending reports whether an action is scheduled and has not fired.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Stop cancels the pending action, if any.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}
