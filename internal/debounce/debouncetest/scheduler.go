// Package debouncetest provides a manual clock for debounce tests.
package debouncetest

import (
	"sync"
	"time"

	"github.com/idilsaglam/notehub/internal/debounce"
)

// Scheduler records timers instead of starting them; tests fire them explicitly.
type Scheduler struct {
	mu     sync.Mutex
	timers []*Timer
}

// Timer is a recorded timer.
type Timer struct {
	D       time.Duration
	f       func()
	stopped bool
	fired   bool
}

// Stop implements debounce.Timer.
func (t *Timer) Stop() bool {
	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

// AfterFunc is a debounce.AfterFunc.
func (s *Scheduler) AfterFunc(d time.Duration, f func()) debounce.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &Timer{D: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

// Elapse fires every timer that was neither stopped nor fired, as if the
// quiet period passed.
func (s *Scheduler) Elapse() int {
	return s.fire(func(t *Timer) bool { return !t.stopped })
}

// FireAll fires every unfired timer, stopped or not. It simulates a Stop that
// lost the race with the timer goroutine.
func (s *Scheduler) FireAll() int {
	return s.fire(func(*Timer) bool { return true })
}

// Timers returns every timer scheduled so far.
func (s *Scheduler) Timers() []*Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Timer(nil), s.timers...)
}

// Live counts timers that are neither stopped nor fired.
func (s *Scheduler) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func (s *Scheduler) fire(pick func(*Timer) bool) int {
	s.mu.Lock()
	var due []*Timer
	for _, t := range s.timers {
		if !t.fired && pick(t) {
			t.fired = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()
	for _, t := range due {
		t.f()
	}
	return len(due)
}
