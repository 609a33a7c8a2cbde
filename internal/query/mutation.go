package query

import (
	"context"
	"errors"
	"sync"
)

// ErrMutationPending is returned by Run while a previous run is in flight.
var ErrMutationPending = errors.New("mutation already in flight")

// MutationStatus is the lifecycle of the latest run of a mutation.
type MutationStatus int

const (
	MutationIdle MutationStatus = iota
	MutationPending
	MutationSuccess
	MutationError
)

func (s MutationStatus) String() string {
	switch s {
	case MutationPending:
		return "pending"
	case MutationSuccess:
		return "success"
	case MutationError:
		return "error"
	default:
		return "idle"
	}
}

// MutationState is a snapshot of a mutation.
type MutationState[I any] struct {
	Status    MutationStatus
	Variables I
	Err       error
}

// Mutation tracks one kind of server write. Only one run may be outstanding.
type Mutation[I, O any] struct {
	fn func(context.Context, I) (O, error)

	mu        sync.Mutex
	state     MutationState[I]
	onSuccess []func(I, O)
	onSettled []func(I, O, error)
}

// NewMutation wraps fn.
func NewMutation[I, O any](fn func(context.Context, I) (O, error)) *Mutation[I, O] {
	return &Mutation[I, O]{fn: fn}
}

// OnSuccess adds a hook run after a successful call, before Run returns.
func (m *Mutation[I, O]) OnSuccess(fn func(in I, out O)) *Mutation[I, O] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onSuccess = append(m.onSuccess, fn)
	return m
}

// OnSettled adds a hook run after every call, successful or not.
func (m *Mutation[I, O]) OnSettled(fn func(in I, out O, err error)) *Mutation[I, O] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onSettled = append(m.onSettled, fn)
	return m
}

// Run executes the mutation, or fails fast with ErrMutationPending.
func (m *Mutation[I, O]) Run(ctx context.Context, in I) (O, error) {
	m.mu.Lock()
	if m.state.Status == MutationPending {
		m.mu.Unlock()
		var zero O
		return zero, ErrMutationPending
	}
	m.state = MutationState[I]{Status: MutationPending, Variables: in}
	success := append([]func(I, O){}, m.onSuccess...)
	settled := append([]func(I, O, error){}, m.onSettled...)
	m.mu.Unlock()

	out, err := m.fn(ctx, in)

	m.mu.Lock()
	if err != nil {
		m.state.Status = MutationError
		m.state.Err = err
	} else {
		m.state.Status = MutationSuccess
	}
	m.mu.Unlock()

	if err == nil {
		for _, fn := range success {
			fn(in, out)
		}
	}
	for _, fn := range settled {
		fn(in, out, err)
	}
	return out, err
}

// State returns a snapshot.
func (m *Mutation[I, O]) State() MutationState[I] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Pending reports whether a run is in flight.
func (m *Mutation[I, O]) Pending() bool {
	return m.State().Status == MutationPending
}

// Target returns the input of the in-flight run.
func (m *Mutation[I, O]) Target() (I, bool) {
	s := m.State()
	if s.Status != MutationPending {
		var zero I
		return zero, false
	}
	return s.Variables, true
}

// Reset returns a settled mutation to idle. It is a no-op while pending.
func (m *Mutation[I, O]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Status != MutationPending {
		m.state = MutationState[I]{}
	}
}
