package query

import (
	"context"
	"sync"
)

// Mutator performs a write with payload P
type Mutator[P, T any] func(ctx context.Context, payload P) (T, error)

// Mutation holds the result of the latest write
type Mutation[P, T any] struct {
	fn   Mutator[P, T]
	opts Options[T]

	mu    sync.Mutex
	seq   uint64
	state State[T]
}

// NewMutation returns an idle mutation around fn
func NewMutation[P, T any](fn Mutator[P, T], opts Options[T]) *Mutation[P, T] {
	return &Mutation[P, T]{fn: fn, opts: opts}
}

// State returns the current snapshot
func (m *Mutation[P, T]) State() State[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Mutate runs the write and returns its result or error. On error the
// previous data is kept.
func (m *Mutation[P, T]) Mutate(ctx context.Context, payload P) (T, error) {
	m.mu.Lock()
	m.seq++
	seq := m.seq
	m.state.Loading = true
	m.state.Err = nil
	m.mu.Unlock()

	data, err := m.fn(ctx, payload)

	m.mu.Lock()
	if seq != m.seq {
		m.mu.Unlock()
		notify(m.opts.OnStale)
		return data, err
	}
	m.state.Loading = false
	if err != nil {
		m.state.Err = err
	} else {
		m.state.Data = data
	}
	m.mu.Unlock()

	if err != nil {
		if m.opts.OnError != nil {
			m.opts.OnError(err)
		}
		return data, err
	}
	if m.opts.OnSuccess != nil {
		m.opts.OnSuccess(data)
	}
	return data, nil
}

// Reset clears data, loading and error. Writes still in flight finish but
// no longer touch the state.
func (m *Mutation[P, T]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.state = State[T]{}
}
