// Package query holds the fetch, mutation and paginated-fetch state
// containers the console pages are built from. Every container tags each
// request with a sequence number and drops responses that are no longer the
// latest, so state always reflects the last requested operation.
package query

import (
	"context"
	"errors"
	"reflect"
	"sync"

	"github.com/SigNoz/ecommerce-console/internal/client"
)

const defaultErrorMessage = "An error occurred"

// Options configure Query and Mutation
type Options[T any] struct {
	// Immediate makes Mount and SetDeps execute
	Immediate bool
	OnSuccess func(T)
	OnError   func(error)
	// OnStale is told about every dropped response
	OnStale func()
}

// State is a snapshot of a Query or Mutation
type State[T any] struct {
	Data    T
	Loading bool
	Err     error
}

// Fetcher loads the data behind a Query
type Fetcher[T any] func(ctx context.Context) (T, error)

// Query holds the result of a single fetch
type Query[T any] struct {
	fetch Fetcher[T]
	opts  Options[T]

	mu      sync.Mutex
	seq     uint64
	state   State[T]
	deps    []any
	hasDeps bool
	mounted bool
}

// New returns an idle query around fetch
func New[T any](fetch Fetcher[T], opts Options[T]) *Query[T] {
	return &Query[T]{fetch: fetch, opts: opts}
}

// State returns the current snapshot
func (q *Query[T]) State() State[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Mount executes once when the query is immediate. Later calls are no-ops.
func (q *Query[T]) Mount(ctx context.Context) error {
	q.mu.Lock()
	if q.mounted {
		q.mu.Unlock()
		return nil
	}
	q.mounted = true
	q.mu.Unlock()

	if !q.opts.Immediate {
		return nil
	}
	_, err := q.Execute(ctx)
	return err
}

// SetDeps records the inputs the fetch depends on and re-executes an
// immediate query when they change.
func (q *Query[T]) SetDeps(ctx context.Context, deps ...any) error {
	q.mu.Lock()
	changed := !q.hasDeps || !reflect.DeepEqual(q.deps, deps)
	q.deps = deps
	q.hasDeps = true
	q.mounted = true
	q.mu.Unlock()

	if !changed || !q.opts.Immediate {
		return nil
	}
	_, err := q.Execute(ctx)
	return err
}

// Execute runs the fetch. The caller always gets the fetch result; the
// stored state only changes if no newer Execute started meanwhile. On error
// the stored data is cleared.
func (q *Query[T]) Execute(ctx context.Context) (T, error) {
	q.mu.Lock()
	q.seq++
	seq := q.seq
	q.state.Loading = true
	q.state.Err = nil
	q.mu.Unlock()

	data, err := q.fetch(ctx)

	q.mu.Lock()
	if seq != q.seq {
		q.mu.Unlock()
		notify(q.opts.OnStale)
		return data, err
	}
	q.state.Loading = false
	if err != nil {
		var zero T
		q.state.Data = zero
		q.state.Err = err
	} else {
		q.state.Data = data
	}
	q.mu.Unlock()

	if err != nil {
		if q.opts.OnError != nil {
			q.opts.OnError(err)
		}
		return data, err
	}
	if q.opts.OnSuccess != nil {
		q.opts.OnSuccess(data)
	}
	return data, nil
}

// ErrorMessage is the text shown to a user for err: the server's detail,
// else the error text, else a generic message.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return defaultErrorMessage
}

func notify(fn func()) {
	if fn != nil {
		fn()
	}
}
