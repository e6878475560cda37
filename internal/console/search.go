package console

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/SigNoz/ecommerce-console/internal/debounce"
	"github.com/SigNoz/ecommerce-console/internal/metrics"
	"github.com/SigNoz/ecommerce-console/internal/query"
	"github.com/rs/zerolog"
)

// SearchFunc looks up records matching q
type SearchFunc[T any] func(ctx context.Context, q string) ([]T, error)

// SearchState is a snapshot of a SearchField
type SearchState[T any] struct {
	Query   string `json:"query"`
	Results []T    `json:"results"`
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

// SearchField runs search-as-you-type for one input. Each input has its
// own debouncer; a newer keystroke replaces the pending one, and results
// for anything but the latest search are dropped.
type SearchField[T any] struct {
	name      string
	ctx       context.Context
	debouncer *debounce.Debouncer
	search    SearchFunc[T]
	onResults func([]T)
	metrics   *metrics.AppMetrics
	logger    zerolog.Logger

	mu    sync.Mutex
	seq   uint64
	state SearchState[T]
	// done is closed when the latest scheduled search finishes
	done chan struct{}
}

// NewSearchField returns an idle field. Searches run on ctx, so cancelling
// it stops them. onResults, if set, sees every accepted result set.
func NewSearchField[T any](ctx context.Context, name string, delay time.Duration, search SearchFunc[T], onResults func([]T), m *metrics.AppMetrics, logger zerolog.Logger) *SearchField[T] {
	if m == nil {
		m = metrics.NewNoop()
	}
	return &SearchField[T]{
		name:      name,
		ctx:       ctx,
		debouncer: debounce.New(delay),
		search:    search,
		onResults: onResults,
		metrics:   m,
		logger:    logger.With().Str("search", name).Logger(),
		state:     SearchState[T]{Results: []T{}},
	}
}

// Input records a keystroke. A blank query clears the results at once.
func (f *SearchField[T]) Input(q string) {
	q = strings.TrimSpace(q)

	f.mu.Lock()
	f.seq++
	seq := f.seq
	f.state.Query = q
	f.state.Error = ""
	if f.done != nil {
		close(f.done)
		f.done = nil
	}
	if q == "" {
		f.debouncer.Stop()
		f.state.Results = []T{}
		f.state.Loading = false
		f.mu.Unlock()
		return
	}
	done := make(chan struct{})
	f.done = done
	f.mu.Unlock()

	f.debouncer.Trigger(func() { f.run(seq, q, done) })
}

func (f *SearchField[T]) run(seq uint64, q string, done chan struct{}) {
	f.mu.Lock()
	if seq != f.seq {
		f.mu.Unlock()
		return
	}
	f.state.Loading = true
	f.mu.Unlock()

	f.metrics.RecordSearch(f.ctx, f.name)
	results, err := f.search(f.ctx, q)

	f.mu.Lock()
	if seq != f.seq {
		f.mu.Unlock()
		f.metrics.RecordStaleResponse(f.ctx, "search:"+f.name)
		return
	}
	f.state.Loading = false
	if err != nil {
		f.logger.Warn().Err(err).Str("query", q).Msg("search failed")
		f.state.Error = query.ErrorMessage(err)
	} else {
		if results == nil {
			results = []T{}
		}
		f.state.Results = results
	}
	f.mu.Unlock()

	if err == nil && f.onResults != nil {
		f.onResults(results)
	}

	f.mu.Lock()
	if f.done == done {
		close(done)
		f.done = nil
	}
	f.mu.Unlock()
}

// State returns the current snapshot
func (f *SearchField[T]) State() SearchState[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.state
	s.Results = append([]T(nil), f.state.Results...)
	if s.Results == nil {
		s.Results = []T{}
	}
	return s
}

// Wait blocks until the latest scheduled search has finished or ctx ends
func (f *SearchField[T]) Wait(ctx context.Context) error {
	f.mu.Lock()
	done := f.done
	f.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop cancels any pending search
func (f *SearchField[T]) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	f.debouncer.Stop()
	f.state.Loading = false
	if f.done != nil {
		close(f.done)
		f.done = nil
	}
}
