package query

import (
	"context"
	"slices"
	"sync"

	"github.com/SigNoz/ecommerce-console/internal/models"
)

// PageFetcher loads one page
type PageFetcher[T any] func(ctx context.Context, page, pageSize int) (models.Page[T], error)

// PageOptions configure a Paginated
type PageOptions struct {
	Page        int
	PageSize    int
	MaxPageSize int
	OnStale     func()
}

// PageState is a snapshot of a Paginated
type PageState[T any] struct {
	Items    []T
	Total    int
	Page     int
	PageSize int
	Loading  bool
	Err      error
}

// TotalPages is the page count for the current total, at least 1
func (s PageState[T]) TotalPages() int {
	return models.TotalPages(s.Total, s.PageSize)
}

// Paginated holds one page of a list and its position
type Paginated[T any] struct {
	fetch   PageFetcher[T]
	maxSize int
	onStale func()

	mu    sync.Mutex
	seq   uint64
	state PageState[T]
}

// NewPaginated returns a container positioned at opts.Page/opts.PageSize,
// defaulting to page 1 of 10.
func NewPaginated[T any](fetch PageFetcher[T], opts PageOptions) *Paginated[T] {
	p := &Paginated[T]{
		fetch:   fetch,
		maxSize: opts.MaxPageSize,
		onStale: opts.OnStale,
	}
	p.state.Items = []T{}
	p.state.Page = max(opts.Page, 1)
	p.state.PageSize = p.clampSize(opts.PageSize, 10)
	return p
}

// State returns the current snapshot
func (p *Paginated[T]) State() PageState[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.state
	s.Items = slices.Clone(p.state.Items)
	return s
}

// Mount fetches the initial page
func (p *Paginated[T]) Mount(ctx context.Context) error {
	return p.Refresh(ctx)
}

// ChangePage moves to page and fetches it. A pageSize of 0 keeps the
// current size.
func (p *Paginated[T]) ChangePage(ctx context.Context, page, pageSize int) error {
	p.mu.Lock()
	p.state.Page = max(page, 1)
	p.state.PageSize = p.clampSize(pageSize, p.state.PageSize)
	seq := p.begin()
	page, size := p.state.Page, p.state.PageSize
	p.mu.Unlock()

	return p.load(ctx, seq, page, size)
}

// Refresh refetches the current page
func (p *Paginated[T]) Refresh(ctx context.Context) error {
	p.mu.Lock()
	seq := p.begin()
	page, size := p.state.Page, p.state.PageSize
	p.mu.Unlock()

	return p.load(ctx, seq, page, size)
}

// begin must be called with the lock held
func (p *Paginated[T]) begin() uint64 {
	p.seq++
	p.state.Loading = true
	p.state.Err = nil
	return p.seq
}

func (p *Paginated[T]) load(ctx context.Context, seq uint64, page, size int) error {
	for {
		result, err := p.fetch(ctx, page, size)

		p.mu.Lock()
		if seq != p.seq {
			p.mu.Unlock()
			notify(p.onStale)
			return err
		}

		if err != nil {
			p.state.Loading = false
			p.state.Err = err
			p.mu.Unlock()
			return err
		}

		// Past the end, e.g. after deleting the last row of the last page
		last := models.TotalPages(result.Total, size)
		if len(result.Items) == 0 && result.Total > 0 && page > last {
			page = last
			p.state.Page = page
			p.mu.Unlock()
			continue
		}

		p.state.Items = result.Items
		if p.state.Items == nil {
			p.state.Items = []T{}
		}
		p.state.Total = result.Total
		p.state.Loading = false
		p.mu.Unlock()
		return nil
	}
}

func (p *Paginated[T]) clampSize(size, fallback int) int {
	if size <= 0 {
		size = fallback
	}
	if p.maxSize > 0 && size > p.maxSize {
		size = p.maxSize
	}
	return size
}
