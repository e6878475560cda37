package console

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/SigNoz/ecommerce-console/internal/metrics"
	"github.com/SigNoz/ecommerce-console/internal/models"
	"github.com/SigNoz/ecommerce-console/internal/query"
	"github.com/SigNoz/ecommerce-console/internal/services"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Mode is where a page is in its add/edit flow
type Mode string

const (
	ModeList Mode = "list"
	ModeAdd  Mode = "modal-add"
	ModeEdit Mode = "modal-edit"
)

var (
	// ErrModalOpen is returned when opening a form while another is open
	ErrModalOpen = errors.New("a form is already open")
	// ErrNoForm is returned when submitting with no form open
	ErrNoForm = errors.New("no form is open")
	// ErrInvalidForm wraps form documents that could not be decoded
	ErrInvalidForm = errors.New("invalid form")
)

// Backend is the data access a page needs, bound to one resource
type Backend[T, F any] struct {
	List   query.PageFetcher[T]
	Get    func(ctx context.Context, id uuid.UUID) (T, error)
	Create func(ctx context.Context, form F) (T, error)
	Update func(ctx context.Context, id uuid.UUID, form F) (T, error)
	Delete func(ctx context.Context, id uuid.UUID) error
}

// Bind adapts a resource service to a Backend. base carries fixed list
// filters, e.g. the product whose variants are shown.
func Bind[T, F, C, U any](
	svc services.Service[T, C, U],
	base services.ListParams,
	toCreate func(F) (C, error),
	toUpdate func(F) (U, error),
) Backend[T, F] {
	return Backend[T, F]{
		List: func(ctx context.Context, page, pageSize int) (models.Page[T], error) {
			params := base
			params.Page, params.PageSize = page, pageSize
			return svc.GetAll(ctx, params)
		},
		Get: svc.GetByID,
		Create: func(ctx context.Context, form F) (T, error) {
			payload, err := toCreate(form)
			if err != nil {
				var zero T
				return zero, fmt.Errorf("%w: %v", ErrInvalidForm, err)
			}
			return svc.Create(ctx, payload)
		},
		Update: func(ctx context.Context, id uuid.UUID, form F) (T, error) {
			payload, err := toUpdate(form)
			if err != nil {
				var zero T
				return zero, fmt.Errorf("%w: %v", ErrInvalidForm, err)
			}
			return svc.Update(ctx, id, payload)
		},
		Delete: svc.Delete,
	}
}

// Entity describes how rows of T are shown and edited through forms of F
type Entity[T, F any] struct {
	// Name is the lower-case singular used in messages and metrics
	Name string
	// Title is the capitalized singular used in success messages
	Title    string
	ID       func(T) uuid.UUID
	Label    func(T) string
	Empty    func() F
	FromRow  func(T) F
	Validate func(F, Mode) FieldErrors
}

// Options are shared by every page
type Options struct {
	Confirmer   Confirmer
	Notifier    Notifier
	Metrics     *metrics.AppMetrics
	Logger      zerolog.Logger
	PageSize    int
	MaxPageSize int
}

type editArgs[F any] struct {
	id   uuid.UUID
	form F
}

// Page runs the list / add / edit / delete flow for one entity
type Page[T, F any] struct {
	entity    Entity[T, F]
	backend   Backend[T, F]
	confirmer Confirmer
	notifier  Notifier
	metrics   *metrics.AppMetrics
	logger    zerolog.Logger

	list   *query.Paginated[T]
	create *query.Mutation[F, T]
	update *query.Mutation[editArgs[F], T]
	remove *query.Mutation[uuid.UUID, struct{}]

	afterWrite func(context.Context)

	mu           sync.Mutex
	mode         Mode
	editing      uuid.UUID
	editingLabel string
	form         F
	fieldErrs    FieldErrors
}

// NewPage returns a page in list mode. Nothing is fetched until Mount.
func NewPage[T, F any](entity Entity[T, F], backend Backend[T, F], opts Options) *Page[T, F] {
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewNoop()
	}
	if opts.Confirmer == nil {
		opts.Confirmer = ContextConfirmer{}
	}
	if opts.Notifier == nil {
		opts.Notifier = NewNotificationLog(0)
	}

	p := &Page[T, F]{
		entity:    entity,
		backend:   backend,
		confirmer: opts.Confirmer,
		notifier:  opts.Notifier,
		metrics:   opts.Metrics,
		logger:    opts.Logger.With().Str("page", entity.Name).Logger(),
		mode:      ModeList,
	}

	onStale := func() { p.metrics.RecordStaleResponse(context.Background(), entity.Name) }
	p.list = query.NewPaginated[T](backend.List, query.PageOptions{
		PageSize:    opts.PageSize,
		MaxPageSize: opts.MaxPageSize,
		OnStale:     onStale,
	})
	p.create = query.NewMutation[F, T](backend.Create, query.Options[T]{OnStale: onStale})
	p.update = query.NewMutation[editArgs[F], T](func(ctx context.Context, a editArgs[F]) (T, error) {
		return backend.Update(ctx, a.id, a.form)
	}, query.Options[T]{OnStale: onStale})
	p.remove = query.NewMutation[uuid.UUID, struct{}](func(ctx context.Context, id uuid.UUID) (struct{}, error) {
		return struct{}{}, backend.Delete(ctx, id)
	}, query.Options[struct{}]{OnStale: onStale})
	return p
}

// Name is the entity name
func (p *Page[T, F]) Name() string {
	return p.entity.Name
}

// Mount fetches the first page
func (p *Page[T, F]) Mount(ctx context.Context) error {
	return p.list.Mount(ctx)
}

// ChangePage moves the list; pageSize 0 keeps the current size
func (p *Page[T, F]) ChangePage(ctx context.Context, page, pageSize int) error {
	return p.list.ChangePage(ctx, page, pageSize)
}

// Refresh refetches the current page; it is also the retry action
func (p *Page[T, F]) Refresh(ctx context.Context) error {
	return p.list.Refresh(ctx)
}

// OnWrite registers fn to run after every successful create, update or
// delete. It must be set before the page is used.
func (p *Page[T, F]) OnWrite(fn func(ctx context.Context)) {
	p.afterWrite = fn
}

// Mode reports whether a form is open
func (p *Page[T, F]) Mode() Mode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

// Rows returns the rows currently listed
func (p *Page[T, F]) Rows() []T {
	return p.list.State().Items
}

// OpenAdd opens an empty add form
func (p *Page[T, F]) OpenAdd() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode != ModeList {
		return ErrModalOpen
	}
	p.mode = ModeAdd
	p.editing = uuid.Nil
	p.editingLabel = ""
	p.form = p.entity.Empty()
	p.fieldErrs = nil
	p.create.Reset()
	return nil
}

// OpenEdit opens the edit form pre-filled from the row with id, taken
// from the current list or fetched when not listed.
func (p *Page[T, F]) OpenEdit(ctx context.Context, id uuid.UUID) error {
	p.mu.Lock()
	open := p.mode != ModeList
	p.mu.Unlock()
	if open {
		return ErrModalOpen
	}

	row, ok := p.findRow(id)
	if !ok {
		var err error
		row, err = p.backend.Get(ctx, id)
		if err != nil {
			p.notifier.Notify(ctx, failure(fmt.Sprintf("Failed to load %s: %s", p.entity.Name, query.ErrorMessage(err))))
			return err
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode != ModeList {
		return ErrModalOpen
	}
	p.mode = ModeEdit
	p.editing = id
	p.editingLabel = p.entity.Label(row)
	p.form = p.entity.FromRow(row)
	p.fieldErrs = nil
	p.update.Reset()
	return nil
}

// Cancel closes any open form and discards it
func (p *Page[T, F]) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeForm()
}

// closeForm must be called with the lock held
func (p *Page[T, F]) closeForm() {
	var zero F
	p.mode = ModeList
	p.editing = uuid.Nil
	p.editingLabel = ""
	p.form = zero
	p.fieldErrs = nil
}

// Submit validates form and creates or updates the record depending on the
// open form. Updates need confirmation. On failure the form stays open with
// the submitted values.
func (p *Page[T, F]) Submit(ctx context.Context, form F) error {
	p.mu.Lock()
	mode, id, label := p.mode, p.editing, p.editingLabel
	if mode == ModeList {
		p.mu.Unlock()
		return ErrNoForm
	}
	p.form = form
	errs := p.entity.Validate(form, mode)
	p.fieldErrs = errs
	p.mu.Unlock()

	if errs != nil {
		return errs
	}

	var (
		op  string
		err error
	)
	if mode == ModeAdd {
		op = "create"
		_, err = p.create.Mutate(ctx, form)
	} else {
		prompt := updatePrompt(label)
		if !p.confirmer.Confirm(ctx, prompt) {
			return &ConfirmationRequired{Prompt: prompt}
		}
		op = "update"
		_, err = p.update.Mutate(ctx, editArgs[F]{id: id, form: form})
	}
	p.metrics.RecordMutation(ctx, p.entity.Name, op, err == nil)

	if err != nil {
		p.logger.Warn().Err(err).Str("operation", op).Msg("submit failed")
		p.notifier.Notify(ctx, failure(fmt.Sprintf("Failed to %s %s: %s", op, p.entity.Name, query.ErrorMessage(err))))
		return err
	}

	p.notifier.Notify(ctx, success(fmt.Sprintf("%s %sd successfully", p.entity.Title, op)))
	p.mu.Lock()
	if p.mode == mode && p.editing == id {
		p.closeForm()
	}
	p.mu.Unlock()

	p.refreshAfterWrite(ctx)
	return nil
}

// Delete removes the record after confirmation, then refreshes the list.
// Rows are never removed locally; on failure the list is left as it was.
func (p *Page[T, F]) Delete(ctx context.Context, id uuid.UUID) error {
	label := id.String()
	if row, ok := p.findRow(id); ok {
		label = p.entity.Label(row)
	}

	prompt := deletePrompt(label)
	if !p.confirmer.Confirm(ctx, prompt) {
		return &ConfirmationRequired{Prompt: prompt}
	}

	_, err := p.remove.Mutate(ctx, id)
	p.metrics.RecordMutation(ctx, p.entity.Name, "delete", err == nil)
	if err != nil {
		p.logger.Warn().Err(err).Str("id", id.String()).Msg("delete failed")
		p.notifier.Notify(ctx, failure(fmt.Sprintf("Failed to delete %s: %s", p.entity.Name, query.ErrorMessage(err))))
		return err
	}

	p.notifier.Notify(ctx, success(fmt.Sprintf("%s deleted successfully", p.entity.Title)))
	p.refreshAfterWrite(ctx)
	return nil
}

// A failed refresh after a successful write is kept on the list state
// for the retry action; the write itself succeeded.
func (p *Page[T, F]) refreshAfterWrite(ctx context.Context) {
	if err := p.list.Refresh(ctx); err != nil {
		p.logger.Warn().Err(err).Msg("refresh after write failed")
	}
	if p.afterWrite != nil {
		p.afterWrite(ctx)
	}
}

func (p *Page[T, F]) findRow(id uuid.UUID) (T, bool) {
	for _, row := range p.list.State().Items {
		if p.entity.ID(row) == id {
			return row, true
		}
	}
	var zero T
	return zero, false
}

// View is a snapshot of a page
type View[T, F any] struct {
	Mode        Mode        `json:"mode"`
	Items       []T         `json:"items"`
	Total       int         `json:"total"`
	Page        int         `json:"page"`
	PageSize    int         `json:"page_size"`
	TotalPages  int         `json:"total_pages"`
	Loading     bool        `json:"loading"`
	Error       string      `json:"error,omitempty"`
	EditingID   *uuid.UUID  `json:"editing_id,omitempty"`
	Form        *F          `json:"form,omitempty"`
	FieldErrors FieldErrors `json:"field_errors,omitempty"`
	Submitting  bool        `json:"submitting"`
	Deleting    bool        `json:"deleting"`
}

// View returns the current state of the page
func (p *Page[T, F]) View() View[T, F] {
	list := p.list.State()
	v := View[T, F]{
		Items:      list.Items,
		Total:      list.Total,
		Page:       list.Page,
		PageSize:   list.PageSize,
		TotalPages: list.TotalPages(),
		Loading:    list.Loading,
		Error:      query.ErrorMessage(list.Err),
		Submitting: p.create.State().Loading || p.update.State().Loading,
		Deleting:   p.remove.State().Loading,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	v.Mode = p.mode
	if p.mode != ModeList {
		form := p.form
		v.Form = &form
		v.FieldErrors = p.fieldErrs
	}
	if p.mode == ModeEdit {
		id := p.editing
		v.EditingID = &id
	}
	return v
}

// Snapshot is View as an untyped value, for callers that serve any page
func (p *Page[T, F]) Snapshot(context.Context) any {
	return p.View()
}

// SubmitJSON decodes a form document and submits it
func (p *Page[T, F]) SubmitJSON(ctx context.Context, data []byte) error {
	var form F
	if err := json.Unmarshal(data, &form); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidForm, err)
	}
	return p.Submit(ctx, form)
}

// Controller is the untyped surface of a Page
type Controller interface {
	Name() string
	Mount(ctx context.Context) error
	ChangePage(ctx context.Context, page, pageSize int) error
	Refresh(ctx context.Context) error
	OpenAdd() error
	OpenEdit(ctx context.Context, id uuid.UUID) error
	SubmitJSON(ctx context.Context, data []byte) error
	Delete(ctx context.Context, id uuid.UUID) error
	Cancel()
	Snapshot(ctx context.Context) any
}

var _ Controller = (*Page[models.Category, CategoryForm])(nil)
