// Package services holds one service object per upstream resource. Services
// are thin: no retries, no caching, no validation. Errors from the client
// surface unchanged.
package services

import (
	"context"
	"fmt"

	"github.com/SigNoz/ecommerce-console/internal/client"
	"github.com/SigNoz/ecommerce-console/internal/models"
	"github.com/google/uuid"
)

// Service is the CRUD surface shared by every resource
type Service[T, C, U any] interface {
	GetAll(ctx context.Context, params ListParams) (models.Page[T], error)
	GetByID(ctx context.Context, id uuid.UUID) (T, error)
	Create(ctx context.Context, payload C) (T, error)
	Update(ctx context.Context, id uuid.UUID, payload U) (T, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Resource maps the CRUD surface onto GET/POST/PUT/DELETE under path
type Resource[T, C, U any] struct {
	client *client.Client
	path   string
	limits Limits
}

// NewResource returns a resource rooted at path, e.g. "/categories"
func NewResource[T, C, U any](c *client.Client, path string, limits Limits) *Resource[T, C, U] {
	return &Resource[T, C, U]{client: c, path: path, limits: limits}
}

// Path is the collection path
func (r *Resource[T, C, U]) Path() string {
	return r.path
}

// Limits returns the page size bounds used for list calls
func (r *Resource[T, C, U]) Limits() Limits {
	return r.limits.withDefaults()
}

// GetAll lists one page of the collection
func (r *Resource[T, C, U]) GetAll(ctx context.Context, params ListParams) (models.Page[T], error) {
	return r.list(ctx, r.path, params)
}

// GetByID fetches a single record
func (r *Resource[T, C, U]) GetByID(ctx context.Context, id uuid.UUID) (T, error) {
	resp, err := r.client.Get(ctx, r.item(id), nil)
	if err != nil {
		var zero T
		return zero, err
	}
	return client.Decode[T](resp)
}

// Create posts a new record and returns it as stored
func (r *Resource[T, C, U]) Create(ctx context.Context, payload C) (T, error) {
	resp, err := r.client.Post(ctx, r.path, payload)
	if err != nil {
		var zero T
		return zero, err
	}
	return client.Decode[T](resp)
}

// Update replaces the fields set on payload and returns the stored record
func (r *Resource[T, C, U]) Update(ctx context.Context, id uuid.UUID, payload U) (T, error) {
	resp, err := r.client.Put(ctx, r.item(id), payload)
	if err != nil {
		var zero T
		return zero, err
	}
	return client.Decode[T](resp)
}

// Delete removes a record
func (r *Resource[T, C, U]) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.client.Delete(ctx, r.item(id))
	return err
}

func (r *Resource[T, C, U]) list(ctx context.Context, path string, params ListParams) (models.Page[T], error) {
	resp, err := r.client.Get(ctx, path, params.Encode(r.limits))
	if err != nil {
		return models.Page[T]{}, err
	}
	return client.DecodePage[T](resp)
}

func (r *Resource[T, C, U]) item(id uuid.UUID) string {
	return fmt.Sprintf("%s/%s", r.path, id)
}
