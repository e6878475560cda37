package console

import (
	"context"
	"sync"

	"github.com/SigNoz/ecommerce-console/internal/metrics"
	"github.com/SigNoz/ecommerce-console/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	unknownStore  = "Unknown Store"
	lookupWorkers = 8
)

// Getter fetches one record by id
type Getter[T any] interface {
	GetByID(ctx context.Context, id uuid.UUID) (T, error)
}

// NameCache maps customer and store ids to display names. Only ids not
// yet known are fetched.
type NameCache struct {
	customers Getter[models.Customer]
	stores    Getter[models.Store]
	metrics   *metrics.AppMetrics
	logger    zerolog.Logger

	mu            sync.RWMutex
	customerNames map[uuid.UUID]string
	storeNames    map[uuid.UUID]string
}

// NewNameCache returns an empty cache
func NewNameCache(customers Getter[models.Customer], stores Getter[models.Store], m *metrics.AppMetrics, logger zerolog.Logger) *NameCache {
	if m == nil {
		m = metrics.NewNoop()
	}
	return &NameCache{
		customers:     customers,
		stores:        stores,
		metrics:       m,
		logger:        logger,
		customerNames: make(map[uuid.UUID]string),
		storeNames:    make(map[uuid.UUID]string),
	}
}

// RememberCustomer records c's display name
func (c *NameCache) RememberCustomer(cust models.Customer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.customerNames[cust.ID] = cust.DisplayName()
}

// RememberStore records s's display name
func (c *NameCache) RememberStore(s models.Store) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.storeNames[s.ID] = storeName(s)
}

// Resolve fetches the names of every customer and store referenced by
// orders that are not cached yet. Lookups that fail are logged and left
// out; those ids render as the id itself.
func (c *NameCache) Resolve(ctx context.Context, orders []models.Order) {
	missingCustomers, missingStores := c.missing(ctx, orders)
	if len(missingCustomers) == 0 && len(missingStores) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupWorkers)

	for _, id := range missingCustomers {
		id := id
		g.Go(func() error {
			cust, err := c.customers.GetByID(gctx, id)
			if err != nil {
				c.logger.Warn().Err(err).Str("customer_id", id.String()).Msg("customer lookup failed")
				return nil
			}
			c.RememberCustomer(cust)
			return nil
		})
	}
	for _, id := range missingStores {
		id := id
		g.Go(func() error {
			s, err := c.stores.GetByID(gctx, id)
			if err != nil {
				c.logger.Warn().Err(err).Str("store_id", id.String()).Msg("store lookup failed")
				return nil
			}
			c.RememberStore(s)
			return nil
		})
	}
	_ = g.Wait()
}

func (c *NameCache) missing(ctx context.Context, orders []models.Order) (customers, stores []uuid.UUID) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seenC := map[uuid.UUID]bool{}
	seenS := map[uuid.UUID]bool{}
	for _, o := range orders {
		if o.CustomerID != uuid.Nil && !seenC[o.CustomerID] {
			seenC[o.CustomerID] = true
			_, hit := c.customerNames[o.CustomerID]
			c.metrics.RecordNameLookup(ctx, "customer", hit)
			if !hit {
				customers = append(customers, o.CustomerID)
			}
		}
		if o.StoreID != uuid.Nil && !seenS[o.StoreID] {
			seenS[o.StoreID] = true
			_, hit := c.storeNames[o.StoreID]
			c.metrics.RecordNameLookup(ctx, "store", hit)
			if !hit {
				stores = append(stores, o.StoreID)
			}
		}
	}
	return customers, stores
}

// Customer returns the display name for id, or the id itself
func (c *NameCache) Customer(id uuid.UUID) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if name, ok := c.customerNames[id]; ok && name != "" {
		return name
	}
	return id.String()
}

// Store returns the display name for id, or the id itself
func (c *NameCache) Store(id uuid.UUID) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if name, ok := c.storeNames[id]; ok {
		return name
	}
	return id.String()
}

func storeName(s models.Store) string {
	if s.Name != "" {
		return s.Name
	}
	return unknownStore
}
