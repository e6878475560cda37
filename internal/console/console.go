// Package console implements the back-office pages: list, add, edit and
// delete flows per entity, plus the dashboard, detail views, order lookups
// and the login session.
package console

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/SigNoz/ecommerce-console/internal/metrics"
	"github.com/SigNoz/ecommerce-console/internal/services"
	"github.com/SigNoz/ecommerce-console/pkg/config"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const maxOpenDetails = 64

// Settings size lists and searches
type Settings struct {
	PageSize          int
	MaxPageSize       int
	DashboardPageSize int
	SearchPageSize    int
	SearchDebounce    time.Duration
}

// SettingsFromConfig reads Settings from cfg
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		PageSize:          cfg.DefaultPageSize,
		MaxPageSize:       cfg.MaxPageSize,
		DashboardPageSize: cfg.DashboardPageSize,
		SearchPageSize:    cfg.SearchPageSize,
		SearchDebounce:    cfg.SearchDebounce,
	}
}

// Console holds every page of the back office. It is the single state
// container; callers get it by injection, never from a package variable.
type Console struct {
	Categories    *CategoryPage
	Products      *ProductPage
	Variants      *VariantPage
	Stores        *StorePage
	Customers     *CustomerPage
	Orders        *Orders
	OrderDetails  *OrderDetailPage
	Dashboard     *Dashboard
	Session       *Session
	Notifications *NotificationLog

	reg    *services.Registry
	opts   Options
	logger zerolog.Logger

	mu       sync.Mutex
	products *detailCache[*ProductDetail]
	orders   *detailCache[*OrderDetail]
}

// New builds the console. ctx bounds background work such as debounced
// searches.
func New(ctx context.Context, reg *services.Registry, session *Session, settings Settings, m *metrics.AppMetrics, logger zerolog.Logger) *Console {
	if m == nil {
		m = metrics.NewNoop()
	}
	notes := NewNotificationLog(100)
	opts := Options{
		Confirmer:   ContextConfirmer{},
		Notifier:    notes,
		Metrics:     m,
		Logger:      logger,
		PageSize:    settings.PageSize,
		MaxPageSize: settings.MaxPageSize,
	}

	return &Console{
		Categories:    NewCategoryPage(reg.Categories, opts),
		Products:      NewProductPage(reg.Products, opts),
		Variants:      NewVariantPage(reg.Variants, nil, opts),
		Stores:        NewStorePage(reg.Stores, opts),
		Customers:     NewCustomerPage(reg.Customers, opts),
		Orders:        NewOrders(ctx, reg, SearchSettings{Debounce: settings.SearchDebounce, PageSize: settings.SearchPageSize}, opts),
		OrderDetails:  NewOrderDetailPage(reg.OrderDetails, nil, opts),
		Dashboard:     NewDashboard(reg, settings.DashboardPageSize, m),
		Session:       session,
		Notifications: notes,
		reg:           reg,
		opts:          opts,
		logger:        logger,
		products:      newDetailCache(maxOpenDetails, (*ProductDetail).editing),
		orders:        newDetailCache(maxOpenDetails, (*OrderDetail).editing),
	}
}

// Pages returns every entity page keyed by its collection name
func (c *Console) Pages() map[string]Controller {
	return map[string]Controller{
		"categories":    c.Categories,
		"products":      c.Products,
		"variants":      c.Variants,
		"stores":        c.Stores,
		"customers":     c.Customers,
		"orders":        c.Orders,
		"order_details": c.OrderDetails,
	}
}

// ProductDetail returns the detail page for product id, reusing an open one
func (c *Console) ProductDetail(id uuid.UUID) *ProductDetail {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d, ok := c.products.get(id); ok {
		return d
	}
	d := NewProductDetail(c.reg, id, c.opts)
	c.products.put(id, d)
	return d
}

// OrderDetail returns the detail page for order id, reusing an open one
func (c *Console) OrderDetail(id uuid.UUID) *OrderDetail {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d, ok := c.orders.get(id); ok {
		return d
	}
	d := NewOrderDetail(c.reg, c.Orders.Names, id, c.opts)
	c.orders.put(id, d)
	return d
}

// Close stops background searches
func (c *Console) Close() {
	c.Orders.Close()
}

// detailCache keeps the most recently used detail pages. When full it
// evicts the least recently used page that has no form open; if every page
// has one open it grows instead.
type detailCache[D any] struct {
	limit int
	busy  func(D) bool
	items map[uuid.UUID]D
	// recency, oldest first
	order []uuid.UUID
}

func newDetailCache[D any](limit int, busy func(D) bool) *detailCache[D] {
	return &detailCache[D]{limit: limit, busy: busy, items: make(map[uuid.UUID]D)}
}

func (c *detailCache[D]) get(id uuid.UUID) (D, bool) {
	d, ok := c.items[id]
	if ok {
		c.touch(id)
	}
	return d, ok
}

func (c *detailCache[D]) put(id uuid.UUID, d D) {
	if len(c.items) >= c.limit {
		c.evict()
	}
	c.items[id] = d
	c.order = append(c.order, id)
}

func (c *detailCache[D]) len() int {
	return len(c.items)
}

func (c *detailCache[D]) touch(id uuid.UUID) {
	if i := slices.Index(c.order, id); i >= 0 {
		c.order = append(slices.Delete(c.order, i, i+1), id)
	}
}

func (c *detailCache[D]) evict() {
	for i, id := range c.order {
		if c.busy(c.items[id]) {
			continue
		}
		delete(c.items, id)
		c.order = slices.Delete(c.order, i, i+1)
		return
	}
}
