package console

import (
	"context"

	"github.com/SigNoz/ecommerce-console/internal/metrics"
	"github.com/SigNoz/ecommerce-console/internal/models"
	"github.com/SigNoz/ecommerce-console/internal/query"
	"github.com/SigNoz/ecommerce-console/internal/services"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// DashboardStats are the headline numbers of the store
type DashboardStats struct {
	Products          int             `json:"products"`
	Categories        int             `json:"categories"`
	Orders            int             `json:"orders"`
	Customers         int             `json:"customers"`
	Stores            int             `json:"stores"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	// RevenueOrders is how many orders the revenue figures cover
	RevenueOrders int `json:"revenue_orders"`
}

// Dashboard loads DashboardStats
type Dashboard struct {
	reg      *services.Registry
	pageSize int
	q        *query.Query[DashboardStats]
}

// DashboardView is the dashboard snapshot
type DashboardView struct {
	Stats   DashboardStats `json:"stats"`
	Loading bool           `json:"loading"`
	Error   string         `json:"error,omitempty"`
}

// NewDashboard builds a dashboard that reads up to pageSize orders for its
// revenue figures
func NewDashboard(reg *services.Registry, pageSize int, m *metrics.AppMetrics) *Dashboard {
	if m == nil {
		m = metrics.NewNoop()
	}
	d := &Dashboard{reg: reg, pageSize: pageSize}
	d.q = query.New[DashboardStats](d.load, query.Options[DashboardStats]{
		Immediate: true,
		OnStale:   func() { m.RecordStaleResponse(context.Background(), "dashboard") },
	})
	return d
}

// Load fetches fresh stats
func (d *Dashboard) Load(ctx context.Context) (DashboardStats, error) {
	return d.q.Execute(ctx)
}

// View returns the last loaded stats
func (d *Dashboard) View() DashboardView {
	s := d.q.State()
	return DashboardView{Stats: s.Data, Loading: s.Loading, Error: query.ErrorMessage(s.Err)}
}

func (d *Dashboard) load(ctx context.Context) (DashboardStats, error) {
	var (
		stats  DashboardStats
		orders []models.Order
	)
	first := services.ListParams{Page: 1, PageSize: 1}
	all := services.ListParams{Page: 1, PageSize: d.pageSize}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := d.reg.Products.GetAll(ctx, first)
		stats.Products = p.Total
		return err
	})
	g.Go(func() error {
		p, err := d.reg.Categories.GetAll(ctx, first)
		stats.Categories = p.Total
		return err
	})
	g.Go(func() error {
		p, err := d.reg.Customers.GetAll(ctx, first)
		stats.Customers = p.Total
		return err
	})
	g.Go(func() error {
		p, err := d.reg.Stores.GetAll(ctx, first)
		stats.Stores = p.Total
		return err
	})
	g.Go(func() error {
		p, err := d.reg.Orders.GetAll(ctx, all)
		stats.Orders = p.Total
		orders = p.Items
		return err
	})
	if err := g.Wait(); err != nil {
		return DashboardStats{}, err
	}

	stats.TotalRevenue, stats.AverageOrderValue = Revenue(orders)
	stats.RevenueOrders = len(orders)
	return stats, nil
}

// Revenue sums order totals and averages them over all orders, counting an
// order without a total as zero
func Revenue(orders []models.Order) (total, average decimal.Decimal) {
	total = decimal.Zero
	for _, o := range orders {
		if o.TotalAmount != nil {
			total = total.Add(*o.TotalAmount)
		}
	}
	if len(orders) == 0 {
		return total, decimal.Zero
	}
	return total, total.Div(decimal.NewFromInt(int64(len(orders)))).Round(2)
}
