package console

import (
	"context"
	"fmt"
	"time"

	"github.com/SigNoz/ecommerce-console/internal/models"
	"github.com/SigNoz/ecommerce-console/internal/services"
)

// OrderRow is an order as listed, with its running number and names
type OrderRow struct {
	Number       string       `json:"number"`
	Order        models.Order `json:"order"`
	CustomerName string       `json:"customer_name"`
	StoreName    string       `json:"store_name"`
}

// OrderNumber is the running number of the index-th row of page, which
// continues across pages: #0001 is the first order on page 1.
func OrderNumber(page, pageSize, index int) string {
	if page < 1 {
		page = 1
	}
	return fmt.Sprintf("#%04d", (page-1)*pageSize+index+1)
}

// Orders is the orders page with its customer and store lookups
type Orders struct {
	*OrderPage
	Names     *NameCache
	Customers *SearchField[models.Customer]
	Stores    *SearchField[models.Store]
}

// OrdersView is the orders page snapshot with display rows
type OrdersView struct {
	View[models.Order, OrderForm]
	Rows            []OrderRow                   `json:"rows"`
	CustomerResults SearchState[models.Customer] `json:"customer_search"`
	StoreResults    SearchState[models.Store]    `json:"store_search"`
}

// SearchSettings size the order form's search fields
type SearchSettings struct {
	Debounce time.Duration
	PageSize int
}

// NewOrders builds the orders page. Search fields run on ctx.
func NewOrders(ctx context.Context, reg *services.Registry, search SearchSettings, opts Options) *Orders {
	names := NewNameCache(reg.Customers, reg.Stores, opts.Metrics, opts.Logger)

	customers := NewSearchField(ctx, "customers", search.Debounce,
		func(ctx context.Context, q string) ([]models.Customer, error) {
			page, err := reg.Customers.GetAll(ctx, services.ListParams{Search: q, PageSize: search.PageSize})
			return page.Items, err
		},
		func(found []models.Customer) {
			for _, c := range found {
				names.RememberCustomer(c)
			}
		}, opts.Metrics, opts.Logger)

	stores := NewSearchField(ctx, "stores", search.Debounce,
		func(ctx context.Context, q string) ([]models.Store, error) {
			page, err := reg.Stores.GetAll(ctx, services.ListParams{Search: q, PageSize: search.PageSize})
			return page.Items, err
		},
		func(found []models.Store) {
			for _, s := range found {
				names.RememberStore(s)
			}
		}, opts.Metrics, opts.Logger)

	return &Orders{
		OrderPage: NewOrderPage(reg.Orders, opts),
		Names:     names,
		Customers: customers,
		Stores:    stores,
	}
}

// Rows resolves names for the listed orders and numbers them
func (o *Orders) Rows(ctx context.Context) []OrderRow {
	v := o.OrderPage.View()
	return o.rows(ctx, v)
}

func (o *Orders) rows(ctx context.Context, v View[models.Order, OrderForm]) []OrderRow {
	o.Names.Resolve(ctx, v.Items)

	rows := make([]OrderRow, 0, len(v.Items))
	for i, order := range v.Items {
		rows = append(rows, OrderRow{
			Number:       OrderNumber(v.Page, v.PageSize, i),
			Order:        order,
			CustomerName: o.Names.Customer(order.CustomerID),
			StoreName:    o.Names.Store(order.StoreID),
		})
	}
	return rows
}

// Overview returns the page view with display rows and search state
func (o *Orders) Overview(ctx context.Context) OrdersView {
	v := o.OrderPage.View()
	return OrdersView{
		View:            v,
		Rows:            o.rows(ctx, v),
		CustomerResults: o.Customers.State(),
		StoreResults:    o.Stores.State(),
	}
}

// Snapshot includes display rows
func (o *Orders) Snapshot(ctx context.Context) any {
	return o.Overview(ctx)
}

// Close stops pending searches
func (o *Orders) Close() {
	o.Customers.Stop()
	o.Stores.Stop()
}
