package console

import (
	"context"

	"github.com/SigNoz/ecommerce-console/internal/models"
	"github.com/SigNoz/ecommerce-console/internal/query"
	"github.com/SigNoz/ecommerce-console/internal/services"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ProductDetail is one product with its category and its variants
type ProductDetail struct {
	ID       uuid.UUID
	reg      *services.Registry
	product  *query.Query[productHeader]
	Variants *VariantPage
}

type productHeader struct {
	Product      models.Product
	CategoryName string
}

// ProductDetailView is the product detail snapshot
type ProductDetailView struct {
	Product      *models.Product                   `json:"product,omitempty"`
	CategoryName string                            `json:"category_name,omitempty"`
	Loading      bool                              `json:"loading"`
	Error        string                            `json:"error,omitempty"`
	Variants     View[models.Variant, VariantForm] `json:"variants"`
}

// NewProductDetail builds the detail page for product id
func NewProductDetail(reg *services.Registry, id uuid.UUID, opts Options) *ProductDetail {
	d := &ProductDetail{
		ID:       id,
		reg:      reg,
		Variants: NewVariantPage(reg.Variants, &id, opts),
	}
	d.product = query.New[productHeader](d.loadHeader, query.Options[productHeader]{Immediate: true})
	return d
}

// Mount loads the product and the first page of its variants
func (d *ProductDetail) Mount(ctx context.Context) error {
	if err := d.product.Mount(ctx); err != nil {
		return err
	}
	return d.Variants.Mount(ctx)
}

// Refresh reloads the product and the current variants page
func (d *ProductDetail) Refresh(ctx context.Context) error {
	if _, err := d.product.Execute(ctx); err != nil {
		return err
	}
	return d.Variants.Refresh(ctx)
}

func (d *ProductDetail) editing() bool {
	return d.Variants.Mode() != ModeList
}

func (d *ProductDetail) loadHeader(ctx context.Context) (productHeader, error) {
	p, err := d.reg.Products.GetByID(ctx, d.ID)
	if err != nil {
		return productHeader{}, err
	}
	h := productHeader{Product: p}
	if p.CategoryID != uuid.Nil {
		// The product is still worth showing if its category is gone
		if cat, err := d.reg.Categories.GetByID(ctx, p.CategoryID); err == nil {
			h.CategoryName = cat.Name
		}
	}
	return h, nil
}

// View returns the current snapshot
func (d *ProductDetail) View() ProductDetailView {
	s := d.product.State()
	v := ProductDetailView{
		CategoryName: s.Data.CategoryName,
		Loading:      s.Loading,
		Error:        query.ErrorMessage(s.Err),
		Variants:     d.Variants.View(),
	}
	if s.Err == nil && s.Data.Product.ID != uuid.Nil {
		p := s.Data.Product
		v.Product = &p
	}
	return v
}

// OrderDetail is one order with its line items
type OrderDetail struct {
	ID     uuid.UUID
	reg    *services.Registry
	order  *query.Query[models.Order]
	totals *query.Query[orderTotals]
	Lines  *OrderDetailPage
	names  *NameCache
	logger zerolog.Logger
}

type orderTotals struct {
	Total   decimal.Decimal
	Missing int
}

// OrderLine is a line item with its computed total
type OrderLine struct {
	models.OrderDetail
	LineTotal *decimal.Decimal `json:"line_total"`
}

// OrderDetailView is the order detail snapshot. Lines is the current table
// page; Total and MissingPrices cover every line of the order.
type OrderDetailView struct {
	Order         *models.Order                             `json:"order,omitempty"`
	CustomerName  string                                    `json:"customer_name,omitempty"`
	StoreName     string                                    `json:"store_name,omitempty"`
	Loading       bool                                      `json:"loading"`
	Error         string                                    `json:"error,omitempty"`
	Lines         []OrderLine                               `json:"lines"`
	Total         decimal.Decimal                           `json:"total"`
	MissingPrices int                                       `json:"missing_prices"`
	TotalError    string                                    `json:"total_error,omitempty"`
	Page          View[models.OrderDetail, OrderDetailForm] `json:"page"`
}

// NewOrderDetail builds the detail page for order id
func NewOrderDetail(reg *services.Registry, names *NameCache, id uuid.UUID, opts Options) *OrderDetail {
	d := &OrderDetail{
		ID:     id,
		reg:    reg,
		Lines:  NewOrderDetailPage(reg.OrderDetails, &id, opts),
		names:  names,
		logger: opts.Logger.With().Str("order_id", id.String()).Logger(),
	}
	d.order = query.New[models.Order](func(ctx context.Context) (models.Order, error) {
		return reg.Orders.GetByID(ctx, id)
	}, query.Options[models.Order]{Immediate: true})
	d.totals = query.New[orderTotals](func(ctx context.Context) (orderTotals, error) {
		lines, err := reg.OrderDetails.AllByOrder(ctx, id)
		if err != nil {
			return orderTotals{}, err
		}
		var t orderTotals
		t.Total, t.Missing = models.OrderTotal(lines)
		return t, nil
	}, query.Options[orderTotals]{Immediate: true})
	d.Lines.OnWrite(func(ctx context.Context) {
		if _, err := d.totals.Execute(ctx); err != nil {
			d.logger.Warn().Err(err).Msg("order total refresh failed")
		}
	})
	return d
}

// Mount loads the order, its total and the first page of its lines
func (d *OrderDetail) Mount(ctx context.Context) error {
	if err := d.order.Mount(ctx); err != nil {
		return err
	}
	if err := d.totals.Mount(ctx); err != nil {
		return err
	}
	return d.Lines.Mount(ctx)
}

// Refresh reloads the order, its total and the current lines page
func (d *OrderDetail) Refresh(ctx context.Context) error {
	if _, err := d.order.Execute(ctx); err != nil {
		return err
	}
	if _, err := d.totals.Execute(ctx); err != nil {
		return err
	}
	return d.Lines.Refresh(ctx)
}

func (d *OrderDetail) editing() bool {
	return d.Lines.Mode() != ModeList
}

// View returns the current snapshot, resolving customer and store names
func (d *OrderDetail) View(ctx context.Context) OrderDetailView {
	s := d.order.State()
	page := d.Lines.View()

	v := OrderDetailView{
		Loading: s.Loading,
		Error:   query.ErrorMessage(s.Err),
		Lines:   make([]OrderLine, 0, len(page.Items)),
		Page:    page,
	}
	if s.Err == nil && s.Data.ID != uuid.Nil {
		o := s.Data
		v.Order = &o
		if d.names != nil {
			d.names.Resolve(ctx, []models.Order{o})
			v.CustomerName = d.names.Customer(o.CustomerID)
			v.StoreName = d.names.Store(o.StoreID)
		}
	}

	for _, line := range page.Items {
		ol := OrderLine{OrderDetail: line}
		if total, ok := line.LineTotal(); ok {
			ol.LineTotal = &total
		}
		v.Lines = append(v.Lines, ol)
	}
	t := d.totals.State()
	v.Total, v.MissingPrices = t.Data.Total, t.Data.Missing
	v.TotalError = query.ErrorMessage(t.Err)
	return v
}
