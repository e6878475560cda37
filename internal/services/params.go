package services

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Limits bounds page sizes sent upstream
type Limits struct {
	DefaultPageSize int
	MaxPageSize     int
}

// DefaultLimits are used when a Registry is built without explicit limits
var DefaultLimits = Limits{DefaultPageSize: 10, MaxPageSize: 1000}

// ListParams are the list filters understood by the upstream. Page and
// PageSize are translated to skip/limit; Skip and Limit are only used when
// neither Page nor PageSize is set.
type ListParams struct {
	Page     int
	PageSize int
	Skip     int
	Limit    int

	Search     string
	CategoryID *uuid.UUID
	ProductID  *uuid.UUID
	OrderID    *uuid.UUID
	CustomerID *uuid.UUID
	StoreID    *uuid.UUID
}

// Values encodes p with DefaultLimits
func (p ListParams) Values() url.Values {
	return p.Encode(DefaultLimits)
}

// Encode normalizes p and returns the query string values. The result
// depends only on p and l, so identical calls produce identical requests.
func (p ListParams) Encode(l Limits) url.Values {
	l = l.withDefaults()
	v := url.Values{}

	skip, limit := p.window(l)
	v.Set("skip", strconv.Itoa(skip))
	v.Set("limit", strconv.Itoa(limit))

	if s := strings.TrimSpace(p.Search); s != "" {
		v.Set("search", s)
	}
	setID(v, "category_id", p.CategoryID)
	setID(v, "product_id", p.ProductID)
	setID(v, "order_id", p.OrderID)
	setID(v, "customer_id", p.CustomerID)
	setID(v, "store_id", p.StoreID)
	return v
}

// Normalized returns the page and page size p resolves to
func (p ListParams) Normalized(l Limits) (page, pageSize int) {
	l = l.withDefaults()
	page = p.Page
	if page < 1 {
		page = 1
	}
	return page, l.clamp(p.PageSize)
}

func (p ListParams) window(l Limits) (skip, limit int) {
	if p.Page == 0 && p.PageSize == 0 && (p.Skip != 0 || p.Limit != 0) {
		skip = p.Skip
		if skip < 0 {
			skip = 0
		}
		return skip, l.clamp(p.Limit)
	}

	page, size := p.Normalized(l)
	return (page - 1) * size, size
}

func (l Limits) withDefaults() Limits {
	if l.DefaultPageSize <= 0 {
		l.DefaultPageSize = DefaultLimits.DefaultPageSize
	}
	if l.MaxPageSize <= 0 {
		l.MaxPageSize = DefaultLimits.MaxPageSize
	}
	if l.DefaultPageSize > l.MaxPageSize {
		l.DefaultPageSize = l.MaxPageSize
	}
	return l
}

func (l Limits) clamp(size int) int {
	switch {
	case size <= 0:
		return l.DefaultPageSize
	case size > l.MaxPageSize:
		return l.MaxPageSize
	}
	return size
}

func setID(v url.Values, key string, id *uuid.UUID) {
	if id != nil {
		v.Set(key, id.String())
	}
}
