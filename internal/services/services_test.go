package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/SigNoz/ecommerce-console/internal/apitest"
	"github.com/SigNoz/ecommerce-console/internal/client"
	"github.com/SigNoz/ecommerce-console/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T) (*Registry, *apitest.Server) {
	t.Helper()
	srv := apitest.New(t)
	return New(srv.NewClient(t, nil), DefaultLimits), srv
}

func strPtr(s string) *string { return &s }

func TestListParamsEncode(t *testing.T) {
	cat := uuid.MustParse("5b0c3a52-4a4f-4a43-9d1a-1d1f0f9c2f11")

	tests := []struct {
		name   string
		params ListParams
		want   string
	}{
		{"defaults", ListParams{}, "limit=10&skip=0"},
		{"page two", ListParams{Page: 2, PageSize: 10}, "limit=10&skip=10"},
		{"page below one", ListParams{Page: -4, PageSize: 5}, "limit=5&skip=0"},
		{"size zero uses default", ListParams{Page: 3}, "limit=10&skip=20"},
		{"size clamped", ListParams{Page: 1, PageSize: 5000}, "limit=1000&skip=0"},
		{"explicit skip limit", ListParams{Skip: 7, Limit: 3}, "limit=3&skip=7"},
		{"negative skip", ListParams{Skip: -1, Limit: 3}, "limit=3&skip=0"},
		{"blank search omitted", ListParams{Search: "   "}, "limit=10&skip=0"},
		{"search trimmed", ListParams{Search: " latte "}, "limit=10&search=latte&skip=0"},
		{"filter", ListParams{CategoryID: &cat}, "category_id=" + cat.String() + "&limit=10&skip=0"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.params.Values().Encode())
			assert.Equal(t, tt.params.Values().Encode(), tt.params.Values().Encode())
		})
	}
}

func TestLimitsFromConfig(t *testing.T) {
	l := Limits{DefaultPageSize: 25, MaxPageSize: 50}
	assert.Equal(t, "limit=25&skip=0", ListParams{}.Encode(l).Encode())
	assert.Equal(t, "limit=50&skip=50", ListParams{Page: 2, PageSize: 99}.Encode(l).Encode())

	page, size := ListParams{Page: 0, PageSize: 0}.Normalized(Limits{})
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, size)
}

func TestCreateThenList(t *testing.T) {
	reg, _ := newRegistry(t)
	ctx := context.Background()

	created, err := reg.Categories.Create(ctx, models.CategoryCreate{Name: "Coffee"})
	require.NoError(t, err)
	assert.Equal(t, "Coffee", created.Name)
	assert.NotEqual(t, uuid.Nil, created.ID)

	page, err := reg.Categories.GetAll(ctx, ListParams{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, created, page.Items[0])
	assert.Equal(t, 1, page.Total)
}

func TestUpdateOnlyChangesPatchedFields(t *testing.T) {
	reg, _ := newRegistry(t)
	ctx := context.Background()

	store, err := reg.Stores.Create(ctx, models.StoreCreate{
		Name:    "Downtown",
		Address: "1 Main St",
		Phone:   "+15551234",
	})
	require.NoError(t, err)

	_, err = reg.Stores.Update(ctx, store.ID, models.StoreUpdate{Address: strPtr("2 Side St")})
	require.NoError(t, err)

	got, err := reg.Stores.GetByID(ctx, store.ID)
	require.NoError(t, err)
	assert.Equal(t, "Downtown", got.Name)
	assert.Equal(t, "2 Side St", got.Address)
	assert.Equal(t, "+15551234", got.Phone)
}

func TestDeleteThenGetIsNotFound(t *testing.T) {
	reg, _ := newRegistry(t)
	ctx := context.Background()

	c, err := reg.Customers.Create(ctx, models.CustomerCreate{Username: "ana_1", Password: "password123"})
	require.NoError(t, err)

	require.NoError(t, reg.Customers.Delete(ctx, c.ID))

	page, err := reg.Customers.GetAll(ctx, ListParams{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	_, err = reg.Customers.GetByID(ctx, c.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrNotFound)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Customer not found", apiErr.Detail)
}

func TestPagesConcatenateWithoutDuplicates(t *testing.T) {
	reg, srv := newRegistry(t)
	ctx := context.Background()

	want := map[uuid.UUID]bool{}
	for i := 0; i < 23; i++ {
		id := srv.Seed("stores", apitest.Record{"name_store": "Store"})
		want[id] = true
	}

	seen := map[uuid.UUID]bool{}
	for page := 1; ; page++ {
		p, err := reg.Stores.GetAll(ctx, ListParams{Page: page, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, 23, p.Total)
		if len(p.Items) == 0 {
			break
		}
		for _, s := range p.Items {
			assert.False(t, seen[s.ID], "duplicate %s on page %d", s.ID, page)
			seen[s.ID] = true
		}
	}
	assert.Equal(t, want, seen)
}

func TestListIsIdempotent(t *testing.T) {
	reg, srv := newRegistry(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		srv.Seed("categories", apitest.Record{"name_cat": "c"})
	}

	first, err := reg.Categories.GetAll(ctx, ListParams{Page: 1, PageSize: 3})
	require.NoError(t, err)
	second, err := reg.Categories.GetAll(ctx, ListParams{Page: 1, PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestServiceErrorsSurfaceUnchanged(t *testing.T) {
	reg, srv := newRegistry(t)
	srv.FailNext(http.StatusInternalServerError, "database is down")

	_, err := reg.Products.GetAll(context.Background(), ListParams{})
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, client.StatusCode(err))
	assert.Equal(t, 1, srv.Calls(http.MethodGet, "products"), "services must not retry")
}

func TestFilteredLists(t *testing.T) {
	reg, srv := newRegistry(t)
	ctx := context.Background()

	cat := srv.Seed("categories", apitest.Record{"name_cat": "Tea"})
	coffee := srv.Seed("products", apitest.Record{"name": "Espresso", "categories_id": cat})
	tea := srv.Seed("products", apitest.Record{"name": "Chai", "categories_id": cat})
	srv.Seed("variants", apitest.Record{"product_id": coffee, "beverage_option": "Short", "price": 2.5})
	srv.Seed("variants", apitest.Record{"product_id": coffee, "beverage_option": "Tall", "price": 3.5})
	srv.Seed("variants", apitest.Record{"product_id": tea, "beverage_option": "Grande", "price": 4.25})

	byProduct, err := reg.Variants.GetByProduct(ctx, coffee, ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 2, byProduct.Total)
	for _, v := range byProduct.Items {
		assert.Equal(t, coffee, v.ProductID)
	}

	minPrice := decimal.RequireFromString("3")
	found, err := reg.Variants.Search(ctx, VariantSearch{MinPrice: &minPrice})
	require.NoError(t, err)
	require.Equal(t, 2, found.Total)

	found, err = reg.Variants.Search(ctx, VariantSearch{Query: "tall"})
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Tall", found.Items[0].BeverageOption)
	assert.True(t, decimal.RequireFromString("3.5").Equal(*found.Items[0].Price))

	products, err := reg.Products.GetAll(ctx, ListParams{Search: "chai"})
	require.NoError(t, err)
	require.Len(t, products.Items, 1)
	assert.Equal(t, tea, products.Items[0].ID)
}

func TestGetByOrder(t *testing.T) {
	reg, srv := newRegistry(t)
	ctx := context.Background()

	customer := srv.Seed("customers", apitest.Record{"username": "bob", "password": "secret123"})
	store := srv.Seed("stores", apitest.Record{"name_store": "Main"})
	cat := srv.Seed("categories", apitest.Record{"name_cat": "Coffee"})
	product := srv.Seed("products", apitest.Record{"name": "Latte", "categories_id": cat})
	variant := srv.Seed("variants", apitest.Record{"product_id": product})
	order := srv.Seed("orders", apitest.Record{"customer_id": customer, "store_id": store})
	other := srv.Seed("orders", apitest.Record{"customer_id": customer, "store_id": store})

	unit := decimal.RequireFromString("4.50")
	_, err := reg.OrderDetails.Create(ctx, models.OrderDetailCreate{OrderID: order, VariantID: variant, Quantity: 2, UnitPrice: &unit})
	require.NoError(t, err)
	_, err = reg.OrderDetails.Create(ctx, models.OrderDetailCreate{OrderID: other, VariantID: variant, Quantity: 1, UnitPrice: &unit})
	require.NoError(t, err)

	lines, err := reg.OrderDetails.GetByOrder(ctx, order, ListParams{})
	require.NoError(t, err)
	require.Len(t, lines.Items, 1)

	total, ok := lines.Items[0].LineTotal()
	require.True(t, ok)
	assert.Equal(t, "9", total.String())
}

func TestCustomerPasswordNeverRead(t *testing.T) {
	reg, srv := newRegistry(t)

	c, err := reg.Customers.Create(context.Background(), models.CustomerCreate{Username: "eve", Password: "longenough"})
	require.NoError(t, err)

	stored, ok := srv.Get("customers", c.ID)
	require.True(t, ok)
	assert.Equal(t, "longenough", stored["password"])
	assert.Equal(t, "eve", c.DisplayName())
}

func TestAllByOrderWalksEveryPage(t *testing.T) {
	srv := apitest.New(t)
	reg := New(srv.NewClient(t, nil), Limits{DefaultPageSize: 2, MaxPageSize: 5})

	customer := srv.Seed("customers", apitest.Record{"username": "bob", "password": "secret123"})
	store := srv.Seed("stores", apitest.Record{"name_store": "Main"})
	variant := srv.Seed("variants", apitest.Record{"beverage_option": "Tall"})
	order := srv.Seed("orders", apitest.Record{"customer_id": customer, "store_id": store})
	other := srv.Seed("orders", apitest.Record{"customer_id": customer, "store_id": store})
	for i := 0; i < 12; i++ {
		srv.Seed("order_details", apitest.Record{"order_id": order, "variant_id": variant, "quantity": 1, "unit_price": 1})
	}
	srv.Seed("order_details", apitest.Record{"order_id": other, "variant_id": variant, "quantity": 1, "unit_price": 1})

	lines, err := reg.OrderDetails.AllByOrder(context.Background(), order)
	require.NoError(t, err)
	assert.Len(t, lines, 12)
	assert.Equal(t, 3, srv.Calls(http.MethodGet, "order_details"))

	seen := make(map[uuid.UUID]bool)
	for _, l := range lines {
		assert.False(t, seen[l.ID], "duplicate line %s", l.ID)
		seen[l.ID] = true
	}
}
