package console

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/SigNoz/ecommerce-console/internal/apitest"
	"github.com/SigNoz/ecommerce-console/internal/client"
	"github.com/SigNoz/ecommerce-console/internal/services"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memTokens struct {
	mu    sync.Mutex
	token string
}

func (m *memTokens) Get(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *memTokens) Set(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *memTokens) Clear(context.Context) error {
	return m.Set(context.Background(), "")
}

var testSettings = Settings{
	PageSize:          10,
	MaxPageSize:       1000,
	DashboardPageSize: 1000,
	SearchPageSize:    50,
	SearchDebounce:    10 * time.Millisecond,
}

func newTestConsole(t *testing.T) (*Console, *apitest.Server) {
	t.Helper()
	srv := apitest.New(t)
	tokens := &memTokens{token: "staff-token"}
	session := NewSession(tokens, nil, zerolog.Nop())
	c := srv.NewClient(t, tokens, client.WithRedirector(session))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	con := New(ctx, services.New(c, services.DefaultLimits), session, testSettings, nil, zerolog.Nop())
	t.Cleanup(con.Close)
	return con, srv
}

func confirmed() context.Context {
	return WithConfirmation(context.Background())
}

func lastNotification(t *testing.T, con *Console) Notification {
	t.Helper()
	notes := con.Notifications.Drain()
	require.NotEmpty(t, notes)
	return notes[len(notes)-1]
}

func TestCreateCoffeeCategory(t *testing.T) {
	con, srv := newTestConsole(t)
	ctx := context.Background()
	page := con.Categories

	require.NoError(t, page.Mount(ctx))
	require.NoError(t, page.OpenAdd())
	assert.Equal(t, ModeAdd, page.View().Mode)

	err := page.Submit(ctx, CategoryForm{Name: "Coffee", Description: "Hot and cold coffee drinks"})
	require.NoError(t, err)

	n := lastNotification(t, con)
	assert.Equal(t, LevelSuccess, n.Level)
	assert.Equal(t, "Category created successfully", n.Message)

	v := page.View()
	assert.Equal(t, ModeList, v.Mode)
	assert.Nil(t, v.Form)
	assert.Equal(t, 1, v.Page)
	require.Len(t, v.Items, 1)
	assert.Equal(t, "Coffee", v.Items[0].Name)
	assert.Equal(t, "Hot and cold coffee drinks", v.Items[0].Description)
	assert.Equal(t, 1, srv.Count("categories"))
}

func TestDeleteReferencedCategoryIsRejected(t *testing.T) {
	con, srv := newTestConsole(t)
	cat := srv.Seed("categories", apitest.Record{"name_cat": "Coffee"})
	srv.Seed("products", apitest.Record{"name": "Latte", "categories_id": cat})

	page := con.Categories
	require.NoError(t, page.Mount(context.Background()))

	err := page.Delete(confirmed(), cat)
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrConflict)

	n := lastNotification(t, con)
	assert.Equal(t, LevelError, n.Level)
	assert.Equal(t, "Failed to delete category: Category is still referenced by 1 products", n.Message)

	v := page.View()
	require.Len(t, v.Items, 1)
	assert.Equal(t, cat, v.Items[0].ID)
	assert.Empty(t, v.Error)
	assert.Equal(t, 1, srv.Count("categories"))
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	con, srv := newTestConsole(t)
	cat := srv.Seed("categories", apitest.Record{"name_cat": "Tea"})
	page := con.Categories
	require.NoError(t, page.Mount(context.Background()))

	err := page.Delete(context.Background(), cat)
	var confirm *ConfirmationRequired
	require.ErrorAs(t, err, &confirm)
	assert.Equal(t, `Are you sure you want to delete "Tea"? This action cannot be undone.`, confirm.Prompt)
	assert.Zero(t, srv.Calls(http.MethodDelete, "categories"))

	require.NoError(t, page.Delete(confirmed(), cat))
	assert.Equal(t, "Category deleted successfully", lastNotification(t, con).Message)
	assert.Empty(t, page.View().Items)
}

func TestInvalidFormNeverReachesServer(t *testing.T) {
	con, srv := newTestConsole(t)
	page := con.Categories
	require.NoError(t, page.OpenAdd())

	err := page.Submit(context.Background(), CategoryForm{Name: "  ", Description: "x"})
	var fieldErrs FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, msgRequired, fieldErrs["name"])
	assert.Zero(t, srv.Calls(http.MethodPost, "categories"))

	v := page.View()
	assert.Equal(t, ModeAdd, v.Mode)
	require.NotNil(t, v.Form)
	assert.Equal(t, "x", v.Form.Description)
	assert.Equal(t, fieldErrs, v.FieldErrors)
}

func TestSubmitFailureKeepsModalOpen(t *testing.T) {
	con, srv := newTestConsole(t)
	page := con.Stores
	require.NoError(t, page.OpenAdd())

	srv.FailNext(http.StatusInternalServerError, "database is down")
	form := StoreForm{Name: "Harbor", Address: "9 Pier Rd", Phone: "+15550100"}
	err := page.Submit(context.Background(), form)
	require.Error(t, err)

	n := lastNotification(t, con)
	assert.Equal(t, LevelError, n.Level)
	assert.Equal(t, "Failed to create store: database is down", n.Message)

	v := page.View()
	assert.Equal(t, ModeAdd, v.Mode)
	require.NotNil(t, v.Form)
	assert.Equal(t, form, *v.Form)
	assert.False(t, v.Submitting)

	require.NoError(t, page.Submit(context.Background(), form), "resubmitting the same form succeeds")
	assert.Equal(t, ModeList, page.View().Mode)
}

func TestEditFlow(t *testing.T) {
	con, srv := newTestConsole(t)
	id := srv.Seed("stores", apitest.Record{"name_store": "Downtown", "address": "1 Main St", "phone": "+15551234"})
	page := con.Stores
	require.NoError(t, page.Mount(context.Background()))

	require.NoError(t, page.OpenEdit(context.Background(), id))
	v := page.View()
	assert.Equal(t, ModeEdit, v.Mode)
	require.NotNil(t, v.EditingID)
	assert.Equal(t, id, *v.EditingID)
	assert.Equal(t, StoreForm{Name: "Downtown", Address: "1 Main St", Phone: "+15551234"}, *v.Form)

	assert.ErrorIs(t, page.OpenAdd(), ErrModalOpen, "add and edit are exclusive")

	form := *v.Form
	form.Address = "2 Side St"
	err := page.Submit(context.Background(), form)
	var confirm *ConfirmationRequired
	require.ErrorAs(t, err, &confirm)
	assert.Equal(t, `Are you sure you want to update "Downtown"?`, confirm.Prompt)
	assert.Zero(t, srv.Calls(http.MethodPut, "stores"))
	assert.Equal(t, ModeEdit, page.View().Mode)

	require.NoError(t, page.Submit(confirmed(), form))
	assert.Equal(t, "Store updated successfully", lastNotification(t, con).Message)

	v = page.View()
	assert.Equal(t, ModeList, v.Mode)
	require.Len(t, v.Items, 1)
	assert.Equal(t, "2 Side St", v.Items[0].Address)
	assert.Equal(t, "Downtown", v.Items[0].Name)
}

func TestOpenEditFetchesUnlistedRow(t *testing.T) {
	con, srv := newTestConsole(t)
	id := srv.Seed("categories", apitest.Record{"name_cat": "Bakery"})

	page := con.Categories
	require.NoError(t, page.OpenEdit(context.Background(), id))
	assert.Equal(t, "Bakery", page.View().Form.Name)
	page.Cancel()

	err := page.OpenEdit(context.Background(), uuid.New())
	assert.ErrorIs(t, err, client.ErrNotFound)
	assert.Equal(t, ModeList, page.View().Mode)
	assert.Equal(t, "Failed to load category: Category not found", lastNotification(t, con).Message)
}

func TestModeTransitions(t *testing.T) {
	con, _ := newTestConsole(t)
	page := con.Categories

	assert.ErrorIs(t, page.Submit(context.Background(), CategoryForm{Name: "x"}), ErrNoForm)

	require.NoError(t, page.OpenAdd())
	assert.ErrorIs(t, page.OpenAdd(), ErrModalOpen)
	page.Cancel()

	v := page.View()
	assert.Equal(t, ModeList, v.Mode)
	assert.Nil(t, v.Form)
	assert.Nil(t, v.EditingID)
}

func TestDeleteLastRowOfLastPageStepsBack(t *testing.T) {
	con, srv := newTestConsole(t)
	var last uuid.UUID
	for i := 0; i < 11; i++ {
		last = srv.Seed("categories", apitest.Record{"name_cat": "c"})
	}
	page := con.Categories
	ctx := confirmed()

	require.NoError(t, page.Mount(ctx))
	require.NoError(t, page.ChangePage(ctx, 2, 0))
	require.Len(t, page.View().Items, 1)

	require.NoError(t, page.Delete(ctx, last))

	v := page.View()
	assert.Equal(t, 1, v.Page)
	assert.Len(t, v.Items, 10)
	assert.Equal(t, 10, v.Total)
}

func TestListErrorIsShownAndRetried(t *testing.T) {
	con, srv := newTestConsole(t)
	srv.Seed("customers", apitest.Record{"username": "ana", "password": "password1"})
	page := con.Customers

	srv.FailNext(http.StatusServiceUnavailable, "try again later")
	require.Error(t, page.Mount(context.Background()))
	assert.Equal(t, "try again later", page.View().Error)

	require.NoError(t, page.Refresh(context.Background()))
	v := page.View()
	assert.Empty(t, v.Error)
	assert.Len(t, v.Items, 1)
}

func TestSubmitJSON(t *testing.T) {
	con, srv := newTestConsole(t)
	cat := srv.Seed("categories", apitest.Record{"name_cat": "Coffee"})
	page := con.Products
	require.NoError(t, page.OpenAdd())

	err := page.SubmitJSON(context.Background(), []byte(`{"name":`))
	assert.ErrorIs(t, err, ErrInvalidForm)

	body := []byte(`{"name":"Flat White","categories_id":"` + cat.String() + `","link_image":"https://img.example/fw.png"}`)
	require.NoError(t, page.SubmitJSON(context.Background(), body))

	rows := page.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, cat, rows[0].CategoryID)
	assert.Equal(t, "https://img.example/fw.png", rows[0].ImageLink)
}

func TestUnauthorizedMarksSession(t *testing.T) {
	con, srv := newTestConsole(t)
	srv.RequireToken("fresh-token")

	err := con.Categories.Mount(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, client.ErrUnauthorized))
	assert.True(t, con.Session.LoginRequired())
	assert.Equal(t, 1, con.Session.Redirects())

	loggedIn, err := con.Session.LoggedIn(context.Background())
	require.NoError(t, err)
	assert.False(t, loggedIn, "401 clears the stored token")

	require.NoError(t, con.Session.Login(context.Background(), "fresh-token"))
	assert.False(t, con.Session.LoginRequired())
	require.NoError(t, con.Categories.Refresh(context.Background()))
	assert.Equal(t, 1, con.Session.Redirects())

	assert.ErrorIs(t, con.Session.Login(context.Background(), "  "), ErrEmptyToken)
}

func TestCustomerPasswordOnlySentWhenSet(t *testing.T) {
	con, srv := newTestConsole(t)
	page := con.Customers
	ctx := confirmed()

	require.NoError(t, page.OpenAdd())
	require.NoError(t, page.Submit(ctx, CustomerForm{Username: "ana_b", Password: "password123", Sex: "female"}))
	rows := page.Rows()
	require.Len(t, rows, 1)
	id := rows[0].ID

	require.NoError(t, page.OpenEdit(ctx, id))
	form := *page.View().Form
	assert.Empty(t, form.Password)
	form.Name = "Ana B"
	require.NoError(t, page.Submit(ctx, form))

	stored, ok := srv.Get("customers", id)
	require.True(t, ok)
	assert.Equal(t, "password123", stored["password"])
	assert.Equal(t, "Ana B", stored["name"])
}

func TestVariantPageForProduct(t *testing.T) {
	con, srv := newTestConsole(t)
	cat := srv.Seed("categories", apitest.Record{"name_cat": "Coffee"})
	product := srv.Seed("products", apitest.Record{"name": "Latte", "categories_id": cat})
	other := srv.Seed("products", apitest.Record{"name": "Mocha", "categories_id": cat})
	srv.Seed("variants", apitest.Record{"product_id": other, "beverage_option": "Tall", "price": 3})

	detail := con.ProductDetail(product)
	assert.Same(t, detail, con.ProductDetail(product))
	require.NoError(t, detail.Mount(context.Background()))

	v := detail.View()
	require.NotNil(t, v.Product)
	assert.Equal(t, "Latte", v.Product.Name)
	assert.Equal(t, "Coffee", v.CategoryName)
	assert.Empty(t, v.Variants.Items)

	require.NoError(t, detail.Variants.OpenAdd())
	form := *detail.Variants.View().Form
	assert.Equal(t, product.String(), form.ProductID)

	form.BeverageOption = "Grande"
	form.Price = decimalPtr("4.25")
	require.NoError(t, detail.Variants.Submit(context.Background(), form))

	v = detail.View()
	require.Len(t, v.Variants.Items, 1)
	assert.Equal(t, "Grande", v.Variants.Items[0].BeverageOption)
	assert.Equal(t, 2, srv.Count("variants"))
}

func decimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
