package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryNameMismatch(t *testing.T) {
	id := uuid.New()

	var fromBackend Category
	require.NoError(t, json.Unmarshal([]byte(`{"id":"`+id.String()+`","name_cat":"Coffee","description":null}`), &fromBackend))
	assert.Equal(t, "Coffee", fromBackend.Name)
	assert.Empty(t, fromBackend.Description)

	var fromLegacy Category
	require.NoError(t, json.Unmarshal([]byte(`{"id":"`+id.String()+`","name":"Tea"}`), &fromLegacy))
	assert.Equal(t, "Tea", fromLegacy.Name)

	var both Category
	require.NoError(t, json.Unmarshal([]byte(`{"id":"`+id.String()+`","name":"old","name_cat":"new"}`), &both))
	assert.Equal(t, "new", both.Name)

	body, err := json.Marshal(CategoryCreate{Name: "Coffee", Description: "Hot and cold coffee drinks"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name_cat":"Coffee","description":"Hot and cold coffee drinks"}`, string(body))
}

func TestStoreNameMismatch(t *testing.T) {
	var s Store
	require.NoError(t, json.Unmarshal([]byte(`{"id":"`+uuid.NewString()+`","name_store":"Downtown","phone":null}`), &s))
	assert.Equal(t, "Downtown", s.Name)

	body, err := json.Marshal(StoreCreate{Name: "Downtown"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name_store":"Downtown"}`, string(body))
}

func TestCustomerPasswordIsWriteOnly(t *testing.T) {
	var c Customer
	require.NoError(t, json.Unmarshal([]byte(`{"id":"`+uuid.NewString()+`","username":"ana_b","password":"hunter22"}`), &c))

	body, err := json.Marshal(c)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "hunter22")
	assert.Equal(t, "ana_b", c.DisplayName())

	c.Name = "Ana"
	assert.Equal(t, "Ana", c.DisplayName())
}

func TestUpdatePayloadSendsOnlyPatchedFields(t *testing.T) {
	name := "Espresso"
	body, err := json.Marshal(ProductUpdate{Name: &name})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Espresso"}`, string(body))
}

func TestMoneyIsJSONNumber(t *testing.T) {
	price := decimal.RequireFromString("4.50")
	body, err := json.Marshal(VariantCreate{ProductID: uuid.Nil, Price: &price})
	require.NoError(t, err)
	assert.Contains(t, string(body), `"price":4.5`)
}

func TestOrderDateLayouts(t *testing.T) {
	cases := map[string]time.Time{
		`"2024-03-01T09:30:00"`:        time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		`"2024-03-01T09:30:00.123456"`: time.Date(2024, 3, 1, 9, 30, 0, 123456000, time.UTC),
		`"2024-03-01T09:30:00+02:00"`:  time.Date(2024, 3, 1, 7, 30, 0, 0, time.UTC),
		`"2024-03-01"`:                 time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	for raw, want := range cases {
		var ts Timestamp
		require.NoError(t, json.Unmarshal([]byte(raw), &ts), raw)
		assert.True(t, want.Equal(ts.Time), "%s parsed as %s", raw, ts.Time)
	}

	var bad Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &bad))

	var order Order
	require.NoError(t, json.Unmarshal([]byte(`{"id":"`+uuid.NewString()+`","customer_id":"`+uuid.NewString()+`","store_id":"`+uuid.NewString()+`","order_date":null}`), &order))
	assert.True(t, order.OrderDate == nil || order.OrderDate.IsZero())
}

func TestLineTotalUsesQuantityTimesUnitPrice(t *testing.T) {
	unit := decimal.RequireFromString("3.25")
	line := OrderDetail{Quantity: 3, UnitPrice: &unit}

	total, ok := line.LineTotal()
	require.True(t, ok)
	assert.True(t, decimal.RequireFromString("9.75").Equal(total))

	_, ok = OrderDetail{Quantity: 2}.LineTotal()
	assert.False(t, ok)
}

func TestOrderTotalCountsMissingPrices(t *testing.T) {
	a := decimal.RequireFromString("2.00")
	b := decimal.RequireFromString("1.10")
	lines := []OrderDetail{
		{Quantity: 2, UnitPrice: &a},
		{Quantity: 5, UnitPrice: &b},
		{Quantity: 1},
	}

	total, missing := OrderTotal(lines)
	assert.True(t, decimal.RequireFromString("9.50").Equal(total))
	assert.Equal(t, 1, missing)
}

func TestParsePageShapes(t *testing.T) {
	withCount, err := ParsePage[Category]([]byte(`{"data":[{"id":"` + uuid.NewString() + `","name_cat":"A"}],"count":12}`))
	require.NoError(t, err)
	assert.Len(t, withCount.Items, 1)
	assert.Equal(t, 12, withCount.Total)

	withTotal, err := ParsePage[Category]([]byte(`{"data":[],"count":3,"total":40}`))
	require.NoError(t, err)
	assert.Equal(t, 40, withTotal.Total)
	assert.NotNil(t, withTotal.Items)

	zeroTotal, err := ParsePage[Category]([]byte(`{"data":[],"count":3,"total":0}`))
	require.NoError(t, err)
	assert.Equal(t, 0, zeroTotal.Total, "total wins even when zero")

	bare, err := ParsePage[Category]([]byte(`[{"id":"` + uuid.NewString() + `","name":"B"}]`))
	require.NoError(t, err)
	assert.Equal(t, 1, bare.Total)
	assert.Equal(t, "B", bare.Items[0].Name)

	empty, err := ParsePage[Category]([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
	assert.Equal(t, 0, empty.Total)

	_, err = ParsePage[Category]([]byte(`{"data":"nope"}`))
	assert.Error(t, err)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 1, TotalPages(5, 0))
}
