package console

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestFormValidation(t *testing.T) {
	validID := uuid.NewString()

	tests := []struct {
		name string
		errs FieldErrors
		want FieldErrors
	}{
		{
			name: "category ok",
			errs: validateForm(CategoryForm{Name: "Coffee"}, ModeAdd),
		},
		{
			name: "category name too long",
			errs: validateForm(CategoryForm{Name: strings.Repeat("x", 101)}, ModeAdd),
			want: FieldErrors{"name": "Must be no more than 100 characters"},
		},
		{
			name: "product bad link and category",
			errs: validateForm(ProductForm{Name: "Latte", ImageLink: "img.png", CategoryID: "nope"}, ModeAdd),
			want: FieldErrors{"link_image": msgURL, "categories_id": msgID},
		},
		{
			name: "product ftp link accepted",
			errs: validateForm(ProductForm{Name: "Latte", ImageLink: "ftp://img.example.com/latte.png", CategoryID: uuid.NewString()}, ModeEdit),
		},
		{
			name: "blank store name",
			errs: validateForm(StoreForm{Name: "   ", Address: "1 Pier Rd", Phone: "+15551234"}, ModeAdd),
			want: FieldErrors{"name": msgRequired},
		},
		{
			name: "customer edit with new password",
			errs: validateForm(CustomerForm{Username: "ana_b", Password: "longenough", Sex: "female", Age: intPtr(30)}, ModeEdit),
		},
		{
			name: "product without category",
			errs: validateForm(ProductForm{Name: "Latte"}, ModeAdd),
			want: FieldErrors{"categories_id": msgRequired},
		},
		{
			name: "variant needs price",
			errs: validateForm(VariantForm{ProductID: validID, BeverageOption: "Tall"}, ModeAdd),
			want: FieldErrors{"price": msgRequired},
		},
		{
			name: "variant negative values",
			errs: validateForm(VariantForm{ProductID: validID, BeverageOption: "Tall", Price: decimalPtr("-1"), Calories: func() *float64 { f := -3.0; return &f }()}, ModeAdd),
			want: FieldErrors{"price": msgPositive, "calories": msgPositive},
		},
		{
			name: "store needs address and valid phone",
			errs: validateForm(StoreForm{Name: "Harbor", Phone: "call me"}, ModeAdd),
			want: FieldErrors{"address": msgRequired, "phone": msgPhone},
		},
		{
			name: "customer add needs password",
			errs: validateForm(CustomerForm{Username: "ana"}, ModeAdd),
			want: FieldErrors{"password": msgPassword},
		},
		{
			name: "customer edit may omit password",
			errs: validateForm(CustomerForm{Username: "ana"}, ModeEdit),
		},
		{
			name: "customer bad fields",
			errs: validateForm(CustomerForm{Username: "a b", Password: "short", Sex: "x", Age: intPtr(121), Picture: "not a url"}, ModeEdit),
			want: FieldErrors{
				"username": msgUsername,
				"password": msgPassword,
				"sex":      msgSex,
				"age":      msgAge,
				"picture":  msgURL,
			},
		},
		{
			name: "customer missing username",
			errs: validateForm(CustomerForm{Password: "password1"}, ModeAdd),
			want: FieldErrors{"username": msgRequired},
		},
		{
			name: "order ids",
			errs: validateForm(OrderForm{CustomerID: validID}, ModeAdd),
			want: FieldErrors{"store_id": msgRequired},
		},
		{
			name: "order line quantity",
			errs: validateForm(OrderDetailForm{OrderID: validID, VariantID: validID, Quantity: intPtr(0), UnitPrice: decimalPtr("1")}, ModeAdd),
			want: FieldErrors{"quantity": msgQuantity},
		},
		{
			name: "order line missing quantity and price",
			errs: validateForm(OrderDetailForm{OrderID: validID, VariantID: validID}, ModeAdd),
			want: FieldErrors{"quantity": msgRequired, "unit_price": msgRequired},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.errs)
		})
	}
}

func TestFieldErrorsMessageIsSorted(t *testing.T) {
	err := FieldErrors{"phone": msgPhone, "address": msgRequired}
	assert.Equal(t, "invalid form: address: This field is required; phone: Please enter a valid phone number", err.Error())
}

func TestContextConfirmer(t *testing.T) {
	var c ContextConfirmer
	assert.False(t, c.Confirm(context.Background(), "sure?"))
	assert.True(t, c.Confirm(WithConfirmation(context.Background()), "sure?"))

	var seen string
	f := ConfirmFunc(func(_ context.Context, prompt string) bool {
		seen = prompt
		return true
	})
	assert.True(t, f.Confirm(context.Background(), deletePrompt("Coffee")))
	assert.Equal(t, `Are you sure you want to delete "Coffee"? This action cannot be undone.`, seen)
}

func TestNotificationLogKeepsNewest(t *testing.T) {
	log := NewNotificationLog(2)
	assert.Equal(t, []Notification{}, log.Drain())

	for _, msg := range []string{"one", "two", "three"} {
		log.Notify(context.Background(), success(msg))
	}
	got := log.Drain()
	if assert.Len(t, got, 2) {
		assert.Equal(t, "two", got[0].Message)
		assert.Equal(t, "three", got[1].Message)
		assert.False(t, got[1].At.IsZero())
	}
	assert.Empty(t, log.Drain())
}
