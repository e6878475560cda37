package models

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// The upstream API types money as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

// Category represents a product category.
// The upstream names the field name_cat; name is accepted on read.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
}

type categoryWire struct {
	ID          uuid.UUID `json:"id"`
	NameCat     string    `json:"name_cat,omitempty"`
	Name        string    `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
}

// UnmarshalJSON accepts both name_cat and name, preferring name_cat
func (c *Category) UnmarshalJSON(data []byte) error {
	var w categoryWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	c.ID = w.ID
	c.Name = firstNonEmpty(w.NameCat, w.Name)
	c.Description = deref(w.Description)
	return nil
}

// CategoryCreate is the payload for creating a category
type CategoryCreate struct {
	Name        string `json:"name_cat"`
	Description string `json:"description,omitempty"`
}

// CategoryUpdate is the payload for updating a category; nil fields are left unchanged
type CategoryUpdate struct {
	Name        *string `json:"name_cat,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Product represents a catalog product
type Product struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"descriptions,omitempty"`
	ImageLink   string    `json:"link_image,omitempty"`
	CategoryID  uuid.UUID `json:"categories_id"`
}

type productWire struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"descriptions"`
	ImageLink   *string    `json:"link_image"`
	CategoryID  *uuid.UUID `json:"categories_id"`
}

// UnmarshalJSON tolerates null optional fields
func (p *Product) UnmarshalJSON(data []byte) error {
	var w productWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	p.ID = w.ID
	p.Name = w.Name
	p.Description = deref(w.Description)
	p.ImageLink = deref(w.ImageLink)
	if w.CategoryID != nil {
		p.CategoryID = *w.CategoryID
	}
	return nil
}

// ProductCreate is the payload for creating a product
type ProductCreate struct {
	Name        string    `json:"name"`
	Description string    `json:"descriptions,omitempty"`
	ImageLink   string    `json:"link_image,omitempty"`
	CategoryID  uuid.UUID `json:"categories_id"`
}

// ProductUpdate is the payload for updating a product
type ProductUpdate struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"descriptions,omitempty"`
	ImageLink   *string    `json:"link_image,omitempty"`
	CategoryID  *uuid.UUID `json:"categories_id,omitempty"`
}

// Variant is a sellable option of a product with its nutrition facts
type Variant struct {
	ID             uuid.UUID        `json:"id"`
	ProductID      uuid.UUID        `json:"product_id"`
	BeverageOption string           `json:"beverage_option,omitempty"`
	Calories       *float64         `json:"calories,omitempty"`
	Fibre          *float64         `json:"dietary_fibre_g,omitempty"`
	Sugars         *float64         `json:"sugars_g,omitempty"`
	Protein        *float64         `json:"protein_g,omitempty"`
	VitaminA       string           `json:"vitamin_a,omitempty"`
	VitaminC       string           `json:"vitamin_c,omitempty"`
	Caffeine       *float64         `json:"caffeine_mg,omitempty"`
	Price          *decimal.Decimal `json:"price,omitempty"`
	SalesRank      *int             `json:"sales_rank,omitempty"`
}

type variantWire struct {
	ID             uuid.UUID        `json:"id"`
	ProductID      *uuid.UUID       `json:"product_id"`
	BeverageOption *string          `json:"beverage_option"`
	Calories       *float64         `json:"calories"`
	Fibre          *float64         `json:"dietary_fibre_g"`
	Sugars         *float64         `json:"sugars_g"`
	Protein        *float64         `json:"protein_g"`
	VitaminA       *string          `json:"vitamin_a"`
	VitaminC       *string          `json:"vitamin_c"`
	Caffeine       *float64         `json:"caffeine_mg"`
	Price          *decimal.Decimal `json:"price"`
	SalesRank      *int             `json:"sales_rank"`
}

// UnmarshalJSON tolerates null optional fields
func (v *Variant) UnmarshalJSON(data []byte) error {
	var w variantWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*v = Variant{
		ID:             w.ID,
		BeverageOption: deref(w.BeverageOption),
		Calories:       w.Calories,
		Fibre:          w.Fibre,
		Sugars:         w.Sugars,
		Protein:        w.Protein,
		VitaminA:       deref(w.VitaminA),
		VitaminC:       deref(w.VitaminC),
		Caffeine:       w.Caffeine,
		Price:          w.Price,
		SalesRank:      w.SalesRank,
	}
	if w.ProductID != nil {
		v.ProductID = *w.ProductID
	}
	return nil
}

// VariantCreate is the payload for creating a variant
type VariantCreate struct {
	ProductID      uuid.UUID        `json:"product_id"`
	BeverageOption string           `json:"beverage_option,omitempty"`
	Calories       *float64         `json:"calories,omitempty"`
	Fibre          *float64         `json:"dietary_fibre_g,omitempty"`
	Sugars         *float64         `json:"sugars_g,omitempty"`
	Protein        *float64         `json:"protein_g,omitempty"`
	VitaminA       string           `json:"vitamin_a,omitempty"`
	VitaminC       string           `json:"vitamin_c,omitempty"`
	Caffeine       *float64         `json:"caffeine_mg,omitempty"`
	Price          *decimal.Decimal `json:"price,omitempty"`
	SalesRank      *int             `json:"sales_rank,omitempty"`
}

// VariantUpdate is the payload for updating a variant
type VariantUpdate struct {
	ProductID      *uuid.UUID       `json:"product_id,omitempty"`
	BeverageOption *string          `json:"beverage_option,omitempty"`
	Calories       *float64         `json:"calories,omitempty"`
	Fibre          *float64         `json:"dietary_fibre_g,omitempty"`
	Sugars         *float64         `json:"sugars_g,omitempty"`
	Protein        *float64         `json:"protein_g,omitempty"`
	VitaminA       *string          `json:"vitamin_a,omitempty"`
	VitaminC       *string          `json:"vitamin_c,omitempty"`
	Caffeine       *float64         `json:"caffeine_mg,omitempty"`
	Price          *decimal.Decimal `json:"price,omitempty"`
	SalesRank      *int             `json:"sales_rank,omitempty"`
}

// Store represents a physical shop.
// The upstream names the field name_store; name is accepted on read.
type Store struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	OpenClose string    `json:"open_close,omitempty"`
}

type storeWire struct {
	ID        uuid.UUID `json:"id"`
	NameStore *string   `json:"name_store"`
	Name      *string   `json:"name"`
	Address   *string   `json:"address"`
	Phone     *string   `json:"phone"`
	OpenClose *string   `json:"open_close"`
}

// UnmarshalJSON accepts both name_store and name, preferring name_store
func (s *Store) UnmarshalJSON(data []byte) error {
	var w storeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*s = Store{
		ID:        w.ID,
		Name:      firstNonEmpty(deref(w.NameStore), deref(w.Name)),
		Address:   deref(w.Address),
		Phone:     deref(w.Phone),
		OpenClose: deref(w.OpenClose),
	}
	return nil
}

// StoreCreate is the payload for creating a store
type StoreCreate struct {
	Name      string `json:"name_store"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
	OpenClose string `json:"open_close,omitempty"`
}

// StoreUpdate is the payload for updating a store
type StoreUpdate struct {
	Name      *string `json:"name_store,omitempty"`
	Address   *string `json:"address,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	OpenClose *string `json:"open_close,omitempty"`
}

// Customer represents a shopper account. The password is write-only and
// never kept on the read model, even if the server echoes it back.
type Customer struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name,omitempty"`
	Username string    `json:"username,omitempty"`
	Sex      string    `json:"sex,omitempty"`
	Age      *int      `json:"age,omitempty"`
	Location string    `json:"location,omitempty"`
	Picture  string    `json:"picture,omitempty"`
}

type customerWire struct {
	ID       uuid.UUID `json:"id"`
	Name     *string   `json:"name"`
	Username *string   `json:"username"`
	Sex      *string   `json:"sex"`
	Age      *int      `json:"age"`
	Location *string   `json:"location"`
	Picture  *string   `json:"picture"`
}

// UnmarshalJSON tolerates null optional fields and drops the password
func (c *Customer) UnmarshalJSON(data []byte) error {
	var w customerWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*c = Customer{
		ID:       w.ID,
		Name:     deref(w.Name),
		Username: deref(w.Username),
		Sex:      deref(w.Sex),
		Age:      w.Age,
		Location: deref(w.Location),
		Picture:  deref(w.Picture),
	}
	return nil
}

// DisplayName is the name shown in lookups: name, else username
func (c Customer) DisplayName() string {
	return firstNonEmpty(c.Name, c.Username)
}

// CustomerCreate is the payload for creating a customer
type CustomerCreate struct {
	Name     string `json:"name,omitempty"`
	Username string `json:"username"`
	Password string `json:"password"`
	Sex      string `json:"sex,omitempty"`
	Age      *int   `json:"age,omitempty"`
	Location string `json:"location,omitempty"`
	Picture  string `json:"picture,omitempty"`
}

// CustomerUpdate is the payload for updating a customer
type CustomerUpdate struct {
	Name     *string `json:"name,omitempty"`
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
	Sex      *string `json:"sex,omitempty"`
	Age      *int    `json:"age,omitempty"`
	Location *string `json:"location,omitempty"`
	Picture  *string `json:"picture,omitempty"`
}

// Order is a customer purchase at a store
type Order struct {
	ID          uuid.UUID        `json:"id"`
	CustomerID  uuid.UUID        `json:"customer_id"`
	StoreID     uuid.UUID        `json:"store_id"`
	OrderDate   *Timestamp       `json:"order_date,omitempty"`
	TotalAmount *decimal.Decimal `json:"total_amount,omitempty"`
}

// OrderCreate is the payload for creating an order
type OrderCreate struct {
	CustomerID  uuid.UUID        `json:"customer_id"`
	StoreID     uuid.UUID        `json:"store_id"`
	OrderDate   *Timestamp       `json:"order_date,omitempty"`
	TotalAmount *decimal.Decimal `json:"total_amount,omitempty"`
}

// OrderUpdate is the payload for updating an order
type OrderUpdate struct {
	CustomerID  *uuid.UUID       `json:"customer_id,omitempty"`
	StoreID     *uuid.UUID       `json:"store_id,omitempty"`
	OrderDate   *Timestamp       `json:"order_date,omitempty"`
	TotalAmount *decimal.Decimal `json:"total_amount,omitempty"`
}

// OrderDetail is one line item of an order
type OrderDetail struct {
	ID        uuid.UUID        `json:"id"`
	OrderID   uuid.UUID        `json:"order_id"`
	VariantID uuid.UUID        `json:"variant_id"`
	Quantity  int              `json:"quantity"`
	Rate      *decimal.Decimal `json:"rate,omitempty"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// LineTotal returns quantity × unit price. ok is false when the line has
// no unit price, in which case the total is unknown rather than zero.
func (d OrderDetail) LineTotal() (total decimal.Decimal, ok bool) {
	if d.UnitPrice == nil {
		return decimal.Zero, false
	}
	return d.UnitPrice.Mul(decimal.NewFromInt(int64(d.Quantity))), true
}

// OrderDetailCreate is the payload for creating an order line
type OrderDetailCreate struct {
	OrderID   uuid.UUID        `json:"order_id"`
	VariantID uuid.UUID        `json:"variant_id"`
	Quantity  int              `json:"quantity"`
	Rate      *decimal.Decimal `json:"rate,omitempty"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// OrderDetailUpdate is the payload for updating an order line
type OrderDetailUpdate struct {
	OrderID   *uuid.UUID       `json:"order_id,omitempty"`
	VariantID *uuid.UUID       `json:"variant_id,omitempty"`
	Quantity  *int             `json:"quantity,omitempty"`
	Rate      *decimal.Decimal `json:"rate,omitempty"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// OrderTotal sums the known line totals of an order. missing counts lines
// that carry no unit price and therefore could not be added.
func OrderTotal(lines []OrderDetail) (total decimal.Decimal, missing int) {
	total = decimal.Zero
	for _, line := range lines {
		lt, ok := line.LineTotal()
		if !ok {
			missing++
			continue
		}
		total = total.Add(lt)
	}
	return total, missing
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
