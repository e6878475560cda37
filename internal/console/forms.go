package console

import (
	"github.com/SigNoz/ecommerce-console/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryForm is the add/edit form for categories
type CategoryForm struct {
	Name        string `json:"name" validate:"required,notblank,max=100"`
	Description string `json:"description" validate:"max=500"`
}

func categoryFromRow(c models.Category) CategoryForm {
	return CategoryForm{Name: c.Name, Description: c.Description}
}


func (f CategoryForm) create() (models.CategoryCreate, error) {
	return models.CategoryCreate{Name: f.Name, Description: f.Description}, nil
}

func (f CategoryForm) update() (models.CategoryUpdate, error) {
	return models.CategoryUpdate{Name: &f.Name, Description: &f.Description}, nil
}

// ProductForm is the add/edit form for products
type ProductForm struct {
	Name        string `json:"name" validate:"required,notblank,max=100"`
	Description string `json:"descriptions" validate:"max=500"`
	ImageLink   string `json:"link_image" validate:"omitempty,url"`
	CategoryID  string `json:"categories_id" validate:"required,uuid"`
}

func productFromRow(p models.Product) ProductForm {
	return ProductForm{
		Name:        p.Name,
		Description: p.Description,
		ImageLink:   p.ImageLink,
		CategoryID:  idString(p.CategoryID),
	}
}


func (f ProductForm) create() (models.ProductCreate, error) {
	cat, err := uuid.Parse(f.CategoryID)
	if err != nil {
		return models.ProductCreate{}, err
	}
	return models.ProductCreate{
		Name:        f.Name,
		Description: f.Description,
		ImageLink:   f.ImageLink,
		CategoryID:  cat,
	}, nil
}

func (f ProductForm) update() (models.ProductUpdate, error) {
	cat, err := uuid.Parse(f.CategoryID)
	if err != nil {
		return models.ProductUpdate{}, err
	}
	return models.ProductUpdate{
		Name:        &f.Name,
		Description: &f.Description,
		ImageLink:   &f.ImageLink,
		CategoryID:  &cat,
	}, nil
}

// VariantForm is the add/edit form for product variants
type VariantForm struct {
	ProductID      string           `json:"product_id" validate:"required,uuid"`
	BeverageOption string           `json:"beverage_option" validate:"required,notblank,max=100"`
	Calories       *float64         `json:"calories,omitempty" validate:"omitempty,gte=0"`
	Fibre          *float64         `json:"dietary_fibre_g,omitempty" validate:"omitempty,gte=0"`
	Sugars         *float64         `json:"sugars_g,omitempty" validate:"omitempty,gte=0"`
	Protein        *float64         `json:"protein_g,omitempty" validate:"omitempty,gte=0"`
	VitaminA       string           `json:"vitamin_a"`
	VitaminC       string           `json:"vitamin_c"`
	Caffeine       *float64         `json:"caffeine_mg,omitempty" validate:"omitempty,gte=0"`
	Price          *decimal.Decimal `json:"price,omitempty" validate:"required,gte=0"`
	SalesRank      *int             `json:"sales_rank,omitempty"`
}

func variantFromRow(v models.Variant) VariantForm {
	return VariantForm{
		ProductID:      idString(v.ProductID),
		BeverageOption: v.BeverageOption,
		Calories:       v.Calories,
		Fibre:          v.Fibre,
		Sugars:         v.Sugars,
		Protein:        v.Protein,
		VitaminA:       v.VitaminA,
		VitaminC:       v.VitaminC,
		Caffeine:       v.Caffeine,
		Price:          v.Price,
		SalesRank:      v.SalesRank,
	}
}


func (f VariantForm) create() (models.VariantCreate, error) {
	product, err := uuid.Parse(f.ProductID)
	if err != nil {
		return models.VariantCreate{}, err
	}
	return models.VariantCreate{
		ProductID:      product,
		BeverageOption: f.BeverageOption,
		Calories:       f.Calories,
		Fibre:          f.Fibre,
		Sugars:         f.Sugars,
		Protein:        f.Protein,
		VitaminA:       f.VitaminA,
		VitaminC:       f.VitaminC,
		Caffeine:       f.Caffeine,
		Price:          f.Price,
		SalesRank:      f.SalesRank,
	}, nil
}

func (f VariantForm) update() (models.VariantUpdate, error) {
	product, err := uuid.Parse(f.ProductID)
	if err != nil {
		return models.VariantUpdate{}, err
	}
	return models.VariantUpdate{
		ProductID:      &product,
		BeverageOption: &f.BeverageOption,
		Calories:       f.Calories,
		Fibre:          f.Fibre,
		Sugars:         f.Sugars,
		Protein:        f.Protein,
		VitaminA:       &f.VitaminA,
		VitaminC:       &f.VitaminC,
		Caffeine:       f.Caffeine,
		Price:          f.Price,
		SalesRank:      f.SalesRank,
	}, nil
}

// StoreForm is the add/edit form for stores
type StoreForm struct {
	Name      string `json:"name" validate:"required,notblank,max=100"`
	Address   string `json:"address" validate:"required,notblank,max=500"`
	Phone     string `json:"phone" validate:"omitempty,phone"`
	OpenClose string `json:"open_close"`
}

func storeFromRow(s models.Store) StoreForm {
	return StoreForm{Name: s.Name, Address: s.Address, Phone: s.Phone, OpenClose: s.OpenClose}
}


func (f StoreForm) create() (models.StoreCreate, error) {
	return models.StoreCreate{Name: f.Name, Address: f.Address, Phone: f.Phone, OpenClose: f.OpenClose}, nil
}

func (f StoreForm) update() (models.StoreUpdate, error) {
	return models.StoreUpdate{Name: &f.Name, Address: &f.Address, Phone: &f.Phone, OpenClose: &f.OpenClose}, nil
}

// CustomerForm is the add/edit form for customers. Password is required
// when adding and only sent on edit when filled in.
type CustomerForm struct {
	Name     string `json:"name" validate:"max=100"`
	Username string `json:"username" validate:"required,username"`
	Password string `json:"password,omitempty"`
	Sex      string `json:"sex" validate:"omitempty,oneof=male female other"`
	Age      *int   `json:"age,omitempty" validate:"omitempty,min=1,max=120"`
	Location string `json:"location" validate:"max=200"`
	Picture  string `json:"picture" validate:"omitempty,url"`
}

func customerFromRow(c models.Customer) CustomerForm {
	return CustomerForm{
		Name:     c.Name,
		Username: c.Username,
		Sex:      c.Sex,
		Age:      c.Age,
		Location: c.Location,
		Picture:  c.Picture,
	}
}


func (f CustomerForm) create() (models.CustomerCreate, error) {
	return models.CustomerCreate{
		Name:     f.Name,
		Username: f.Username,
		Password: f.Password,
		Sex:      f.Sex,
		Age:      f.Age,
		Location: f.Location,
		Picture:  f.Picture,
	}, nil
}

func (f CustomerForm) update() (models.CustomerUpdate, error) {
	u := models.CustomerUpdate{
		Name:     &f.Name,
		Username: &f.Username,
		Sex:      &f.Sex,
		Age:      f.Age,
		Location: &f.Location,
		Picture:  &f.Picture,
	}
	if f.Password != "" {
		u.Password = &f.Password
	}
	return u, nil
}

// OrderForm is the add/edit form for orders
type OrderForm struct {
	CustomerID  string            `json:"customer_id" validate:"required,uuid"`
	StoreID     string            `json:"store_id" validate:"required,uuid"`
	OrderDate   *models.Timestamp `json:"order_date,omitempty"`
	TotalAmount *decimal.Decimal  `json:"total_amount,omitempty" validate:"omitempty,gte=0"`
}

func orderFromRow(o models.Order) OrderForm {
	return OrderForm{
		CustomerID:  idString(o.CustomerID),
		StoreID:     idString(o.StoreID),
		OrderDate:   o.OrderDate,
		TotalAmount: o.TotalAmount,
	}
}


func (f OrderForm) ids() (customer, store uuid.UUID, err error) {
	if customer, err = uuid.Parse(f.CustomerID); err != nil {
		return
	}
	store, err = uuid.Parse(f.StoreID)
	return
}

func (f OrderForm) create() (models.OrderCreate, error) {
	customer, store, err := f.ids()
	if err != nil {
		return models.OrderCreate{}, err
	}
	return models.OrderCreate{CustomerID: customer, StoreID: store, OrderDate: f.OrderDate, TotalAmount: f.TotalAmount}, nil
}

func (f OrderForm) update() (models.OrderUpdate, error) {
	customer, store, err := f.ids()
	if err != nil {
		return models.OrderUpdate{}, err
	}
	return models.OrderUpdate{CustomerID: &customer, StoreID: &store, OrderDate: f.OrderDate, TotalAmount: f.TotalAmount}, nil
}

// OrderDetailForm is the add/edit form for order lines
type OrderDetailForm struct {
	OrderID   string           `json:"order_id" validate:"required,uuid"`
	VariantID string           `json:"variant_id" validate:"required,uuid"`
	Quantity  *int             `json:"quantity,omitempty" validate:"required,min=1"`
	Rate      *decimal.Decimal `json:"rate,omitempty" validate:"omitempty,gte=0"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty" validate:"required,gte=0"`
}

func orderDetailFromRow(d models.OrderDetail) OrderDetailForm {
	q := d.Quantity
	return OrderDetailForm{
		OrderID:   idString(d.OrderID),
		VariantID: idString(d.VariantID),
		Quantity:  &q,
		Rate:      d.Rate,
		UnitPrice: d.UnitPrice,
	}
}


func (f OrderDetailForm) ids() (order, variant uuid.UUID, err error) {
	if order, err = uuid.Parse(f.OrderID); err != nil {
		return
	}
	variant, err = uuid.Parse(f.VariantID)
	return
}

func (f OrderDetailForm) create() (models.OrderDetailCreate, error) {
	order, variant, err := f.ids()
	if err != nil {
		return models.OrderDetailCreate{}, err
	}
	return models.OrderDetailCreate{
		OrderID:   order,
		VariantID: variant,
		Quantity:  derefInt(f.Quantity),
		Rate:      f.Rate,
		UnitPrice: f.UnitPrice,
	}, nil
}

func (f OrderDetailForm) update() (models.OrderDetailUpdate, error) {
	order, variant, err := f.ids()
	if err != nil {
		return models.OrderDetailUpdate{}, err
	}
	return models.OrderDetailUpdate{
		OrderID:   &order,
		VariantID: &variant,
		Quantity:  f.Quantity,
		Rate:      f.Rate,
		UnitPrice: f.UnitPrice,
	}, nil
}

func idString(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
