package console

import (
	"github.com/SigNoz/ecommerce-console/internal/models"
	"github.com/SigNoz/ecommerce-console/internal/services"
	"github.com/google/uuid"
)

// CategoryPage lists and edits categories
type CategoryPage = Page[models.Category, CategoryForm]

// ProductPage lists and edits products
type ProductPage = Page[models.Product, ProductForm]

// VariantPage lists and edits variants
type VariantPage = Page[models.Variant, VariantForm]

// StorePage lists and edits stores
type StorePage = Page[models.Store, StoreForm]

// CustomerPage lists and edits customers
type CustomerPage = Page[models.Customer, CustomerForm]

// OrderPage lists and edits orders
type OrderPage = Page[models.Order, OrderForm]

// OrderDetailPage lists and edits order lines
type OrderDetailPage = Page[models.OrderDetail, OrderDetailForm]

// NewCategoryPage builds the categories page
func NewCategoryPage(svc services.Service[models.Category, models.CategoryCreate, models.CategoryUpdate], opts Options) *CategoryPage {
	return NewPage(Entity[models.Category, CategoryForm]{
		Name:     "category",
		Title:    "Category",
		ID:       func(c models.Category) uuid.UUID { return c.ID },
		Label:    func(c models.Category) string { return c.Name },
		Empty:    func() CategoryForm { return CategoryForm{} },
		FromRow:  categoryFromRow,
		Validate: validateForm[CategoryForm],
	}, Bind(svc, services.ListParams{}, CategoryForm.create, CategoryForm.update), opts)
}

// NewProductPage builds the products page
func NewProductPage(svc services.Service[models.Product, models.ProductCreate, models.ProductUpdate], opts Options) *ProductPage {
	return NewPage(Entity[models.Product, ProductForm]{
		Name:     "product",
		Title:    "Product",
		ID:       func(p models.Product) uuid.UUID { return p.ID },
		Label:    func(p models.Product) string { return p.Name },
		Empty:    func() ProductForm { return ProductForm{} },
		FromRow:  productFromRow,
		Validate: validateForm[ProductForm],
	}, Bind(svc, services.ListParams{}, ProductForm.create, ProductForm.update), opts)
}

// NewVariantPage builds a variants page. With a non-nil productID the list
// is limited to that product and new variants default to it.
func NewVariantPage(svc services.Service[models.Variant, models.VariantCreate, models.VariantUpdate], productID *uuid.UUID, opts Options) *VariantPage {
	base := services.ListParams{ProductID: productID}
	return NewPage(Entity[models.Variant, VariantForm]{
		Name:  "variant",
		Title: "Variant",
		ID:    func(v models.Variant) uuid.UUID { return v.ID },
		Label: func(v models.Variant) string {
			if v.BeverageOption != "" {
				return v.BeverageOption
			}
			return v.ID.String()
		},
		Empty: func() VariantForm {
			if productID == nil {
				return VariantForm{}
			}
			return VariantForm{ProductID: productID.String()}
		},
		FromRow:  variantFromRow,
		Validate: validateForm[VariantForm],
	}, Bind(svc, base, VariantForm.create, VariantForm.update), opts)
}

// NewStorePage builds the stores page
func NewStorePage(svc services.Service[models.Store, models.StoreCreate, models.StoreUpdate], opts Options) *StorePage {
	return NewPage(Entity[models.Store, StoreForm]{
		Name:     "store",
		Title:    "Store",
		ID:       func(s models.Store) uuid.UUID { return s.ID },
		Label:    func(s models.Store) string { return s.Name },
		Empty:    func() StoreForm { return StoreForm{} },
		FromRow:  storeFromRow,
		Validate: validateForm[StoreForm],
	}, Bind(svc, services.ListParams{}, StoreForm.create, StoreForm.update), opts)
}

// NewCustomerPage builds the customers page
func NewCustomerPage(svc services.Service[models.Customer, models.CustomerCreate, models.CustomerUpdate], opts Options) *CustomerPage {
	return NewPage(Entity[models.Customer, CustomerForm]{
		Name:     "customer",
		Title:    "Customer",
		ID:       func(c models.Customer) uuid.UUID { return c.ID },
		Label:    func(c models.Customer) string { return c.DisplayName() },
		Empty:    func() CustomerForm { return CustomerForm{} },
		FromRow:  customerFromRow,
		Validate: validateForm[CustomerForm],
	}, Bind(svc, services.ListParams{}, CustomerForm.create, CustomerForm.update), opts)
}

// NewOrderPage builds the orders page
func NewOrderPage(svc services.Service[models.Order, models.OrderCreate, models.OrderUpdate], opts Options) *OrderPage {
	return NewPage(Entity[models.Order, OrderForm]{
		Name:     "order",
		Title:    "Order",
		ID:       func(o models.Order) uuid.UUID { return o.ID },
		Label:    func(o models.Order) string { return "order " + o.ID.String() },
		Empty:    func() OrderForm { return OrderForm{} },
		FromRow:  orderFromRow,
		Validate: validateForm[OrderForm],
	}, Bind(svc, services.ListParams{}, OrderForm.create, OrderForm.update), opts)
}

// NewOrderDetailPage builds an order lines page. With a non-nil orderID the
// list is limited to that order and new lines default to it.
func NewOrderDetailPage(svc services.Service[models.OrderDetail, models.OrderDetailCreate, models.OrderDetailUpdate], orderID *uuid.UUID, opts Options) *OrderDetailPage {
	base := services.ListParams{OrderID: orderID}
	return NewPage(Entity[models.OrderDetail, OrderDetailForm]{
		Name:  "order detail",
		Title: "Order detail",
		ID:    func(d models.OrderDetail) uuid.UUID { return d.ID },
		Label: func(d models.OrderDetail) string { return "order line " + d.ID.String() },
		Empty: func() OrderDetailForm {
			if orderID == nil {
				return OrderDetailForm{}
			}
			return OrderDetailForm{OrderID: orderID.String()}
		},
		FromRow:  orderDetailFromRow,
		Validate: validateForm[OrderDetailForm],
	}, Bind(svc, base, OrderDetailForm.create, OrderDetailForm.update), opts)
}
