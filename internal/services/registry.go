package services

import (
	"github.com/SigNoz/ecommerce-console/internal/client"
	"github.com/SigNoz/ecommerce-console/internal/models"
)

// Registry bundles one service per upstream resource
type Registry struct {
	Products     *ProductService
	Categories   *CategoryService
	Stores       *StoreService
	Customers    *CustomerService
	Orders       *OrderService
	Variants     *VariantService
	OrderDetails *OrderDetailService
}

// New builds every service on top of c
func New(c *client.Client, limits Limits) *Registry {
	return &Registry{
		Products:     NewResource[models.Product, models.ProductCreate, models.ProductUpdate](c, "/products", limits),
		Categories:   NewResource[models.Category, models.CategoryCreate, models.CategoryUpdate](c, "/categories", limits),
		Stores:       NewResource[models.Store, models.StoreCreate, models.StoreUpdate](c, "/stores", limits),
		Customers:    NewResource[models.Customer, models.CustomerCreate, models.CustomerUpdate](c, "/customers", limits),
		Orders:       NewResource[models.Order, models.OrderCreate, models.OrderUpdate](c, "/orders", limits),
		Variants:     NewVariantService(c, limits),
		OrderDetails: NewOrderDetailService(c, limits),
	}
}
