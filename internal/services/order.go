package services

import (
	"context"

	"github.com/SigNoz/ecommerce-console/internal/client"
	"github.com/SigNoz/ecommerce-console/internal/models"
	"github.com/google/uuid"
)

// OrderService handles /orders
type OrderService = Resource[models.Order, models.OrderCreate, models.OrderUpdate]

// StoreService handles /stores
type StoreService = Resource[models.Store, models.StoreCreate, models.StoreUpdate]

// CustomerService handles /customers
type CustomerService = Resource[models.Customer, models.CustomerCreate, models.CustomerUpdate]

// OrderDetailService handles /order_details
type OrderDetailService struct {
	*Resource[models.OrderDetail, models.OrderDetailCreate, models.OrderDetailUpdate]
}

// NewOrderDetailService returns the order details service
func NewOrderDetailService(c *client.Client, limits Limits) *OrderDetailService {
	return &OrderDetailService{
		Resource: NewResource[models.OrderDetail, models.OrderDetailCreate, models.OrderDetailUpdate](c, "/order_details", limits),
	}
}

// GetByOrder lists the line items of one order
func (s *OrderDetailService) GetByOrder(ctx context.Context, orderID uuid.UUID, params ListParams) (models.Page[models.OrderDetail], error) {
	params.OrderID = &orderID
	return s.GetAll(ctx, params)
}

// AllByOrder walks every page of the order's line items
func (s *OrderDetailService) AllByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderDetail, error) {
	limit := s.Limits().MaxPageSize
	var lines []models.OrderDetail
	for {
		page, err := s.GetByOrder(ctx, orderID, ListParams{Skip: len(lines), Limit: limit})
		if err != nil {
			return nil, err
		}
		lines = append(lines, page.Items...)
		if len(page.Items) == 0 || len(lines) >= page.Total {
			return lines, nil
		}
	}
}
