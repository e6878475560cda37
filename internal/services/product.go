package services

import (
	"context"

	"github.com/SigNoz/ecommerce-console/internal/client"
	"github.com/SigNoz/ecommerce-console/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductService handles /products
type ProductService = Resource[models.Product, models.ProductCreate, models.ProductUpdate]

// CategoryService handles /categories
type CategoryService = Resource[models.Category, models.CategoryCreate, models.CategoryUpdate]

// VariantService handles /variants, plus lookups by product and price search
type VariantService struct {
	*Resource[models.Variant, models.VariantCreate, models.VariantUpdate]
}

// NewVariantService returns the variants service
func NewVariantService(c *client.Client, limits Limits) *VariantService {
	return &VariantService{
		Resource: NewResource[models.Variant, models.VariantCreate, models.VariantUpdate](c, "/variants", limits),
	}
}

// GetByProduct lists the variants of one product
func (s *VariantService) GetByProduct(ctx context.Context, productID uuid.UUID, params ListParams) (models.Page[models.Variant], error) {
	params.ProductID = &productID
	return s.GetAll(ctx, params)
}

// VariantSearch are the /variants/search criteria; unset fields are not sent
type VariantSearch struct {
	Query     string
	ProductID *uuid.UUID
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	Page      int
	PageSize  int
}

// Search finds variants by beverage option and price range
func (s *VariantService) Search(ctx context.Context, q VariantSearch) (models.Page[models.Variant], error) {
	values := ListParams{Page: q.Page, PageSize: q.PageSize, ProductID: q.ProductID}.Encode(s.limits)
	if q.Query != "" {
		values.Set("q", q.Query)
	}
	if q.MinPrice != nil {
		values.Set("min_price", q.MinPrice.String())
	}
	if q.MaxPrice != nil {
		values.Set("max_price", q.MaxPrice.String())
	}

	resp, err := s.client.Get(ctx, s.path+"/search", values)
	if err != nil {
		return models.Page[models.Variant]{}, err
	}
	return client.DecodePage[models.Variant](resp)
}
