package product

import (
	"context"

	"github.com/bizfleet/inventory-service/internal/model"
	"github.com/bizfleet/inventory-service/internal/product/dto"
)

type Repository interface {
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, tenantID, id string) (*model.Product, error)
	FindBySKU(ctx context.Context, tenantID, sku string) (*model.Product, error)
	FindAll(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, tenantID, id string) error

	IsSKUUnique(ctx context.Context, tenantID, sku, excludeID string) (bool, error)
}
