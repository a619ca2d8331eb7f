package product

import (
	"context"

	invdto "github.com/bizfleet/inventory-service/internal/inventory/dto"
	"github.com/bizfleet/inventory-service/internal/model"
	"github.com/bizfleet/inventory-service/internal/product/dto"
)

type UseCase interface {
	// CreateProduct enforces per-tenant SKU uniqueness and, when
	// OpeningStock is positive, records the opening balance through the
	// movement ledger so the audit trail starts at row one.
	CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error)

	// DuplicateProduct copies a product under a new SKU, optionally seeding
	// stock with a movement referencing the source product.
	DuplicateProduct(ctx context.Context, input *dto.DuplicateProductInput) (*model.Product, error)

	GetProduct(ctx context.Context, tenantID, id string) (*model.Product, error)
	GetProductBySKU(ctx context.Context, tenantID, sku string) (*model.Product, error)
	ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, tenantID, id string) error
}

// StockOpener is the slice of the ledger the catalog needs to seed opening
// balances without depending on the whole inventory use case.
type StockOpener interface {
	EnsureInventory(ctx context.Context, tenantID, productID string, warehouseID *string) (*model.WarehouseInventory, error)
	Apply(ctx context.Context, input *invdto.ApplyInput) ([]model.StockMovement, error)
}
