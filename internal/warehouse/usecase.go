package warehouse

import (
	"context"

	"github.com/bizfleet/inventory-service/internal/model"
	"github.com/bizfleet/inventory-service/internal/warehouse/dto"
)

type UseCase interface {
	CreateWarehouse(ctx context.Context, input *dto.CreateWarehouseInput) (*model.Warehouse, error)
	UpdateWarehouse(ctx context.Context, input *dto.UpdateWarehouseInput) (*model.Warehouse, error)
	DeleteWarehouse(ctx context.Context, tenantID, id string) error
	SetDefault(ctx context.Context, tenantID, id string) (*model.Warehouse, error)
	ListWarehouses(ctx context.Context, tenantID string) ([]model.Warehouse, error)
	GetWarehouse(ctx context.Context, tenantID, id string) (*model.Warehouse, error)

	// ResolveDefault returns the default warehouse, self-healing the flag
	// onto the first active warehouse when none carries it.
	ResolveDefault(ctx context.Context, tenantID string) (*model.Warehouse, error)

	// Resolve validates an explicit warehouse choice, or falls back to the
	// tenant default when warehouseID is nil.
	Resolve(ctx context.Context, tenantID string, warehouseID *string) (*model.Warehouse, error)
}
