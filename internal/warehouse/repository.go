package warehouse

import (
	"context"

	"github.com/bizfleet/inventory-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, wh *model.Warehouse) error
	FindByID(ctx context.Context, tenantID, id string) (*model.Warehouse, error)
	FindAll(ctx context.Context, tenantID string) ([]model.Warehouse, error)
	FindDefault(ctx context.Context, tenantID string) (*model.Warehouse, error)
	FindFirst(ctx context.Context, tenantID string, activeOnly bool) (*model.Warehouse, error)
	Update(ctx context.Context, wh *model.Warehouse) error
	Delete(ctx context.Context, tenantID, id string) error

	// MakeDefault unsets every other default of the tenant and flags the
	// given warehouse, in one transaction.
	MakeDefault(ctx context.Context, tenantID, id string) error

	// HasInventoryState reports whether any warehouse_inventories row
	// references the warehouse with nonzero on_hand, reserved or damaged.
	HasInventoryState(ctx context.Context, warehouseID string) (bool, error)
}
