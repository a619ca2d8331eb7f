package inventory

import (
	"context"

	"github.com/bizfleet/inventory-service/internal/inventory/dto"
	"github.com/bizfleet/inventory-service/internal/model"
)

type UseCase interface {
	// Apply records one stock-affecting event: validates tracking rules,
	// selects lots/serials, writes one movement per batch touched, adjusts
	// the aggregate and refreshes the product stock facade, atomically.
	Apply(ctx context.Context, input *dto.ApplyInput) ([]model.StockMovement, error)

	// Transfer moves quantity between two warehouses of the same tenant as
	// a paired transfer_out/transfer_in in one transaction.
	Transfer(ctx context.Context, input *dto.TransferInput) ([]model.StockMovement, error)

	// EnsureInventory idempotently creates the zero aggregate row for a
	// (product, warehouse) pair.
	EnsureInventory(ctx context.Context, tenantID, productID string, warehouseID *string) (*model.WarehouseInventory, error)

	// Reserve soft-holds quantity against a pending external reference
	// without decrementing on-hand.
	Reserve(ctx context.Context, input *dto.ReserveInput) error

	// Release ends a reservation: fulfillment converts it into an out
	// movement, cancellation hands the quantity back to available.
	Release(ctx context.Context, input *dto.ReleaseInput) error

	GetInventory(ctx context.Context, tenantID, productID string, warehouseID *string) (*model.WarehouseInventory, error)
	ListInventories(ctx context.Context, filters *dto.InventoryFilters) ([]model.WarehouseInventory, int, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)
	ListLots(ctx context.Context, filters *dto.LotFilters) ([]model.Lot, int, error)
}

// WarehouseResolver is the slice of the warehouse registry the ledger
// needs: explicit choice validation and default resolution.
type WarehouseResolver interface {
	Resolve(ctx context.Context, tenantID string, warehouseID *string) (*model.Warehouse, error)
}

// EventPublisher receives low-stock transitions. Implementations must be
// best-effort; a publish failure never rolls back a committed movement.
type EventPublisher interface {
	PublishLowStock(ctx context.Context, event *dto.LowStockEvent) error
}
