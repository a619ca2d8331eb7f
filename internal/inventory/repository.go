package inventory

import (
	"context"

	"github.com/bizfleet/inventory-service/internal/inventory/dto"
	"github.com/bizfleet/inventory-service/internal/model"
)

type Repository interface {
	// Products (ledger-side reads; catalog writes live in internal/product)
	GetProduct(ctx context.Context, tenantID, productID string) (*model.Product, error)

	// Aggregates
	GetInventory(ctx context.Context, productID, warehouseID string) (*model.WarehouseInventory, error)
	ListInventories(ctx context.Context, filters *dto.InventoryFilters) ([]model.WarehouseInventory, int, error)
	ListByProduct(ctx context.Context, productID string) ([]model.WarehouseInventory, error)
	EnsureInventory(ctx context.Context, inv *model.WarehouseInventory) (*model.WarehouseInventory, error)

	// Lots / serials
	FindLotByNumber(ctx context.Context, productID, warehouseID, lotNumber string) (*model.Lot, error)
	FindSerial(ctx context.Context, productID, serialNumber string) (*model.Lot, error)
	ListConsumableLots(ctx context.Context, productID, warehouseID string) ([]model.Lot, error)
	ListAvailableSerials(ctx context.Context, productID, warehouseID string, limit int) ([]model.Lot, error)
	ListLots(ctx context.Context, filters *dto.LotFilters) ([]model.Lot, int, error)

	// Audit
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)

	// Transaction support. Both return the refreshed denormalized product
	// stock so callers can detect low-stock transitions.
	CommitMovement(ctx context.Context, commit *MovementCommit) (int, error)
	CommitReservation(ctx context.Context, commit *ReservationCommit) (int, error)
}
