package inventory

import "github.com/bizfleet/inventory-service/internal/model"

// InventoryWrite carries the desired state of one aggregate row together
// with the balances it was computed from. The repository commits it with a
// conditional update so a concurrent writer surfaces as ErrContention
// instead of silently overdrawing.
type InventoryWrite struct {
	Inventory    *model.WarehouseInventory
	PrevOnHand   int
	PrevReserved int
	PrevDamaged  int
	Created      bool
}

// LotWrite is one lot/serial row touched by a movement.
type LotWrite struct {
	Lot          *model.Lot
	PrevQuantity int
	Created      bool
}

// MovementCommit is everything one ledger operation writes. The repository
// applies it in a single transaction: aggregate updates, lot updates,
// movement inserts and the product stock facade refresh. All or nothing.
type MovementCommit struct {
	ProductID   string
	Inventories []InventoryWrite
	Lots        []LotWrite
	Movements   []*model.StockMovement
}

// ReservationCommit adjusts the reserved balance of one aggregate row
// without writing a movement. The facade is untouched: reservations never
// change on-hand.
type ReservationCommit struct {
	ProductID string
	Inventory InventoryWrite
}
