package model

import "time"

// WarehouseInventory is the per (product, warehouse) running aggregate. It is
// always derivable by replaying stock_movements but maintained incrementally
// for fast reads.
type WarehouseInventory struct {
	ID           string    `db:"id" json:"id"`
	ProductID    string    `db:"product_id" json:"product_id"`
	WarehouseID  string    `db:"warehouse_id" json:"warehouse_id"`
	OnHand       int       `db:"on_hand" json:"on_hand"`
	Reserved     int       `db:"reserved" json:"reserved"`
	Damaged      int       `db:"damaged" json:"damaged"`
	MinimumStock int       `db:"minimum_stock" json:"minimum_stock"`
	ReorderPoint int       `db:"reorder_point" json:"reorder_point"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Available is the quantity not spoken for by a reservation.
func (i *WarehouseInventory) Available() int {
	available := i.OnHand - i.Reserved
	if available < 0 {
		return 0
	}
	return available
}

func (i *WarehouseInventory) IsLowStock() bool {
	return i.MinimumStock > 0 && i.OnHand <= i.MinimumStock
}

func (i *WarehouseInventory) IsOutOfStock() bool {
	return i.OnHand <= 0
}
