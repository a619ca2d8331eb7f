package model

import "time"

// Lot is a batch of a lot-tracked product, or a single unit of a
// serial-tracked one (serial rows hold quantity 0 or 1). Rows that reach
// zero quantity are kept for audit and expiry reporting but are excluded
// from consumption.
type Lot struct {
	ID           string     `db:"id" json:"id"`
	ProductID    string     `db:"product_id" json:"product_id"`
	WarehouseID  string     `db:"warehouse_id" json:"warehouse_id"`
	LotNumber    *string    `db:"lot_number" json:"lot_number"`
	SerialNumber *string    `db:"serial_number" json:"serial_number"`
	Quantity     int        `db:"quantity" json:"quantity"`
	ExpiresAt    *time.Time `db:"expires_at" json:"expires_at"`
	ReceivedAt   *time.Time `db:"received_at" json:"received_at"`
	UnitCost     *float64   `db:"unit_cost" json:"unit_cost"`
	Note         *string    `db:"note" json:"note"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

func (l *Lot) IsSerial() bool {
	return l.SerialNumber != nil && *l.SerialNumber != ""
}

func (l *Lot) Consumable() bool {
	return l.Quantity > 0
}
