package model

// TrackingType decides how units of a product keep identity in the ledger.
type TrackingType string

const (
	TrackingNone   TrackingType = "none"
	TrackingLot    TrackingType = "lot"
	TrackingSerial TrackingType = "serial"
)

func (t TrackingType) Valid() bool {
	switch t {
	case TrackingNone, TrackingLot, TrackingSerial:
		return true
	}
	return false
}

type Product struct {
	BaseModel
	TenantID     string       `db:"tenant_id" json:"tenant_id"`
	SKU          string       `db:"sku" json:"sku"`
	Name         string       `db:"name" json:"name"`
	Description  *string      `db:"description" json:"description"`
	TrackingType TrackingType `db:"tracking_type" json:"tracking_type"`
	Price        float64      `db:"price" json:"price"`
	UnitCost     *float64     `db:"unit_cost" json:"unit_cost"`
	// Stock is the denormalized cross-warehouse on-hand total. It is
	// recomputed from warehouse_inventories inside the same transaction as
	// every ledger write, never as a separate best-effort update.
	Stock        int  `db:"stock" json:"stock"`
	MinimumStock int  `db:"minimum_stock" json:"minimum_stock"`
	IsActive     bool `db:"is_active" json:"is_active"`
}

func (p *Product) IsLowStock() bool {
	return p.MinimumStock > 0 && p.Stock <= p.MinimumStock
}

func (p *Product) IsOutOfStock() bool {
	return p.Stock <= 0
}
