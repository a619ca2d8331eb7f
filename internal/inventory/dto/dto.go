package dto

import "time"

type InventoryFilters struct {
	TenantID    string
	ProductID   string
	WarehouseID *string
	LowStock    bool // on_hand <= minimum_stock, minimum_stock > 0
	OutOfStock  bool // on_hand <= 0
	Page        int
	PageSize    int
}

type MovementFilters struct {
	TenantID    string
	ProductID   string
	WarehouseID *string
	Type        string
	StartDate   *time.Time
	EndDate     *time.Time
	Page        int
	PageSize    int
}

type LotFilters struct {
	TenantID       string
	ProductID      string
	WarehouseID    *string
	ExpiringBefore *time.Time
	IncludeEmpty   bool // zero-quantity rows are kept for audit/expiry reporting
	Page           int
	PageSize       int
}

// LowStockEvent is published when the cross-warehouse stock of a product
// crosses its minimum downward.
type LowStockEvent struct {
	TenantID     string    `json:"tenant_id"`
	ProductID    string    `json:"product_id"`
	SKU          string    `json:"sku"`
	Name         string    `json:"name"`
	Stock        int       `json:"stock"`
	MinimumStock int       `json:"minimum_stock"`
	OccurredAt   time.Time `json:"occurred_at"`
}
