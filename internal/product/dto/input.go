package dto

import "github.com/bizfleet/inventory-service/internal/model"

type CreateProductInput struct {
	TenantID     string
	SKU          string
	Name         string
	Description  string
	TrackingType model.TrackingType
	Price        float64
	UnitCost     *float64
	MinimumStock int
	// OpeningStock > 0 records an initial "in" movement against the
	// tenant's default warehouse right after the product row is created.
	OpeningStock int
	WarehouseID  *string
	ActorID      string
}

type UpdateProductInput struct {
	ID           string
	TenantID     string
	SKU          string
	Name         string
	Description  string
	TrackingType model.TrackingType
	Price        float64
	UnitCost     *float64
	MinimumStock int
	IsActive     bool
}

type DuplicateProductInput struct {
	SourceID string
	TenantID string
	SKU      string
	Name     string
	// CopyStock > 0 seeds the copy with an opening movement, attributed to
	// the source product.
	CopyStock   int
	WarehouseID *string
	ActorID     string
}
