package warehouse

import "errors"

var (
	// ErrInvalidWarehouse means the warehouse is not owned by the tenant
	// or is inactive.
	ErrInvalidWarehouse = errors.New("invalid warehouse")

	// ErrNoWarehouseAvailable means the tenant has no warehouse at all;
	// one must be provisioned before any inventory operation.
	ErrNoWarehouseAvailable = errors.New("no warehouse available")

	// ErrWarehouseInUse blocks deletion while inventory rows still hold
	// nonzero state for the warehouse.
	ErrWarehouseInUse = errors.New("warehouse still holds inventory")

	ErrWarehouseNotFound = errors.New("warehouse not found")
)
