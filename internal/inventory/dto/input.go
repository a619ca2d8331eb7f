package dto

import (
	"time"

	"github.com/bizfleet/inventory-service/internal/model"
)

// ApplyInput enumerates every option the movement applier recognizes, so a
// misspelled option fails at compile time instead of being ignored.
type ApplyInput struct {
	TenantID    string
	ProductID   string
	WarehouseID *string // nil resolves to the tenant default
	Type        model.MovementType
	// Quantity is a signed delta for "adjust" and an unsigned magnitude
	// for every other type; direction is implied by the type.
	Quantity     int
	ActorID      string
	Reason       string
	Note         *string
	LotNumber    *string
	SerialNumber *string
	ExpiresAt    *time.Time
	ReceivedAt   *time.Time
	UnitCost     *float64
	Reference    *model.Reference
}

type TransferInput struct {
	TenantID        string
	ProductID       string
	FromWarehouseID string
	ToWarehouseID   string
	Quantity        int
	ActorID         string
	Reason          string
	Note            *string
	LotNumber       *string
	SerialNumber    *string
}

type ReserveInput struct {
	TenantID    string
	ProductID   string
	WarehouseID *string
	Quantity    int
	Reference   model.Reference
}

type ReleaseKind string

const (
	// ReleaseFulfill converts the hold into a real out movement.
	ReleaseFulfill ReleaseKind = "fulfill"
	// ReleaseCancel hands the held quantity back to available.
	ReleaseCancel ReleaseKind = "cancel"
)

type ReleaseInput struct {
	TenantID    string
	ProductID   string
	WarehouseID *string
	Quantity    int
	Kind        ReleaseKind
	Reference   model.Reference
	ActorID     string
	Note        *string
}
