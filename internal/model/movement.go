package model

import "time"

// MovementType classifies a ledger entry. The sign of the stored quantity
// always matches the net effect on on-hand.
type MovementType string

const (
	MovementIn          MovementType = "in"
	MovementOut         MovementType = "out"
	MovementAdjust      MovementType = "adjust"
	MovementDamage      MovementType = "damage"
	MovementSpoilage    MovementType = "spoilage"
	MovementTransferIn  MovementType = "transfer_in"
	MovementTransferOut MovementType = "transfer_out"
)

func (t MovementType) Valid() bool {
	switch t {
	case MovementIn, MovementOut, MovementAdjust, MovementDamage,
		MovementSpoilage, MovementTransferIn, MovementTransferOut:
		return true
	}
	return false
}

// Manual reports whether callers may record the type directly. Transfer
// movements are excluded: they only exist as pairs written by a transfer.
func (t MovementType) Manual() bool {
	switch t {
	case MovementIn, MovementOut, MovementAdjust, MovementDamage, MovementSpoilage:
		return true
	}
	return false
}

// Consuming reports whether the type draws stock from on-hand.
func (t MovementType) Consuming() bool {
	switch t {
	case MovementOut, MovementDamage, MovementSpoilage, MovementTransferOut:
		return true
	}
	return false
}

// Damaging reports whether the consumed quantity moves into the damaged
// bucket rather than leaving the warehouse.
func (t MovementType) Damaging() bool {
	return t == MovementDamage || t == MovementSpoilage
}

// ReferenceKind tags the external document that caused a movement, so
// consumers switch on a closed set instead of comparing raw strings.
type ReferenceKind string

const (
	ReferenceSale      ReferenceKind = "sale"
	ReferenceImport    ReferenceKind = "import"
	ReferenceManual    ReferenceKind = "manual"
	ReferenceInitial   ReferenceKind = "initial"
	ReferenceDuplicate ReferenceKind = "duplicate"
	ReferenceTransfer  ReferenceKind = "transfer"
)

// Reference is the tagged union pointing at the document behind a movement.
type Reference struct {
	Kind ReferenceKind `json:"kind"`
	ID   string        `json:"id"`
}

// StockMovement is one immutable audit entry. Rows are never updated or
// deleted after creation.
type StockMovement struct {
	ID             string       `db:"id" json:"id"`
	ProductID      string       `db:"product_id" json:"product_id"`
	WarehouseID    string       `db:"warehouse_id" json:"warehouse_id"`
	LotID          *string      `db:"lot_id" json:"lot_id"`
	ActorID        *string      `db:"actor_id" json:"actor_id"`
	Type           MovementType `db:"type" json:"type"`
	Quantity       int          `db:"quantity" json:"quantity"`
	BeforeQuantity int          `db:"before_quantity" json:"before_quantity"`
	AfterQuantity  int          `db:"after_quantity" json:"after_quantity"`
	Reason         string       `db:"reason" json:"reason"`
	Note           *string      `db:"note" json:"note"`
	UnitCost       *float64     `db:"unit_cost" json:"unit_cost"`
	ReferenceType  *string      `db:"reference_type" json:"reference_type"`
	ReferenceID    *string      `db:"reference_id" json:"reference_id"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
}

// Reference returns the tagged reference, if the movement carries one.
func (m *StockMovement) Reference() (Reference, bool) {
	if m.ReferenceType == nil || m.ReferenceID == nil {
		return Reference{}, false
	}
	return Reference{Kind: ReferenceKind(*m.ReferenceType), ID: *m.ReferenceID}, true
}

func (m *StockMovement) SetReference(ref Reference) {
	kind := string(ref.Kind)
	id := ref.ID
	m.ReferenceType = &kind
	m.ReferenceID = &id
}
