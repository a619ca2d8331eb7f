package model

// Warehouse is a physical or logical stock location owned by one tenant.
// Exactly one warehouse per tenant carries is_default at any time.
type Warehouse struct {
	BaseModel
	TenantID  string  `db:"tenant_id" json:"tenant_id"`
	Name      string  `db:"name" json:"name"`
	Code      *string `db:"code" json:"code"`
	Address   *string `db:"address" json:"address"`
	City      *string `db:"city" json:"city"`
	Country   *string `db:"country" json:"country"`
	IsDefault bool    `db:"is_default" json:"is_default"`
	IsActive  bool    `db:"is_active" json:"is_active"`
}
