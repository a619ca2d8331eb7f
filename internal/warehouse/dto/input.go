package dto

type CreateWarehouseInput struct {
	TenantID  string
	Name      string
	Code      string
	Address   string
	City      string
	Country   string
	IsDefault bool
	IsActive  *bool
}

type UpdateWarehouseInput struct {
	ID        string
	TenantID  string
	Name      string
	Code      string
	Address   string
	City      string
	Country   string
	IsDefault *bool
	IsActive  *bool
}
