package dto

type ProductFilters struct {
	TenantID    string
	IsActive    *bool
	LowStock    bool
	SearchQuery string // matches name, sku
	SortBy      string // name, price, stock, created_at
	SortOrder   string // asc, desc
	Page        int
	PageSize    int
}
