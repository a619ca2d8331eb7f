package product

import "errors"

var (
	ErrSKUExists       = errors.New("sku already exists for tenant")
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidTracking = errors.New("invalid tracking type")
)
