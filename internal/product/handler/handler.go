package handler

import (
	"errors"

	"github.com/bizfleet/inventory-service/internal/auth"
	"github.com/bizfleet/inventory-service/internal/model"
	"github.com/bizfleet/inventory-service/internal/product"
	"github.com/bizfleet/inventory-service/internal/product/dto"
	"github.com/bizfleet/inventory-service/pkg/httpx"
	"github.com/bizfleet/inventory-service/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ProductHandler struct {
	uc     product.UseCase
	logger logger.ZapLogger
}

func NewProductHandler(uc product.UseCase, log logger.ZapLogger) *ProductHandler {
	return &ProductHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *ProductHandler) Register(router fiber.Router) {
	router.Get("/products", h.List)
	router.Post("/products", h.Create)
	router.Get("/products/:id", h.Get)
	router.Put("/products/:id", h.Update)
	router.Delete("/products/:id", h.Delete)
	router.Post("/products/:id/duplicate", h.Duplicate)
}

type createProductRequest struct {
	SKU          string   `json:"sku"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	TrackingType string   `json:"tracking_type"`
	Price        float64  `json:"price"`
	UnitCost     *float64 `json:"unit_cost"`
	MinimumStock int      `json:"minimum_stock"`
	OpeningStock int      `json:"opening_stock"`
	WarehouseID  *string  `json:"warehouse_id"`
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req createProductRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.Error(c, fiber.StatusBadRequest, err)
	}

	p, err := h.uc.CreateProduct(c.UserContext(), &dto.CreateProductInput{
		TenantID:     auth.TenantID(c),
		SKU:          req.SKU,
		Name:         req.Name,
		Description:  req.Description,
		TrackingType: model.TrackingType(req.TrackingType),
		Price:        req.Price,
		UnitCost:     req.UnitCost,
		MinimumStock: req.MinimumStock,
		OpeningStock: req.OpeningStock,
		WarehouseID:  req.WarehouseID,
		ActorID:      auth.ActorID(c),
	})
	if err != nil {
		return h.fail(c, err)
	}

	return httpx.Success(c, fiber.StatusCreated, p)
}

type duplicateProductRequest struct {
	SKU         string  `json:"sku"`
	Name        string  `json:"name"`
	CopyStock   int     `json:"copy_stock"`
	WarehouseID *string `json:"warehouse_id"`
}

func (h *ProductHandler) Duplicate(c *fiber.Ctx) error {
	var req duplicateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.Error(c, fiber.StatusBadRequest, err)
	}

	p, err := h.uc.DuplicateProduct(c.UserContext(), &dto.DuplicateProductInput{
		SourceID:    c.Params("id"),
		TenantID:    auth.TenantID(c),
		SKU:         req.SKU,
		Name:        req.Name,
		CopyStock:   req.CopyStock,
		WarehouseID: req.WarehouseID,
		ActorID:     auth.ActorID(c),
	})
	if err != nil {
		return h.fail(c, err)
	}

	return httpx.Success(c, fiber.StatusCreated, p)
}

type updateProductRequest struct {
	SKU          string   `json:"sku"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	TrackingType string   `json:"tracking_type"`
	Price        float64  `json:"price"`
	UnitCost     *float64 `json:"unit_cost"`
	MinimumStock int      `json:"minimum_stock"`
	IsActive     bool     `json:"is_active"`
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var req updateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.Error(c, fiber.StatusBadRequest, err)
	}

	p, err := h.uc.UpdateProduct(c.UserContext(), &dto.UpdateProductInput{
		ID:           c.Params("id"),
		TenantID:     auth.TenantID(c),
		SKU:          req.SKU,
		Name:         req.Name,
		Description:  req.Description,
		TrackingType: model.TrackingType(req.TrackingType),
		Price:        req.Price,
		UnitCost:     req.UnitCost,
		MinimumStock: req.MinimumStock,
		IsActive:     req.IsActive,
	})
	if err != nil {
		return h.fail(c, err)
	}

	return httpx.Success(c, fiber.StatusOK, p)
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	p, err := h.uc.GetProduct(c.UserContext(), auth.TenantID(c), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return httpx.Success(c, fiber.StatusOK, p)
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	filters := &dto.ProductFilters{
		TenantID:    auth.TenantID(c),
		LowStock:    c.QueryBool("low_stock"),
		SearchQuery: c.Query("q"),
		SortBy:      c.Query("sort_by"),
		SortOrder:   c.Query("sort_order"),
		Page:        c.QueryInt("page", 1),
		PageSize:    c.QueryInt("page_size", 50),
	}
	if c.Query("is_active") != "" {
		active := c.QueryBool("is_active")
		filters.IsActive = &active
	}

	items, total, err := h.uc.ListProducts(c.UserContext(), filters)
	if err != nil {
		return h.fail(c, err)
	}

	return httpx.Success(c, fiber.StatusOK, fiber.Map{"items": items, "total": total})
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.DeleteProduct(c.UserContext(), auth.TenantID(c), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return httpx.Success(c, fiber.StatusOK, fiber.Map{"deleted": true})
}

func (h *ProductHandler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, product.ErrProductNotFound):
		return httpx.Error(c, fiber.StatusNotFound, err)
	case errors.Is(err, product.ErrSKUExists):
		return httpx.Error(c, fiber.StatusConflict, err)
	case errors.Is(err, product.ErrInvalidTracking):
		return httpx.Error(c, fiber.StatusUnprocessableEntity, err)
	default:
		h.logger.Error("product request failed", zap.Error(err))
		return httpx.Error(c, fiber.StatusInternalServerError, err)
	}
}
