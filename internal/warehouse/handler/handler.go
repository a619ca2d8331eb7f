package handler

import (
	"errors"

	"github.com/bizfleet/inventory-service/internal/auth"
	"github.com/bizfleet/inventory-service/internal/warehouse"
	"github.com/bizfleet/inventory-service/internal/warehouse/dto"
	"github.com/bizfleet/inventory-service/pkg/httpx"
	"github.com/bizfleet/inventory-service/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type WarehouseHandler struct {
	uc     warehouse.UseCase
	logger logger.ZapLogger
}

func NewWarehouseHandler(uc warehouse.UseCase, log logger.ZapLogger) *WarehouseHandler {
	return &WarehouseHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *WarehouseHandler) Register(router fiber.Router) {
	router.Get("/warehouses", h.List)
	router.Post("/warehouses", h.Create)
	router.Get("/warehouses/:id", h.Get)
	router.Put("/warehouses/:id", h.Update)
	router.Delete("/warehouses/:id", h.Delete)
	router.Post("/warehouses/:id/default", h.SetDefault)
}

type warehouseRequest struct {
	Name      string `json:"name"`
	Code      string `json:"code"`
	Address   string `json:"address"`
	City      string `json:"city"`
	Country   string `json:"country"`
	IsDefault *bool  `json:"is_default"`
	IsActive  *bool  `json:"is_active"`
}

func (h *WarehouseHandler) Create(c *fiber.Ctx) error {
	var req warehouseRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.Error(c, fiber.StatusBadRequest, err)
	}

	isDefault := false
	if req.IsDefault != nil {
		isDefault = *req.IsDefault
	}

	wh, err := h.uc.CreateWarehouse(c.UserContext(), &dto.CreateWarehouseInput{
		TenantID:  auth.TenantID(c),
		Name:      req.Name,
		Code:      req.Code,
		Address:   req.Address,
		City:      req.City,
		Country:   req.Country,
		IsDefault: isDefault,
		IsActive:  req.IsActive,
	})
	if err != nil {
		return h.fail(c, err)
	}

	return httpx.Success(c, fiber.StatusCreated, wh)
}

func (h *WarehouseHandler) Update(c *fiber.Ctx) error {
	var req warehouseRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.Error(c, fiber.StatusBadRequest, err)
	}

	wh, err := h.uc.UpdateWarehouse(c.UserContext(), &dto.UpdateWarehouseInput{
		ID:        c.Params("id"),
		TenantID:  auth.TenantID(c),
		Name:      req.Name,
		Code:      req.Code,
		Address:   req.Address,
		City:      req.City,
		Country:   req.Country,
		IsDefault: req.IsDefault,
		IsActive:  req.IsActive,
	})
	if err != nil {
		return h.fail(c, err)
	}

	return httpx.Success(c, fiber.StatusOK, wh)
}

func (h *WarehouseHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.DeleteWarehouse(c.UserContext(), auth.TenantID(c), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return httpx.Success(c, fiber.StatusOK, fiber.Map{"deleted": true})
}

func (h *WarehouseHandler) SetDefault(c *fiber.Ctx) error {
	wh, err := h.uc.SetDefault(c.UserContext(), auth.TenantID(c), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return httpx.Success(c, fiber.StatusOK, wh)
}

func (h *WarehouseHandler) Get(c *fiber.Ctx) error {
	wh, err := h.uc.GetWarehouse(c.UserContext(), auth.TenantID(c), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return httpx.Success(c, fiber.StatusOK, wh)
}

func (h *WarehouseHandler) List(c *fiber.Ctx) error {
	items, err := h.uc.ListWarehouses(c.UserContext(), auth.TenantID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return httpx.Success(c, fiber.StatusOK, fiber.Map{"items": items})
}

func (h *WarehouseHandler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, warehouse.ErrWarehouseNotFound):
		return httpx.Error(c, fiber.StatusNotFound, err)
	case errors.Is(err, warehouse.ErrWarehouseInUse):
		return httpx.Error(c, fiber.StatusConflict, err)
	case errors.Is(err, warehouse.ErrInvalidWarehouse),
		errors.Is(err, warehouse.ErrNoWarehouseAvailable):
		return httpx.Error(c, fiber.StatusUnprocessableEntity, err)
	default:
		h.logger.Error("warehouse request failed", zap.Error(err))
		return httpx.Error(c, fiber.StatusInternalServerError, err)
	}
}
