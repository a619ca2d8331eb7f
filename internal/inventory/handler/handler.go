package handler

import (
	"errors"
	"fmt"
	"time"

	"github.com/bizfleet/inventory-service/internal/auth"
	"github.com/bizfleet/inventory-service/internal/inventory"
	"github.com/bizfleet/inventory-service/internal/inventory/dto"
	"github.com/bizfleet/inventory-service/internal/model"
	"github.com/bizfleet/inventory-service/internal/warehouse"
	"github.com/bizfleet/inventory-service/pkg/httpx"
	"github.com/bizfleet/inventory-service/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type InventoryHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *InventoryHandler) Register(router fiber.Router) {
	router.Get("/inventory", h.ListInventories)
	router.Get("/inventory/product/:productId", h.GetInventory)
	router.Get("/inventory/movements", h.ListMovements)
	router.Get("/inventory/lots", h.ListLots)
	router.Post("/inventory/adjust", h.Adjust)
	router.Post("/inventory/transfer", h.Transfer)
	router.Post("/inventory/reserve", h.Reserve)
	router.Post("/inventory/release", h.Release)
	router.Post("/inventory/ensure", h.Ensure)
}

type adjustRequest struct {
	ProductID    string     `json:"product_id"`
	WarehouseID  *string    `json:"warehouse_id"`
	Type         string     `json:"type"`
	Quantity     int        `json:"quantity"`
	Reason       string     `json:"reason"`
	Note         *string    `json:"note"`
	LotNumber    *string    `json:"lot_number"`
	SerialNumber *string    `json:"serial_number"`
	ExpiresAt    *time.Time `json:"expires_at"`
	ReceivedAt   *time.Time `json:"received_at"`
	UnitCost     *float64   `json:"unit_cost"`
}

func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var req adjustRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.Error(c, fiber.StatusBadRequest, err)
	}
	if !model.MovementType(req.Type).Manual() {
		return httpx.Error(c, fiber.StatusUnprocessableEntity,
			fmt.Errorf("movement type %q cannot be recorded directly", req.Type))
	}

	movements, err := h.uc.Apply(c.UserContext(), &dto.ApplyInput{
		TenantID:     auth.TenantID(c),
		ProductID:    req.ProductID,
		WarehouseID:  req.WarehouseID,
		Type:         model.MovementType(req.Type),
		Quantity:     req.Quantity,
		ActorID:      auth.ActorID(c),
		Reason:       req.Reason,
		Note:         req.Note,
		LotNumber:    req.LotNumber,
		SerialNumber: req.SerialNumber,
		ExpiresAt:    req.ExpiresAt,
		ReceivedAt:   req.ReceivedAt,
		UnitCost:     req.UnitCost,
		Reference:    &model.Reference{Kind: model.ReferenceManual, ID: auth.ActorID(c)},
	})
	if err != nil {
		return h.fail(c, err)
	}

	return httpx.Success(c, fiber.StatusCreated, fiber.Map{"movements": movements})
}

type transferRequest struct {
	ProductID       string  `json:"product_id"`
	FromWarehouseID string  `json:"from_warehouse_id"`
	ToWarehouseID   string  `json:"to_warehouse_id"`
	Quantity        int     `json:"quantity"`
	Reason          string  `json:"reason"`
	Note            *string `json:"note"`
	LotNumber       *string `json:"lot_number"`
	SerialNumber    *string `json:"serial_number"`
}

func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.Error(c, fiber.StatusBadRequest, err)
	}

	movements, err := h.uc.Transfer(c.UserContext(), &dto.TransferInput{
		TenantID:        auth.TenantID(c),
		ProductID:       req.ProductID,
		FromWarehouseID: req.FromWarehouseID,
		ToWarehouseID:   req.ToWarehouseID,
		Quantity:        req.Quantity,
		ActorID:         auth.ActorID(c),
		Reason:          req.Reason,
		Note:            req.Note,
		LotNumber:       req.LotNumber,
		SerialNumber:    req.SerialNumber,
	})
	if err != nil {
		return h.fail(c, err)
	}

	return httpx.Success(c, fiber.StatusCreated, fiber.Map{"movements": movements})
}

type reserveRequest struct {
	ProductID     string  `json:"product_id"`
	WarehouseID   *string `json:"warehouse_id"`
	Quantity      int     `json:"quantity"`
	ReferenceKind string  `json:"reference_kind"`
	ReferenceID   string  `json:"reference_id"`
}

func (h *InventoryHandler) Reserve(c *fiber.Ctx) error {
	var req reserveRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.Error(c, fiber.StatusBadRequest, err)
	}

	err := h.uc.Reserve(c.UserContext(), &dto.ReserveInput{
		TenantID:    auth.TenantID(c),
		ProductID:   req.ProductID,
		WarehouseID: req.WarehouseID,
		Quantity:    req.Quantity,
		Reference:   model.Reference{Kind: model.ReferenceKind(req.ReferenceKind), ID: req.ReferenceID},
	})
	if err != nil {
		return h.fail(c, err)
	}

	return httpx.Success(c, fiber.StatusOK, fiber.Map{"reserved": req.Quantity})
}

type releaseRequest struct {
	ProductID     string  `json:"product_id"`
	WarehouseID   *string `json:"warehouse_id"`
	Quantity      int     `json:"quantity"`
	Kind          string  `json:"kind"` // "fulfill" or "cancel"
	ReferenceKind string  `json:"reference_kind"`
	ReferenceID   string  `json:"reference_id"`
	Note          *string `json:"note"`
}

func (h *InventoryHandler) Release(c *fiber.Ctx) error {
	var req releaseRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.Error(c, fiber.StatusBadRequest, err)
	}

	err := h.uc.Release(c.UserContext(), &dto.ReleaseInput{
		TenantID:    auth.TenantID(c),
		ProductID:   req.ProductID,
		WarehouseID: req.WarehouseID,
		Quantity:    req.Quantity,
		Kind:        dto.ReleaseKind(req.Kind),
		Reference:   model.Reference{Kind: model.ReferenceKind(req.ReferenceKind), ID: req.ReferenceID},
		ActorID:     auth.ActorID(c),
		Note:        req.Note,
	})
	if err != nil {
		return h.fail(c, err)
	}

	return httpx.Success(c, fiber.StatusOK, fiber.Map{"released": req.Quantity})
}

type ensureRequest struct {
	ProductID   string  `json:"product_id"`
	WarehouseID *string `json:"warehouse_id"`
}

func (h *InventoryHandler) Ensure(c *fiber.Ctx) error {
	var req ensureRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.Error(c, fiber.StatusBadRequest, err)
	}

	inv, err := h.uc.EnsureInventory(c.UserContext(), auth.TenantID(c), req.ProductID, req.WarehouseID)
	if err != nil {
		return h.fail(c, err)
	}

	return httpx.Success(c, fiber.StatusOK, inv)
}

func (h *InventoryHandler) GetInventory(c *fiber.Ctx) error {
	warehouseID := queryOptional(c, "warehouse_id")

	inv, err := h.uc.GetInventory(c.UserContext(), auth.TenantID(c), c.Params("productId"), warehouseID)
	if err != nil {
		return h.fail(c, err)
	}

	return httpx.Success(c, fiber.StatusOK, inv)
}

func (h *InventoryHandler) ListInventories(c *fiber.Ctx) error {
	items, total, err := h.uc.ListInventories(c.UserContext(), &dto.InventoryFilters{
		TenantID:    auth.TenantID(c),
		ProductID:   c.Query("product_id"),
		WarehouseID: queryOptional(c, "warehouse_id"),
		LowStock:    c.QueryBool("low_stock"),
		OutOfStock:  c.QueryBool("out_of_stock"),
		Page:        c.QueryInt("page", 1),
		PageSize:    c.QueryInt("page_size", 50),
	})
	if err != nil {
		return h.fail(c, err)
	}

	return httpx.Success(c, fiber.StatusOK, fiber.Map{"items": items, "total": total})
}

func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	filters := &dto.MovementFilters{
		TenantID:    auth.TenantID(c),
		ProductID:   c.Query("product_id"),
		WarehouseID: queryOptional(c, "warehouse_id"),
		Type:        c.Query("type"),
		Page:        c.QueryInt("page", 1),
		PageSize:    c.QueryInt("page_size", 50),
	}
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			filters.StartDate = &t
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filters.EndDate = &t
		}
	}

	items, total, err := h.uc.ListMovements(c.UserContext(), filters)
	if err != nil {
		return h.fail(c, err)
	}

	return httpx.Success(c, fiber.StatusOK, fiber.Map{"items": items, "total": total})
}

func (h *InventoryHandler) ListLots(c *fiber.Ctx) error {
	filters := &dto.LotFilters{
		TenantID:     auth.TenantID(c),
		ProductID:    c.Query("product_id"),
		WarehouseID:  queryOptional(c, "warehouse_id"),
		IncludeEmpty: c.QueryBool("include_empty"),
		Page:         c.QueryInt("page", 1),
		PageSize:     c.QueryInt("page_size", 50),
	}
	if before := c.Query("expiring_before"); before != "" {
		if t, err := time.Parse(time.RFC3339, before); err == nil {
			filters.ExpiringBefore = &t
		}
	}

	items, total, err := h.uc.ListLots(c.UserContext(), filters)
	if err != nil {
		return h.fail(c, err)
	}

	return httpx.Success(c, fiber.StatusOK, fiber.Map{"items": items, "total": total})
}

func (h *InventoryHandler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, inventory.ErrInsufficientStock),
		errors.Is(err, inventory.ErrInsufficientAvailable):
		return httpx.Error(c, fiber.StatusConflict, err)
	case errors.Is(err, inventory.ErrTrackingMismatch),
		errors.Is(err, warehouse.ErrInvalidWarehouse),
		errors.Is(err, warehouse.ErrNoWarehouseAvailable):
		return httpx.Error(c, fiber.StatusUnprocessableEntity, err)
	case errors.Is(err, inventory.ErrProductNotFound):
		return httpx.Error(c, fiber.StatusNotFound, err)
	case errors.Is(err, inventory.ErrContention):
		return httpx.Error(c, fiber.StatusTooManyRequests, err)
	default:
		h.logger.Error("inventory request failed", zap.Error(err))
		return httpx.Error(c, fiber.StatusInternalServerError, err)
	}
}

func queryOptional(c *fiber.Ctx, key string) *string {
	v := c.Query(key)
	if v == "" {
		return nil
	}
	return &v
}
