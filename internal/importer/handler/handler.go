package handler

import (
	"bytes"

	"github.com/bizfleet/inventory-service/internal/auth"
	"github.com/bizfleet/inventory-service/internal/importer"
	"github.com/bizfleet/inventory-service/pkg/httpx"
	"github.com/bizfleet/inventory-service/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ImportHandler struct {
	importer *importer.StockImporter
	logger   logger.ZapLogger
}

func NewImportHandler(imp *importer.StockImporter, log logger.ZapLogger) *ImportHandler {
	return &ImportHandler{
		importer: imp,
		logger:   log,
	}
}

func (h *ImportHandler) Register(router fiber.Router) {
	router.Post("/inventory/import", h.Import)
}

// Import accepts either a multipart upload under the "file" field or a raw
// CSV body.
func (h *ImportHandler) Import(c *fiber.Ctx) error {
	body := c.Body()
	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err != nil {
			return httpx.Error(c, fiber.StatusBadRequest, err)
		}
		defer f.Close()

		result, err := h.importer.ImportStock(c.UserContext(), auth.TenantID(c), auth.ActorID(c), f)
		if err != nil {
			h.logger.Error("stock import failed", zap.Error(err))
			return httpx.Error(c, fiber.StatusBadRequest, err)
		}
		return httpx.Success(c, fiber.StatusOK, result)
	}

	result, err := h.importer.ImportStock(c.UserContext(), auth.TenantID(c), auth.ActorID(c), bytes.NewReader(body))
	if err != nil {
		h.logger.Error("stock import failed", zap.Error(err))
		return httpx.Error(c, fiber.StatusBadRequest, err)
	}
	return httpx.Success(c, fiber.StatusOK, result)
}
