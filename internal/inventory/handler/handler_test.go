package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/bizfleet/inventory-service/internal/inventory/dto"
	"github.com/bizfleet/inventory-service/internal/model"
	"github.com/bizfleet/inventory-service/pkg/logger"
)

type stubUseCase struct {
	mu      sync.Mutex
	applied []*dto.ApplyInput
}

func (s *stubUseCase) Apply(_ context.Context, input *dto.ApplyInput) ([]model.StockMovement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applied = append(s.applied, input)
	return []model.StockMovement{}, nil
}

func (s *stubUseCase) Transfer(context.Context, *dto.TransferInput) ([]model.StockMovement, error) {
	return nil, nil
}

func (s *stubUseCase) EnsureInventory(context.Context, string, string, *string) (*model.WarehouseInventory, error) {
	return &model.WarehouseInventory{}, nil
}

func (s *stubUseCase) Reserve(context.Context, *dto.ReserveInput) error { return nil }

func (s *stubUseCase) Release(context.Context, *dto.ReleaseInput) error { return nil }

func (s *stubUseCase) GetInventory(context.Context, string, string, *string) (*model.WarehouseInventory, error) {
	return &model.WarehouseInventory{}, nil
}

func (s *stubUseCase) ListInventories(context.Context, *dto.InventoryFilters) ([]model.WarehouseInventory, int, error) {
	return nil, 0, nil
}

func (s *stubUseCase) ListMovements(context.Context, *dto.MovementFilters) ([]model.StockMovement, int, error) {
	return nil, 0, nil
}

func (s *stubUseCase) ListLots(context.Context, *dto.LotFilters) ([]model.Lot, int, error) {
	return nil, 0, nil
}

func newTestApp(uc *stubUseCase) *fiber.App {
	app := fiber.New()
	NewInventoryHandler(uc, logger.NewNop()).Register(app)
	return app
}

func postAdjust(t *testing.T, app *fiber.App, body string) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/inventory/adjust", strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set("X-Tenant-ID", "tenant-1")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	return resp.StatusCode
}

func TestAdjustRejectsTransferMovementTypes(t *testing.T) {
	uc := &stubUseCase{}
	app := newTestApp(uc)

	for _, typ := range []string{"transfer_in", "transfer_out", "bogus"} {
		status := postAdjust(t, app, `{"product_id":"p1","type":"`+typ+`","quantity":1,"reason":"manual"}`)
		if status != fiber.StatusUnprocessableEntity {
			t.Errorf("type %q: status = %d, want %d", typ, status, fiber.StatusUnprocessableEntity)
		}
	}
	if len(uc.applied) != 0 {
		t.Errorf("rejected types must not reach the ledger, applied %d", len(uc.applied))
	}
}

func TestAdjustAcceptsManualMovementTypes(t *testing.T) {
	uc := &stubUseCase{}
	app := newTestApp(uc)

	status := postAdjust(t, app, `{"product_id":"p1","type":"in","quantity":3,"reason":"restock"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("status = %d, want %d", status, fiber.StatusCreated)
	}
	if len(uc.applied) != 1 {
		t.Fatalf("expected one ledger call, got %d", len(uc.applied))
	}
	if uc.applied[0].Type != model.MovementIn || uc.applied[0].TenantID != "tenant-1" {
		t.Errorf("apply input wrong: %+v", uc.applied[0])
	}
}
