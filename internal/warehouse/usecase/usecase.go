package usecase

import (
	"context"
	"time"

	"github.com/bizfleet/inventory-service/internal/model"
	"github.com/bizfleet/inventory-service/internal/warehouse"
	"github.com/bizfleet/inventory-service/internal/warehouse/dto"
	"github.com/bizfleet/inventory-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type warehouseUseCase struct {
	repo   warehouse.Repository
	logger logger.ZapLogger
}

func NewWarehouseUseCase(repo warehouse.Repository, log logger.ZapLogger) warehouse.UseCase {
	return &warehouseUseCase{
		repo:   repo,
		logger: log,
	}
}

func (uc *warehouseUseCase) CreateWarehouse(ctx context.Context, input *dto.CreateWarehouseInput) (*model.Warehouse, error) {
	now := time.Now()

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	wh := &model.Warehouse{
		BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		TenantID:  input.TenantID,
		Name:      input.Name,
		Code:      optional(input.Code),
		Address:   optional(input.Address),
		City:      optional(input.City),
		Country:   optional(input.Country),
		IsDefault: input.IsDefault,
		IsActive:  isActive,
	}

	if err := uc.repo.Create(ctx, wh); err != nil {
		return nil, err
	}

	if input.IsDefault {
		if err := uc.repo.MakeDefault(ctx, input.TenantID, wh.ID); err != nil {
			return nil, err
		}
		wh.IsDefault = true
		return wh, nil
	}

	// First warehouse of a tenant always becomes the default.
	current, err := uc.repo.FindDefault(ctx, input.TenantID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		if err := uc.repo.MakeDefault(ctx, input.TenantID, wh.ID); err != nil {
			return nil, err
		}
		wh.IsDefault = true
	}

	return wh, nil
}

func (uc *warehouseUseCase) UpdateWarehouse(ctx context.Context, input *dto.UpdateWarehouseInput) (*model.Warehouse, error) {
	wh, err := uc.repo.FindByID(ctx, input.TenantID, input.ID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, warehouse.ErrWarehouseNotFound
	}

	wh.Name = input.Name
	wh.Code = optional(input.Code)
	wh.Address = optional(input.Address)
	wh.City = optional(input.City)
	wh.Country = optional(input.Country)
	if input.IsActive != nil {
		wh.IsActive = *input.IsActive
	}
	wh.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, wh); err != nil {
		return nil, err
	}

	if input.IsDefault != nil && *input.IsDefault && !wh.IsDefault {
		return uc.SetDefault(ctx, input.TenantID, wh.ID)
	}

	// Dropping or deactivating a default may leave the tenant without one;
	// repair immediately so the invariant holds after every operation.
	if err := uc.ensureDefault(ctx, input.TenantID); err != nil {
		return nil, err
	}

	return uc.repo.FindByID(ctx, input.TenantID, input.ID)
}

func (uc *warehouseUseCase) DeleteWarehouse(ctx context.Context, tenantID, id string) error {
	wh, err := uc.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if wh == nil {
		return warehouse.ErrWarehouseNotFound
	}

	inUse, err := uc.repo.HasInventoryState(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return warehouse.ErrWarehouseInUse
	}

	wasDefault := wh.IsDefault
	if err := uc.repo.Delete(ctx, tenantID, id); err != nil {
		return err
	}

	if wasDefault {
		replacement, err := uc.repo.FindFirst(ctx, tenantID, false)
		if err != nil {
			return err
		}
		if replacement != nil {
			if err := uc.repo.MakeDefault(ctx, tenantID, replacement.ID); err != nil {
				return err
			}
			uc.logger.Info("promoted replacement default warehouse",
				zap.String("tenant_id", tenantID),
				zap.String("warehouse_id", replacement.ID))
		}
	}

	return nil
}

func (uc *warehouseUseCase) SetDefault(ctx context.Context, tenantID, id string) (*model.Warehouse, error) {
	wh, err := uc.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, warehouse.ErrWarehouseNotFound
	}

	if err := uc.repo.MakeDefault(ctx, tenantID, id); err != nil {
		return nil, err
	}

	return uc.repo.FindByID(ctx, tenantID, id)
}

func (uc *warehouseUseCase) ListWarehouses(ctx context.Context, tenantID string) ([]model.Warehouse, error) {
	return uc.repo.FindAll(ctx, tenantID)
}

func (uc *warehouseUseCase) GetWarehouse(ctx context.Context, tenantID, id string) (*model.Warehouse, error) {
	wh, err := uc.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, warehouse.ErrWarehouseNotFound
	}
	return wh, nil
}

func (uc *warehouseUseCase) ResolveDefault(ctx context.Context, tenantID string) (*model.Warehouse, error) {
	wh, err := uc.repo.FindDefault(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if wh != nil {
		return wh, nil
	}

	// Self-heal: flag the first active warehouse as default.
	fallback, err := uc.repo.FindFirst(ctx, tenantID, true)
	if err != nil {
		return nil, err
	}
	if fallback == nil {
		return nil, warehouse.ErrNoWarehouseAvailable
	}

	if err := uc.repo.MakeDefault(ctx, tenantID, fallback.ID); err != nil {
		return nil, err
	}
	fallback.IsDefault = true

	uc.logger.Warn("default warehouse missing, self-healed",
		zap.String("tenant_id", tenantID),
		zap.String("warehouse_id", fallback.ID))

	return fallback, nil
}

func (uc *warehouseUseCase) Resolve(ctx context.Context, tenantID string, warehouseID *string) (*model.Warehouse, error) {
	if warehouseID == nil || *warehouseID == "" {
		return uc.ResolveDefault(ctx, tenantID)
	}

	wh, err := uc.repo.FindByID(ctx, tenantID, *warehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil || !wh.IsActive {
		return nil, warehouse.ErrInvalidWarehouse
	}
	return wh, nil
}

func (uc *warehouseUseCase) ensureDefault(ctx context.Context, tenantID string) error {
	current, err := uc.repo.FindDefault(ctx, tenantID)
	if err != nil {
		return err
	}
	if current != nil {
		return nil
	}

	fallback, err := uc.repo.FindFirst(ctx, tenantID, false)
	if err != nil {
		return err
	}
	if fallback == nil {
		return nil
	}
	return uc.repo.MakeDefault(ctx, tenantID, fallback.ID)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
