package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/bizfleet/inventory-service/internal/model"
	"github.com/bizfleet/inventory-service/internal/warehouse"
	"github.com/bizfleet/inventory-service/internal/warehouse/dto"
	"github.com/bizfleet/inventory-service/pkg/logger"
)

const testTenant = "tenant-1"

type fakeRepo struct {
	mu         sync.Mutex
	warehouses map[string]*model.Warehouse
	inUse      map[string]bool
	seq        int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		warehouses: map[string]*model.Warehouse{},
		inUse:      map[string]bool{},
	}
}

func (r *fakeRepo) Create(_ context.Context, wh *model.Warehouse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	cp := *wh
	r.warehouses[wh.ID] = &cp
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, tenantID, id string) (*model.Warehouse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wh, ok := r.warehouses[id]
	if !ok || wh.TenantID != tenantID {
		return nil, nil
	}
	cp := *wh
	return &cp, nil
}

func (r *fakeRepo) sorted(tenantID string) []*model.Warehouse {
	var out []*model.Warehouse
	for _, wh := range r.warehouses {
		if wh.TenantID == tenantID {
			out = append(out, wh)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *fakeRepo) FindAll(_ context.Context, tenantID string) ([]model.Warehouse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Warehouse
	for _, wh := range r.sorted(tenantID) {
		out = append(out, *wh)
	}
	return out, nil
}

func (r *fakeRepo) FindDefault(_ context.Context, tenantID string) (*model.Warehouse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, wh := range r.warehouses {
		if wh.TenantID == tenantID && wh.IsDefault {
			cp := *wh
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) FindFirst(_ context.Context, tenantID string, activeOnly bool) (*model.Warehouse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, wh := range r.sorted(tenantID) {
		if activeOnly && !wh.IsActive {
			continue
		}
		cp := *wh
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeRepo) Update(_ context.Context, wh *model.Warehouse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.warehouses[wh.ID]; !ok {
		return errors.New("not found")
	}
	cp := *wh
	r.warehouses[wh.ID] = &cp
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, tenantID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.warehouses, id)
	return nil
}

func (r *fakeRepo) MakeDefault(_ context.Context, tenantID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, wh := range r.warehouses {
		if wh.TenantID == tenantID {
			wh.IsDefault = wh.ID == id
		}
	}
	return nil
}

func (r *fakeRepo) HasInventoryState(_ context.Context, warehouseID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inUse[warehouseID], nil
}

func (r *fakeRepo) countDefaults(tenantID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, wh := range r.warehouses {
		if wh.TenantID == tenantID && wh.IsDefault {
			n++
		}
	}
	return n
}

func newTestUseCase(repo *fakeRepo) warehouse.UseCase {
	return NewWarehouseUseCase(repo, logger.NewNop())
}

func create(t *testing.T, uc warehouse.UseCase, name string, isDefault bool) *model.Warehouse {
	t.Helper()
	wh, err := uc.CreateWarehouse(context.Background(), &dto.CreateWarehouseInput{
		TenantID:  testTenant,
		Name:      name,
		IsDefault: isDefault,
	})
	if err != nil {
		t.Fatalf("CreateWarehouse(%s): %v", name, err)
	}
	return wh
}

func TestFirstWarehouseBecomesDefault(t *testing.T) {
	repo := newFakeRepo()
	uc := newTestUseCase(repo)

	wh := create(t, uc, "Main", false)
	if !wh.IsDefault {
		t.Errorf("first warehouse should be promoted to default")
	}
	if repo.countDefaults(testTenant) != 1 {
		t.Errorf("default count = %d, want 1", repo.countDefaults(testTenant))
	}
}

func TestCreateDefaultDisplacesPrevious(t *testing.T) {
	repo := newFakeRepo()
	uc := newTestUseCase(repo)

	first := create(t, uc, "Main", false)
	second := create(t, uc, "Backup", true)

	if !second.IsDefault {
		t.Errorf("explicitly-default warehouse lost the flag")
	}
	if repo.warehouses[first.ID].IsDefault {
		t.Errorf("previous default kept the flag")
	}
	if repo.countDefaults(testTenant) != 1 {
		t.Errorf("default count = %d, want 1", repo.countDefaults(testTenant))
	}
}

func TestSetDefaultIsExclusive(t *testing.T) {
	repo := newFakeRepo()
	uc := newTestUseCase(repo)

	create(t, uc, "Main", false)
	second := create(t, uc, "Backup", false)

	got, err := uc.SetDefault(context.Background(), testTenant, second.ID)
	if err != nil {
		t.Fatalf("SetDefault: %v", err)
	}
	if !got.IsDefault {
		t.Errorf("SetDefault result not flagged")
	}
	if repo.countDefaults(testTenant) != 1 {
		t.Errorf("default count = %d, want 1", repo.countDefaults(testTenant))
	}
}

func TestDeleteBlockedWhileInventoryHeld(t *testing.T) {
	repo := newFakeRepo()
	uc := newTestUseCase(repo)

	wh := create(t, uc, "Main", false)
	repo.inUse[wh.ID] = true

	err := uc.DeleteWarehouse(context.Background(), testTenant, wh.ID)
	if !errors.Is(err, warehouse.ErrWarehouseInUse) {
		t.Fatalf("expected ErrWarehouseInUse, got %v", err)
	}
	if _, ok := repo.warehouses[wh.ID]; !ok {
		t.Errorf("warehouse deleted despite inventory")
	}
}

func TestDeleteDefaultPromotesReplacement(t *testing.T) {
	repo := newFakeRepo()
	uc := newTestUseCase(repo)

	first := create(t, uc, "Main", false)
	second := create(t, uc, "Backup", false)

	if err := uc.DeleteWarehouse(context.Background(), testTenant, first.ID); err != nil {
		t.Fatalf("DeleteWarehouse: %v", err)
	}
	if !repo.warehouses[second.ID].IsDefault {
		t.Errorf("remaining warehouse not promoted to default")
	}
}

func TestResolveDefaultSelfHeals(t *testing.T) {
	repo := newFakeRepo()
	uc := newTestUseCase(repo)

	wh := create(t, uc, "Main", false)
	// Simulate drift: the flag got lost out of band.
	repo.warehouses[wh.ID].IsDefault = false

	got, err := uc.ResolveDefault(context.Background(), testTenant)
	if err != nil {
		t.Fatalf("ResolveDefault: %v", err)
	}
	if got.ID != wh.ID || !got.IsDefault {
		t.Errorf("self-heal did not restore the default: %+v", got)
	}
	if !repo.warehouses[wh.ID].IsDefault {
		t.Errorf("flag not persisted")
	}
}

func TestResolveDefaultNoWarehouses(t *testing.T) {
	repo := newFakeRepo()
	uc := newTestUseCase(repo)

	_, err := uc.ResolveDefault(context.Background(), testTenant)
	if !errors.Is(err, warehouse.ErrNoWarehouseAvailable) {
		t.Fatalf("expected ErrNoWarehouseAvailable, got %v", err)
	}
}

func TestResolveRejectsInactiveWarehouse(t *testing.T) {
	repo := newFakeRepo()
	uc := newTestUseCase(repo)

	wh := create(t, uc, "Main", false)
	repo.warehouses[wh.ID].IsActive = false

	_, err := uc.Resolve(context.Background(), testTenant, &wh.ID)
	if !errors.Is(err, warehouse.ErrInvalidWarehouse) {
		t.Fatalf("expected ErrInvalidWarehouse, got %v", err)
	}
}

func TestResolveFallsBackToDefault(t *testing.T) {
	repo := newFakeRepo()
	uc := newTestUseCase(repo)

	wh := create(t, uc, "Main", false)

	got, err := uc.Resolve(context.Background(), testTenant, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.ID != wh.ID {
		t.Errorf("resolved %s, want default %s", got.ID, wh.ID)
	}
}

func TestUpdateUnknownWarehouse(t *testing.T) {
	repo := newFakeRepo()
	uc := newTestUseCase(repo)

	_, err := uc.UpdateWarehouse(context.Background(), &dto.UpdateWarehouseInput{
		ID:       "missing",
		TenantID: testTenant,
		Name:     "Nope",
	})
	if !errors.Is(err, warehouse.ErrWarehouseNotFound) {
		t.Fatalf("expected ErrWarehouseNotFound, got %v", err)
	}
}

func TestUpdatePromotesToDefault(t *testing.T) {
	repo := newFakeRepo()
	uc := newTestUseCase(repo)

	create(t, uc, "Main", false)
	second := create(t, uc, "Backup", false)

	makeDefault := true
	got, err := uc.UpdateWarehouse(context.Background(), &dto.UpdateWarehouseInput{
		ID:        second.ID,
		TenantID:  testTenant,
		Name:      "Backup",
		IsDefault: &makeDefault,
	})
	if err != nil {
		t.Fatalf("UpdateWarehouse: %v", err)
	}
	if !got.IsDefault {
		t.Errorf("update did not promote to default")
	}
	if repo.countDefaults(testTenant) != 1 {
		t.Errorf("default count = %d, want 1", repo.countDefaults(testTenant))
	}
}
