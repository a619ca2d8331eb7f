package importer

import (
	"context"
	"strings"
	"sync"
	"testing"

	invdto "github.com/bizfleet/inventory-service/internal/inventory/dto"
	"github.com/bizfleet/inventory-service/internal/model"
	"github.com/bizfleet/inventory-service/internal/product"
	proddto "github.com/bizfleet/inventory-service/internal/product/dto"
	"github.com/bizfleet/inventory-service/pkg/logger"
)

const testTenant = "tenant-1"

type fakeCatalog struct {
	mu      sync.Mutex
	bySKU   map[string]*model.Product
	created []*proddto.CreateProductInput
	nextID  int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{bySKU: map[string]*model.Product{}}
}

func (f *fakeCatalog) GetProductBySKU(_ context.Context, tenantID, sku string) (*model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.bySKU[sku]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeCatalog) CreateProduct(_ context.Context, input *proddto.CreateProductInput) (*model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p := &model.Product{
		BaseModel:    model.BaseModel{ID: input.SKU + "-id"},
		TenantID:     input.TenantID,
		SKU:          input.SKU,
		Name:         input.Name,
		TrackingType: input.TrackingType,
		Price:        input.Price,
	}
	if p.TrackingType == "" {
		p.TrackingType = model.TrackingNone
	}
	f.bySKU[input.SKU] = p
	f.created = append(f.created, input)
	return p, nil
}

type fakeLedger struct {
	mu      sync.Mutex
	applied []*invdto.ApplyInput
	failSKU map[string]error
}

func (f *fakeLedger) EnsureInventory(_ context.Context, tenantID, productID string, warehouseID *string) (*model.WarehouseInventory, error) {
	return &model.WarehouseInventory{ProductID: productID}, nil
}

func (f *fakeLedger) Apply(_ context.Context, input *invdto.ApplyInput) ([]model.StockMovement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSKU != nil {
		if err, ok := f.failSKU[input.ProductID]; ok {
			return nil, err
		}
	}
	f.applied = append(f.applied, input)
	return []model.StockMovement{{ProductID: input.ProductID, Quantity: input.Quantity}}, nil
}

func newTestImporter(catalog *fakeCatalog, ledger *fakeLedger) *StockImporter {
	return NewStockImporter(catalog, ledger, logger.NewNop())
}

func TestImportCreatesUnknownProducts(t *testing.T) {
	catalog := newFakeCatalog()
	ledger := &fakeLedger{}
	imp := newTestImporter(catalog, ledger)

	csv := strings.Join([]string{
		"sku,name,quantity,price",
		"SKU-1,Widget,10,9.99",
		"SKU-2,Gadget,5,19.99",
	}, "\n")

	result, err := imp.ImportStock(context.Background(), testTenant, "user-1", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ImportStock: %v", err)
	}

	if result.Total != 2 || result.Succeeded != 2 || result.Failed != 0 {
		t.Fatalf("result = %+v", result)
	}
	if len(catalog.created) != 2 {
		t.Errorf("created %d products, want 2", len(catalog.created))
	}
	if len(ledger.applied) != 2 {
		t.Fatalf("applied %d movements, want 2", len(ledger.applied))
	}
	first := ledger.applied[0]
	if first.Type != model.MovementIn || first.Quantity != 10 || first.Reason != "import" {
		t.Errorf("movement = %s/%d/%s", first.Type, first.Quantity, first.Reason)
	}
	if first.Reference == nil || first.Reference.Kind != model.ReferenceImport {
		t.Errorf("reference = %+v", first.Reference)
	}
}

func TestImportReusesExistingProduct(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.bySKU["SKU-1"] = &model.Product{
		BaseModel: model.BaseModel{ID: "p1"}, TenantID: testTenant,
		SKU: "SKU-1", TrackingType: model.TrackingNone,
	}
	ledger := &fakeLedger{}
	imp := newTestImporter(catalog, ledger)

	csv := "sku,quantity\nSKU-1,3\n"
	result, err := imp.ImportStock(context.Background(), testTenant, "user-1", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ImportStock: %v", err)
	}
	if result.Succeeded != 1 {
		t.Fatalf("result = %+v", result)
	}
	if len(catalog.created) != 0 {
		t.Errorf("existing SKU recreated")
	}
	if ledger.applied[0].ProductID != "p1" {
		t.Errorf("movement against wrong product: %s", ledger.applied[0].ProductID)
	}
}

func TestImportBadRowsAreIndependent(t *testing.T) {
	catalog := newFakeCatalog()
	ledger := &fakeLedger{}
	imp := newTestImporter(catalog, ledger)

	csv := strings.Join([]string{
		"sku,name,quantity",
		"SKU-1,Widget,10",
		",Nameless,5",
		"SKU-3,Gadget,notanumber",
		"SKU-4,Gizmo,4",
	}, "\n")

	result, err := imp.ImportStock(context.Background(), testTenant, "user-1", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ImportStock: %v", err)
	}

	if result.Total != 4 || result.Succeeded != 2 || result.Failed != 2 {
		t.Fatalf("result = %+v", result)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("errors = %+v", result.Errors)
	}
	if result.Errors[0].Row != 3 || result.Errors[1].Row != 4 {
		t.Errorf("row numbers = %d,%d, want 3,4", result.Errors[0].Row, result.Errors[1].Row)
	}
	if len(ledger.applied) != 2 {
		t.Errorf("applied %d movements, want 2", len(ledger.applied))
	}
}

func TestImportZeroQuantityCreatesProductOnly(t *testing.T) {
	catalog := newFakeCatalog()
	ledger := &fakeLedger{}
	imp := newTestImporter(catalog, ledger)

	csv := "sku,name,quantity\nSKU-1,Widget,0\n"
	result, err := imp.ImportStock(context.Background(), testTenant, "user-1", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ImportStock: %v", err)
	}
	if result.Succeeded != 1 {
		t.Fatalf("result = %+v", result)
	}
	if len(catalog.created) != 1 {
		t.Errorf("product not created")
	}
	if len(ledger.applied) != 0 {
		t.Errorf("zero quantity wrote a movement")
	}
}

func TestImportLotColumns(t *testing.T) {
	catalog := newFakeCatalog()
	ledger := &fakeLedger{}
	imp := newTestImporter(catalog, ledger)

	csv := strings.Join([]string{
		"sku,name,quantity,tracking_type,lot_number,expires_at",
		"SKU-1,Milk,12,lot,BATCH-7,2026-12-01",
	}, "\n")

	result, err := imp.ImportStock(context.Background(), testTenant, "user-1", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ImportStock: %v", err)
	}
	if result.Succeeded != 1 {
		t.Fatalf("result = %+v", result)
	}

	in := ledger.applied[0]
	if in.LotNumber == nil || *in.LotNumber != "BATCH-7" {
		t.Errorf("lot number not threaded: %+v", in.LotNumber)
	}
	if in.ExpiresAt == nil || in.ExpiresAt.Year() != 2026 || in.ExpiresAt.Month() != 12 {
		t.Errorf("expiry not parsed: %+v", in.ExpiresAt)
	}
	if catalog.created[0].TrackingType != model.TrackingLot {
		t.Errorf("tracking type not threaded to catalog")
	}
}

func TestImportMissingRequiredHeader(t *testing.T) {
	imp := newTestImporter(newFakeCatalog(), &fakeLedger{})

	_, err := imp.ImportStock(context.Background(), testTenant, "user-1", strings.NewReader("name,quantity\nWidget,1\n"))
	if err == nil {
		t.Fatal("expected error for missing sku column")
	}
}

func TestImportLedgerFailureReported(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.bySKU["SKU-1"] = &model.Product{
		BaseModel: model.BaseModel{ID: "p1"}, TenantID: testTenant, SKU: "SKU-1",
	}
	ledger := &fakeLedger{failSKU: map[string]error{"p1": context.DeadlineExceeded}}
	imp := newTestImporter(catalog, ledger)

	csv := "sku,quantity\nSKU-1,3\n"
	result, err := imp.ImportStock(context.Background(), testTenant, "user-1", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ImportStock: %v", err)
	}
	if result.Failed != 1 || result.Succeeded != 0 {
		t.Fatalf("result = %+v", result)
	}
	if result.Errors[0].SKU != "SKU-1" {
		t.Errorf("error row sku = %s", result.Errors[0].SKU)
	}
}
