package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	invdto "github.com/bizfleet/inventory-service/internal/inventory/dto"
	"github.com/bizfleet/inventory-service/internal/model"
	"github.com/bizfleet/inventory-service/internal/product"
	proddto "github.com/bizfleet/inventory-service/internal/product/dto"
	"github.com/bizfleet/inventory-service/pkg/logger"
	"go.uber.org/zap"
)

// Catalog is the slice of the product catalog the importer needs: lookup by
// SKU and creation for rows naming a SKU the tenant does not have yet.
type Catalog interface {
	GetProductBySKU(ctx context.Context, tenantID, sku string) (*model.Product, error)
	CreateProduct(ctx context.Context, input *proddto.CreateProductInput) (*model.Product, error)
}

// Ledger records the stock received per row.
type Ledger interface {
	EnsureInventory(ctx context.Context, tenantID, productID string, warehouseID *string) (*model.WarehouseInventory, error)
	Apply(ctx context.Context, input *invdto.ApplyInput) ([]model.StockMovement, error)
}

type RowError struct {
	Row     int    `json:"row"`
	SKU     string `json:"sku"`
	Message string `json:"message"`
}

type ImportResult struct {
	Total     int        `json:"total"`
	Succeeded int        `json:"succeeded"`
	Failed    int        `json:"failed"`
	Errors    []RowError `json:"errors"`
}

type StockImporter struct {
	catalog Catalog
	ledger  Ledger
	logger  logger.ZapLogger
}

func NewStockImporter(catalog Catalog, ledger Ledger, log logger.ZapLogger) *StockImporter {
	return &StockImporter{
		catalog: catalog,
		ledger:  ledger,
		logger:  log,
	}
}

type row struct {
	sku          string
	name         string
	quantity     int
	price        float64
	unitCost     *float64
	minimumStock int
	trackingType string
	warehouseID  *string
	lotNumber    *string
	serialNumber *string
	expiresAt    *time.Time
}

// ImportStock reads a CSV with a header row and records one ledger entry per
// line. Rows are independent: a bad row is reported and skipped, the rest of
// the file still imports. Unknown SKUs create the product first.
func (s *StockImporter) ImportStock(ctx context.Context, tenantID, actorID string, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols["sku"]; !ok {
		return nil, fmt.Errorf("csv header missing required column %q", "sku")
	}
	if _, ok := cols["quantity"]; !ok {
		return nil, fmt.Errorf("csv header missing required column %q", "quantity")
	}

	result := &ImportResult{}
	line := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Total++
			result.Failed++
			result.Errors = append(result.Errors, RowError{Row: line, Message: err.Error()})
			continue
		}

		result.Total++
		rw, err := parseRow(cols, record)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, RowError{Row: line, SKU: rw.sku, Message: err.Error()})
			continue
		}

		if err := s.importRow(ctx, tenantID, actorID, rw); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, RowError{Row: line, SKU: rw.sku, Message: err.Error()})
			continue
		}
		result.Succeeded++
	}

	s.logger.Info("stock import finished",
		zap.String("tenant_id", tenantID),
		zap.Int("total", result.Total),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
	)

	return result, nil
}

func (s *StockImporter) importRow(ctx context.Context, tenantID, actorID string, rw row) error {
	p, err := s.catalog.GetProductBySKU(ctx, tenantID, rw.sku)
	if err != nil && !errors.Is(err, product.ErrProductNotFound) {
		return err
	}
	if p == nil {
		p, err = s.catalog.CreateProduct(ctx, &proddto.CreateProductInput{
			TenantID:     tenantID,
			SKU:          rw.sku,
			Name:         rw.name,
			TrackingType: model.TrackingType(rw.trackingType),
			Price:        rw.price,
			UnitCost:     rw.unitCost,
			MinimumStock: rw.minimumStock,
			ActorID:      actorID,
		})
		if err != nil {
			return fmt.Errorf("create product %s: %w", rw.sku, err)
		}
	}

	if rw.quantity == 0 {
		return nil
	}

	if _, err := s.ledger.EnsureInventory(ctx, tenantID, p.ID, rw.warehouseID); err != nil {
		return err
	}

	_, err = s.ledger.Apply(ctx, &invdto.ApplyInput{
		TenantID:     tenantID,
		ProductID:    p.ID,
		WarehouseID:  rw.warehouseID,
		Type:         model.MovementIn,
		Quantity:     rw.quantity,
		ActorID:      actorID,
		Reason:       "import",
		LotNumber:    rw.lotNumber,
		SerialNumber: rw.serialNumber,
		ExpiresAt:    rw.expiresAt,
		UnitCost:     rw.unitCost,
		Reference:    &model.Reference{Kind: model.ReferenceImport, ID: actorID},
	})
	return err
}

func parseRow(cols map[string]int, record []string) (row, error) {
	rw := row{trackingType: string(model.TrackingNone)}

	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	rw.sku = field("sku")
	if rw.sku == "" {
		return rw, fmt.Errorf("empty sku")
	}

	qty := field("quantity")
	q, err := strconv.Atoi(qty)
	if err != nil {
		return rw, fmt.Errorf("invalid quantity %q", qty)
	}
	if q < 0 {
		return rw, fmt.Errorf("negative quantity %d", q)
	}
	rw.quantity = q

	rw.name = field("name")
	if rw.name == "" {
		rw.name = rw.sku
	}

	if v := field("price"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return rw, fmt.Errorf("invalid price %q", v)
		}
		rw.price = p
	}
	if v := field("unit_cost"); v != "" {
		c, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return rw, fmt.Errorf("invalid unit_cost %q", v)
		}
		rw.unitCost = &c
	}
	if v := field("minimum_stock"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return rw, fmt.Errorf("invalid minimum_stock %q", v)
		}
		rw.minimumStock = m
	}
	if v := field("tracking_type"); v != "" {
		if !model.TrackingType(v).Valid() {
			return rw, fmt.Errorf("invalid tracking_type %q", v)
		}
		rw.trackingType = v
	}
	if v := field("warehouse_id"); v != "" {
		rw.warehouseID = &v
	}
	if v := field("lot_number"); v != "" {
		rw.lotNumber = &v
	}
	if v := field("serial_number"); v != "" {
		rw.serialNumber = &v
	}
	if v := field("expires_at"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			t, err = time.Parse(time.RFC3339, v)
		}
		if err != nil {
			return rw, fmt.Errorf("invalid expires_at %q", v)
		}
		rw.expiresAt = &t
	}

	return rw, nil
}
