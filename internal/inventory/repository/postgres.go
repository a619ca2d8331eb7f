package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/bizfleet/inventory-service/internal/inventory"
	"github.com/bizfleet/inventory-service/internal/inventory/dto"
	"github.com/bizfleet/inventory-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) GetProduct(ctx context.Context, tenantID, productID string) (*model.Product, error) {
	var p model.Product
	err := r.DB.GetContext(ctx, &p,
		`SELECT * FROM products WHERE tenant_id = $1 AND id = $2`, tenantID, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGRepository) GetInventory(ctx context.Context, productID, warehouseID string) (*model.WarehouseInventory, error) {
	var inv model.WarehouseInventory
	err := r.DB.GetContext(ctx, &inv,
		`SELECT * FROM warehouse_inventories WHERE product_id = $1 AND warehouse_id = $2`,
		productID, warehouseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func (r *PGRepository) ListInventories(ctx context.Context, f *dto.InventoryFilters) ([]model.WarehouseInventory, int, error) {
	conditions := []string{"p.tenant_id = :tenant_id"}
	args := map[string]interface{}{"tenant_id": f.TenantID}

	if f.ProductID != "" {
		conditions = append(conditions, "wi.product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.WarehouseID != nil && *f.WarehouseID != "" {
		conditions = append(conditions, "wi.warehouse_id = :warehouse_id")
		args["warehouse_id"] = *f.WarehouseID
	}
	if f.LowStock {
		conditions = append(conditions, "wi.minimum_stock > 0 AND wi.on_hand <= wi.minimum_stock")
	}
	if f.OutOfStock {
		conditions = append(conditions, "wi.on_hand <= 0")
	}

	from := ` FROM warehouse_inventories wi JOIN products p ON p.id = wi.product_id WHERE ` +
		strings.Join(conditions, " AND ")

	rows, err := r.DB.NamedQueryContext(ctx, "SELECT count(*)"+from, args)
	if err != nil {
		return nil, 0, err
	}
	count, err := scanCount(rows)
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT wi.*" + from + " ORDER BY wi.updated_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	items := []model.WarehouseInventory{}
	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}

func (r *PGRepository) ListByProduct(ctx context.Context, productID string) ([]model.WarehouseInventory, error) {
	items := []model.WarehouseInventory{}
	err := r.DB.SelectContext(ctx, &items,
		`SELECT * FROM warehouse_inventories WHERE product_id = $1 ORDER BY created_at ASC`,
		productID)
	return items, err
}

func (r *PGRepository) EnsureInventory(ctx context.Context, inv *model.WarehouseInventory) (*model.WarehouseInventory, error) {
	query := `
        INSERT INTO warehouse_inventories (
            id, product_id, warehouse_id, on_hand, reserved, damaged,
            minimum_stock, reorder_point, created_at, updated_at
        )
        VALUES (
            :id, :product_id, :warehouse_id, :on_hand, :reserved, :damaged,
            :minimum_stock, :reorder_point, :created_at, :updated_at
        )
        ON CONFLICT (product_id, warehouse_id) DO NOTHING
    `
	if _, err := r.DB.NamedExecContext(ctx, query, inv); err != nil {
		return nil, err
	}
	return r.GetInventory(ctx, inv.ProductID, inv.WarehouseID)
}

func (r *PGRepository) FindLotByNumber(ctx context.Context, productID, warehouseID, lotNumber string) (*model.Lot, error) {
	var lot model.Lot
	err := r.DB.GetContext(ctx, &lot, `
        SELECT * FROM lots
        WHERE product_id = $1 AND warehouse_id = $2 AND lot_number = $3 AND serial_number IS NULL`,
		productID, warehouseID, lotNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &lot, nil
}

func (r *PGRepository) FindSerial(ctx context.Context, productID, serialNumber string) (*model.Lot, error) {
	var lot model.Lot
	err := r.DB.GetContext(ctx, &lot,
		`SELECT * FROM lots WHERE product_id = $1 AND serial_number = $2`,
		productID, serialNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &lot, nil
}

// ListConsumableLots returns nonempty lot rows in consumption order:
// ascending expiry date with null expiries last.
func (r *PGRepository) ListConsumableLots(ctx context.Context, productID, warehouseID string) ([]model.Lot, error) {
	items := []model.Lot{}
	err := r.DB.SelectContext(ctx, &items, `
        SELECT * FROM lots
        WHERE product_id = $1 AND warehouse_id = $2
          AND serial_number IS NULL AND quantity > 0
        ORDER BY expires_at ASC NULLS LAST, created_at ASC`,
		productID, warehouseID)
	return items, err
}

func (r *PGRepository) ListAvailableSerials(ctx context.Context, productID, warehouseID string, limit int) ([]model.Lot, error) {
	items := []model.Lot{}
	err := r.DB.SelectContext(ctx, &items, `
        SELECT * FROM lots
        WHERE product_id = $1 AND warehouse_id = $2
          AND serial_number IS NOT NULL AND quantity > 0
        ORDER BY created_at ASC
        LIMIT $3`,
		productID, warehouseID, limit)
	return items, err
}

func (r *PGRepository) ListLots(ctx context.Context, f *dto.LotFilters) ([]model.Lot, int, error) {
	conditions := []string{"p.tenant_id = :tenant_id"}
	args := map[string]interface{}{"tenant_id": f.TenantID}

	if f.ProductID != "" {
		conditions = append(conditions, "l.product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.WarehouseID != nil && *f.WarehouseID != "" {
		conditions = append(conditions, "l.warehouse_id = :warehouse_id")
		args["warehouse_id"] = *f.WarehouseID
	}
	if f.ExpiringBefore != nil {
		conditions = append(conditions, "l.expires_at IS NOT NULL AND l.expires_at <= :expiring_before")
		args["expiring_before"] = *f.ExpiringBefore
	}
	if !f.IncludeEmpty {
		conditions = append(conditions, "l.quantity > 0")
	}

	from := ` FROM lots l JOIN products p ON p.id = l.product_id WHERE ` +
		strings.Join(conditions, " AND ")

	rows, err := r.DB.NamedQueryContext(ctx, "SELECT count(*)"+from, args)
	if err != nil {
		return nil, 0, err
	}
	count, err := scanCount(rows)
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT l.*" + from + " ORDER BY l.expires_at ASC NULLS LAST, l.created_at ASC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	items := []model.Lot{}
	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}

func (r *PGRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error) {
	conditions := []string{"p.tenant_id = :tenant_id"}
	args := map[string]interface{}{"tenant_id": f.TenantID}

	if f.ProductID != "" {
		conditions = append(conditions, "m.product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.WarehouseID != nil && *f.WarehouseID != "" {
		conditions = append(conditions, "m.warehouse_id = :warehouse_id")
		args["warehouse_id"] = *f.WarehouseID
	}
	if f.Type != "" {
		conditions = append(conditions, "m.type = :type")
		args["type"] = f.Type
	}
	if f.StartDate != nil {
		conditions = append(conditions, "m.created_at >= :start_date")
		args["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		conditions = append(conditions, "m.created_at <= :end_date")
		args["end_date"] = *f.EndDate
	}

	from := ` FROM stock_movements m JOIN products p ON p.id = m.product_id WHERE ` +
		strings.Join(conditions, " AND ")

	rows, err := r.DB.NamedQueryContext(ctx, "SELECT count(*)"+from, args)
	if err != nil {
		return nil, 0, err
	}
	count, err := scanCount(rows)
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT m.*" + from + " ORDER BY m.created_at DESC, m.id DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	items := []model.StockMovement{}
	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}

// CommitMovement applies one ledger operation in a single transaction:
// aggregate writes, lot writes, movement inserts, then the product stock
// facade refresh derived from the aggregate table itself. Every balance
// update is guarded by the values the operation was computed from; a raced
// row commits nothing and surfaces inventory.ErrContention.
func (r *PGRepository) CommitMovement(ctx context.Context, commit *inventory.MovementCommit) (int, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for i := range commit.Inventories {
		if err := applyInventoryWrite(ctx, tx, &commit.Inventories[i]); err != nil {
			return 0, err
		}
	}

	for i := range commit.Lots {
		if err := applyLotWrite(ctx, tx, &commit.Lots[i]); err != nil {
			return 0, err
		}
	}

	for _, m := range commit.Movements {
		if err := insertMovement(ctx, tx, m); err != nil {
			return 0, err
		}
	}

	var stock int
	err = tx.GetContext(ctx, &stock, `
        UPDATE products SET
            stock = (
                SELECT COALESCE(SUM(on_hand), 0)
                FROM warehouse_inventories
                WHERE product_id = $1
            ),
            updated_at = NOW()
        WHERE id = $1
        RETURNING stock`, commit.ProductID)
	if err != nil {
		return 0, fmt.Errorf("refresh product stock: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit movement: %w", err)
	}
	return stock, nil
}

func (r *PGRepository) CommitReservation(ctx context.Context, commit *inventory.ReservationCommit) (int, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := applyInventoryWrite(ctx, tx, &commit.Inventory); err != nil {
		return 0, err
	}

	var stock int
	err = tx.GetContext(ctx, &stock,
		`SELECT stock FROM products WHERE id = $1`, commit.ProductID)
	if err != nil {
		return 0, fmt.Errorf("read product stock: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit reservation: %w", err)
	}
	return stock, nil
}

func applyInventoryWrite(ctx context.Context, tx *sqlx.Tx, w *inventory.InventoryWrite) error {
	if w.Created {
		_, err := tx.NamedExecContext(ctx, `
            INSERT INTO warehouse_inventories (
                id, product_id, warehouse_id, on_hand, reserved, damaged,
                minimum_stock, reorder_point, created_at, updated_at
            )
            VALUES (
                :id, :product_id, :warehouse_id, :on_hand, :reserved, :damaged,
                :minimum_stock, :reorder_point, :created_at, :updated_at
            )`, w.Inventory)
		if err != nil {
			return fmt.Errorf("insert inventory: %w", err)
		}
		return nil
	}

	res, err := tx.ExecContext(ctx, `
        UPDATE warehouse_inventories SET
            on_hand = $1, reserved = $2, damaged = $3, updated_at = NOW()
        WHERE id = $4 AND on_hand = $5 AND reserved = $6 AND damaged = $7`,
		w.Inventory.OnHand, w.Inventory.Reserved, w.Inventory.Damaged,
		w.Inventory.ID, w.PrevOnHand, w.PrevReserved, w.PrevDamaged)
	if err != nil {
		return fmt.Errorf("update inventory: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return inventory.ErrContention
	}
	return nil
}

func applyLotWrite(ctx context.Context, tx *sqlx.Tx, w *inventory.LotWrite) error {
	if w.Created {
		_, err := tx.NamedExecContext(ctx, `
            INSERT INTO lots (
                id, product_id, warehouse_id, lot_number, serial_number,
                quantity, expires_at, received_at, unit_cost, note,
                created_at, updated_at
            )
            VALUES (
                :id, :product_id, :warehouse_id, :lot_number, :serial_number,
                :quantity, :expires_at, :received_at, :unit_cost, :note,
                :created_at, :updated_at
            )`, w.Lot)
		if err != nil {
			return fmt.Errorf("insert lot: %w", err)
		}
		return nil
	}

	res, err := tx.ExecContext(ctx, `
        UPDATE lots SET quantity = $1, warehouse_id = $2, updated_at = NOW()
        WHERE id = $3 AND quantity = $4`,
		w.Lot.Quantity, w.Lot.WarehouseID, w.Lot.ID, w.PrevQuantity)
	if err != nil {
		return fmt.Errorf("update lot: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return inventory.ErrContention
	}
	return nil
}

func insertMovement(ctx context.Context, tx *sqlx.Tx, m *model.StockMovement) error {
	_, err := tx.NamedExecContext(ctx, `
        INSERT INTO stock_movements (
            id, product_id, warehouse_id, lot_id, actor_id, type, quantity,
            before_quantity, after_quantity, reason, note, unit_cost,
            reference_type, reference_id, created_at
        )
        VALUES (
            :id, :product_id, :warehouse_id, :lot_id, :actor_id, :type, :quantity,
            :before_quantity, :after_quantity, :reason, :note, :unit_cost,
            :reference_type, :reference_id, :created_at
        )`, m)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

func scanCount(rows *sqlx.Rows) (int, error) {
	defer rows.Close()
	var count int
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, err
		}
	}
	return count, rows.Err()
}
