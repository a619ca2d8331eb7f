package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bizfleet/inventory-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, wh *model.Warehouse) error {
	query := `
        INSERT INTO warehouses (
            id, tenant_id, name, code, address, city, country,
            is_default, is_active, created_at, updated_at
        )
        VALUES (
            :id, :tenant_id, :name, :code, :address, :city, :country,
            :is_default, :is_active, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, wh)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, tenantID, id string) (*model.Warehouse, error) {
	var wh model.Warehouse
	err := r.DB.GetContext(ctx, &wh,
		`SELECT * FROM warehouses WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &wh, nil
}

func (r *PGRepository) FindAll(ctx context.Context, tenantID string) ([]model.Warehouse, error) {
	items := []model.Warehouse{}
	err := r.DB.SelectContext(ctx, &items,
		`SELECT * FROM warehouses WHERE tenant_id = $1 ORDER BY created_at ASC`, tenantID)
	return items, err
}

func (r *PGRepository) FindDefault(ctx context.Context, tenantID string) (*model.Warehouse, error) {
	var wh model.Warehouse
	err := r.DB.GetContext(ctx, &wh,
		`SELECT * FROM warehouses WHERE tenant_id = $1 AND is_default = true LIMIT 1`, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &wh, nil
}

func (r *PGRepository) FindFirst(ctx context.Context, tenantID string, activeOnly bool) (*model.Warehouse, error) {
	query := `SELECT * FROM warehouses WHERE tenant_id = $1`
	if activeOnly {
		query += ` AND is_active = true`
	}
	query += ` ORDER BY created_at ASC LIMIT 1`

	var wh model.Warehouse
	err := r.DB.GetContext(ctx, &wh, query, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &wh, nil
}

func (r *PGRepository) Update(ctx context.Context, wh *model.Warehouse) error {
	query := `
        UPDATE warehouses SET
            name = :name,
            code = :code,
            address = :address,
            city = :city,
            country = :country,
            is_default = :is_default,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id AND tenant_id = :tenant_id
    `
	_, err := r.DB.NamedExecContext(ctx, query, wh)
	return err
}

func (r *PGRepository) Delete(ctx context.Context, tenantID, id string) error {
	_, err := r.DB.ExecContext(ctx,
		`DELETE FROM warehouses WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	return err
}

func (r *PGRepository) MakeDefault(ctx context.Context, tenantID, id string) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE warehouses SET is_default = false, updated_at = NOW()
         WHERE tenant_id = $1 AND is_default = true`, tenantID); err != nil {
		return fmt.Errorf("unset default: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE warehouses SET is_default = true, updated_at = NOW()
         WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return fmt.Errorf("set default: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}

	return tx.Commit()
}

func (r *PGRepository) HasInventoryState(ctx context.Context, warehouseID string) (bool, error) {
	var exists bool
	err := r.DB.GetContext(ctx, &exists, `
        SELECT EXISTS (
            SELECT 1 FROM warehouse_inventories
            WHERE warehouse_id = $1
              AND (on_hand <> 0 OR reserved <> 0 OR damaged <> 0)
        )`, warehouseID)
	return exists, err
}
