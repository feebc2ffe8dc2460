package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// TableRepo provides read access to a store's table layout.  Tables
// are written by the owner dashboard, which is outside this service;
// everything here is a query.
type TableRepo struct {
	db *sql.DB
}

// NewTableRepo returns a new TableRepo bound to the given database.
func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{db: db} }

// ListActiveByStore returns every active table of a store ordered by
// table number.  Inactive tables are invisible to the reservation
// flow.
func (r *TableRepo) ListActiveByStore(ctx context.Context, storeID uint64) ([]model.Table, error) {
	const q = `SELECT id, store_id, table_number, seats_type, min_seats, max_seats,
                      grid_x, grid_y, width_span, height_span, is_active, created_at, updated_at
               FROM tables WHERE store_id = ? AND is_active = 1
               ORDER BY table_number`
	rows, err := r.db.QueryContext(ctx, q, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTables(rows)
}

// GetByIDs loads the given tables and verifies that each one exists,
// is active and belongs to the store.  Any missing or foreign table
// yields ErrTableNotFound.  Passing an empty slice returns an empty
// result.
func (r *TableRepo) GetByIDs(ctx context.Context, storeID uint64, ids []uint64) ([]model.Table, error) {
	if len(ids) == 0 {
		return []model.Table{}, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, storeID)
	for i, id := range ids {
		placeholders[i] = "?"
		args = append(args, id)
	}
	q := `SELECT id, store_id, table_number, seats_type, min_seats, max_seats,
                 grid_x, grid_y, width_span, height_span, is_active, created_at, updated_at
          FROM tables
          WHERE store_id = ? AND is_active = 1 AND id IN (` + strings.Join(placeholders, ",") + `)`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tables, err := scanTables(rows)
	if err != nil {
		return nil, err
	}
	if len(tables) != len(ids) {
		return nil, ErrTableNotFound
	}
	return tables, nil
}

// GetForOwner loads a single table and verifies that the caller owns
// the store it belongs to.  Returns ErrTableNotFound or ErrForbidden.
func (r *TableRepo) GetForOwner(ctx context.Context, tableID, ownerID uint64) (*model.Table, error) {
	const q = `SELECT t.id, t.store_id, t.table_number, t.seats_type, t.min_seats, t.max_seats,
                      t.grid_x, t.grid_y, t.width_span, t.height_span, t.is_active,
                      t.created_at, t.updated_at, s.owner_id
               FROM tables t
               JOIN stores s ON s.id = t.store_id
               WHERE t.id = ?`
	var t model.Table
	var actualOwner uint64
	err := r.db.QueryRowContext(ctx, q, tableID).Scan(
		&t.ID, &t.StoreID, &t.TableNumber, &t.SeatsType, &t.MinSeats, &t.MaxSeats,
		&t.GridX, &t.GridY, &t.WidthSpan, &t.HeightSpan, &t.IsActive,
		&t.CreatedAt, &t.UpdatedAt, &actualOwner,
	)
	if err == sql.ErrNoRows {
		return nil, ErrTableNotFound
	}
	if err != nil {
		return nil, err
	}
	if actualOwner != ownerID {
		return nil, ErrForbidden
	}
	return &t, nil
}

func scanTables(rows *sql.Rows) ([]model.Table, error) {
	out := make([]model.Table, 0)
	for rows.Next() {
		var t model.Table
		if err := rows.Scan(
			&t.ID, &t.StoreID, &t.TableNumber, &t.SeatsType, &t.MinSeats, &t.MaxSeats,
			&t.GridX, &t.GridY, &t.WidthSpan, &t.HeightSpan, &t.IsActive,
			&t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
