package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// MenuRepo provides read access to a store's menu.  Menu CRUD belongs
// to owner tooling; the reservation flow only prices pre-orders.
type MenuRepo struct {
	db *sql.DB
}

// NewMenuRepo returns a new MenuRepo bound to the given database.
func NewMenuRepo(db *sql.DB) *MenuRepo { return &MenuRepo{db: db} }

// ListByStore returns every active menu of the store ordered by name.
func (r *MenuRepo) ListByStore(ctx context.Context, storeID uint64) ([]model.Menu, error) {
	const q = `SELECT id, store_id, name, price, is_active, created_at, updated_at
               FROM menus WHERE store_id = ? AND is_active = 1 ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Menu, 0)
	for rows.Next() {
		var m model.Menu
		if err := rows.Scan(&m.ID, &m.StoreID, &m.Name, &m.Price, &m.IsActive, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetActiveByIDs loads the given menus and verifies that each one
// exists, is active and belongs to the store.  Any miss yields
// ErrMenuNotFound so a draft can never price a foreign dish.
func (r *MenuRepo) GetActiveByIDs(ctx context.Context, storeID uint64, ids []uint64) (map[uint64]model.Menu, error) {
	if len(ids) == 0 {
		return map[uint64]model.Menu{}, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, storeID)
	for i, id := range ids {
		placeholders[i] = "?"
		args = append(args, id)
	}
	q := `SELECT id, store_id, name, price, is_active, created_at, updated_at
          FROM menus
          WHERE store_id = ? AND is_active = 1 AND id IN (` + strings.Join(placeholders, ",") + `)`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uint64]model.Menu, len(ids))
	for rows.Next() {
		var m model.Menu
		if err := rows.Scan(&m.ID, &m.StoreID, &m.Name, &m.Price, &m.IsActive, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out[m.ID] = m
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) != len(ids) {
		return nil, ErrMenuNotFound
	}
	return out, nil
}
