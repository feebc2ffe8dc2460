package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// StoreRepo provides read access to stores and their weekly opening
// hours, plus the owner-side break-time writes.  Break times are
// "HH:MM" strings; a NULL pair means the store has no daily break.
type StoreRepo struct {
	db *sql.DB
}

// NewStoreRepo returns a new StoreRepo bound to the given database.
func NewStoreRepo(db *sql.DB) *StoreRepo { return &StoreRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions
// spanning multiple repositories.
func (r *StoreRepo) DB() *sql.DB { return r.db }

// GetByID loads a single store.  It returns ErrStoreNotFound when no
// row matches.
func (r *StoreRepo) GetByID(ctx context.Context, id uint64) (*model.Store, error) {
	const q = `SELECT id, owner_id, name, address, deposit_rate, interval_minutes,
                      break_start, break_end, created_at, updated_at
               FROM stores WHERE id = ?`
	var s model.Store
	var breakStart, breakEnd sql.NullString
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&s.ID, &s.OwnerID, &s.Name, &s.Address, &s.DepositRate, &s.IntervalMinutes,
		&breakStart, &breakEnd, &s.CreatedAt, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrStoreNotFound
	}
	if err != nil {
		return nil, err
	}
	if breakStart.Valid {
		v := breakStart.String
		s.BreakStart = &v
	}
	if breakEnd.Valid {
		v := breakEnd.String
		s.BreakEnd = &v
	}
	return &s, nil
}

// ListAll returns every store ordered by name.  Used by the public
// browse endpoints; sensitive fields are filtered by the handler.
func (r *StoreRepo) ListAll(ctx context.Context) ([]model.Store, error) {
	const q = `SELECT id, owner_id, name, address, deposit_rate, interval_minutes,
                      break_start, break_end, created_at, updated_at
               FROM stores ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Store, 0)
	for rows.Next() {
		var s model.Store
		var breakStart, breakEnd sql.NullString
		if err := rows.Scan(
			&s.ID, &s.OwnerID, &s.Name, &s.Address, &s.DepositRate, &s.IntervalMinutes,
			&breakStart, &breakEnd, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if breakStart.Valid {
			v := breakStart.String
			s.BreakStart = &v
		}
		if breakEnd.Valid {
			v := breakEnd.String
			s.BreakEnd = &v
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// HoursForWeekday returns the opening window for one weekday
// (time.Weekday numbering).  sql.ErrNoRows means the store is closed
// that day.
func (r *StoreRepo) HoursForWeekday(ctx context.Context, storeID uint64, weekday int) (*model.StoreHours, error) {
	const q = `SELECT id, store_id, weekday, open_time, close_time
               FROM store_hours WHERE store_id = ? AND weekday = ?`
	var h model.StoreHours
	err := r.db.QueryRowContext(ctx, q, storeID, weekday).Scan(
		&h.ID, &h.StoreID, &h.Weekday, &h.Open, &h.Close,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// SetBreakTime writes the store's daily break window after verifying
// ownership.  It returns ErrStoreNotFound when the store does not
// exist and ErrForbidden when it belongs to another owner.
func (r *StoreRepo) SetBreakTime(ctx context.Context, storeID, ownerID uint64, start, end string) error {
	if err := r.checkOwner(ctx, storeID, ownerID); err != nil {
		return err
	}
	const q = `UPDATE stores SET break_start = ?, break_end = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, start, end, storeID)
	return err
}

// ClearBreakTime removes the store's daily break window after
// verifying ownership.
func (r *StoreRepo) ClearBreakTime(ctx context.Context, storeID, ownerID uint64) error {
	if err := r.checkOwner(ctx, storeID, ownerID); err != nil {
		return err
	}
	const q = `UPDATE stores SET break_start = NULL, break_end = NULL WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, storeID)
	return err
}

func (r *StoreRepo) checkOwner(ctx context.Context, storeID, ownerID uint64) error {
	const q = `SELECT owner_id FROM stores WHERE id = ?`
	var actual uint64
	err := r.db.QueryRowContext(ctx, q, storeID).Scan(&actual)
	if err == sql.ErrNoRows {
		return ErrStoreNotFound
	}
	if err != nil {
		return err
	}
	if actual != ownerID {
		return ErrForbidden
	}
	return nil
}
