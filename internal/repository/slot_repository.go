package repository

import (
	"context"
	"database/sql"
	"strings"
)

// SlotRepo reads and writes owner overrides in the table_slots table
// and derives the booked set from live bookings.  table_slots is
// sparse: a table with no row for a (date, time) is AVAILABLE.  The
// booked set deliberately ignores CANCELED bookings so canceled slots
// are offered again immediately.
type SlotRepo struct {
	db *sql.DB
}

// NewSlotRepo returns a new SlotRepo bound to the given database.
func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{db: db} }

// BlockedSet returns the IDs of a store's tables whose slot for the
// given date and time carries a stored BLOCKED status.
func (r *SlotRepo) BlockedSet(ctx context.Context, storeID uint64, date, slotTime string) (map[uint64]struct{}, error) {
	const q = `SELECT ts.table_id
               FROM table_slots ts
               JOIN tables t ON t.id = ts.table_id
               WHERE t.store_id = ? AND ts.slot_date = ? AND ts.slot_time = ? AND ts.status = 'BLOCKED'`
	return r.querySet(ctx, q, storeID, date, slotTime)
}

// BookedSet returns the IDs of a store's tables occupied by a live
// (non-canceled) booking for the given date and time.
func (r *SlotRepo) BookedSet(ctx context.Context, storeID uint64, date, slotTime string) (map[uint64]struct{}, error) {
	const q = `SELECT bt.table_id
               FROM booking_tables bt
               JOIN bookings b ON b.id = bt.booking_id
               WHERE b.store_id = ? AND b.booking_date = ? AND b.booking_time = ?
                 AND b.status <> 'CANCELED'`
	return r.querySet(ctx, q, storeID, date, slotTime)
}

// UnavailableByTime returns, keyed by "HH:MM" slot time, the set of
// table IDs that are either booked or blocked anywhere on the given
// date.  It lets the availability resolver decide every time slot of
// a day with two queries instead of two per slot.
func (r *SlotRepo) UnavailableByTime(ctx context.Context, storeID uint64, date string) (map[string]map[uint64]struct{}, error) {
	out := make(map[string]map[uint64]struct{})
	const bookedQ = `SELECT b.booking_time, bt.table_id
                     FROM booking_tables bt
                     JOIN bookings b ON b.id = bt.booking_id
                     WHERE b.store_id = ? AND b.booking_date = ? AND b.status <> 'CANCELED'`
	if err := r.mergeByTime(ctx, out, bookedQ, storeID, date); err != nil {
		return nil, err
	}
	const blockedQ = `SELECT ts.slot_time, ts.table_id
                      FROM table_slots ts
                      JOIN tables t ON t.id = ts.table_id
                      WHERE t.store_id = ? AND ts.slot_date = ? AND ts.status = 'BLOCKED'`
	if err := r.mergeByTime(ctx, out, blockedQ, storeID, date); err != nil {
		return nil, err
	}
	return out, nil
}

// Upsert writes an owner override for one (table, date, time) unit.
// Status must be AVAILABLE or BLOCKED; writing AVAILABLE overwrites a
// previous block rather than deleting the row, which keeps an audit
// trail of toggles in updated_at.
func (r *SlotRepo) Upsert(ctx context.Context, tableID uint64, date, slotTime, status string) error {
	const q = `INSERT INTO table_slots (table_id, slot_date, slot_time, status)
               VALUES (?, ?, ?, ?)
               ON DUPLICATE KEY UPDATE status = VALUES(status)`
	_, err := r.db.ExecContext(ctx, q, tableID, date, slotTime, status)
	return err
}

// FilterBookableTx re-checks, inside the caller's transaction, which
// of the requested tables are still bookable for the tuple.  The rows
// are locked with FOR UPDATE so two concurrent confirms for the same
// tables serialize and the loser observes the winner's booking.  A
// table is bookable when it has no live booking and no BLOCKED
// override for the slot.  Break-time is enforced by the availability
// resolver before a confirm ever reaches this point.
func (r *SlotRepo) FilterBookableTx(ctx context.Context, tx *sql.Tx, storeID uint64, date, slotTime string, tableIDs []uint64) ([]uint64, error) {
	if len(tableIDs) == 0 {
		return []uint64{}, nil
	}
	placeholders := make([]string, len(tableIDs))
	args := make([]interface{}, 0, len(tableIDs)+1)
	args = append(args, storeID)
	for i, id := range tableIDs {
		placeholders[i] = "?"
		args = append(args, id)
	}
	in := strings.Join(placeholders, ",")

	// Lock the table rows first so concurrent confirms serialize.
	lockQ := `SELECT id FROM tables WHERE store_id = ? AND id IN (` + in + `) FOR UPDATE`
	lockRows, err := tx.QueryContext(ctx, lockQ, args...)
	if err != nil {
		return nil, err
	}
	locked := make(map[uint64]struct{}, len(tableIDs))
	for lockRows.Next() {
		var id uint64
		if err := lockRows.Scan(&id); err != nil {
			lockRows.Close()
			return nil, err
		}
		locked[id] = struct{}{}
	}
	if err := lockRows.Close(); err != nil {
		return nil, err
	}

	taken := make(map[uint64]struct{})
	bookedQ := `SELECT bt.table_id
                FROM booking_tables bt
                JOIN bookings b ON b.id = bt.booking_id
                WHERE b.store_id = ? AND b.booking_date = ? AND b.booking_time = ?
                  AND b.status <> 'CANCELED' AND bt.table_id IN (` + in + `)`
	blockedQ := `SELECT ts.table_id
                 FROM table_slots ts
                 JOIN tables t ON t.id = ts.table_id
                 WHERE t.store_id = ? AND ts.slot_date = ? AND ts.slot_time = ?
                   AND ts.status = 'BLOCKED' AND ts.table_id IN (` + in + `)`
	slotArgs := make([]interface{}, 0, len(tableIDs)+3)
	slotArgs = append(slotArgs, storeID, date, slotTime)
	for _, id := range tableIDs {
		slotArgs = append(slotArgs, id)
	}
	for _, q := range []string{bookedQ, blockedQ} {
		rows, err := tx.QueryContext(ctx, q, slotArgs...)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var id uint64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, err
			}
			taken[id] = struct{}{}
		}
		if err := rows.Close(); err != nil {
			return nil, err
		}
	}

	bookable := make([]uint64, 0, len(tableIDs))
	for _, id := range tableIDs {
		if _, ok := locked[id]; !ok {
			continue // table vanished or belongs to another store
		}
		if _, ok := taken[id]; ok {
			continue
		}
		bookable = append(bookable, id)
	}
	return bookable, nil
}

func (r *SlotRepo) querySet(ctx context.Context, q string, args ...interface{}) (map[uint64]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	set := make(map[uint64]struct{})
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		set[id] = struct{}{}
	}
	return set, rows.Err()
}

func (r *SlotRepo) mergeByTime(ctx context.Context, out map[string]map[uint64]struct{}, q string, args ...interface{}) error {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var slotTime string
		var tableID uint64
		if err := rows.Scan(&slotTime, &tableID); err != nil {
			return err
		}
		// MySQL TIME columns scan as "HH:MM:SS"; normalize to "HH:MM".
		if len(slotTime) > 5 {
			slotTime = slotTime[:5]
		}
		set, ok := out[slotTime]
		if !ok {
			set = make(map[uint64]struct{})
			out[slotTime] = set
		}
		set[tableID] = struct{}{}
	}
	return rows.Err()
}
