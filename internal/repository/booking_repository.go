package repository

import (
	"context"
	"database/sql"
	"strings"
)

// BookingRepo provides CRUD operations for bookings and their tables
// and pre-ordered menus.  A booking groups together one or more tables
// for a particular store, date and time.  Tables reserved under a
// booking live in booking_tables and pre-orders in booking_menus.  All
// timestamp fields are assumed to be stored in UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle so the booking manager can run the
// create inside one transaction together with the slot re-check.
func (r *BookingRepo) DB() *sql.DB { return r.db }

// BookingRecord mirrors the schema of the bookings table.  It is used
// by the repository when constructing or scanning rows.  Business
// logic should use the model.Booking type instead.
type BookingRecord struct {
	ID              uint64
	StoreID         uint64
	UserID          uint64
	BookingDate     string
	BookingTime     string
	PartySize       uint32
	IsSplitAccepted bool
	TotalDeposit    int64
	Status          string
}

// BookingMenuRecord mirrors the booking_menus table.  Only fields
// needed for insertion are exposed.
type BookingMenuRecord struct {
	BookingID uint64
	MenuID    uint64
	Quantity  uint32
	UnitPrice int64
}

// CreateTx inserts a new booking within the scope of an existing
// transaction and populates the generated ID on the provided record.
// The caller must commit or rollback the transaction.  Status should
// be a valid enumeration ('CONFIRMED','COMPLETED','CANCELED').
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *BookingRecord) error {
	const q = `INSERT INTO bookings
               (store_id, user_id, booking_date, booking_time, party_size, is_split_accepted, total_deposit, status)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		b.StoreID, b.UserID, b.BookingDate, b.BookingTime, b.PartySize, b.IsSplitAccepted, b.TotalDeposit, b.Status,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// CreateTablesBulkTx inserts the booking_tables rows for a booking in
// a single statement.  Passing an empty slice has no effect.
func (r *BookingRepo) CreateTablesBulkTx(ctx context.Context, tx *sql.Tx, bookingID uint64, tableIDs []uint64) error {
	if len(tableIDs) == 0 {
		return nil
	}
	query := `INSERT INTO booking_tables (booking_id, table_id) VALUES `
	args := make([]interface{}, 0, len(tableIDs)*2)
	for i, id := range tableIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, bookingID, id)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// CreateMenusBulkTx inserts the booking_menus rows for a booking in a
// single statement.  The caller must supply the booking ID in each
// record.  Passing an empty slice has no effect.
func (r *BookingRepo) CreateMenusBulkTx(ctx context.Context, tx *sql.Tx, menus []BookingMenuRecord) error {
	if len(menus) == 0 {
		return nil
	}
	query := `INSERT INTO booking_menus (booking_id, menu_id, quantity, unit_price) VALUES `
	args := make([]interface{}, 0, len(menus)*4)
	for i, m := range menus {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, m.BookingID, m.MenuID, m.Quantity, m.UnitPrice)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// BookingDetail encapsulates a booking along with its store name,
// reserved tables and pre-ordered menus.  It is returned to diners by
// GetByIDForUser and ListByUser.
type BookingDetail struct {
	ID              uint64  `json:"booking_id"`
	StoreID         uint64  `json:"store_id"`
	StoreName       string  `json:"store_name"`
	BookingDate     string  `json:"date"`
	BookingTime     string  `json:"time"`
	PartySize       uint32  `json:"party_size"`
	IsSplitAccepted bool    `json:"is_split_accepted"`
	TotalDeposit    int64   `json:"total_deposit"`
	Status          string  `json:"status"`
	CancelReason    *string `json:"cancel_reason,omitempty"`
	Tables          []struct {
		TableID     uint64 `json:"table_id"`
		TableNumber uint32 `json:"table_number"`
		SeatsType   string `json:"seats_type"`
	} `json:"tables"`
	Menus []struct {
		MenuID    uint64 `json:"menu_id"`
		Name      string `json:"name"`
		Quantity  uint32 `json:"quantity"`
		UnitPrice int64  `json:"unit_price"`
	} `json:"menus"`
}

// GetByIDForUser returns a single booking for the given user with its
// tables and menus populated.  Restricting to the calling user
// enforces ownership; ErrBookingNotFound is returned when no booking
// matches.
func (r *BookingRepo) GetByIDForUser(ctx context.Context, bookingID, userID uint64) (*BookingDetail, error) {
	const q = `SELECT b.id, b.store_id, s.name, b.booking_date, b.booking_time,
                      b.party_size, b.is_split_accepted, b.total_deposit, b.status, b.cancel_reason
               FROM bookings b
               JOIN stores s ON s.id = b.store_id
               WHERE b.id = ? AND b.user_id = ?`
	var det BookingDetail
	var cancelReason sql.NullString
	err := r.db.QueryRowContext(ctx, q, bookingID, userID).Scan(
		&det.ID, &det.StoreID, &det.StoreName, &det.BookingDate, &det.BookingTime,
		&det.PartySize, &det.IsSplitAccepted, &det.TotalDeposit, &det.Status, &cancelReason,
	)
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	if cancelReason.Valid {
		v := cancelReason.String
		det.CancelReason = &v
	}
	normalizeDetailTimes(&det)
	if err := r.fillChildren(ctx, []*BookingDetail{&det}); err != nil {
		return nil, err
	}
	return &det, nil
}

// ListByUser returns all bookings for the given user ordered by
// creation time descending (newest first).  When no bookings exist,
// an empty slice is returned.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]BookingDetail, error) {
	const q = `SELECT b.id, b.store_id, s.name, b.booking_date, b.booking_time,
                      b.party_size, b.is_split_accepted, b.total_deposit, b.status, b.cancel_reason
               FROM bookings b
               JOIN stores s ON s.id = b.store_id
               WHERE b.user_id = ?
               ORDER BY b.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]BookingDetail, 0)
	for rows.Next() {
		var d BookingDetail
		var cancelReason sql.NullString
		if err := rows.Scan(
			&d.ID, &d.StoreID, &d.StoreName, &d.BookingDate, &d.BookingTime,
			&d.PartySize, &d.IsSplitAccepted, &d.TotalDeposit, &d.Status, &cancelReason,
		); err != nil {
			return nil, err
		}
		if cancelReason.Valid {
			v := cancelReason.String
			d.CancelReason = &v
		}
		normalizeDetailTimes(&d)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	refs := make([]*BookingDetail, len(details))
	for i := range details {
		refs[i] = &details[i]
	}
	if err := r.fillChildren(ctx, refs); err != nil {
		return nil, err
	}
	return details, nil
}

// GetStatus returns the current status of a booking together with the
// user who owns it.  ErrBookingNotFound is returned when no row
// matches.
func (r *BookingRepo) GetStatus(ctx context.Context, bookingID uint64) (status string, userID uint64, err error) {
	const q = `SELECT status, user_id FROM bookings WHERE id = ?`
	err = r.db.QueryRowContext(ctx, q, bookingID).Scan(&status, &userID)
	if err == sql.ErrNoRows {
		return "", 0, ErrBookingNotFound
	}
	return status, userID, err
}

// TotalDeposit returns the deposit amount of a booking.  Used by the
// payment coordinator when creating an order.
func (r *BookingRepo) TotalDeposit(ctx context.Context, bookingID uint64) (int64, error) {
	const q = `SELECT total_deposit FROM bookings WHERE id = ?`
	var amount int64
	err := r.db.QueryRowContext(ctx, q, bookingID).Scan(&amount)
	if err == sql.ErrNoRows {
		return 0, ErrBookingNotFound
	}
	return amount, err
}

// Cancel marks a booking CANCELED and records the reason.  It refuses
// to cancel a booking that is already canceled (ErrCanceled) and
// returns ErrBookingNotFound when the booking does not exist.  The
// caller is responsible for authorization.
func (r *BookingRepo) Cancel(ctx context.Context, bookingID uint64, reason string) error {
	const q = `UPDATE bookings SET status = 'CANCELED', cancel_reason = ?
               WHERE id = ? AND status <> 'CANCELED'`
	result, err := r.db.ExecContext(ctx, q, reason, bookingID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish "missing" from "already canceled".
		const sel = `SELECT status FROM bookings WHERE id = ?`
		var status string
		if err := r.db.QueryRowContext(ctx, sel, bookingID).Scan(&status); err == sql.ErrNoRows {
			return ErrBookingNotFound
		} else if err != nil {
			return err
		}
		return ErrCanceled
	}
	return nil
}

// MarkCompletedTx transitions a booking to COMPLETED inside the
// caller's transaction.  Used by the payment coordinator when a
// deposit is approved.
func (r *BookingRepo) MarkCompletedTx(ctx context.Context, tx *sql.Tx, bookingID uint64) error {
	const q = `UPDATE bookings SET status = 'COMPLETED' WHERE id = ? AND status = 'CONFIRMED'`
	_, err := tx.ExecContext(ctx, q, bookingID)
	return err
}

// fillChildren populates tables and menus for the given bookings with
// one query per child table.
func (r *BookingRepo) fillChildren(ctx context.Context, details []*BookingDetail) error {
	if len(details) == 0 {
		return nil
	}
	index := make(map[uint64]*BookingDetail, len(details))
	ids := make([]interface{}, 0, len(details))
	placeholders := make([]string, 0, len(details))
	for _, d := range details {
		d.Tables = []struct {
			TableID     uint64 `json:"table_id"`
			TableNumber uint32 `json:"table_number"`
			SeatsType   string `json:"seats_type"`
		}{}
		d.Menus = []struct {
			MenuID    uint64 `json:"menu_id"`
			Name      string `json:"name"`
			Quantity  uint32 `json:"quantity"`
			UnitPrice int64  `json:"unit_price"`
		}{}
		index[d.ID] = d
		ids = append(ids, d.ID)
		placeholders = append(placeholders, "?")
	}
	in := strings.Join(placeholders, ",")

	tableQ := `SELECT bt.booking_id, bt.table_id, t.table_number, t.seats_type
               FROM booking_tables bt
               JOIN tables t ON t.id = bt.table_id
               WHERE bt.booking_id IN (` + in + `)
               ORDER BY bt.booking_id, t.table_number`
	trows, err := r.db.QueryContext(ctx, tableQ, ids...)
	if err != nil {
		return err
	}
	for trows.Next() {
		var bid, tid uint64
		var num uint32
		var seatsType string
		if err := trows.Scan(&bid, &tid, &num, &seatsType); err != nil {
			trows.Close()
			return err
		}
		if d, ok := index[bid]; ok {
			d.Tables = append(d.Tables, struct {
				TableID     uint64 `json:"table_id"`
				TableNumber uint32 `json:"table_number"`
				SeatsType   string `json:"seats_type"`
			}{TableID: tid, TableNumber: num, SeatsType: seatsType})
		}
	}
	if err := trows.Close(); err != nil {
		return err
	}

	menuQ := `SELECT bm.booking_id, bm.menu_id, m.name, bm.quantity, bm.unit_price
              FROM booking_menus bm
              JOIN menus m ON m.id = bm.menu_id
              WHERE bm.booking_id IN (` + in + `)
              ORDER BY bm.booking_id, m.name`
	mrows, err := r.db.QueryContext(ctx, menuQ, ids...)
	if err != nil {
		return err
	}
	defer mrows.Close()
	for mrows.Next() {
		var bid, mid uint64
		var name string
		var qty uint32
		var price int64
		if err := mrows.Scan(&bid, &mid, &name, &qty, &price); err != nil {
			return err
		}
		if d, ok := index[bid]; ok {
			d.Menus = append(d.Menus, struct {
				MenuID    uint64 `json:"menu_id"`
				Name      string `json:"name"`
				Quantity  uint32 `json:"quantity"`
				UnitPrice int64  `json:"unit_price"`
			}{MenuID: mid, Name: name, Quantity: qty, UnitPrice: price})
		}
	}
	return mrows.Err()
}

// normalizeDetailTimes trims MySQL DATE/TIME scan formats down to the
// wire formats used everywhere else ("YYYY-MM-DD" and "HH:MM").
func normalizeDetailTimes(d *BookingDetail) {
	if len(d.BookingDate) > 10 {
		d.BookingDate = d.BookingDate[:10]
	}
	if len(d.BookingTime) > 5 {
		d.BookingTime = d.BookingTime[:5]
	}
}
