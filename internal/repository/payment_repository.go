package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// PaymentRepo provides CRUD operations for deposit payments.  A
// payment is created REQUESTED when an order is issued and transitions
// to APPROVED or FAILED exactly once; the approve path runs inside a
// transaction shared with the booking status update.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a new PaymentRepo bound to the given database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// DB exposes the underlying handle so the payment coordinator can run
// approve and booking completion in one transaction.
func (r *PaymentRepo) DB() *sql.DB { return r.db }

// Create inserts a REQUESTED payment for a booking and populates the
// generated ID on the returned model.
func (r *PaymentRepo) Create(ctx context.Context, bookingID uint64, orderID string, amount int64) (*model.Payment, error) {
	const q = `INSERT INTO payments (booking_id, order_id, amount, status) VALUES (?, ?, ?, 'REQUESTED')`
	result, err := r.db.ExecContext(ctx, q, bookingID, orderID, amount)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID loads a single payment.  ErrPaymentNotFound is returned
// when no row matches.
func (r *PaymentRepo) GetByID(ctx context.Context, id uint64) (*model.Payment, error) {
	const q = `SELECT id, booking_id, order_id, payment_key, amount, status,
                      receipt_url, fail_reason, approved_at, created_at, updated_at
               FROM payments WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

// GetByOrderID loads the payment carrying the given order ID.  Order
// IDs are unique; ErrPaymentNotFound is returned when none matches.
func (r *PaymentRepo) GetByOrderID(ctx context.Context, orderID string) (*model.Payment, error) {
	const q = `SELECT id, booking_id, order_id, payment_key, amount, status,
                      receipt_url, fail_reason, approved_at, created_at, updated_at
               FROM payments WHERE order_id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, q, orderID))
}

// LatestRequestedByBooking returns the most recent REQUESTED payment
// for a booking, used to reuse an open order instead of issuing a new
// one on a repeated request.  ErrPaymentNotFound when none exists.
func (r *PaymentRepo) LatestRequestedByBooking(ctx context.Context, bookingID uint64) (*model.Payment, error) {
	const q = `SELECT id, booking_id, order_id, payment_key, amount, status,
                      receipt_url, fail_reason, approved_at, created_at, updated_at
               FROM payments
               WHERE booking_id = ? AND status = 'REQUESTED'
               ORDER BY created_at DESC LIMIT 1`
	return r.scanOne(r.db.QueryRowContext(ctx, q, bookingID))
}

// ApproveTx marks a payment APPROVED inside the caller's transaction,
// recording the provider's payment key, receipt URL and approval
// time.  Only a REQUESTED payment can transition; approving an
// already-approved row affects zero rows, which the coordinator
// treats as the idempotent-refresh case.
func (r *PaymentRepo) ApproveTx(ctx context.Context, tx *sql.Tx, orderID, paymentKey, receiptURL string, approvedAt time.Time) (bool, error) {
	const q = `UPDATE payments
               SET status = 'APPROVED', payment_key = ?, receipt_url = ?, approved_at = ?
               WHERE order_id = ? AND status = 'REQUESTED'`
	result, err := tx.ExecContext(ctx, q, paymentKey, receiptURL, approvedAt.UTC(), orderID)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

// MarkFailed transitions a payment to FAILED with a human-readable
// reason.  A payment that already reached a terminal state is left
// untouched.
func (r *PaymentRepo) MarkFailed(ctx context.Context, orderID, reason string) error {
	const q = `UPDATE payments SET status = 'FAILED', fail_reason = ?
               WHERE order_id = ? AND status = 'REQUESTED'`
	_, err := r.db.ExecContext(ctx, q, reason, orderID)
	return err
}

func (r *PaymentRepo) scanOne(row *sql.Row) (*model.Payment, error) {
	var p model.Payment
	var paymentKey, receiptURL, failReason sql.NullString
	var approvedAt sql.NullTime
	err := row.Scan(
		&p.ID, &p.BookingID, &p.OrderID, &paymentKey, &p.Amount, &p.Status,
		&receiptURL, &failReason, &approvedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	if paymentKey.Valid {
		v := paymentKey.String
		p.PaymentKey = &v
	}
	if receiptURL.Valid {
		v := receiptURL.String
		p.ReceiptURL = &v
	}
	if failReason.Valid {
		v := failReason.String
		p.FailReason = &v
	}
	if approvedAt.Valid {
		t := approvedAt.Time
		p.ApprovedAt = &t
	}
	return &p, nil
}
