package model

import "time"

// Payment status values.  REQUESTED is the initial state created by
// the order request; APPROVED and FAILED are terminal.
const (
	PaymentRequested = "REQUESTED"
	PaymentApproved  = "APPROVED"
	PaymentFailed    = "FAILED"
)

// Payment tracks one deposit charge against a booking.  OrderID is the
// correlation key shared with the external payment provider; the
// provider's paymentKey is only known once the diner returns from the
// redirect.
type Payment struct {
	ID         uint64     // payments.id
	BookingID  uint64     // payments.booking_id
	OrderID    string     // payments.order_id
	PaymentKey *string    // payments.payment_key (nullable until confirm)
	Amount     int64      // payments.amount
	Status     string     // payments.status
	ReceiptURL *string    // payments.receipt_url (nullable)
	FailReason *string    // payments.fail_reason (nullable)
	ApprovedAt *time.Time // payments.approved_at (nullable)
	CreatedAt  time.Time  // payments.created_at
	UpdatedAt  time.Time  // payments.updated_at
}
