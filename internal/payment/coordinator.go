package payment

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/restaurant-table-reservation/internal/domain"
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// Coordinator owns the two-phase payment protocol: RequestOrder issues
// an order and the redirect parameters, the diner pays out of process,
// and ConfirmReturn settles the order when the provider redirects
// back.  ConfirmReturn is idempotent-tolerant: a page refresh after
// approval returns the approved payment again instead of failing or
// double-charging.
type Coordinator struct {
	Bookings *repository.BookingRepo
	Payments *repository.PaymentRepo
	Gateway  Gateway

	// SuccessURL and FailURL are the return endpoints handed to the
	// provider; the booking and order identity travel as query
	// parameters so the return path can resume context.
	SuccessURL string
	FailURL    string

	mu       sync.Mutex
	inFlight map[string]struct{} // order IDs with a confirm in progress
}

// NewCoordinator constructs a Coordinator.  All dependencies must be
// non-nil.
func NewCoordinator(bookings *repository.BookingRepo, payments *repository.PaymentRepo, gw Gateway, successURL, failURL string) *Coordinator {
	if bookings == nil || payments == nil || gw == nil {
		panic("nil dependency passed to NewCoordinator")
	}
	return &Coordinator{
		Bookings:   bookings,
		Payments:   payments,
		Gateway:    gw,
		SuccessURL: successURL,
		FailURL:    failURL,
		inFlight:   make(map[string]struct{}),
	}
}

// Order is the answer to RequestOrder: everything the client needs to
// hand off to the external payer.
type Order struct {
	PaymentID   uint64    `json:"payment_id"`
	OrderID     string    `json:"order_id"`
	Amount      int64     `json:"amount"`
	RequestedAt time.Time `json:"requested_at"`
	SuccessURL  string    `json:"success_url"`
	FailURL     string    `json:"fail_url"`
}

// RequestOrder creates (or reuses) a REQUESTED payment for the
// booking's deposit and returns the redirect hand-off.  A booking that
// is already paid, canceled, or foreign is rejected before any write.
func (c *Coordinator) RequestOrder(ctx context.Context, bookingID, userID uint64) (*Order, error) {
	status, owner, err := c.Bookings.GetStatus(ctx, bookingID)
	if err != nil {
		if err == repository.ErrBookingNotFound {
			return nil, domain.E(domain.KindNotFound, "booking not found", err)
		}
		return nil, domain.E(domain.KindNetwork, "failed to load booking", err)
	}
	if owner != userID {
		return nil, domain.E(domain.KindForbidden, "booking belongs to another user", repository.ErrForbidden)
	}
	switch status {
	case model.BookingCompleted:
		return nil, domain.E(domain.KindPayment, "booking is already paid", nil)
	case model.BookingCanceled:
		return nil, domain.E(domain.KindPayment, "booking is canceled", nil)
	}

	amount, err := c.Bookings.TotalDeposit(ctx, bookingID)
	if err != nil {
		return nil, domain.E(domain.KindNetwork, "failed to load deposit amount", err)
	}

	// Reuse an open order so a re-render does not mint a second one.
	p, err := c.Payments.LatestRequestedByBooking(ctx, bookingID)
	if err == repository.ErrPaymentNotFound {
		p, err = c.Payments.Create(ctx, bookingID, uuid.NewString(), amount)
	}
	if err != nil {
		return nil, domain.E(domain.KindNetwork, "failed to create payment order", err)
	}
	return &Order{
		PaymentID:   p.ID,
		OrderID:     p.OrderID,
		Amount:      p.Amount,
		RequestedAt: p.CreatedAt,
		SuccessURL:  c.returnURL(c.SuccessURL, bookingID, p.OrderID),
		FailURL:     c.returnURL(c.FailURL, bookingID, p.OrderID),
	}, nil
}

// ConfirmReturn settles the order after the diner returns from the
// provider.  Missing parameters never reach the gateway; an amount
// that disagrees with the stored order is rejected and the order
// marked failed; a repeat confirm for an already-approved order
// returns the stored payment as success.
func (c *Coordinator) ConfirmReturn(ctx context.Context, paymentKey, orderID string, amount int64) (*model.Payment, error) {
	if paymentKey == "" || orderID == "" || amount <= 0 {
		return nil, domain.E(domain.KindPayment, "payment return is missing required parameters", nil)
	}
	if !c.acquire(orderID) {
		return nil, domain.Conflict("a confirmation for this order is already in progress", nil)
	}
	defer c.release(orderID)

	p, err := c.Payments.GetByOrderID(ctx, orderID)
	if err != nil {
		if err == repository.ErrPaymentNotFound {
			return nil, domain.E(domain.KindPayment, "unknown payment order", err)
		}
		return nil, domain.E(domain.KindNetwork, "failed to load payment", err)
	}
	switch p.Status {
	case model.PaymentApproved:
		// Refresh after approval: success, not failure.
		return p, nil
	case model.PaymentFailed:
		reason := "payment already failed"
		if p.FailReason != nil {
			reason = *p.FailReason
		}
		return nil, domain.E(domain.KindPayment, reason, nil)
	}
	if p.Amount != amount {
		_ = c.Payments.MarkFailed(ctx, orderID, "amount mismatch on return")
		return nil, domain.E(domain.KindPayment, "amount does not match the requested order", nil)
	}

	result, err := c.Gateway.Confirm(ctx, paymentKey, orderID, amount)
	if err != nil {
		var decline *DeclineError
		if errors.As(err, &decline) {
			_ = c.Payments.MarkFailed(ctx, orderID, decline.Message)
			return nil, domain.E(domain.KindPayment, decline.Message, decline)
		}
		// Transport failure: the order stays REQUESTED so the diner can
		// retry the same step manually.
		return nil, domain.E(domain.KindNetwork, "payment provider unreachable", err)
	}

	tx, err := c.Payments.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, domain.E(domain.KindNetwork, "failed to start transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	updated, err := c.Payments.ApproveTx(ctx, tx, orderID, paymentKey, result.ReceiptURL, result.ApprovedAt)
	if err != nil {
		return nil, domain.E(domain.KindNetwork, "failed to record approval", err)
	}
	if updated {
		if err := c.Bookings.MarkCompletedTx(ctx, tx, p.BookingID); err != nil {
			return nil, domain.E(domain.KindNetwork, "failed to complete booking", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, domain.E(domain.KindNetwork, "failed to commit approval", err)
	}
	committed = true

	return c.Payments.GetByOrderID(ctx, orderID)
}

// FailReturn records a failure reported by the provider's fail
// redirect (declined, canceled checkout) and returns the terminal
// payment error surfaced to the diner.  The booking stays CONFIRMED
// and unpaid.
func (c *Coordinator) FailReturn(ctx context.Context, orderID, reason string) error {
	if reason == "" {
		reason = "payment was not completed"
	}
	if orderID != "" {
		_ = c.Payments.MarkFailed(ctx, orderID, reason)
	}
	return domain.E(domain.KindPayment, reason, nil)
}

func (c *Coordinator) returnURL(base string, bookingID uint64, orderID string) string {
	if base == "" {
		return ""
	}
	v := url.Values{}
	v.Set("bookingId", fmt.Sprintf("%d", bookingID))
	v.Set("orderId", orderID)
	return base + "?" + v.Encode()
}

func (c *Coordinator) acquire(orderID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inFlight[orderID]; busy {
		return false
	}
	c.inFlight[orderID] = struct{}{}
	return true
}

func (c *Coordinator) release(orderID string) {
	c.mu.Lock()
	delete(c.inFlight, orderID)
	c.mu.Unlock()
}
