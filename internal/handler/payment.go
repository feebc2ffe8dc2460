package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/domain"
	"github.com/iliyamo/restaurant-table-reservation/internal/draft"
	"github.com/iliyamo/restaurant-table-reservation/internal/payment"
)

// PaymentHandler exposes the deposit payment hand-off: order creation
// before the redirect and the gateway's success/fail return URLs.
type PaymentHandler struct {
	Coordinator *payment.Coordinator
	Flows       *draft.FlowStore
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(coord *payment.Coordinator, flows *draft.FlowStore) *PaymentHandler {
	return &PaymentHandler{Coordinator: coord, Flows: flows}
}

type requestOrderRequest struct {
	BookingID uint64 `json:"booking_id"`
	DraftID   string `json:"draft_id"`
}

// RequestOrder handles POST /v1/payments/request.  It returns the
// order the client hands to the payment widget; requesting again for
// the same unpaid booking reuses the open order instead of minting a
// second one.
func (h *PaymentHandler) RequestOrder(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return writeError(c, err)
	}
	var req requestOrderRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, domain.Validation("invalid request body"))
	}
	if req.BookingID == 0 {
		return writeError(c, domain.Validation("booking id is required"))
	}
	order, err := h.Coordinator.RequestOrder(c.Request().Context(), req.BookingID, userID)
	if err != nil {
		return writeError(c, err)
	}
	if req.DraftID != "" {
		if d, derr := h.Flows.Get(req.DraftID, userID); derr == nil {
			d.SetOrderID(order.OrderID)
		}
	}
	return c.JSON(http.StatusOK, order)
}

// confirmRequest carries the gateway's return parameters.  The success
// redirect arrives as a GET with query parameters; API clients post
// the same fields as JSON.
type confirmRequest struct {
	PaymentKey string `json:"paymentKey" query:"paymentKey"`
	OrderID    string `json:"orderId"    query:"orderId"`
	Amount     int64  `json:"amount"     query:"amount"`
	DraftID    string `json:"draftId"    query:"draftId"`
}

// Confirm handles POST /v1/payments/confirm and GET
// /v1/payments/success.  Confirming an already approved order returns
// the stored payment again; a missing parameter is a payment failure
// and never reaches the gateway.
func (h *PaymentHandler) Confirm(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return writeError(c, err)
	}
	var req confirmRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, domain.Validation("invalid request body"))
	}
	p, err := h.Coordinator.ConfirmReturn(c.Request().Context(), req.PaymentKey, req.OrderID, req.Amount)
	if err != nil {
		return writeError(c, err)
	}
	h.completeDraft(userID, req.DraftID, req.OrderID)
	return c.JSON(http.StatusOK, p)
}

type failRequest struct {
	OrderID string `json:"orderId" query:"orderId"`
	Message string `json:"message" query:"message"`
}

// Fail handles GET /v1/payments/fail, the gateway's failure redirect.
// The open order is marked failed and the diner lands back on the
// paying step, free to retry.
func (h *PaymentHandler) Fail(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return writeError(c, err)
	}
	var req failRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, domain.Validation("invalid request body"))
	}
	return writeError(c, h.Coordinator.FailReturn(c.Request().Context(), req.OrderID, req.Message))
}

// completeDraft advances the caller's draft to COMPLETE when its order
// just got approved.  Payments made outside the flow carry no draft ID
// and simply have nothing to advance.
func (h *PaymentHandler) completeDraft(userID uint64, draftID, orderID string) {
	if draftID == "" {
		return
	}
	d, err := h.Flows.Get(draftID, userID)
	if err != nil || d.Snapshot().OrderID != orderID {
		return
	}
	d.CompletePayment()
}
