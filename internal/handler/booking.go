package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/booking"
	"github.com/iliyamo/restaurant-table-reservation/internal/domain"
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// BookingHandler exposes bookings outside the draft flow: direct
// creation for API clients, listing, detail and cancellation.
type BookingHandler struct {
	Manager  *booking.Manager
	Bookings *repository.BookingRepo
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(m *booking.Manager, bookings *repository.BookingRepo) *BookingHandler {
	return &BookingHandler{Manager: m, Bookings: bookings}
}

type createBookingRequest struct {
	Date            string           `json:"date"`
	Time            string           `json:"time"`
	PartySize       uint32           `json:"party_size"`
	IsSplitAccepted bool             `json:"is_split_accepted"`
	TableIDs        []uint64         `json:"table_ids"`
	MenuLines       []model.MenuLine `json:"menu_lines"`
}

// Create handles POST /v1/stores/:id/bookings.  This is the same
// creation path the draft flow's confirm uses, exposed for clients
// that assemble a selection themselves.  The selected tables are
// re-checked under lock inside the transaction, so two diners racing
// for one table leave exactly one booking behind.
func (h *BookingHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return writeError(c, err)
	}
	storeID, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, domain.Validation("invalid request body"))
	}
	det, err := h.Manager.Create(c.Request().Context(), booking.CreateCommand{
		StoreID:   storeID,
		UserID:    userID,
		Date:      req.Date,
		Time:      req.Time,
		PartySize: req.PartySize,
		SplitOK:   req.IsSplitAccepted,
		TableIDs:  req.TableIDs,
		MenuLines: req.MenuLines,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, det)
}

// List handles GET /v1/bookings and returns the caller's bookings,
// newest first.
func (h *BookingHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return writeError(c, err)
	}
	items, err := h.Bookings.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, domain.E(domain.KindNetwork, "failed to load bookings", err))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return writeError(c, err)
	}
	bookingID, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	det, err := h.Bookings.GetByIDForUser(c.Request().Context(), bookingID, userID)
	if err != nil {
		if err == repository.ErrBookingNotFound {
			return writeError(c, domain.E(domain.KindNotFound, "booking not found", err))
		}
		return writeError(c, domain.E(domain.KindNetwork, "failed to load booking", err))
	}
	return c.JSON(http.StatusOK, det)
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

// Cancel handles PATCH /v1/bookings/:id/cancel.  Canceling an already
// canceled booking succeeds without another write.
func (h *BookingHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return writeError(c, err)
	}
	bookingID, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req cancelBookingRequest
	_ = c.Bind(&req) // reason is optional
	if err := h.Manager.Cancel(c.Request().Context(), bookingID, userID, req.Reason); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"canceled": true})
}
