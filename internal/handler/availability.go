package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/availability"
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// AvailabilityHandler answers the read-only availability queries a
// diner issues while selecting.  Both endpoints are idempotent and
// cacheable; callers with incomplete inputs get a 400 before any
// database work happens.
type AvailabilityHandler struct {
	Resolver *availability.Resolver
}

// NewAvailabilityHandler constructs an AvailabilityHandler.
func NewAvailabilityHandler(r *availability.Resolver) *AvailabilityHandler {
	if r == nil {
		panic("nil resolver passed to NewAvailabilityHandler")
	}
	return &AvailabilityHandler{Resolver: r}
}

// GetAvailableTimes handles
// GET /v1/stores/:id/bookings/available-times?date&partySize&isSplitAccepted.
// It returns the ordered list of "HH:MM" slots still offered for the
// party on the date, already excluding break-time and fully booked
// slots.
func (h *AvailabilityHandler) GetAvailableTimes(c echo.Context) error {
	storeID, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	date := c.QueryParam("date")
	partySize := parsePartySize(c)
	splitOK := parseBool(c.QueryParam("isSplitAccepted"))

	times, err := h.Resolver.AvailableTimes(c.Request().Context(), storeID, date, partySize, splitOK)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"availableTimes": times})
}

// GetAvailableTables handles
// GET /v1/stores/:id/bookings/available-tables?date&time&partySize&isSplitAccepted&seatsType.
// It returns the layout grid with every table still bookable for the
// tuple, optionally filtered by seat type.
func (h *AvailabilityHandler) GetAvailableTables(c echo.Context) error {
	storeID, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	date := c.QueryParam("date")
	slotTime := c.QueryParam("time")
	partySize := parsePartySize(c)
	splitOK := parseBool(c.QueryParam("isSplitAccepted"))
	seatsType := model.SeatsType(strings.ToUpper(c.QueryParam("seatsType")))

	// An empty grid is a legitimate answer, not an error; the client
	// shows a no-options message and never auto-retries.
	grid, err := h.Resolver.AvailableTables(c.Request().Context(), storeID, date, slotTime, partySize, splitOK, seatsType)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"rows": grid.Rows, "cols": grid.Cols, "tables": grid.Tables})
}

func parsePartySize(c echo.Context) uint32 {
	n, err := strconv.ParseUint(c.QueryParam("partySize"), 10, 32)
	if err != nil {
		return 0
	}
	return uint32(n)
}

func parseBool(s string) bool {
	return strings.EqualFold(s, "true") || s == "1"
}
