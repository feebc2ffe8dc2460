package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/domain"
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// OwnerHandler covers the owner-side controls: per-slot table
// availability and the store-wide break window.  Every write verifies
// the caller owns the resource before touching it.
type OwnerHandler struct {
	Stores *repository.StoreRepo
	Tables *repository.TableRepo
	Slots  *repository.SlotRepo
}

// NewOwnerHandler constructs an OwnerHandler.
func NewOwnerHandler(stores *repository.StoreRepo, tables *repository.TableRepo, slots *repository.SlotRepo) *OwnerHandler {
	return &OwnerHandler{Stores: stores, Tables: tables, Slots: slots}
}

type setSlotRequest struct {
	Date   string `json:"date"`
	Time   string `json:"time"`
	Status string `json:"status"`
}

// SetSlot handles PATCH /v1/owner/tables/:id/slots.  Owners can mark a
// slot AVAILABLE or BLOCKED; BOOKED is derived from bookings and never
// written directly.  Slots without a row default to AVAILABLE, so
// setting AVAILABLE simply overwrites any earlier block.
func (h *OwnerHandler) SetSlot(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return writeError(c, err)
	}
	tableID, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req setSlotRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, domain.Validation("invalid request body"))
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return writeError(c, domain.Validation("invalid date"))
	}
	if _, err := time.Parse("15:04", req.Time); err != nil {
		return writeError(c, domain.Validation("invalid time"))
	}
	if req.Status != model.SlotAvailable && req.Status != model.SlotBlocked {
		return writeError(c, domain.Validation("status must be AVAILABLE or BLOCKED"))
	}
	ctx := c.Request().Context()
	if _, err := h.Tables.GetForOwner(ctx, tableID, ownerID); err != nil {
		switch err {
		case repository.ErrTableNotFound:
			return writeError(c, domain.E(domain.KindNotFound, "table not found", err))
		case repository.ErrForbidden:
			return writeError(c, domain.E(domain.KindForbidden, "table belongs to another owner", err))
		}
		return writeError(c, domain.E(domain.KindNetwork, "failed to load table", err))
	}
	if err := h.Slots.Upsert(ctx, tableID, req.Date, req.Time, req.Status); err != nil {
		return writeError(c, domain.E(domain.KindNetwork, "failed to update slot", err))
	}
	return c.JSON(http.StatusOK, echo.Map{"table_id": tableID, "date": req.Date, "time": req.Time, "status": req.Status})
}

type breakTimeRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// SetBreakTime handles PUT /v1/owner/stores/:id/break-time.  The
// window is start-inclusive, end-exclusive and suppresses every slot
// inside it regardless of stored slot status.
func (h *OwnerHandler) SetBreakTime(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return writeError(c, err)
	}
	storeID, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req breakTimeRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, domain.Validation("invalid request body"))
	}
	if _, err := time.Parse("15:04", req.Start); err != nil {
		return writeError(c, domain.Validation("invalid break start"))
	}
	if _, err := time.Parse("15:04", req.End); err != nil {
		return writeError(c, domain.Validation("invalid break end"))
	}
	if req.Start >= req.End {
		return writeError(c, domain.Validation("break start must precede break end"))
	}
	if err := h.Stores.SetBreakTime(c.Request().Context(), storeID, ownerID, req.Start, req.End); err != nil {
		return writeError(c, ownerStoreErr(err))
	}
	return c.JSON(http.StatusOK, echo.Map{"store_id": storeID, "break_start": req.Start, "break_end": req.End})
}

// ClearBreakTime handles DELETE /v1/owner/stores/:id/break-time.
func (h *OwnerHandler) ClearBreakTime(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return writeError(c, err)
	}
	storeID, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	if err := h.Stores.ClearBreakTime(c.Request().Context(), storeID, ownerID); err != nil {
		return writeError(c, ownerStoreErr(err))
	}
	return c.JSON(http.StatusOK, echo.Map{"store_id": storeID, "break_start": nil, "break_end": nil})
}

func ownerStoreErr(err error) error {
	switch err {
	case repository.ErrStoreNotFound:
		return domain.E(domain.KindNotFound, "store not found", err)
	case repository.ErrForbidden:
		return domain.E(domain.KindForbidden, "store belongs to another owner", err)
	}
	return domain.E(domain.KindNetwork, "failed to update store", err)
}
