package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/availability"
	"github.com/iliyamo/restaurant-table-reservation/internal/booking"
	"github.com/iliyamo/restaurant-table-reservation/internal/deposit"
	"github.com/iliyamo/restaurant-table-reservation/internal/domain"
	"github.com/iliyamo/restaurant-table-reservation/internal/draft"
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// DraftFlowHandler drives the multi-step reservation flow.  Every
// endpoint resolves the caller's draft through the flow store, so a
// draft ID from another user is rejected before any state is touched.
type DraftFlowHandler struct {
	Flows    *draft.FlowStore
	Resolver *availability.Resolver
	Manager  *booking.Manager
	Stores   *repository.StoreRepo
	Menus    *repository.MenuRepo
}

// NewDraftFlowHandler constructs a DraftFlowHandler.
func NewDraftFlowHandler(flows *draft.FlowStore, resolver *availability.Resolver, manager *booking.Manager, stores *repository.StoreRepo, menus *repository.MenuRepo) *DraftFlowHandler {
	return &DraftFlowHandler{Flows: flows, Resolver: resolver, Manager: manager, Stores: stores, Menus: menus}
}

// CreateDraft handles POST /v1/stores/:id/drafts.  It opens a new flow
// with the entry defaults (two guests, one-table preference) and
// returns the draft snapshot.
func (h *DraftFlowHandler) CreateDraft(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return writeError(c, err)
	}
	storeID, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	if _, err := h.Stores.GetByID(c.Request().Context(), storeID); err != nil {
		if err == repository.ErrStoreNotFound {
			return writeError(c, domain.E(domain.KindNotFound, "store not found", err))
		}
		return writeError(c, domain.E(domain.KindNetwork, "failed to load store", err))
	}
	d := h.Flows.Create(storeID, userID)
	return c.JSON(http.StatusCreated, d.Snapshot())
}

// GetDraft handles GET /v1/drafts/:id.
func (h *DraftFlowHandler) GetDraft(c echo.Context) error {
	d, err := h.draft(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, d.Snapshot())
}

// updateSelectionRequest carries a partial selection update.  Only
// fields present in the payload are applied, in tuple order, so a
// single request can change the date and the party size together.
type updateSelectionRequest struct {
	PartySize *uint32   `json:"party_size"`
	Date      *string   `json:"date"`
	Time      *string   `json:"time"`
	SeatsType *string   `json:"seats_type"`
	TablePref *string   `json:"table_pref"`
	TableIDs  *[]uint64 `json:"table_ids"`
}

// UpdateSelection handles PATCH /v1/drafts/:id/selection.  Tuple
// changes invalidate the table selection inside the draft; the table
// list itself is applied last so "change time and pick a table" in one
// call behaves like two sequential edits.
func (h *DraftFlowHandler) UpdateSelection(c echo.Context) error {
	d, err := h.draft(c)
	if err != nil {
		return writeError(c, err)
	}
	var req updateSelectionRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, domain.Validation("invalid request body"))
	}
	if req.PartySize != nil {
		if err := d.SetPartySize(*req.PartySize); err != nil {
			return writeError(c, err)
		}
	}
	if req.Date != nil {
		if err := d.SetDate(*req.Date); err != nil {
			return writeError(c, err)
		}
	}
	if req.Time != nil {
		if err := d.SetTime(*req.Time); err != nil {
			return writeError(c, err)
		}
	}
	if req.SeatsType != nil {
		if err := d.SetSeatsType(model.SeatsType(*req.SeatsType)); err != nil {
			return writeError(c, err)
		}
	}
	if req.TablePref != nil {
		if err := d.SetTablePref(draft.TablePref(*req.TablePref)); err != nil {
			return writeError(c, err)
		}
	}
	if req.TableIDs != nil {
		if err := d.SetTables(*req.TableIDs); err != nil {
			return writeError(c, err)
		}
	}
	return c.JSON(http.StatusOK, d.Snapshot())
}

type setMenuLineRequest struct {
	MenuID   uint64 `json:"menu_id"`
	Quantity uint32 `json:"quantity"`
}

// SetMenuLine handles PUT /v1/drafts/:id/menus.  It sets one dish's
// quantity (zero removes the line) and reprices the draft from the
// store's current menu prices and deposit rate.
func (h *DraftFlowHandler) SetMenuLine(c echo.Context) error {
	d, err := h.draft(c)
	if err != nil {
		return writeError(c, err)
	}
	var req setMenuLineRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, domain.Validation("invalid request body"))
	}
	ctx := c.Request().Context()

	// Reject dishes the store does not actively sell before the line
	// lands on the draft.
	if req.Quantity > 0 {
		if _, err := h.Menus.GetActiveByIDs(ctx, d.StoreID, []uint64{req.MenuID}); err != nil {
			if err == repository.ErrMenuNotFound {
				return writeError(c, domain.E(domain.KindNotFound, "menu not found", err))
			}
			return writeError(c, domain.E(domain.KindNetwork, "failed to load menu", err))
		}
	}
	if err := d.SetMenuLine(req.MenuID, req.Quantity); err != nil {
		return writeError(c, err)
	}
	if err := h.reprice(c, d); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, d.Snapshot())
}

// Next handles POST /v1/drafts/:id/next.
func (h *DraftFlowHandler) Next(c echo.Context) error {
	d, err := h.draft(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := d.Next(); err != nil {
		return writeError(c, err)
	}
	// Entering the confirm step shows the diner a priced summary, so
	// refresh pricing from the database on the way in.
	if d.Snapshot().Step == draft.StepConfirming {
		if err := h.reprice(c, d); err != nil {
			return writeError(c, err)
		}
	}
	return c.JSON(http.StatusOK, d.Snapshot())
}

// Back handles POST /v1/drafts/:id/back.  Menu lines survive the trip
// back to selection.
func (h *DraftFlowHandler) Back(c echo.Context) error {
	d, err := h.draft(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := d.Back(); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, d.Snapshot())
}

// ConfirmDraft handles POST /v1/drafts/:id/confirm.  The booking is
// created exactly once per draft; pressing confirm again returns the
// same booking instead of writing a duplicate.
func (h *DraftFlowHandler) ConfirmDraft(c echo.Context) error {
	d, err := h.draft(c)
	if err != nil {
		return writeError(c, err)
	}
	det, err := h.Manager.Confirm(c.Request().Context(), d)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"booking": det, "draft": d.Snapshot()})
}

// CloseDraft handles DELETE /v1/drafts/:id?confirm=true.  From the
// confirm step onward the query parameter is mandatory, so a stray
// close cannot silently discard an in-progress booking.  An unpaid
// booking bound to the draft is canceled on the way out.
func (h *DraftFlowHandler) CloseDraft(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return writeError(c, err)
	}
	d, err := h.Flows.Get(c.Param("id"), userID)
	if err != nil {
		return writeError(c, err)
	}
	cancelID, err := d.Close(parseBool(c.QueryParam("confirm")))
	if err != nil {
		return writeError(c, err)
	}
	if cancelID != 0 {
		if err := h.Manager.Cancel(c.Request().Context(), cancelID, userID, "reservation flow closed before payment"); err != nil {
			return writeError(c, err)
		}
	}
	h.Flows.Remove(d.ID)
	return c.JSON(http.StatusOK, echo.Map{"closed": true, "canceled_booking_id": cancelID})
}

// DraftAvailableTimes handles GET /v1/drafts/:id/available-times.  The
// query runs under the draft's generation token: a result that arrives
// after a newer query was issued (or after the draft closed) is
// discarded rather than shown.
func (h *DraftFlowHandler) DraftAvailableTimes(c echo.Context) error {
	d, err := h.draft(c)
	if err != nil {
		return writeError(c, err)
	}
	snap := d.Snapshot()
	token := d.BeginQuery(draft.QueryTimes)
	times, err := h.Resolver.AvailableTimes(c.Request().Context(), snap.StoreID, snap.Date, snap.PartySize, d.SplitAccepted())
	if err != nil {
		return writeError(c, err)
	}
	if !d.Accept(draft.QueryTimes, token) {
		return c.JSON(http.StatusOK, echo.Map{"stale": true, "availableTimes": []string{}})
	}
	return c.JSON(http.StatusOK, echo.Map{"availableTimes": times})
}

// DraftAvailableTables handles GET /v1/drafts/:id/available-tables
// under the same token discipline, using the draft's own tuple and
// seat-type filter.
func (h *DraftFlowHandler) DraftAvailableTables(c echo.Context) error {
	d, err := h.draft(c)
	if err != nil {
		return writeError(c, err)
	}
	snap := d.Snapshot()
	token := d.BeginQuery(draft.QueryTables)
	grid, err := h.Resolver.AvailableTables(c.Request().Context(), snap.StoreID, snap.Date, snap.Time, snap.PartySize, d.SplitAccepted(), snap.SeatsType)
	if err != nil {
		return writeError(c, err)
	}
	if !d.Accept(draft.QueryTables, token) {
		return c.JSON(http.StatusOK, echo.Map{"stale": true, "rows": 0, "cols": 0, "tables": []availability.GridTable{}})
	}
	return c.JSON(http.StatusOK, echo.Map{"rows": grid.Rows, "cols": grid.Cols, "tables": grid.Tables})
}

// draft resolves the caller's draft from the :id path parameter.
func (h *DraftFlowHandler) draft(c echo.Context) (*draft.Draft, error) {
	userID, err := getUserID(c)
	if err != nil {
		return nil, err
	}
	return h.Flows.Get(c.Param("id"), userID)
}

// reprice recomputes the draft's menu total and deposit from current
// database prices and the store's deposit rate.
func (h *DraftFlowHandler) reprice(c echo.Context, d *draft.Draft) error {
	ctx := c.Request().Context()
	snap := d.Snapshot()
	if len(snap.MenuLines) == 0 {
		d.SetPricing(0, 0)
		return nil
	}
	ids := make([]uint64, 0, len(snap.MenuLines))
	for _, line := range snap.MenuLines {
		ids = append(ids, line.MenuID)
	}
	menus, err := h.Menus.GetActiveByIDs(ctx, snap.StoreID, ids)
	if err != nil {
		if err == repository.ErrMenuNotFound {
			return domain.Conflict("a selected menu is no longer available", err)
		}
		return domain.E(domain.KindNetwork, "failed to load menus", err)
	}
	store, err := h.Stores.GetByID(ctx, snap.StoreID)
	if err != nil {
		return domain.E(domain.KindNetwork, "failed to load store", err)
	}
	total := deposit.MenuTotal(snap.MenuLines, menus)
	d.SetPricing(total, deposit.Amount(total, store.DepositRate))
	return nil
}
