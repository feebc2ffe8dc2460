// Package handler exposes HTTP handlers for both authenticated and public
// endpoints.  This file defines handlers for the public browsing API.
// These routes allow unauthenticated users to browse stores and menus
// without requiring authentication.  Sensitive fields (owner IDs,
// timestamps, etc.) are filtered from responses.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// PublicHandler aggregates repositories needed for unauthenticated
// browsing.  It produces sanitized responses suitable for public
// consumption.
type PublicHandler struct {
	StoreRepo *repository.StoreRepo // provides access to store data
	MenuRepo  *repository.MenuRepo  // provides access to menu data
	TableRepo *repository.TableRepo // provides access to the table layout
}

// NewPublicHandler constructs a PublicHandler.
func NewPublicHandler(stores *repository.StoreRepo, menus *repository.MenuRepo, tables *repository.TableRepo) *PublicHandler {
	return &PublicHandler{StoreRepo: stores, MenuRepo: menus, TableRepo: tables}
}

// PublicStore represents a store exposed via the public API.  It
// contains only safe fields.
type PublicStore struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	DepositRate string  `json:"deposit_rate"`
	BreakStart  *string `json:"break_start,omitempty"`
	BreakEnd    *string `json:"break_end,omitempty"`
}

// PublicMenu represents one dish in a store's public menu.
type PublicMenu struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// GetPublicStores returns a list of all stores accessible to
// unauthenticated users.  Response JSON contains an "items" array of
// PublicStore.
func (h *PublicHandler) GetPublicStores(c echo.Context) error {
	ctx := c.Request().Context()
	stores, err := h.StoreRepo.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicStore, 0, len(stores))
	for _, s := range stores {
		out = append(out, PublicStore{
			ID:          s.ID,
			Name:        s.Name,
			Address:     s.Address,
			DepositRate: string(s.DepositRate),
			BreakStart:  s.BreakStart,
			BreakEnd:    s.BreakEnd,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetPublicStore returns details of a single store for unauthenticated
// users, including its menu so a diner can preview dishes before
// starting a reservation.
func (h *PublicHandler) GetPublicStore(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	s, err := h.StoreRepo.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrStoreNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "store not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	menus, err := h.MenuRepo.ListByStore(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	menuOut := make([]PublicMenu, 0, len(menus))
	for _, m := range menus {
		menuOut = append(menuOut, PublicMenu{ID: m.ID, Name: m.Name, Price: m.Price})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"store": PublicStore{
			ID:          s.ID,
			Name:        s.Name,
			Address:     s.Address,
			DepositRate: string(s.DepositRate),
			BreakStart:  s.BreakStart,
			BreakEnd:    s.BreakEnd,
		},
		"menus": menuOut,
	})
}

// PublicTable is one table placed on the store's layout grid, without
// any availability information.
type PublicTable struct {
	ID          uint64 `json:"id"`
	TableNumber uint32 `json:"table_number"`
	MinSeats    uint32 `json:"min_seats"`
	MaxSeats    uint32 `json:"max_seats"`
	SeatsType   string `json:"seats_type"`
	GridX       uint32 `json:"grid_x"`
	GridY       uint32 `json:"grid_y"`
	WidthSpan   uint32 `json:"width_span"`
	HeightSpan  uint32 `json:"height_span"`
}

// GetPublicStoreLayout returns the store's static table layout so a
// guest can preview the floor before starting a reservation.  It
// carries no availability; that requires a date and time and lives on
// the availability endpoints.
func (h *PublicHandler) GetPublicStoreLayout(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	if _, err := h.StoreRepo.GetByID(ctx, id); err != nil {
		if err == repository.ErrStoreNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "store not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	tables, err := h.TableRepo.ListActiveByStore(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	var rows, cols uint32
	out := make([]PublicTable, 0, len(tables))
	for _, t := range tables {
		if x := t.GridX + t.WidthSpan; x > cols {
			cols = x
		}
		if y := t.GridY + t.HeightSpan; y > rows {
			rows = y
		}
		out = append(out, PublicTable{
			ID:          t.ID,
			TableNumber: t.TableNumber,
			MinSeats:    t.MinSeats,
			MaxSeats:    t.MaxSeats,
			SeatsType:   string(t.SeatsType),
			GridX:       t.GridX,
			GridY:       t.GridY,
			WidthSpan:   t.WidthSpan,
			HeightSpan:  t.HeightSpan,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"rows": rows, "cols": cols, "tables": out})
}
