// Package availability answers the two read-only questions the
// reservation flow asks while a diner is selecting: which time slots
// does a store still offer on a date, and which tables can host the
// party at a chosen slot.  Both answers already exclude break-time
// and booked or blocked slots, so callers never re-derive slot rules.
package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/restaurant-table-reservation/internal/domain"
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// Resolver resolves time-slot and table availability for a store.
// All methods are read-only, idempotent and free of side effects;
// failures are wrapped in domain errors for the handler boundary.
type Resolver struct {
	Stores *repository.StoreRepo
	Tables *repository.TableRepo
	Slots  *repository.SlotRepo
}

// NewResolver constructs a Resolver.  All dependencies must be non-nil.
func NewResolver(stores *repository.StoreRepo, tables *repository.TableRepo, slots *repository.SlotRepo) *Resolver {
	if stores == nil || tables == nil || slots == nil {
		panic("nil repository passed to NewResolver")
	}
	return &Resolver{Stores: stores, Tables: tables, Slots: slots}
}

// TableGrid is the table answer for one (store, date, time, party)
// tuple.  Rows and Cols size the owner's layout grid so clients can
// render tables at their stored positions.
type TableGrid struct {
	Rows   uint32      `json:"rows"`
	Cols   uint32      `json:"cols"`
	Tables []GridTable `json:"tables"`
}

// GridTable is one bookable table placed on the layout grid.
type GridTable struct {
	TableID     uint64          `json:"table_id"`
	TableNumber uint32          `json:"table_number"`
	TableSeats  uint32          `json:"table_seats"`
	SeatsType   model.SeatsType `json:"seats_type"`
	GridX       uint32          `json:"grid_x"`
	GridY       uint32          `json:"grid_y"`
	WidthSpan   uint32          `json:"width_span"`
	HeightSpan  uint32          `json:"height_span"`
}

// AvailableTimes returns the ordered "HH:MM" slots a store offers on
// the date for the given party.  A slot is offered when it lies inside
// the store's opening hours for that weekday, outside the break
// window, and at least one table (or table combination when splitOK)
// can still host the party.
func (r *Resolver) AvailableTimes(ctx context.Context, storeID uint64, date string, partySize uint32, splitOK bool) ([]string, error) {
	if date == "" {
		return nil, domain.Validation("date is required")
	}
	if partySize == 0 {
		return nil, domain.Validation("party size is required")
	}
	store, err := r.Stores.GetByID(ctx, storeID)
	if err != nil {
		if err == repository.ErrStoreNotFound {
			return nil, domain.E(domain.KindNotFound, "store not found", err)
		}
		return nil, domain.E(domain.KindAvailability, "failed to load store", err)
	}
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, domain.Validation("invalid date")
	}
	hours, err := r.Stores.HoursForWeekday(ctx, storeID, int(day.Weekday()))
	if err != nil {
		// Closed that weekday: no slots, not an error.
		return []string{}, nil
	}
	slots := slotTimes(hours.Open, hours.Close, store.IntervalMinutes)

	tables, err := r.Tables.ListActiveByStore(ctx, storeID)
	if err != nil {
		return nil, domain.E(domain.KindAvailability, "failed to load tables", err)
	}
	unavailable, err := r.Slots.UnavailableByTime(ctx, storeID, date)
	if err != nil {
		return nil, domain.E(domain.KindAvailability, "failed to load slot status", err)
	}

	out := make([]string, 0, len(slots))
	for _, slot := range slots {
		if store.InBreak(slot) {
			continue
		}
		free := freeTables(tables, unavailable[slot], "")
		if canHost(free, partySize, splitOK) {
			out = append(out, slot)
		}
	}
	return out, nil
}

// AvailableTables returns the layout grid with the tables still
// bookable for the tuple, optionally filtered by seat type.  Tables
// inside the break window are never returned regardless of their
// stored slot status.  When splitOK is false only tables whose own
// occupancy range fits the party are eligible; with splitOK any free
// table is offered and the diner composes a combination.
func (r *Resolver) AvailableTables(ctx context.Context, storeID uint64, date, slotTime string, partySize uint32, splitOK bool, seatsType model.SeatsType) (*TableGrid, error) {
	if date == "" || slotTime == "" {
		return nil, domain.Validation("date and time are required")
	}
	if partySize == 0 {
		return nil, domain.Validation("party size is required")
	}
	if seatsType != "" && !model.ValidSeatsType(seatsType) {
		return nil, domain.Validation(fmt.Sprintf("unknown seats type %q", seatsType))
	}
	store, err := r.Stores.GetByID(ctx, storeID)
	if err != nil {
		if err == repository.ErrStoreNotFound {
			return nil, domain.E(domain.KindNotFound, "store not found", err)
		}
		return nil, domain.E(domain.KindAvailability, "failed to load store", err)
	}

	tables, err := r.Tables.ListActiveByStore(ctx, storeID)
	if err != nil {
		return nil, domain.E(domain.KindAvailability, "failed to load tables", err)
	}
	grid := &TableGrid{Tables: []GridTable{}}
	for _, t := range tables {
		if x := t.GridX + t.WidthSpan; x > grid.Cols {
			grid.Cols = x
		}
		if y := t.GridY + t.HeightSpan; y > grid.Rows {
			grid.Rows = y
		}
	}

	// Break-time wins over everything, including a stored AVAILABLE.
	if store.InBreak(slotTime) {
		return grid, nil
	}

	booked, err := r.Slots.BookedSet(ctx, storeID, date, slotTime)
	if err != nil {
		return nil, domain.E(domain.KindAvailability, "failed to load booked slots", err)
	}
	blocked, err := r.Slots.BlockedSet(ctx, storeID, date, slotTime)
	if err != nil {
		return nil, domain.E(domain.KindAvailability, "failed to load blocked slots", err)
	}

	for _, t := range tables {
		if _, ok := booked[t.ID]; ok {
			continue
		}
		if _, ok := blocked[t.ID]; ok {
			continue
		}
		if seatsType != "" && t.SeatsType != seatsType {
			continue
		}
		if !splitOK && !t.Fits(partySize) {
			continue
		}
		grid.Tables = append(grid.Tables, GridTable{
			TableID:     t.ID,
			TableNumber: t.TableNumber,
			TableSeats:  t.MaxSeats,
			SeatsType:   t.SeatsType,
			GridX:       t.GridX,
			GridY:       t.GridY,
			WidthSpan:   t.WidthSpan,
			HeightSpan:  t.HeightSpan,
		})
	}
	return grid, nil
}

// slotTimes steps from open to close (exclusive) by the interval and
// returns the "HH:MM" labels.  A non-positive interval falls back to
// 30 minutes so a misconfigured store still yields a sane ladder.
func slotTimes(open, close string, intervalMinutes int) []string {
	if intervalMinutes <= 0 {
		intervalMinutes = 30
	}
	start, err1 := time.Parse("15:04", trimHHMM(open))
	end, err2 := time.Parse("15:04", trimHHMM(close))
	if err1 != nil || err2 != nil || !start.Before(end) {
		return []string{}
	}
	out := make([]string, 0)
	for t := start; t.Before(end); t = t.Add(time.Duration(intervalMinutes) * time.Minute) {
		out = append(out, t.Format("15:04"))
	}
	return out
}

// trimHHMM normalizes "HH:MM:SS" values from MySQL TIME columns.
func trimHHMM(s string) string {
	if len(s) > 5 {
		return s[:5]
	}
	return s
}

// freeTables filters tables down to those not present in the taken
// set, optionally restricted to one seat type.
func freeTables(tables []model.Table, taken map[uint64]struct{}, seatsType model.SeatsType) []model.Table {
	out := make([]model.Table, 0, len(tables))
	for _, t := range tables {
		if _, ok := taken[t.ID]; ok {
			continue
		}
		if seatsType != "" && t.SeatsType != seatsType {
			continue
		}
		out = append(out, t)
	}
	return out
}

// canHost reports whether the free tables can host the party.  Without
// split a single table must fit the party's size range; with split the
// combined capacity of all free tables is enough.
func canHost(free []model.Table, partySize uint32, splitOK bool) bool {
	if splitOK {
		var capacity uint32
		for _, t := range free {
			capacity += t.MaxSeats
			if capacity >= partySize {
				return true
			}
		}
		return false
	}
	for _, t := range free {
		if t.Fits(partySize) {
			return true
		}
	}
	return false
}
