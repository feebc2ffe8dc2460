// Package draft owns the in-progress reservation selection a diner
// builds across steps.  A draft is ephemeral flow state: it is created
// when the diner enters the booking flow, mutated only through the
// methods here (which enforce the selection invariants), and destroyed
// when the flow closes or completes.  Nothing in this package touches
// the database; pricing inputs are supplied by the caller.
package draft

import (
	"sync"
	"time"

	"github.com/iliyamo/restaurant-table-reservation/internal/domain"
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// Step identifies where the diner is in the flow.  Transitions happen
// only through explicit Next/Back/Close/confirm actions; there is no
// automatic advance.
type Step string

const (
	StepSelecting    Step = "SELECTING"
	StepChoosingMenu Step = "CHOOSING_MENU"
	StepConfirming   Step = "CONFIRMING"
	StepPaying       Step = "PAYING"
	StepComplete     Step = "COMPLETE"
	StepClosed       Step = "CLOSED"
)

// TablePref is the diner's answer to "may we split your party across
// tables?".
type TablePref string

const (
	PrefSplitOK  TablePref = "split_ok"
	PrefOneTable TablePref = "one_table"
)

// Query purposes used with the generation-token discipline.  Each
// purpose has its own counter so a stale table query cannot invalidate
// a fresh time query.
const (
	QueryTimes  = "times"
	QueryTables = "tables"
)

// Draft is one diner's in-progress reservation.  All exported methods
// lock the draft, so a draft can be touched from concurrent requests
// without the caller holding anything.
type Draft struct {
	mu sync.Mutex

	ID      string
	StoreID uint64
	UserID  uint64

	Step      Step
	PartySize uint32
	Date      string // "YYYY-MM-DD", empty until chosen
	Time      string // "HH:MM", empty until chosen
	SeatsType model.SeatsType
	TablePref TablePref
	TableIDs  []uint64

	MenuLines     []model.MenuLine
	MenuTotal     int64
	DepositAmount int64

	// BookingID is set exactly once when confirm succeeds; repeated
	// confirms return the same booking.
	BookingID uint64
	// OrderID mirrors the open payment order, if any.
	OrderID string

	confirmInFlight bool
	queryGen        map[string]uint64
	touchedAt       time.Time
}

// newDraft builds a draft with flow-entry defaults: two guests, no
// date or time, one-table preference.
func newDraft(id string, storeID, userID uint64) *Draft {
	return &Draft{
		ID:        id,
		StoreID:   storeID,
		UserID:    userID,
		Step:      StepSelecting,
		PartySize: 2,
		TablePref: PrefOneTable,
		TableIDs:  []uint64{},
		MenuLines: []model.MenuLine{},
		queryGen:  make(map[string]uint64),
		touchedAt: time.Now(),
	}
}

// SplitAccepted reports whether the diner agreed to a split booking.
func (d *Draft) SplitAccepted() bool { return d.TablePref == PrefSplitOK }

// SetPartySize changes the number of guests.  Any change to the
// (party, date, time) tuple invalidates the table selection, because a
// table chosen for 2 guests at 18:00 is not valid for 4 guests at
// 19:00.  Re-setting the identical value is a no-op on the selection.
func (d *Draft) SetPartySize(n uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.requireSelecting(); err != nil {
		return err
	}
	if n == 0 {
		return domain.Validation("party size must be positive")
	}
	if n == d.PartySize {
		return nil
	}
	d.PartySize = n
	d.clearTableSelection()
	return nil
}

// SetDate changes the reservation date, invalidating the table
// selection on a real change.
func (d *Draft) SetDate(date string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.requireSelecting(); err != nil {
		return err
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return domain.Validation("invalid date")
	}
	if date == d.Date {
		return nil
	}
	d.Date = date
	d.clearTableSelection()
	return nil
}

// SetTime changes the reservation time, invalidating the table
// selection on a real change.
func (d *Draft) SetTime(t string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.requireSelecting(); err != nil {
		return err
	}
	if _, err := time.Parse("15:04", t); err != nil {
		return domain.Validation("invalid time")
	}
	if t == d.Time {
		return nil
	}
	d.Time = t
	d.clearTableSelection()
	return nil
}

// SetSeatsType records the seat-type filter.  Changing it drops the
// selected tables, since they were chosen under the old filter.
func (d *Draft) SetSeatsType(s model.SeatsType) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.requireSelecting(); err != nil {
		return err
	}
	if !model.ValidSeatsType(s) {
		return domain.Validation("unknown seats type")
	}
	if s == d.SeatsType {
		return nil
	}
	d.SeatsType = s
	d.TableIDs = []uint64{}
	return nil
}

// SetTablePref records the split preference.  Switching preference
// drops the selected tables: a multi-table pick is meaningless under
// one_table and vice versa.
func (d *Draft) SetTablePref(p TablePref) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.requireSelecting(); err != nil {
		return err
	}
	if p != PrefSplitOK && p != PrefOneTable {
		return domain.Validation("unknown table preference")
	}
	if p == d.TablePref {
		return nil
	}
	d.TablePref = p
	d.TableIDs = []uint64{}
	return nil
}

// SetTables records the diner's table choice for the current tuple.
// The tuple must be complete first; one_table drafts accept exactly
// one table.
func (d *Draft) SetTables(ids []uint64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.requireSelecting(); err != nil {
		return err
	}
	if d.Date == "" || d.Time == "" {
		return domain.Validation("choose a date and time before a table")
	}
	if len(ids) == 0 {
		return domain.Validation("at least one table is required")
	}
	if d.TablePref == PrefOneTable && len(ids) > 1 {
		return domain.Validation("one_table preference allows a single table")
	}
	d.TableIDs = append([]uint64{}, ids...)
	return nil
}

// SetMenuLine sets the quantity for one dish.  Quantities clamp to
// [0, MaxMenuQuantity]; zero removes the line.  Allowed while choosing
// the menu and also while still selecting, so back-navigation keeps
// menu edits.
func (d *Draft) SetMenuLine(menuID uint64, quantity uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Step != StepSelecting && d.Step != StepChoosingMenu {
		return domain.Validation("menu can no longer be changed")
	}
	if menuID == 0 {
		return domain.Validation("menu id is required")
	}
	if quantity > model.MaxMenuQuantity {
		quantity = model.MaxMenuQuantity
	}
	for i, line := range d.MenuLines {
		if line.MenuID != menuID {
			continue
		}
		if quantity == 0 {
			d.MenuLines = append(d.MenuLines[:i], d.MenuLines[i+1:]...)
		} else {
			d.MenuLines[i].Quantity = quantity
		}
		return nil
	}
	if quantity == 0 {
		return nil
	}
	d.MenuLines = append(d.MenuLines, model.MenuLine{MenuID: menuID, Quantity: quantity})
	return nil
}

// SetPricing caches the menu total and deposit computed by the caller
// from current lines and the store's deposit rate.  The draft never
// prices lines itself because prices live in the database.
func (d *Draft) SetPricing(menuTotal, depositAmount int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.MenuTotal = menuTotal
	d.DepositAmount = depositAmount
}

// Next advances one step.  Leaving SELECTING requires a complete
// selection; leaving CONFIRMING happens only through confirm, and
// later steps only through the payment coordinator.
func (d *Draft) Next() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch d.Step {
	case StepSelecting:
		if d.Date == "" || d.Time == "" || d.SeatsType == "" || len(d.TableIDs) == 0 {
			return domain.Validation("date, time, seat type and table are required")
		}
		d.Step = StepChoosingMenu
		return nil
	case StepChoosingMenu:
		// Menu lines may be empty; the step itself is mandatory.
		d.Step = StepConfirming
		return nil
	case StepConfirming:
		return domain.Validation("confirm the booking to continue")
	default:
		return domain.Validation("cannot advance from " + string(d.Step))
	}
}

// Back returns one step.  Re-entering SELECTING keeps the menu lines
// already chosen.
func (d *Draft) Back() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch d.Step {
	case StepChoosingMenu:
		d.Step = StepSelecting
		return nil
	case StepConfirming:
		d.Step = StepChoosingMenu
		return nil
	default:
		return domain.Validation("cannot go back from " + string(d.Step))
	}
}

// Close terminates the flow.  From CONFIRMING onward the selection is
// meaningful state the diner could discard by accident, so the caller
// must pass confirmed=true.  The returned booking ID is non-zero when
// an unpaid booking exists that the caller must route to cancellation;
// a write already issued is never retracted here.
func (d *Draft) Close(confirmed bool) (cancelBookingID uint64, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Step == StepClosed {
		return 0, nil
	}
	needsConfirm := d.Step == StepConfirming || d.Step == StepPaying
	if needsConfirm && !confirmed {
		return 0, domain.Validation("closing now discards an in-progress booking; pass confirm=true")
	}
	var cancel uint64
	if d.BookingID != 0 && d.Step != StepComplete {
		cancel = d.BookingID
	}
	d.Step = StepClosed
	// Bump every query generation so in-flight results are discarded.
	for k := range d.queryGen {
		d.queryGen[k]++
	}
	return cancel, nil
}

// BeginQuery hands out the generation token for a new availability
// query of the given purpose.  Issuing a new query invalidates every
// earlier one for the same purpose (last-request-wins).
func (d *Draft) BeginQuery(purpose string) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queryGen[purpose]++
	return d.queryGen[purpose]
}

// Accept reports whether a query result carrying the token is still
// current.  Stale results must be discarded, not applied.
func (d *Draft) Accept(purpose string, token uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Step != StepClosed && d.queryGen[purpose] == token
}

// BeginConfirm marks a confirmation in flight.  A second confirm while
// one is running is suppressed rather than fired concurrently.
func (d *Draft) BeginConfirm() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Step != StepConfirming {
		return domain.Validation("draft is not ready to confirm")
	}
	if d.confirmInFlight {
		return domain.Conflict("confirmation already in progress", nil)
	}
	d.confirmInFlight = true
	return nil
}

// EndConfirm records the outcome of a confirmation attempt.  On
// success the draft binds to the booking and enters PAYING; on failure
// it stays in CONFIRMING so the diner can re-query and retry.
func (d *Draft) EndConfirm(bookingID uint64, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.confirmInFlight = false
	if err == nil && bookingID != 0 {
		d.BookingID = bookingID
		d.Step = StepPaying
	}
}

// CompletePayment transitions to COMPLETE once the deposit is
// approved.
func (d *Draft) CompletePayment() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Step == StepPaying {
		d.Step = StepComplete
	}
}

// SetOrderID mirrors the payment order issued for this draft's
// booking.
func (d *Draft) SetOrderID(orderID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.OrderID = orderID
}

// Snapshot returns a copy of the externally visible state for
// rendering, without exposing the mutex-guarded struct itself.
func (d *Draft) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	lines := make([]model.MenuLine, len(d.MenuLines))
	copy(lines, d.MenuLines)
	tables := make([]uint64, len(d.TableIDs))
	copy(tables, d.TableIDs)
	return Snapshot{
		ID:            d.ID,
		StoreID:       d.StoreID,
		Step:          d.Step,
		PartySize:     d.PartySize,
		Date:          d.Date,
		Time:          d.Time,
		SeatsType:     d.SeatsType,
		TablePref:     d.TablePref,
		TableIDs:      tables,
		MenuLines:     lines,
		MenuTotal:     d.MenuTotal,
		DepositAmount: d.DepositAmount,
		BookingID:     d.BookingID,
		OrderID:       d.OrderID,
	}
}

// Snapshot is the JSON-friendly view of a draft.
type Snapshot struct {
	ID            string           `json:"draft_id"`
	StoreID       uint64           `json:"store_id"`
	Step          Step             `json:"step"`
	PartySize     uint32           `json:"party_size"`
	Date          string           `json:"date,omitempty"`
	Time          string           `json:"time,omitempty"`
	SeatsType     model.SeatsType  `json:"seats_type,omitempty"`
	TablePref     TablePref        `json:"table_pref"`
	TableIDs      []uint64         `json:"table_ids"`
	MenuLines     []model.MenuLine `json:"menu_lines"`
	MenuTotal     int64            `json:"menu_total"`
	DepositAmount int64            `json:"deposit_amount"`
	BookingID     uint64           `json:"booking_id,omitempty"`
	OrderID       string           `json:"order_id,omitempty"`
}

func (d *Draft) requireSelecting() error {
	if d.Step != StepSelecting {
		return domain.Validation("selection can only change in the SELECTING step")
	}
	return nil
}

// clearTableSelection drops the chosen tables after a tuple change.
// The seat-type filter itself survives; only the tables derived from
// it are stale.
func (d *Draft) clearTableSelection() {
	d.TableIDs = []uint64{}
}
