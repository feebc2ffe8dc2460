// Package booking owns the persisted lifecycle of a reservation: the
// exactly-once creation from a confirmed draft, lookups, and
// cancellation.  Availability races against other diners surface here
// as conflicts; this service never locks tables ahead of confirm.
package booking

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/restaurant-table-reservation/internal/deposit"
	"github.com/iliyamo/restaurant-table-reservation/internal/domain"
	"github.com/iliyamo/restaurant-table-reservation/internal/draft"
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/queue"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
	queue_publisher "github.com/iliyamo/restaurant-table-reservation/internal/service"
)

// Manager creates and cancels bookings.  Creation runs in a single
// transaction with a re-check of every selected table, so "table
// became unavailable between selection and confirm" always fails the
// transaction instead of producing a double booking.
type Manager struct {
	Stores   *repository.StoreRepo
	Tables   *repository.TableRepo
	Slots    *repository.SlotRepo
	Menus    *repository.MenuRepo
	Bookings *repository.BookingRepo

	// PublishConfirmed is called after a successful commit; errors are
	// logged and never fail the booking.  Swapped out in tests.
	PublishConfirmed func(ctx context.Context, ev queue.BookingConfirmedEvent) error
}

// NewManager constructs a Manager.  All repositories must be non-nil.
func NewManager(stores *repository.StoreRepo, tables *repository.TableRepo, slots *repository.SlotRepo, menus *repository.MenuRepo, bookings *repository.BookingRepo) *Manager {
	if stores == nil || tables == nil || slots == nil || menus == nil || bookings == nil {
		panic("nil repository passed to NewManager")
	}
	return &Manager{
		Stores:           stores,
		Tables:           tables,
		Slots:            slots,
		Menus:            menus,
		Bookings:         bookings,
		PublishConfirmed: queue_publisher.PublishBookingConfirmed,
	}
}

// CreateCommand is everything needed to persist one booking.
type CreateCommand struct {
	StoreID   uint64
	UserID    uint64
	Date      string
	Time      string
	PartySize uint32
	SplitOK   bool
	TableIDs  []uint64
	MenuLines []model.MenuLine
}

// Confirm creates the booking for a draft exactly once.  When the
// draft already carries a booking (confirm succeeded earlier and the
// client retried after a re-render or double click) the existing
// booking is returned without a new creation request.  On any failure
// the draft stays in CONFIRMING and nothing is persisted.
func (m *Manager) Confirm(ctx context.Context, d *draft.Draft) (*repository.BookingDetail, error) {
	snap := d.Snapshot()
	if snap.BookingID != 0 {
		det, err := m.Bookings.GetByIDForUser(ctx, snap.BookingID, d.UserID)
		if err != nil {
			return nil, domain.E(domain.KindNetwork, "failed to load existing booking", err)
		}
		return det, nil
	}

	if err := d.BeginConfirm(); err != nil {
		return nil, err
	}
	det, err := m.Create(ctx, CreateCommand{
		StoreID:   snap.StoreID,
		UserID:    d.UserID,
		Date:      snap.Date,
		Time:      snap.Time,
		PartySize: snap.PartySize,
		SplitOK:   snap.TablePref == draft.PrefSplitOK,
		TableIDs:  snap.TableIDs,
		MenuLines: snap.MenuLines,
	})
	var bookingID uint64
	if det != nil {
		bookingID = det.ID
	}
	d.EndConfirm(bookingID, err)
	return det, err
}

// Create validates the command against live data and persists the
// booking in one transaction.  It is the single creation path for
// both the draft flow and the direct booking endpoint.
func (m *Manager) Create(ctx context.Context, cmd CreateCommand) (*repository.BookingDetail, error) {
	if len(cmd.TableIDs) == 0 {
		return nil, domain.Validation("no table selected")
	}
	if cmd.Date == "" || cmd.Time == "" || cmd.PartySize == 0 {
		return nil, domain.Validation("date, time and party size are required")
	}
	store, err := m.Stores.GetByID(ctx, cmd.StoreID)
	if err != nil {
		if err == repository.ErrStoreNotFound {
			return nil, domain.E(domain.KindNotFound, "store not found", err)
		}
		return nil, domain.E(domain.KindNetwork, "failed to load store", err)
	}
	if store.InBreak(cmd.Time) {
		return nil, domain.Conflict("time falls inside the store's break", nil)
	}
	tables, err := m.Tables.GetByIDs(ctx, cmd.StoreID, cmd.TableIDs)
	if err != nil {
		if err == repository.ErrTableNotFound {
			return nil, domain.Validation("selected table does not exist at this store")
		}
		return nil, domain.E(domain.KindNetwork, "failed to load tables", err)
	}
	if err := checkCapacity(tables, cmd.PartySize, cmd.SplitOK); err != nil {
		return nil, err
	}

	// Price the pre-order against live menu rows, never against what
	// the client displayed.
	menuIDs := make([]uint64, 0, len(cmd.MenuLines))
	for _, line := range cmd.MenuLines {
		menuIDs = append(menuIDs, line.MenuID)
	}
	menus, err := m.Menus.GetActiveByIDs(ctx, cmd.StoreID, menuIDs)
	if err != nil {
		if err == repository.ErrMenuNotFound {
			return nil, domain.Validation("selected menu does not exist at this store")
		}
		return nil, domain.E(domain.KindNetwork, "failed to load menus", err)
	}
	menuTotal := deposit.MenuTotal(cmd.MenuLines, menus)
	totalDeposit := deposit.Amount(menuTotal, store.DepositRate)

	tx, err := m.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, domain.E(domain.KindNetwork, "failed to start transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Race guard: the slot may have been taken since the availability
	// query the diner selected from.
	bookable, err := m.Slots.FilterBookableTx(ctx, tx, cmd.StoreID, cmd.Date, cmd.Time, cmd.TableIDs)
	if err != nil {
		return nil, domain.E(domain.KindNetwork, "failed to re-check availability", err)
	}
	if len(bookable) != len(cmd.TableIDs) {
		return nil, domain.Conflict("a selected table is no longer available", repository.ErrSlotTaken)
	}

	rec := repository.BookingRecord{
		StoreID:         cmd.StoreID,
		UserID:          cmd.UserID,
		BookingDate:     cmd.Date,
		BookingTime:     cmd.Time,
		PartySize:       cmd.PartySize,
		IsSplitAccepted: cmd.SplitOK,
		TotalDeposit:    totalDeposit,
		Status:          model.BookingConfirmed,
	}
	if err := m.Bookings.CreateTx(ctx, tx, &rec); err != nil {
		return nil, domain.E(domain.KindNetwork, "failed to create booking", err)
	}
	if err := m.Bookings.CreateTablesBulkTx(ctx, tx, rec.ID, cmd.TableIDs); err != nil {
		return nil, domain.E(domain.KindNetwork, "failed to attach tables", err)
	}
	menuRecs := make([]repository.BookingMenuRecord, 0, len(cmd.MenuLines))
	for _, line := range cmd.MenuLines {
		menuRecs = append(menuRecs, repository.BookingMenuRecord{
			BookingID: rec.ID,
			MenuID:    line.MenuID,
			Quantity:  line.Quantity,
			UnitPrice: menus[line.MenuID].Price,
		})
	}
	if err := m.Bookings.CreateMenusBulkTx(ctx, tx, menuRecs); err != nil {
		return nil, domain.E(domain.KindNetwork, "failed to attach menus", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, domain.E(domain.KindNetwork, "failed to commit booking", err)
	}
	committed = true

	det, err := m.Bookings.GetByIDForUser(ctx, rec.ID, cmd.UserID)
	if err != nil {
		// Booking exists; only the read-back failed.  Return a minimal
		// detail so the caller still learns the ID.
		det = &repository.BookingDetail{ID: rec.ID, StoreID: cmd.StoreID, Status: model.BookingConfirmed}
	}
	m.publish(ctx, store, det, tables, cmd.UserID)
	return det, nil
}

// Cancel marks a booking canceled on behalf of its diner.  It is also
// invoked by flow close when the diner abandons an unpaid booking.
func (m *Manager) Cancel(ctx context.Context, bookingID, userID uint64, reason string) error {
	status, owner, err := m.Bookings.GetStatus(ctx, bookingID)
	if err != nil {
		if err == repository.ErrBookingNotFound {
			return domain.E(domain.KindNotFound, "booking not found", err)
		}
		return domain.E(domain.KindNetwork, "failed to load booking", err)
	}
	if owner != userID {
		return domain.E(domain.KindForbidden, "booking belongs to another user", repository.ErrForbidden)
	}
	if status == model.BookingCanceled {
		return nil // already canceled, nothing to do
	}
	if err := m.Bookings.Cancel(ctx, bookingID, reason); err != nil {
		if err == repository.ErrCanceled {
			return nil
		}
		return domain.E(domain.KindNetwork, "failed to cancel booking", err)
	}
	return nil
}

// checkCapacity verifies the selected tables can host the party under
// the chosen preference.
func checkCapacity(tables []model.Table, partySize uint32, splitOK bool) error {
	if splitOK {
		var capacity uint32
		for _, t := range tables {
			capacity += t.MaxSeats
		}
		if capacity < partySize {
			return domain.Validation("selected tables cannot seat the whole party")
		}
		return nil
	}
	if len(tables) != 1 {
		return domain.Validation("one_table preference allows a single table")
	}
	if !tables[0].Fits(partySize) {
		return domain.Validation("selected table does not fit the party size")
	}
	return nil
}

func (m *Manager) publish(ctx context.Context, store *model.Store, det *repository.BookingDetail, tables []model.Table, userID uint64) {
	if m.PublishConfirmed == nil {
		return
	}
	numbers := make([]uint32, 0, len(tables))
	for _, t := range tables {
		numbers = append(numbers, t.TableNumber)
	}
	ev := queue.BookingConfirmedEvent{
		BookingID:       det.ID,
		StoreID:         store.ID,
		StoreName:       store.Name,
		UserID:          userID,
		BookingDate:     det.BookingDate,
		BookingTime:     det.BookingTime,
		PartySize:       det.PartySize,
		TableNumbers:    numbers,
		IsSplitAccepted: det.IsSplitAccepted,
		TotalDeposit:    det.TotalDeposit,
		ConfirmedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	if err := m.PublishConfirmed(ctx, ev); err != nil {
		log.Printf("booking: publish confirmed event failed: %v", err)
	}
}
