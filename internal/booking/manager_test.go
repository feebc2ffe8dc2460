package booking

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-table-reservation/internal/domain"
	"github.com/iliyamo/restaurant-table-reservation/internal/draft"
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/queue"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

func newTestManager(t *testing.T) (*Manager, sqlmock.Sqlmock, *[]queue.BookingConfirmedEvent) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m := NewManager(
		repository.NewStoreRepo(db),
		repository.NewTableRepo(db),
		repository.NewSlotRepo(db),
		repository.NewMenuRepo(db),
		repository.NewBookingRepo(db),
	)
	published := &[]queue.BookingConfirmedEvent{}
	m.PublishConfirmed = func(ctx context.Context, ev queue.BookingConfirmedEvent) error {
		*published = append(*published, ev)
		return nil
	}
	return m, mock, published
}

func expectStore(mock sqlmock.Sqlmock, storeID uint64, rate string, breakStart, breakEnd interface{}) {
	now := time.Now()
	mock.ExpectQuery("FROM stores WHERE id").WithArgs(storeID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "name", "address", "deposit_rate",
			"interval_minutes", "break_start", "break_end", "created_at", "updated_at"}).
			AddRow(storeID, 100, "Dining Room", "1 Main St", rate, 60, breakStart, breakEnd, now, now))
}

func expectTables(mock sqlmock.Sqlmock, args []driver.Value, tables ...[2]uint32) {
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "store_id", "table_number", "seats_type", "min_seats",
		"max_seats", "grid_x", "grid_y", "width_span", "height_span", "is_active", "created_at", "updated_at"})
	for i, minMax := range tables {
		rows.AddRow(uint64(i+3), 1, uint32(i+1), "WINDOW", minMax[0], minMax[1], 0, 0, 1, 1, true, now, now)
	}
	mock.ExpectQuery("FROM tables").WithArgs(args...).WillReturnRows(rows)
}

func TestCreateValidation(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.Create(ctx, CreateCommand{StoreID: 1, UserID: 9, Date: "2026-09-01", Time: "18:00", PartySize: 2})
	assert.True(t, domain.Is(err, domain.KindValidation), "missing table selection")

	_, err = m.Create(ctx, CreateCommand{StoreID: 1, UserID: 9, Time: "18:00", PartySize: 2, TableIDs: []uint64{3}})
	assert.True(t, domain.Is(err, domain.KindValidation), "missing date")
}

func TestCreateRejectsBreakTime(t *testing.T) {
	m, mock, published := newTestManager(t)
	expectStore(mock, 1, "TEN", "18:00", "19:00")

	_, err := m.Create(context.Background(), CreateCommand{
		StoreID: 1, UserID: 9, Date: "2026-09-01", Time: "18:30", PartySize: 2, TableIDs: []uint64{3},
	})
	assert.True(t, domain.Is(err, domain.KindConflict))
	assert.Empty(t, *published)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOneTablePreferenceRejectsPair(t *testing.T) {
	m, mock, _ := newTestManager(t)
	expectStore(mock, 1, "TEN", nil, nil)
	expectTables(mock, []driver.Value{uint64(1), uint64(3), uint64(4)}, [2]uint32{2, 4}, [2]uint32{2, 4})

	_, err := m.Create(context.Background(), CreateCommand{
		StoreID: 1, UserID: 9, Date: "2026-09-01", Time: "18:00", PartySize: 2,
		SplitOK: false, TableIDs: []uint64{3, 4},
	})
	assert.True(t, domain.Is(err, domain.KindValidation))
}

func TestCreateSlotConflict(t *testing.T) {
	m, mock, published := newTestManager(t)
	expectStore(mock, 1, "TEN", nil, nil)
	expectTables(mock, []driver.Value{uint64(1), uint64(3)}, [2]uint32{2, 4})

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(uint64(1), uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	// Another diner booked table 3 between selection and confirm.
	mock.ExpectQuery("FROM booking_tables").WithArgs(uint64(1), "2026-09-01", "18:00", uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"table_id"}).AddRow(3))
	mock.ExpectQuery("FROM table_slots").WithArgs(uint64(1), "2026-09-01", "18:00", uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"table_id"}))
	mock.ExpectRollback()

	_, err := m.Create(context.Background(), CreateCommand{
		StoreID: 1, UserID: 9, Date: "2026-09-01", Time: "18:00", PartySize: 2, TableIDs: []uint64{3},
	})
	assert.True(t, domain.Is(err, domain.KindConflict))
	assert.True(t, errors.Is(err, repository.ErrSlotTaken))
	assert.Empty(t, *published)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateHappyPath(t *testing.T) {
	m, mock, published := newTestManager(t)
	now := time.Now()

	expectStore(mock, 1, "TEN", nil, nil)
	expectTables(mock, []driver.Value{uint64(1), uint64(3)}, [2]uint32{2, 4})
	mock.ExpectQuery("FROM menus").WithArgs(uint64(1), uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "store_id", "name", "price", "is_active", "created_at", "updated_at"}).
			AddRow(5, 1, "Pasta", 10000, true, now, now))

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(uint64(1), uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectQuery("FROM booking_tables").WithArgs(uint64(1), "2026-09-01", "18:00", uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"table_id"}))
	mock.ExpectQuery("FROM table_slots").WithArgs(uint64(1), "2026-09-01", "18:00", uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"table_id"}))
	// 2 x 10000 at the TEN rate yields a 2000 deposit.
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(uint64(1), uint64(9), "2026-09-01", "18:00", uint32(2), false, int64(2000), model.BookingConfirmed).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec("INSERT INTO booking_tables").WithArgs(uint64(7), uint64(3)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO booking_menus").WithArgs(uint64(7), uint64(5), uint32(2), int64(10000)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	mock.ExpectQuery("FROM bookings b").WithArgs(uint64(7), uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "store_id", "name", "booking_date", "booking_time",
			"party_size", "is_split_accepted", "total_deposit", "status", "cancel_reason"}).
			AddRow(7, 1, "Dining Room", "2026-09-01", "18:00:00", 2, false, 2000, "CONFIRMED", nil))
	mock.ExpectQuery("FROM booking_tables").WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"booking_id", "table_id", "table_number", "seats_type"}).
			AddRow(7, 3, 1, "WINDOW"))
	mock.ExpectQuery("FROM booking_menus").WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"booking_id", "menu_id", "name", "quantity", "unit_price"}).
			AddRow(7, 5, "Pasta", 2, 10000))

	det, err := m.Create(context.Background(), CreateCommand{
		StoreID: 1, UserID: 9, Date: "2026-09-01", Time: "18:00", PartySize: 2,
		TableIDs: []uint64{3}, MenuLines: []model.MenuLine{{MenuID: 5, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(7), det.ID)
	assert.Equal(t, int64(2000), det.TotalDeposit)
	require.Len(t, det.Tables, 1)
	require.Len(t, det.Menus, 1)

	require.Len(t, *published, 1)
	ev := (*published)[0]
	assert.Equal(t, uint64(7), ev.BookingID)
	assert.Equal(t, "Dining Room", ev.StoreName)
	assert.Equal(t, []uint32{1}, ev.TableNumbers)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmReturnsExistingBooking(t *testing.T) {
	m, mock, published := newTestManager(t)

	flows := draft.NewFlowStore(10 * time.Minute)
	d := flows.Create(1, 9)
	require.NoError(t, d.SetDate("2026-09-01"))
	require.NoError(t, d.SetTime("18:00"))
	require.NoError(t, d.SetSeatsType(model.SeatsWindow))
	require.NoError(t, d.SetTables([]uint64{3}))
	require.NoError(t, d.Next())
	require.NoError(t, d.Next())
	require.NoError(t, d.BeginConfirm())
	d.EndConfirm(42, nil)

	// The retry only reads the booking back; no insert happens.
	mock.ExpectQuery("FROM bookings b").WithArgs(uint64(42), uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "store_id", "name", "booking_date", "booking_time",
			"party_size", "is_split_accepted", "total_deposit", "status", "cancel_reason"}).
			AddRow(42, 1, "Dining Room", "2026-09-01", "18:00:00", 2, false, 0, "CONFIRMED", nil))
	mock.ExpectQuery("FROM booking_tables").WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"booking_id", "table_id", "table_number", "seats_type"}))
	mock.ExpectQuery("FROM booking_menus").WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"booking_id", "menu_id", "name", "quantity", "unit_price"}))

	det, err := m.Confirm(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), det.ID)
	assert.Empty(t, *published)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelForbidden(t *testing.T) {
	m, mock, _ := newTestManager(t)
	mock.ExpectQuery("SELECT status, user_id FROM bookings").WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"status", "user_id"}).AddRow("CONFIRMED", 100))

	err := m.Cancel(context.Background(), 7, 9, "changed plans")
	assert.True(t, domain.Is(err, domain.KindForbidden))
}

func TestCancelAlreadyCanceledIsNoOp(t *testing.T) {
	m, mock, _ := newTestManager(t)
	mock.ExpectQuery("SELECT status, user_id FROM bookings").WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"status", "user_id"}).AddRow("CANCELED", 9))

	assert.NoError(t, m.Cancel(context.Background(), 7, 9, "changed plans"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelHappyPath(t *testing.T) {
	m, mock, _ := newTestManager(t)
	mock.ExpectQuery("SELECT status, user_id FROM bookings").WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"status", "user_id"}).AddRow("CONFIRMED", 9))
	mock.ExpectExec("UPDATE bookings SET status = 'CANCELED'").WithArgs("changed plans", uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, m.Cancel(context.Background(), 7, 9, "changed plans"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
