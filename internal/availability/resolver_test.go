package availability

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-table-reservation/internal/domain"
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

func newTestResolver(t *testing.T) (*Resolver, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	r := NewResolver(repository.NewStoreRepo(db), repository.NewTableRepo(db), repository.NewSlotRepo(db))
	return r, mock
}

var (
	storeCols = []string{"id", "owner_id", "name", "address", "deposit_rate", "interval_minutes",
		"break_start", "break_end", "created_at", "updated_at"}
	tableCols = []string{"id", "store_id", "table_number", "seats_type", "min_seats", "max_seats",
		"grid_x", "grid_y", "width_span", "height_span", "is_active", "created_at", "updated_at"}
)

func storeRow(breakStart, breakEnd interface{}, interval int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(storeCols).
		AddRow(1, 100, "Dining Room", "1 Main St", "TEN", interval, breakStart, breakEnd, now, now)
}

func tableRow(rows *sqlmock.Rows, id uint64, num uint32, seatsType string, min, max uint32) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, 1, num, seatsType, min, max, 0, 0, 1, 1, true, now, now)
}

// 2026-09-01 is a Tuesday (weekday 2).
const testDate = "2026-09-01"

func TestAvailableTimesExcludesBreakAndTakenSlots(t *testing.T) {
	r, mock := newTestResolver(t)

	mock.ExpectQuery("FROM stores WHERE id").WithArgs(uint64(1)).
		WillReturnRows(storeRow("18:00", "19:00", 60))
	mock.ExpectQuery("FROM store_hours").WithArgs(uint64(1), 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "store_id", "weekday", "open_time", "close_time"}).
			AddRow(1, 1, 2, "17:00:00", "20:00:00"))
	mock.ExpectQuery("FROM tables WHERE store_id").WithArgs(uint64(1)).
		WillReturnRows(tableRow(sqlmock.NewRows(tableCols), 3, 1, "WINDOW", 2, 4))
	// The only table is booked at 19:00; nothing is blocked.
	mock.ExpectQuery("FROM booking_tables").WithArgs(uint64(1), testDate).
		WillReturnRows(sqlmock.NewRows([]string{"booking_time", "table_id"}).AddRow("19:00:00", 3))
	mock.ExpectQuery("FROM table_slots").WithArgs(uint64(1), testDate).
		WillReturnRows(sqlmock.NewRows([]string{"slot_time", "table_id"}))

	times, err := r.AvailableTimes(context.Background(), 1, testDate, 2, false)
	require.NoError(t, err)

	// 17:00 is free, 18:00 falls in the break, 19:00 is booked.
	assert.Equal(t, []string{"17:00"}, times)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailableTimesClosedWeekday(t *testing.T) {
	r, mock := newTestResolver(t)

	mock.ExpectQuery("FROM stores WHERE id").WithArgs(uint64(1)).
		WillReturnRows(storeRow(nil, nil, 30))
	mock.ExpectQuery("FROM store_hours").WithArgs(uint64(1), 2).
		WillReturnError(sql.ErrNoRows)

	times, err := r.AvailableTimes(context.Background(), 1, testDate, 2, false)
	require.NoError(t, err)
	assert.Empty(t, times)
}

func TestAvailableTimesRequiresDateAndParty(t *testing.T) {
	r, _ := newTestResolver(t)

	_, err := r.AvailableTimes(context.Background(), 1, "", 2, false)
	assert.True(t, domain.Is(err, domain.KindValidation))

	_, err = r.AvailableTimes(context.Background(), 1, testDate, 0, false)
	assert.True(t, domain.Is(err, domain.KindValidation))
}

func TestAvailableTimesSplitCombinesTables(t *testing.T) {
	r, mock := newTestResolver(t)

	// Two 4-seat tables; a party of 6 fits only when split is accepted.
	rows := sqlmock.NewRows(tableCols)
	tableRow(rows, 3, 1, "GENERAL", 2, 4)
	tableRow(rows, 4, 2, "GENERAL", 2, 4)
	mock.ExpectQuery("FROM stores WHERE id").WithArgs(uint64(1)).
		WillReturnRows(storeRow(nil, nil, 60))
	mock.ExpectQuery("FROM store_hours").WithArgs(uint64(1), 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "store_id", "weekday", "open_time", "close_time"}).
			AddRow(1, 1, 2, "17:00:00", "18:00:00"))
	mock.ExpectQuery("FROM tables WHERE store_id").WithArgs(uint64(1)).WillReturnRows(rows)
	mock.ExpectQuery("FROM booking_tables").WithArgs(uint64(1), testDate).
		WillReturnRows(sqlmock.NewRows([]string{"booking_time", "table_id"}))
	mock.ExpectQuery("FROM table_slots").WithArgs(uint64(1), testDate).
		WillReturnRows(sqlmock.NewRows([]string{"slot_time", "table_id"}))

	times, err := r.AvailableTimes(context.Background(), 1, testDate, 6, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"17:00"}, times)
}

func TestAvailableTablesBreakOverridesStoredStatus(t *testing.T) {
	r, mock := newTestResolver(t)

	// The slot sits inside the break window.  The table rows are still
	// loaded for the grid dimensions, but no slot status is consulted:
	// break-time wins even over a stored AVAILABLE.
	mock.ExpectQuery("FROM stores WHERE id").WithArgs(uint64(1)).
		WillReturnRows(storeRow("15:00", "17:00", 30))
	mock.ExpectQuery("FROM tables WHERE store_id").WithArgs(uint64(1)).
		WillReturnRows(tableRow(sqlmock.NewRows(tableCols), 3, 1, "WINDOW", 2, 4))

	grid, err := r.AvailableTables(context.Background(), 1, testDate, "15:30", 2, false, "")
	require.NoError(t, err)
	assert.Empty(t, grid.Tables)
	assert.Equal(t, uint32(1), grid.Rows)
	assert.Equal(t, uint32(1), grid.Cols)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailableTablesFilters(t *testing.T) {
	r, mock := newTestResolver(t)

	rows := sqlmock.NewRows(tableCols)
	tableRow(rows, 3, 1, "WINDOW", 2, 4)  // booked
	tableRow(rows, 4, 2, "WINDOW", 2, 4)  // free, matches
	tableRow(rows, 5, 3, "BAR", 1, 2)     // wrong seat type
	tableRow(rows, 6, 4, "WINDOW", 6, 10) // too large for the party
	mock.ExpectQuery("FROM stores WHERE id").WithArgs(uint64(1)).
		WillReturnRows(storeRow(nil, nil, 30))
	mock.ExpectQuery("FROM tables WHERE store_id").WithArgs(uint64(1)).WillReturnRows(rows)
	mock.ExpectQuery("FROM booking_tables").WithArgs(uint64(1), testDate, "18:00").
		WillReturnRows(sqlmock.NewRows([]string{"table_id"}).AddRow(3))
	mock.ExpectQuery("FROM table_slots").WithArgs(uint64(1), testDate, "18:00").
		WillReturnRows(sqlmock.NewRows([]string{"table_id"}))

	grid, err := r.AvailableTables(context.Background(), 1, testDate, "18:00", 2, false, model.SeatsWindow)
	require.NoError(t, err)
	require.Len(t, grid.Tables, 1)
	assert.Equal(t, uint64(4), grid.Tables[0].TableID)
}

func TestAvailableTablesUnknownSeatsType(t *testing.T) {
	r, _ := newTestResolver(t)
	_, err := r.AvailableTables(context.Background(), 1, testDate, "18:00", 2, false, model.SeatsType("SOFA"))
	assert.True(t, domain.Is(err, domain.KindValidation))
}

func TestSlotTimes(t *testing.T) {
	assert.Equal(t, []string{"17:00", "17:30", "18:00"}, slotTimes("17:00", "18:30", 30))
	assert.Equal(t, []string{"17:00", "18:00"}, slotTimes("17:00:00", "19:00:00", 60))
	// Misconfigured interval falls back to 30 minutes.
	assert.Equal(t, []string{"17:00", "17:30"}, slotTimes("17:00", "18:00", 0))
	// Inverted window yields nothing.
	assert.Empty(t, slotTimes("19:00", "18:00", 30))
}
