package draft

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-table-reservation/internal/domain"
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

func newTestDraft(t *testing.T) *Draft {
	t.Helper()
	return NewFlowStore(time.Minute).Create(10, 7)
}

// advance walks a fresh draft to the menu step with a complete selection.
func advance(t *testing.T, d *Draft) {
	t.Helper()
	require.NoError(t, d.SetDate("2026-09-01"))
	require.NoError(t, d.SetTime("18:00"))
	require.NoError(t, d.SetSeatsType(model.SeatsWindow))
	require.NoError(t, d.SetTables([]uint64{3}))
	require.NoError(t, d.Next())
}

func TestNewDraftDefaults(t *testing.T) {
	snap := newTestDraft(t).Snapshot()
	assert.Equal(t, StepSelecting, snap.Step)
	assert.Equal(t, uint32(2), snap.PartySize)
	assert.Equal(t, PrefOneTable, snap.TablePref)
	assert.Empty(t, snap.Date)
	assert.Empty(t, snap.Time)
	assert.Empty(t, snap.TableIDs)
}

func TestTupleChangeDropsTableSelection(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(d *Draft) error
	}{
		{"party size", func(d *Draft) error { return d.SetPartySize(6) }},
		{"date", func(d *Draft) error { return d.SetDate("2026-09-02") }},
		{"time", func(d *Draft) error { return d.SetTime("19:00") }},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDraft(t)
			require.NoError(t, d.SetDate("2026-09-01"))
			require.NoError(t, d.SetTime("18:00"))
			require.NoError(t, d.SetTables([]uint64{3, 4}))

			require.NoError(t, tt.mutate(d))
			assert.Empty(t, d.Snapshot().TableIDs, "tuple change must drop the table selection")
		})
	}
}

func TestIdenticalValueKeepsTableSelection(t *testing.T) {
	d := newTestDraft(t)
	require.NoError(t, d.SetDate("2026-09-01"))
	require.NoError(t, d.SetTime("18:00"))
	require.NoError(t, d.SetTables([]uint64{3}))

	require.NoError(t, d.SetPartySize(2))
	require.NoError(t, d.SetDate("2026-09-01"))
	require.NoError(t, d.SetTime("18:00"))
	assert.Equal(t, []uint64{3}, d.Snapshot().TableIDs)
}

func TestSetTablesRequiresDateAndTime(t *testing.T) {
	d := newTestDraft(t)
	err := d.SetTables([]uint64{1})
	assert.True(t, domain.Is(err, domain.KindValidation))
}

func TestOneTablePrefRejectsMultipleTables(t *testing.T) {
	d := newTestDraft(t)
	require.NoError(t, d.SetDate("2026-09-01"))
	require.NoError(t, d.SetTime("18:00"))

	err := d.SetTables([]uint64{1, 2})
	assert.True(t, domain.Is(err, domain.KindValidation))

	require.NoError(t, d.SetTablePref(PrefSplitOK))
	require.NoError(t, d.SetTables([]uint64{1, 2}))
	assert.True(t, d.SplitAccepted())
}

func TestPrefChangeDropsTables(t *testing.T) {
	d := newTestDraft(t)
	require.NoError(t, d.SetDate("2026-09-01"))
	require.NoError(t, d.SetTime("18:00"))
	require.NoError(t, d.SetTables([]uint64{1}))

	require.NoError(t, d.SetTablePref(PrefSplitOK))
	assert.Empty(t, d.Snapshot().TableIDs)
}

func TestMenuLineQuantityRules(t *testing.T) {
	d := newTestDraft(t)

	// Clamp above the maximum.
	require.NoError(t, d.SetMenuLine(1, model.MaxMenuQuantity+15))
	snap := d.Snapshot()
	require.Len(t, snap.MenuLines, 1)
	assert.Equal(t, uint32(model.MaxMenuQuantity), snap.MenuLines[0].Quantity)

	// Update in place.
	require.NoError(t, d.SetMenuLine(1, 3))
	assert.Equal(t, uint32(3), d.Snapshot().MenuLines[0].Quantity)

	// Zero removes the line.
	require.NoError(t, d.SetMenuLine(1, 0))
	assert.Empty(t, d.Snapshot().MenuLines)

	// Zero for an absent line is a no-op, not an error.
	require.NoError(t, d.SetMenuLine(2, 0))
	assert.Empty(t, d.Snapshot().MenuLines)
}

func TestNextRequiresCompleteSelection(t *testing.T) {
	d := newTestDraft(t)
	err := d.Next()
	assert.True(t, domain.Is(err, domain.KindValidation))

	advance(t, d)
	assert.Equal(t, StepChoosingMenu, d.Snapshot().Step)
}

func TestMenuStepIsMandatoryButLinesAreNot(t *testing.T) {
	d := newTestDraft(t)
	advance(t, d)
	require.NoError(t, d.Next()) // empty menu is fine
	assert.Equal(t, StepConfirming, d.Snapshot().Step)
}

func TestBackPreservesMenuLines(t *testing.T) {
	d := newTestDraft(t)
	advance(t, d)
	require.NoError(t, d.SetMenuLine(5, 2))

	require.NoError(t, d.Back())
	assert.Equal(t, StepSelecting, d.Snapshot().Step)
	require.Len(t, d.Snapshot().MenuLines, 1)

	// Forward again without re-entering the menu.
	require.NoError(t, d.Next())
	assert.Equal(t, uint32(2), d.Snapshot().MenuLines[0].Quantity)
}

func TestSelectionLockedOutsideSelecting(t *testing.T) {
	d := newTestDraft(t)
	advance(t, d)

	assert.True(t, domain.Is(d.SetDate("2026-09-03"), domain.KindValidation))
	assert.True(t, domain.Is(d.SetTables([]uint64{9}), domain.KindValidation))
}

func TestNextFromConfirmingRequiresConfirm(t *testing.T) {
	d := newTestDraft(t)
	advance(t, d)
	require.NoError(t, d.Next())

	err := d.Next()
	assert.True(t, domain.Is(err, domain.KindValidation))
}

func TestConfirmLifecycle(t *testing.T) {
	d := newTestDraft(t)
	advance(t, d)
	require.NoError(t, d.Next())

	require.NoError(t, d.BeginConfirm())

	// A second confirm while one is in flight is a conflict.
	err := d.BeginConfirm()
	assert.True(t, domain.Is(err, domain.KindConflict))

	d.EndConfirm(42, nil)
	snap := d.Snapshot()
	assert.Equal(t, uint64(42), snap.BookingID)
	assert.Equal(t, StepPaying, snap.Step)

	d.CompletePayment()
	assert.Equal(t, StepComplete, d.Snapshot().Step)
}

func TestFailedConfirmStaysConfirming(t *testing.T) {
	d := newTestDraft(t)
	advance(t, d)
	require.NoError(t, d.Next())

	require.NoError(t, d.BeginConfirm())
	d.EndConfirm(0, errors.New("conflict"))

	snap := d.Snapshot()
	assert.Equal(t, StepConfirming, snap.Step)
	assert.Zero(t, snap.BookingID)

	// The diner can retry.
	require.NoError(t, d.BeginConfirm())
}

func TestCloseNeedsConfirmFromConfirmingOn(t *testing.T) {
	d := newTestDraft(t)
	advance(t, d)
	require.NoError(t, d.Next()) // CONFIRMING

	_, err := d.Close(false)
	assert.True(t, domain.Is(err, domain.KindValidation))

	cancelID, err := d.Close(true)
	require.NoError(t, err)
	assert.Zero(t, cancelID)
	assert.Equal(t, StepClosed, d.Snapshot().Step)

	// Closing again is a no-op.
	_, err = d.Close(false)
	assert.NoError(t, err)
}

func TestCloseDuringPayingReturnsBookingToCancel(t *testing.T) {
	d := newTestDraft(t)
	advance(t, d)
	require.NoError(t, d.Next())
	require.NoError(t, d.BeginConfirm())
	d.EndConfirm(42, nil)

	cancelID, err := d.Close(true)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), cancelID, "unpaid booking must be routed to cancellation")
}

func TestCloseAfterCompleteCancelsNothing(t *testing.T) {
	d := newTestDraft(t)
	advance(t, d)
	require.NoError(t, d.Next())
	require.NoError(t, d.BeginConfirm())
	d.EndConfirm(42, nil)
	d.CompletePayment()

	cancelID, err := d.Close(true)
	require.NoError(t, err)
	assert.Zero(t, cancelID, "a paid booking is never canceled by close")
}

func TestQueryTokenDiscipline(t *testing.T) {
	d := newTestDraft(t)

	t1 := d.BeginQuery(QueryTimes)
	t2 := d.BeginQuery(QueryTimes)

	assert.False(t, d.Accept(QueryTimes, t1), "superseded token must be rejected")
	assert.True(t, d.Accept(QueryTimes, t2))

	// Purposes are independent: a new table query does not invalidate
	// the current time query.
	g := d.BeginQuery(QueryTables)
	assert.True(t, d.Accept(QueryTimes, t2))
	assert.True(t, d.Accept(QueryTables, g))
}

func TestCloseInvalidatesInFlightQueries(t *testing.T) {
	d := newTestDraft(t)
	token := d.BeginQuery(QueryTables)

	_, err := d.Close(false)
	require.NoError(t, err)
	assert.False(t, d.Accept(QueryTables, token))
}
