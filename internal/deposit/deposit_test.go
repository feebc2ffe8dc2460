package deposit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

func TestAmount(t *testing.T) {
	cases := []struct {
		name  string
		total int64
		rate  model.DepositRate
		want  int64
	}{
		{"ten percent of 30000", 30000, model.DepositRateTen, 3000},
		{"twenty percent", 30000, model.DepositRateTwenty, 6000},
		{"thirty percent", 30000, model.DepositRateThirty, 9000},
		{"forty percent", 30000, model.DepositRateForty, 12000},
		{"fifty percent", 30000, model.DepositRateFifty, 15000},
		{"rounds half up", 335, model.DepositRateTen, 34},
		{"rounds down below half", 333, model.DepositRateTen, 33},
		{"zero total", 0, model.DepositRateFifty, 0},
		{"negative total", -100, model.DepositRateFifty, 0},
		{"unknown rate", 30000, model.DepositRate("BOGUS"), 0},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Amount(tt.total, tt.rate))
		})
	}
}

func TestAmountMonotonic(t *testing.T) {
	// A larger menu total never yields a smaller deposit at the same rate.
	prev := int64(-1)
	for total := int64(0); total <= 10000; total += 137 {
		got := Amount(total, model.DepositRateThirty)
		assert.GreaterOrEqual(t, got, prev, "total=%d", total)
		prev = got
	}
}

func TestMenuTotal(t *testing.T) {
	menus := map[uint64]model.Menu{
		1: {ID: 1, Price: 12000},
		2: {ID: 2, Price: 4500},
	}
	lines := []model.MenuLine{
		{MenuID: 1, Quantity: 2},
		{MenuID: 2, Quantity: 3},
	}
	assert.Equal(t, int64(2*12000+3*4500), MenuTotal(lines, menus))
}

func TestMenuTotalSkipsUnknownMenus(t *testing.T) {
	menus := map[uint64]model.Menu{1: {ID: 1, Price: 1000}}
	lines := []model.MenuLine{
		{MenuID: 1, Quantity: 1},
		{MenuID: 99, Quantity: 5},
	}
	assert.Equal(t, int64(1000), MenuTotal(lines, menus))
}

func TestMenuTotalEmpty(t *testing.T) {
	assert.Equal(t, int64(0), MenuTotal(nil, nil))
}
