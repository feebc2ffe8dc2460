// Package deposit computes the upfront amount a store charges for a
// booking's pre-ordered menu.  The calculation is pure so every step
// of the flow can re-derive the displayed amount and be certain it
// matches what is ultimately charged.
package deposit

import (
	"math"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// Amount returns round(menuTotal * rate fraction), rounding half up.
// A zero or negative menu total (no pre-order) always yields zero.
func Amount(menuTotal int64, rate model.DepositRate) int64 {
	if menuTotal <= 0 {
		return 0
	}
	return int64(math.Round(float64(menuTotal) * rate.Fraction()))
}

// MenuTotal sums price*quantity over the selected lines, resolving
// each line's price through the supplied menu set.  Lines whose menu
// is missing from the set contribute nothing; the draft validates
// membership before lines are ever accepted.
func MenuTotal(lines []model.MenuLine, menus map[uint64]model.Menu) int64 {
	var total int64
	for _, line := range lines {
		m, ok := menus[line.MenuID]
		if !ok {
			continue
		}
		total += m.Price * int64(line.Quantity)
	}
	return total
}
