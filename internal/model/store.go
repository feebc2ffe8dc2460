package model

import "time"

// DepositRate enumerates the percentage of the pre-ordered menu total a
// store collects up front when a booking is confirmed.  The database
// stores the symbolic name; Fraction converts it to the multiplier used
// by the deposit calculator.
type DepositRate string

const (
	DepositRateTen    DepositRate = "TEN"    // 10%
	DepositRateTwenty DepositRate = "TWENTY" // 20%
	DepositRateThirty DepositRate = "THIRTY" // 30%
	DepositRateForty  DepositRate = "FORTY"  // 40%
	DepositRateFifty  DepositRate = "FIFTY"  // 50%
)

// Fraction returns the multiplier for the rate (TEN -> 0.10 ... FIFTY -> 0.50).
// Unknown values return 0 so a corrupt row never charges a deposit it
// cannot explain.
func (r DepositRate) Fraction() float64 {
	switch r {
	case DepositRateTen:
		return 0.10
	case DepositRateTwenty:
		return 0.20
	case DepositRateThirty:
		return 0.30
	case DepositRateForty:
		return 0.40
	case DepositRateFifty:
		return 0.50
	}
	return 0
}

// Valid reports whether the rate is one of the five known values.
func (r DepositRate) Valid() bool { return r.Fraction() > 0 }

// Store describes a restaurant that offers table reservations.  Break
// times are stored as "HH:MM" strings because they are recurring daily
// windows, not absolute instants; both are nil when the store has no
// break.
//
// Fields:
//
//	ID              – primary key identifier.
//	OwnerID         – user who owns the store.
//	Name            – display name.
//	Address         – street address.
//	DepositRate     – percentage of the menu total charged as deposit.
//	IntervalMinutes – granularity of reservation slots (e.g. 30, 60).
//	BreakStart      – daily break window start ("HH:MM"), nil when unset.
//	BreakEnd        – daily break window end ("HH:MM"), nil when unset.
//	CreatedAt       – creation timestamp.
//	UpdatedAt       – last update timestamp.
type Store struct {
	ID              uint64      // stores.id
	OwnerID         uint64      // stores.owner_id
	Name            string      // stores.name
	Address         string      // stores.address
	DepositRate     DepositRate // stores.deposit_rate
	IntervalMinutes int         // stores.interval_minutes
	BreakStart      *string     // stores.break_start (nullable)
	BreakEnd        *string     // stores.break_end (nullable)
	CreatedAt       time.Time   // stores.created_at
	UpdatedAt       time.Time   // stores.updated_at
}

// StoreHours is one weekday's opening window for a store.  Weekday
// follows time.Weekday numbering (0 = Sunday).  Open and Close are
// "HH:MM" strings in the store's local time.
type StoreHours struct {
	ID      uint64 // store_hours.id
	StoreID uint64 // store_hours.store_id
	Weekday int    // store_hours.weekday
	Open    string // store_hours.open_time
	Close   string // store_hours.close_time
}

// InBreak reports whether the "HH:MM" slot falls inside the store's
// break window.  The start is inclusive and the end exclusive, so a
// break of 15:00-17:00 blocks 15:00 and 16:30 but offers 17:00 again.
// Stores without a break never match.
func (s *Store) InBreak(slot string) bool {
	if s.BreakStart == nil || s.BreakEnd == nil {
		return false
	}
	return slot >= *s.BreakStart && slot < *s.BreakEnd
}
