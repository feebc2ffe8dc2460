package model

import "time"

// Booking status values.  A booking is CONFIRMED as soon as it is
// created, COMPLETED once its deposit payment is approved and CANCELED
// when the diner or owner withdraws it.
const (
	BookingConfirmed = "CONFIRMED"
	BookingCompleted = "COMPLETED"
	BookingCanceled  = "CANCELED"
)

// Booking records a diner's reservation of one or more tables at a
// store for a specific date and time.  Tables are linked through the
// booking_tables join table and pre-ordered dishes through
// booking_menus.
//
// Fields:
//
//	ID              – primary key identifier.
//	StoreID         – store being booked.
//	UserID          – diner who made the booking.
//	BookingDate     – reservation date ("YYYY-MM-DD").
//	BookingTime     – reservation time ("HH:MM").
//	PartySize       – number of guests.
//	IsSplitAccepted – whether the party agreed to be split across tables.
//	TotalDeposit    – deposit charged for the pre-ordered menu.
//	Status          – CONFIRMED, COMPLETED or CANCELED.
//	CancelReason    – reason recorded when the booking is canceled.
//	CreatedAt       – creation timestamp.
//	UpdatedAt       – last update timestamp.
type Booking struct {
	ID              uint64    // bookings.id
	StoreID         uint64    // bookings.store_id
	UserID          uint64    // bookings.user_id
	BookingDate     string    // bookings.booking_date
	BookingTime     string    // bookings.booking_time
	PartySize       uint32    // bookings.party_size
	IsSplitAccepted bool      // bookings.is_split_accepted
	TotalDeposit    int64     // bookings.total_deposit
	Status          string    // bookings.status
	CancelReason    *string   // bookings.cancel_reason (nullable)
	CreatedAt       time.Time // bookings.created_at
	UpdatedAt       time.Time // bookings.updated_at
}

// BookingTable links a booking to a reserved table.  A split booking
// has several rows, one per table.
type BookingTable struct {
	ID        uint64    // booking_tables.id
	BookingID uint64    // booking_tables.booking_id
	TableID   uint64    // booking_tables.table_id
	CreatedAt time.Time // booking_tables.created_at
}

// BookingMenu is a pre-ordered dish persisted under a booking.  The
// unit price is copied from the menu at creation time so later price
// edits do not change what the deposit was computed from.
type BookingMenu struct {
	ID        uint64    // booking_menus.id
	BookingID uint64    // booking_menus.booking_id
	MenuID    uint64    // booking_menus.menu_id
	Quantity  uint32    // booking_menus.quantity
	UnitPrice int64     // booking_menus.unit_price
	CreatedAt time.Time // booking_menus.created_at
}
