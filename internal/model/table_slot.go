package model

import "time"

// Slot status values.  AVAILABLE and BLOCKED are stored; BOOKED is
// derived from booking_tables at query time and never written to
// table_slots.  Break-time overrides all of them when resolving
// availability.
const (
	SlotAvailable = "AVAILABLE"
	SlotBooked    = "BOOKED"
	SlotBlocked   = "BLOCKED"
)

// TableSlot records an owner override for one (table, date, time) unit.
// The table_slots table is sparse: a missing row means AVAILABLE, so
// only explicit blocks (and later un-blocks) produce rows.
//
// Fields:
//
//	ID        – primary key identifier.
//	TableID   – table this override applies to.
//	SlotDate  – reservation date ("YYYY-MM-DD").
//	SlotTime  – reservation time ("HH:MM").
//	Status    – AVAILABLE or BLOCKED.
//	CreatedAt – creation timestamp.
//	UpdatedAt – last update timestamp.
type TableSlot struct {
	ID        uint64    // table_slots.id
	TableID   uint64    // table_slots.table_id
	SlotDate  string    // table_slots.slot_date
	SlotTime  string    // table_slots.slot_time
	Status    string    // table_slots.status
	CreatedAt time.Time // table_slots.created_at
	UpdatedAt time.Time // table_slots.updated_at
}
