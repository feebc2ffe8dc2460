package model

import "time"

// SeatsType classifies where a table sits in the dining room.  The set
// is closed; owner tooling can only assign one of these values.
type SeatsType string

const (
	SeatsGeneral SeatsType = "GENERAL"
	SeatsWindow  SeatsType = "WINDOW"
	SeatsRoom    SeatsType = "ROOM"
	SeatsBar     SeatsType = "BAR"
	SeatsOutdoor SeatsType = "OUTDOOR"
)

// ValidSeatsType reports whether s names one of the known seat types.
func ValidSeatsType(s SeatsType) bool {
	switch s {
	case SeatsGeneral, SeatsWindow, SeatsRoom, SeatsBar, SeatsOutdoor:
		return true
	}
	return false
}

// Table describes a physical table in a store's dining room.  Tables
// are placed on the owner's layout grid; spans allow a large table to
// cover more than one cell.  A table is immutable during a booking
// flow: layout edits belong to owner tooling, this service only reads.
//
// Fields:
//
//	ID          – primary key identifier.
//	StoreID     – store to which this table belongs.
//	TableNumber – numeric label printed on the floor plan.
//	SeatsType   – placement class (GENERAL, WINDOW, ROOM, BAR, OUTDOOR).
//	MinSeats    – smallest party the table is offered to.
//	MaxSeats    – largest party the table can host.
//	GridX       – column of the top-left cell on the layout grid.
//	GridY       – row of the top-left cell on the layout grid.
//	WidthSpan   – number of columns the table covers.
//	HeightSpan  – number of rows the table covers.
//	IsActive    – whether the table is offered at all.
//	CreatedAt   – creation timestamp.
//	UpdatedAt   – last update timestamp.
type Table struct {
	ID          uint64    // tables.id
	StoreID     uint64    // tables.store_id
	TableNumber uint32    // tables.table_number
	SeatsType   SeatsType // tables.seats_type
	MinSeats    uint32    // tables.min_seats
	MaxSeats    uint32    // tables.max_seats
	GridX       uint32    // tables.grid_x
	GridY       uint32    // tables.grid_y
	WidthSpan   uint32    // tables.width_span
	HeightSpan  uint32    // tables.height_span
	IsActive    bool      // tables.is_active
	CreatedAt   time.Time // tables.created_at
	UpdatedAt   time.Time // tables.updated_at
}

// Fits reports whether the table alone can host the party.
func (t *Table) Fits(partySize uint32) bool {
	return partySize >= t.MinSeats && partySize <= t.MaxSeats
}
