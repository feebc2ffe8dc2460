package model

import "time"

// Menu is a dish a diner can pre-order while reserving a table.  Price
// is an integer amount in the store's currency (no sub-unit).
type Menu struct {
	ID        uint64    // menus.id
	StoreID   uint64    // menus.store_id
	Name      string    // menus.name
	Price     int64     // menus.price
	IsActive  bool      // menus.is_active
	CreatedAt time.Time // menus.created_at
	UpdatedAt time.Time // menus.updated_at
}

// MenuLine is one pre-ordered dish with a quantity, as selected in a
// draft or persisted under a booking.  Quantity is clamped to
// [1, MaxMenuQuantity] by the draft; zero quantity removes the line.
type MenuLine struct {
	MenuID   uint64 `json:"menu_id"`
	Quantity uint32 `json:"quantity"`
}

// MaxMenuQuantity bounds how many of a single dish one booking may
// pre-order.
const MaxMenuQuantity = 20
