// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when a table booking is successfully
// created.  It carries enough information for downstream consumers to log,
// notify the store, or trigger analytics without querying the primary
// database.
type BookingConfirmedEvent struct {
	BookingID       uint64   `json:"booking_id"`
	StoreID         uint64   `json:"store_id"`
	StoreName       string   `json:"store_name"`
	UserID          uint64   `json:"user_id"`
	BookingDate     string   `json:"date"`
	BookingTime     string   `json:"time"`
	PartySize       uint32   `json:"party_size"`
	TableNumbers    []uint32 `json:"tables"`
	IsSplitAccepted bool     `json:"is_split_accepted"`
	TotalDeposit    int64    `json:"total_deposit"`
	ConfirmedAt     string   `json:"confirmed_at"`
}
