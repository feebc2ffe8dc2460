// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios without parsing messages. For example, ErrForbidden
// indicates that the current user is not authorized to operate on a
// resource owned by someone else, while ErrSlotTaken signals that a
// requested table slot was captured by another booking.
package repository

import "errors"

// ErrStoreNotFound is returned when a store lookup matches no row.
var ErrStoreNotFound = errors.New("store not found")

// ErrTableNotFound is returned when a table lookup matches no row or
// the table belongs to a different store than the one requested.
var ErrTableNotFound = errors.New("table not found")

// ErrMenuNotFound is returned when one of the requested menu IDs does
// not exist or is inactive for the store.
var ErrMenuNotFound = errors.New("menu not found")

// ErrBookingNotFound is returned when a booking lookup matches no row.
var ErrBookingNotFound = errors.New("booking not found")

// ErrPaymentNotFound is returned when a payment lookup matches no row.
var ErrPaymentNotFound = errors.New("payment not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrSlotTaken is returned when a booking cannot be created because at
// least one selected table is no longer bookable for the requested
// date and time. Handlers should translate this into an HTTP 409
// response and force a fresh availability query.
var ErrSlotTaken = errors.New("slot taken")

// ErrCanceled is returned when an operation targets a booking that has
// already been canceled.
var ErrCanceled = errors.New("booking canceled")
