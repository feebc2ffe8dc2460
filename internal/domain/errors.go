// Package domain defines the error taxonomy shared by the reservation
// services.  Every failure that can cross a service boundary is wrapped
// in an *Error carrying one of a small set of kinds, so HTTP handlers
// translate errors to status codes in exactly one place and never
// branch on message text.
package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error.
type Kind int

const (
	// KindValidation marks an incomplete or malformed request.  It is
	// raised before any network or database work happens.
	KindValidation Kind = iota
	// KindAvailability marks a failed or empty availability lookup.
	KindAvailability
	// KindConflict marks state that moved under the caller, such as a
	// table booked by another diner between selection and confirm.
	// Callers must re-query availability before retrying.
	KindConflict
	// KindPayment marks an order, redirect or confirm failure.  The
	// booking stays CONFIRMED and unpaid.
	KindPayment
	// KindNetwork marks a timeout or connection error talking to an
	// external collaborator.  Surfaced verbatim; retries are always
	// user-initiated.
	KindNetwork
	// KindNotFound marks a missing resource.
	KindNotFound
	// KindForbidden marks an operation on a resource the caller does
	// not own.
	KindForbidden
)

// Error is the single error type returned by the reservation services.
type Error struct {
	Kind    Kind
	Message string
	Err     error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// E builds a domain error with an optional wrapped cause.
func E(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// Validation is shorthand for a KindValidation error without a cause.
func Validation(message string) *Error { return E(KindValidation, message, nil) }

// Conflict is shorthand for a KindConflict error.
func Conflict(message string, cause error) *Error { return E(KindConflict, message, cause) }

// KindOf extracts the kind of err.  Non-domain errors report ok=false;
// callers usually treat those as internal failures.
func KindOf(err error) (Kind, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return 0, false
}

// Is reports whether err is a domain error of the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
