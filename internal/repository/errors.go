// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios. For example, ErrForbidden indicates that the current user
// is not authorized to perform an operation on a resource owned by
// someone else, while ErrConflict signals that an operation cannot
// proceed due to existing dependent records (e.g. deleting a tour that
// still has bookings).
package repository

import (
	"errors"
	"fmt"
)

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot be
// performed because of conflicting state, such as attempting to
// delete a tour that still has bookings. Handlers should
// translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrTourNotFound indicates that a tour was not located in the DB.
var ErrTourNotFound = errors.New("tour not found")

// ErrBookingNotFound indicates that a booking was not located in the DB.
var ErrBookingNotFound = errors.New("booking not found")

// ErrCategoryNotFound indicates that a category was not located in the DB.
var ErrCategoryNotFound = errors.New("category not found")

// ErrSlotUnderflow is returned when a slot release would push a tour's
// booked_slots counter below zero. The ledger never clamps silently:
// underflow means a transition released a claim it did not hold, which
// is a bug upstream, so it surfaces as an internal error.
var ErrSlotUnderflow = errors.New("slot release underflow")

// InsufficientCapacityError is returned by TryReserveSlotsTx when a tour
// does not have enough free slots for the requested reservation. It
// carries the number of slots that were actually available at the time
// the reservation failed so callers can report the shortfall.
type InsufficientCapacityError struct {
	Remaining uint32
}

func (e *InsufficientCapacityError) Error() string {
	return fmt.Sprintf("not enough available slots: only %d remaining", e.Remaining)
}
