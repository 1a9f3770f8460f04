package model

import (
	"fmt"
	"time"
)

// BookingStatus represents the current state of a booking in its lifecycle.
type BookingStatus string

const (
	StatusPending   BookingStatus = "PENDING"
	StatusConfirmed BookingStatus = "CONFIRMED"
	StatusCancelled BookingStatus = "CANCELLED"
	StatusCompleted BookingStatus = "COMPLETED"
	StatusFailed    BookingStatus = "FAILED"
)

// validTransitions defines the state machine for booking status changes.
// PENDING is the initial state.  COMPLETED is frozen: nothing leaves it.
// CANCELLED and FAILED can be reactivated by an admin into any slot-holding
// state, which requires re-reserving capacity on the tour.
var validTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled, StatusCompleted, StatusFailed},
	StatusConfirmed: {StatusCancelled, StatusCompleted},
	StatusCancelled: {StatusPending, StatusConfirmed, StatusCompleted, StatusFailed},
	StatusFailed:    {StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted},
	StatusCompleted: {},
}

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

// CanTransitionTo returns true if a transition from this status to the
// target is allowed by the lifecycle state machine.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible.
func (s BookingStatus) IsTerminal() bool {
	allowed, ok := validTransitions[s]
	if !ok {
		return true
	}
	return len(allowed) == 0
}

// HoldsSlots reports whether a booking in this status claims slots
// against its tour's booked_slots counter.  PENDING and CONFIRMED
// bookings hold a live claim; COMPLETED retains its claim because the
// tour already happened.  The slot-ledger effect of any transition is
// derived from claim membership: entering the claim set reserves,
// leaving it releases, and moves within either set touch no slots.
// Deriving the effect this way makes a double release or double reserve
// structurally impossible.
func (s BookingStatus) HoldsSlots() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted:
		return true
	}
	return false
}

// String returns the string representation of the status.
func (s BookingStatus) String() string { return string(s) }

// ParseBookingStatus converts a string to a BookingStatus, returning an
// error when the value is not a recognized status.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}

// Booking records a user's claim on a number of tour slots.  TourID and
// UserID are immutable after creation.  TotalAmountCents is computed at
// creation time from the tour price and never recomputed, even if the
// tour price changes later.  Status is mutated only through the
// lifecycle transitions enforced by the booking service.
type Booking struct {
	ID                 uint64        // bookings.id
	UserID             uint64        // bookings.user_id
	TourID             uint64        // bookings.tour_id
	Participants       uint32        // bookings.participants
	TotalAmountCents   uint64        // bookings.total_amount_cents
	Status             BookingStatus // bookings.status
	PaymentRef         *string       // bookings.payment_ref (nullable, unique)
	CancelledAt        *time.Time    // bookings.cancelled_at (nullable)
	CancellationReason *string       // bookings.cancellation_reason (nullable)
	PaidAt             *time.Time    // bookings.paid_at (nullable)
	CreatedAt          time.Time     // bookings.created_at
	UpdatedAt          time.Time     // bookings.updated_at
}
