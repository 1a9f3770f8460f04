// Package service implements the booking orchestrator: every lifecycle
// transition runs here inside a single database transaction together
// with its slot-ledger effect, so status and capacity can never drift
// apart.  Sentinel errors let handlers map failures to HTTP responses
// without inspecting error strings.
package service

import "errors"

// ErrInvalidParticipants is returned when a booking requests zero slots.
var ErrInvalidParticipants = errors.New("participants must be at least 1")

// ErrTourStarted is returned when booking or cancelling a tour that has
// already begun.
var ErrTourStarted = errors.New("tour has already started")

// ErrDuplicateBooking is returned when the user already holds an active
// (PENDING or CONFIRMED) booking on the tour.
var ErrDuplicateBooking = errors.New("active booking already exists for this tour")

// ErrAlreadyCancelled is returned when cancelling a booking that is
// already CANCELLED.  No slots are touched in that case.
var ErrAlreadyCancelled = errors.New("booking is already cancelled")

// ErrInvalidTransition is returned when a requested status change is not
// allowed by the booking lifecycle.  COMPLETED bookings reject every
// transition.
var ErrInvalidTransition = errors.New("invalid booking status transition")

// ErrInvalidStatus is returned when a status string is not a recognized
// booking status.
var ErrInvalidStatus = errors.New("unknown booking status")

// ErrNotPayable is returned when payment is initialized or confirmed for
// a booking that is not awaiting payment.
var ErrNotPayable = errors.New("booking is not awaiting payment")

// ErrAlreadyPaid is returned when payment is initialized for a booking
// that is already CONFIRMED.
var ErrAlreadyPaid = errors.New("booking is already paid")

// ErrPaymentPending is returned by payment confirmation when the gateway
// still reports the transaction as pending.  Booking state is untouched;
// the caller should retry later.
var ErrPaymentPending = errors.New("payment is still pending at the gateway")

// ErrNoPaymentRef is returned when confirming payment for a booking that
// never initialized one.
var ErrNoPaymentRef = errors.New("booking has no payment reference")
