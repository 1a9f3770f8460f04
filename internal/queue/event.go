// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names used for booking notifications.  Each event type gets its
// own durable queue so consumers can subscribe selectively.
const (
	BookingCreatedQueue   = "booking.created"
	BookingCancelledQueue = "booking.cancelled"
	PaymentSucceededQueue = "payment.succeeded"
)

// BookingCreatedEvent is published when a booking is placed and its
// slots are reserved.  It contains enough information for downstream
// consumers to log, notify, or trigger analytics without querying the
// primary database.
type BookingCreatedEvent struct {
	BookingID        uint64 `json:"booking_id"`
	UserID           uint64 `json:"user_id"`
	UserEmail        string `json:"user_email"`
	TourID           uint64 `json:"tour_id"`
	TourName         string `json:"tour_name"`
	Location         string `json:"location"`
	StartDate        string `json:"start_date"`
	Participants     uint32 `json:"participants"`
	TotalAmountCents uint64 `json:"total_amount_cents"`
	CreatedAt        string `json:"created_at"`
}

// BookingCancelledEvent is published when a booking is cancelled and its
// slots are released back to the tour.
type BookingCancelledEvent struct {
	BookingID    uint64  `json:"booking_id"`
	UserID       uint64  `json:"user_id"`
	UserEmail    string  `json:"user_email"`
	TourID       uint64  `json:"tour_id"`
	TourName     string  `json:"tour_name"`
	Participants uint32  `json:"participants"`
	Reason       *string `json:"reason,omitempty"`
	CancelledAt  string  `json:"cancelled_at"`
}

// PaymentSucceededEvent is published when a payment is verified and the
// booking moves to CONFIRMED.
type PaymentSucceededEvent struct {
	BookingID   uint64 `json:"booking_id"`
	UserID      uint64 `json:"user_id"`
	UserEmail   string `json:"user_email"`
	TourID      uint64 `json:"tour_id"`
	TourName    string `json:"tour_name"`
	PaymentRef  string `json:"payment_ref"`
	AmountCents uint64 `json:"amount_cents"`
	Currency    string `json:"currency"`
	PaidAt      string `json:"paid_at"`
}
