package model

import "time"

// Tour represents a bookable tour offered by a provider.  Capacity is
// tracked with a denormalized pair of counters: MaxParticipants is the
// fixed capacity and BookedSlots is the number of slots currently
// claimed by active bookings.  BookedSlots is only ever mutated through
// the slot ledger operations on TourRepo so the invariant
// 0 <= BookedSlots <= MaxParticipants holds at all times.
type Tour struct {
	ID              uint64     // tours.id
	ProviderID      uint64     // tours.provider_id
	Name            string     // tours.name
	Location        string     // tours.location
	Description     string     // tours.description
	PriceCents      uint64     // tours.price_cents
	MaxParticipants uint32     // tours.max_participants
	BookedSlots     uint32     // tours.booked_slots
	StartDate       time.Time  // tours.start_date
	EndDate         time.Time  // tours.end_date
	ImageURL        *string    // tours.image_url (nullable)
	CreatedAt       time.Time  // tours.created_at
	UpdatedAt       time.Time  // tours.updated_at
}

// AvailableSlots returns the number of slots still open for booking.
func (t *Tour) AvailableSlots() uint32 {
	if t.BookedSlots >= t.MaxParticipants {
		return 0
	}
	return t.MaxParticipants - t.BookedSlots
}

// HasStarted reports whether the tour has already begun at the given time.
// Bookings and user-initiated cancellations are rejected once this is true.
func (t *Tour) HasStarted(now time.Time) bool {
	return !t.StartDate.After(now)
}
