package model

import "time"

// Review is a user's rating and comment for a tour they have booked.
// A user may leave at most one review per tour (unique user+tour).
type Review struct {
	ID        uint64    // reviews.id
	UserID    uint64    // reviews.user_id
	TourID    uint64    // reviews.tour_id
	Rating    uint8     // reviews.rating (1..5)
	Comment   string    // reviews.comment
	CreatedAt time.Time // reviews.created_at
}
