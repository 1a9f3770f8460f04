package model

import "time"

// WishlistItem marks a tour a user wants to keep an eye on.  The pair
// (UserID, TourID) is unique; adding the same tour twice is a conflict.
type WishlistItem struct {
	ID        uint64    // wishlist.id
	UserID    uint64    // wishlist.user_id
	TourID    uint64    // wishlist.tour_id
	CreatedAt time.Time // wishlist.created_at
}
