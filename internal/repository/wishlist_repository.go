package repository

import (
	"context"
	"database/sql"
	"strings"
)

// WishlistRepo persists the tours a user has saved for later.
type WishlistRepo struct {
	db *sql.DB
}

// NewWishlistRepo returns a new WishlistRepo bound to the given database.
func NewWishlistRepo(db *sql.DB) *WishlistRepo { return &WishlistRepo{db: db} }

// Add inserts a wishlist entry.  The (user_id, tour_id) pair is unique;
// duplicates are reported as ErrConflict.  A missing tour is reported
// as ErrTourNotFound via the foreign-key check performed first.
func (r *WishlistRepo) Add(ctx context.Context, userID, tourID uint64) error {
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM tours WHERE id = ?)`, tourID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrTourNotFound
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO wishlist (user_id, tour_id) VALUES (?, ?)`, userID, tourID)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrConflict
	}
	return err
}

// Remove deletes a wishlist entry.  Removing a tour that is not on the
// list is reported as ErrTourNotFound.
func (r *WishlistRepo) Remove(ctx context.Context, userID, tourID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM wishlist WHERE user_id = ? AND tour_id = ?`, userID, tourID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTourNotFound
	}
	return nil
}

// WishlistEntry is a wishlist row joined with its tour summary.
type WishlistEntry struct {
	TourID         uint64  `json:"tour_id"`
	Name           string  `json:"name"`
	Location       string  `json:"location"`
	PriceCents     uint64  `json:"price_cents"`
	ImageURL       *string `json:"image_url,omitempty"`
	StartDate      string  `json:"start_date"`
	AvailableSlots uint32  `json:"available_slots"`
	AddedAt        string  `json:"added_at"`
}

// ListByUser returns the user's wishlist, most recently added first.
func (r *WishlistRepo) ListByUser(ctx context.Context, userID uint64) ([]WishlistEntry, error) {
	const q = `SELECT t.id, t.name, t.location, t.price_cents, t.image_url,
	                  DATE_FORMAT(t.start_date, '%Y-%m-%d %T'),
	                  GREATEST(t.max_participants - t.booked_slots, 0),
	                  DATE_FORMAT(w.created_at, '%Y-%m-%d %T')
	           FROM wishlist w
	           JOIN tours t ON t.id = w.tour_id
	           WHERE w.user_id = ?
	           ORDER BY w.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]WishlistEntry, 0)
	for rows.Next() {
		var e WishlistEntry
		if err := rows.Scan(&e.TourID, &e.Name, &e.Location, &e.PriceCents, &e.ImageURL,
			&e.StartDate, &e.AvailableSlots, &e.AddedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
