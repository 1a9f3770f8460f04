package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/selamtours/tour-booking-api/internal/model"
)

// ReviewRepo provides persistence for tour reviews.
type ReviewRepo struct {
	db *sql.DB
}

// NewReviewRepo returns a new ReviewRepo bound to the given database.
func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

// Create inserts a review.  The (user_id, tour_id) pair carries a
// unique index; a duplicate insert is reported as ErrConflict so the
// handler can tell the user they already reviewed this tour.
func (r *ReviewRepo) Create(ctx context.Context, rv *model.Review) error {
	const q = `INSERT INTO reviews (user_id, tour_id, rating, comment) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, rv.UserID, rv.TourID, rv.Rating, rv.Comment)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rv.ID = uint64(id)
	return nil
}

// ReviewDetail is a review joined with the reviewer's display name.
type ReviewDetail struct {
	ID        uint64 `json:"id"`
	Rating    uint8  `json:"rating"`
	Comment   string `json:"comment"`
	CreatedAt string `json:"created_at"`
	UserName  string `json:"user_name"`
}

// ListByTour returns all reviews for a tour, newest first.  The
// reviewer's name falls back to their e-mail when unset.
func (r *ReviewRepo) ListByTour(ctx context.Context, tourID uint64) ([]ReviewDetail, error) {
	const q = `SELECT rv.id, rv.rating, rv.comment,
	                  DATE_FORMAT(rv.created_at, '%Y-%m-%d %T'),
	                  COALESCE(u.name, u.email)
	           FROM reviews rv
	           JOIN users u ON u.id = rv.user_id
	           WHERE rv.tour_id = ?
	           ORDER BY rv.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, tourID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ReviewDetail, 0)
	for rows.Next() {
		var d ReviewDetail
		if err := rows.Scan(&d.ID, &d.Rating, &d.Comment, &d.CreatedAt, &d.UserName); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
