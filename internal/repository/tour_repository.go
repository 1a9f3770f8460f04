package repository

import (
	"context"
	"database/sql"

	"github.com/selamtours/tour-booking-api/internal/model"
)

// TourRepo provides persistence for tours and implements the slot
// ledger: the pair of atomic operations that keep booked_slots
// consistent with the tour's capacity.  All timestamp fields are
// assumed to be stored in UTC.
type TourRepo struct {
	db *sql.DB
}

// NewTourRepo returns a new TourRepo bound to the given database.
func NewTourRepo(db *sql.DB) *TourRepo { return &TourRepo{db: db} }

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories.  Use this method to
// obtain a *sql.DB when you need fine-grained transaction control.
func (r *TourRepo) DB() *sql.DB { return r.db }

const tourColumns = `id, provider_id, name, location, description, price_cents,
	max_participants, booked_slots, start_date, end_date, image_url, created_at, updated_at`

func scanTour(row *sql.Row) (*model.Tour, error) {
	var t model.Tour
	var imageURL sql.NullString
	err := row.Scan(
		&t.ID, &t.ProviderID, &t.Name, &t.Location, &t.Description, &t.PriceCents,
		&t.MaxParticipants, &t.BookedSlots, &t.StartDate, &t.EndDate, &imageURL,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTourNotFound
		}
		return nil, err
	}
	if imageURL.Valid {
		u := imageURL.String
		t.ImageURL = &u
	}
	return &t, nil
}

// GetByID retrieves a tour by its ID.  It returns ErrTourNotFound if
// there is no matching row.
func (r *TourRepo) GetByID(ctx context.Context, id uint64) (*model.Tour, error) {
	const q = `SELECT ` + tourColumns + ` FROM tours WHERE id = ?`
	return scanTour(r.db.QueryRowContext(ctx, q, id))
}

// GetByIDTx is like GetByID but reads within the provided transaction so
// the tour row participates in the caller's isolation level.
func (r *TourRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Tour, error) {
	const q = `SELECT ` + tourColumns + ` FROM tours WHERE id = ?`
	return scanTour(tx.QueryRowContext(ctx, q, id))
}

// TryReserveSlotsTx atomically claims count slots on a tour within the
// provided transaction.  The check and the increment are a single
// conditional UPDATE, so two concurrent near-capacity reservations
// serialize on the tour row and cannot both succeed past capacity:
//
//	UPDATE tours SET booked_slots = booked_slots + N
//	WHERE id = ? AND booked_slots + N <= max_participants
//
// Zero rows affected means the tour is missing or full.  In that case
// the current availability is read back (still inside the transaction)
// and an InsufficientCapacityError carrying the remaining slot count is
// returned; ErrTourNotFound is returned when the tour does not exist.
// No state is mutated on failure.
func (r *TourRepo) TryReserveSlotsTx(ctx context.Context, tx *sql.Tx, tourID uint64, count uint32) error {
	const q = `UPDATE tours
	           SET booked_slots = booked_slots + ?
	           WHERE id = ? AND booked_slots + ? <= max_participants`
	res, err := tx.ExecContext(ctx, q, count, tourID, count)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}
	const sel = `SELECT max_participants - booked_slots FROM tours WHERE id = ?`
	var remaining uint32
	if err := tx.QueryRowContext(ctx, sel, tourID).Scan(&remaining); err != nil {
		if err == sql.ErrNoRows {
			return ErrTourNotFound
		}
		return err
	}
	return &InsufficientCapacityError{Remaining: remaining}
}

// ReleaseSlotsTx returns count previously claimed slots to a tour within
// the provided transaction.  The decrement is guarded so booked_slots
// can never go below zero; zero rows affected signals either a missing
// tour or an underflow, both of which indicate a ledger bug upstream
// and surface as ErrSlotUnderflow rather than being clamped away.
func (r *TourRepo) ReleaseSlotsTx(ctx context.Context, tx *sql.Tx, tourID uint64, count uint32) error {
	const q = `UPDATE tours
	           SET booked_slots = booked_slots - ?
	           WHERE id = ? AND booked_slots >= ?`
	res, err := tx.ExecContext(ctx, q, count, tourID, count)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSlotUnderflow
	}
	return nil
}

// Create inserts a new tour and populates the generated ID and DB
// default fields on the provided model.
func (r *TourRepo) Create(ctx context.Context, t *model.Tour) error {
	const q = `INSERT INTO tours
	           (provider_id, name, location, description, price_cents, max_participants, start_date, end_date, image_url)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		t.ProviderID, t.Name, t.Location, t.Description, t.PriceCents,
		t.MaxParticipants, t.StartDate.UTC(), t.EndDate.UTC(), t.ImageURL,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	const sel = `SELECT ` + tourColumns + ` FROM tours WHERE id = ?`
	created, err := scanTour(r.db.QueryRowContext(ctx, sel, t.ID))
	if err != nil {
		return err
	}
	*t = *created
	return nil
}

// Update rewrites the mutable fields of a tour.  Capacity may be
// changed by an admin but never below the currently booked slots; the
// guard lives in the WHERE clause so the check and the write are one
// statement.  Zero rows affected with an existing tour means the new
// capacity would cut below active claims and is reported as ErrConflict.
func (r *TourRepo) Update(ctx context.Context, t *model.Tour) error {
	const q = `UPDATE tours
	           SET name = ?, location = ?, description = ?, price_cents = ?,
	               max_participants = ?, start_date = ?, end_date = ?, image_url = ?
	           WHERE id = ? AND booked_slots <= ?`
	res, err := r.db.ExecContext(ctx, q,
		t.Name, t.Location, t.Description, t.PriceCents,
		t.MaxParticipants, t.StartDate.UTC(), t.EndDate.UTC(), t.ImageURL,
		t.ID, t.MaxParticipants,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Distinguish a missing tour from a capacity conflict.
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM tours WHERE id = ?)`, t.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrTourNotFound
		}
		// Either nothing changed or max_participants < booked_slots.
		var booked uint32
		if err := r.db.QueryRowContext(ctx, `SELECT booked_slots FROM tours WHERE id = ?`, t.ID).Scan(&booked); err != nil {
			return err
		}
		if booked > t.MaxParticipants {
			return ErrConflict
		}
	}
	return nil
}

// Delete removes a tour.  Deletion is rejected with ErrConflict while
// any booking still references the tour, regardless of its status, so
// booking history is never orphaned.
func (r *TourRepo) Delete(ctx context.Context, id uint64) error {
	var count int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE tour_id = ?`, id).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM tours WHERE id = ?`, id)
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

// TourListItem is a tour row enriched with the review aggregate and the
// number of free slots, as shown on public listings.
type TourListItem struct {
	ID              uint64   `json:"id"`
	ProviderID      uint64   `json:"provider_id"`
	Name            string   `json:"name"`
	Location        string   `json:"location"`
	Description     string   `json:"description"`
	PriceCents      uint64   `json:"price_cents"`
	MaxParticipants uint32   `json:"max_participants"`
	BookedSlots     uint32   `json:"booked_slots"`
	AvailableSlots  uint32   `json:"available_slots"`
	StartDate       string   `json:"start_date"`
	EndDate         string   `json:"end_date"`
	ImageURL        *string  `json:"image_url,omitempty"`
	ReviewCount     uint32   `json:"review_count"`
	AvgRating       float64  `json:"avg_rating"`
}

// ListWithStats returns all tours with their review aggregates.  Used
// by the public catalogue endpoint; ordering is newest first.
func (r *TourRepo) ListWithStats(ctx context.Context) ([]TourListItem, error) {
	const q = `SELECT t.id, t.provider_id, t.name, t.location, t.description, t.price_cents,
	                  t.max_participants, t.booked_slots,
	                  DATE_FORMAT(t.start_date, '%Y-%m-%d %T'), DATE_FORMAT(t.end_date, '%Y-%m-%d %T'),
	                  t.image_url,
	                  COUNT(rv.id), COALESCE(AVG(rv.rating), 0)
	           FROM tours t
	           LEFT JOIN reviews rv ON rv.tour_id = t.id
	           GROUP BY t.id
	           ORDER BY t.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]TourListItem, 0)
	for rows.Next() {
		var it TourListItem
		var imageURL sql.NullString
		if err := rows.Scan(
			&it.ID, &it.ProviderID, &it.Name, &it.Location, &it.Description, &it.PriceCents,
			&it.MaxParticipants, &it.BookedSlots, &it.StartDate, &it.EndDate, &imageURL,
			&it.ReviewCount, &it.AvgRating,
		); err != nil {
			return nil, err
		}
		if imageURL.Valid {
			u := imageURL.String
			it.ImageURL = &u
		}
		if it.MaxParticipants > it.BookedSlots {
			it.AvailableSlots = it.MaxParticipants - it.BookedSlots
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// CountActiveBookings returns how many PENDING or CONFIRMED bookings
// currently reference the tour.  Exposed for admin dashboards.
func (r *TourRepo) CountActiveBookings(ctx context.Context, tourID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE tour_id = ? AND status IN ('PENDING','CONFIRMED')`,
		tourID).Scan(&n)
	return n, err
}
