package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/selamtours/tour-booking-api/internal/model"
)

// BookingRepo provides CRUD operations for bookings.  Status mutations
// happen exclusively within transactions driven by the booking service
// so the lifecycle transition and its slot-ledger effect commit or roll
// back together.  All timestamp fields are assumed to be stored in UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying sql.DB for callers that need to begin
// transactions spanning multiple repositories.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const bookingColumns = `id, user_id, tour_id, participants, total_amount_cents, status,
	payment_ref, cancelled_at, cancellation_reason, paid_at, created_at, updated_at`

type bookingScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row bookingScanner) (*model.Booking, error) {
	var b model.Booking
	var status string
	var paymentRef, reason sql.NullString
	var cancelledAt, paidAt sql.NullTime
	err := row.Scan(
		&b.ID, &b.UserID, &b.TourID, &b.Participants, &b.TotalAmountCents, &status,
		&paymentRef, &cancelledAt, &reason, &paidAt, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	b.Status = model.BookingStatus(status)
	if paymentRef.Valid {
		v := paymentRef.String
		b.PaymentRef = &v
	}
	if reason.Valid {
		v := reason.String
		b.CancellationReason = &v
	}
	if cancelledAt.Valid {
		v := cancelledAt.Time
		b.CancelledAt = &v
	}
	if paidAt.Valid {
		v := paidAt.Time
		b.PaidAt = &v
	}
	return &b, nil
}

// CreateTx inserts a new booking within the scope of an existing
// transaction and populates the generated ID and DB defaults on the
// provided record.  The caller must commit or roll back the
// transaction.  Status should be PENDING for bookings created through
// the public flow.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (user_id, tour_id, participants, total_amount_cents, status)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, b.UserID, b.TourID, b.Participants, b.TotalAmountCents, string(b.Status))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	const sel = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	created, err := scanBooking(tx.QueryRowContext(ctx, sel, b.ID))
	if err != nil {
		return err
	}
	*b = *created
	return nil
}

// GetByID retrieves a booking by its ID.  Returns ErrBookingNotFound
// when no matching row exists.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	return scanBooking(r.db.QueryRowContext(ctx, q, id))
}

// GetByIDTx is like GetByID but reads within the provided transaction.
// The row is locked FOR UPDATE so racing status changes (admin override
// vs. payment callback on the same booking) serialize on the booking
// row for the duration of the transaction.
func (r *BookingRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ? FOR UPDATE`
	return scanBooking(tx.QueryRowContext(ctx, q, id))
}

// GetByPaymentRefTx looks a booking up by its gateway transaction
// reference, locking the row FOR UPDATE.  Used by payment confirmation,
// where duplicate gateway callbacks can race on the same booking.
func (r *BookingRepo) GetByPaymentRefTx(ctx context.Context, tx *sql.Tx, ref string) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE payment_ref = ? FOR UPDATE`
	return scanBooking(tx.QueryRowContext(ctx, q, ref))
}

// HasActiveForUserTourTx reports whether the user already holds a
// PENDING or CONFIRMED booking on the tour.  Evaluated inside the
// booking-creation transaction to enforce one active booking per
// user+tour.
func (r *BookingRepo) HasActiveForUserTourTx(ctx context.Context, tx *sql.Tx, userID, tourID uint64) (bool, error) {
	const q = `SELECT EXISTS(
	             SELECT 1 FROM bookings
	             WHERE user_id = ? AND tour_id = ? AND status IN ('PENDING','CONFIRMED'))`
	var exists bool
	err := tx.QueryRowContext(ctx, q, userID, tourID).Scan(&exists)
	return exists, err
}

// UpdateStatusTx writes a new lifecycle status.  Entering CANCELLED
// stamps cancelled_at and the reason; leaving CANCELLED for a live
// state clears both, matching admin reactivation semantics.  Confirmed
// bookings get paid_at stamped exactly once by MarkConfirmedTx instead.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.BookingStatus) error {
	const q = `UPDATE bookings
	           SET status = ?, cancelled_at = NULL, cancellation_reason = NULL
	           WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, string(status), id)
	return err
}

// MarkCancelledTx sets status CANCELLED along with the cancellation
// timestamp and reason within the provided transaction.
func (r *BookingRepo) MarkCancelledTx(ctx context.Context, tx *sql.Tx, id uint64, reason string, at time.Time) error {
	const q = `UPDATE bookings
	           SET status = 'CANCELLED', cancelled_at = ?, cancellation_reason = ?
	           WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, at.UTC(), reason, id)
	return err
}

// MarkConfirmedTx sets status CONFIRMED and stamps paid_at within the
// provided transaction.  paid_at is only written here, so a confirmed
// booking's payment time is never overwritten by a later callback.
func (r *BookingRepo) MarkConfirmedTx(ctx context.Context, tx *sql.Tx, id uint64, paidAt time.Time) error {
	const q = `UPDATE bookings SET status = 'CONFIRMED', paid_at = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, paidAt.UTC(), id)
	return err
}

// SetPaymentRef stores the gateway transaction reference generated when
// payment is initialized.  The column carries a unique index; callers
// surface duplicates as conflicts.
func (r *BookingRepo) SetPaymentRef(ctx context.Context, id uint64, ref string) error {
	const q = `UPDATE bookings SET payment_ref = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, ref, id)
	return err
}

// BookingDetail is a booking row joined with its tour for display.
type BookingDetail struct {
	ID                 uint64  `json:"id"`
	UserID             uint64  `json:"user_id"`
	TourID             uint64  `json:"tour_id"`
	Participants       uint32  `json:"participants"`
	TotalAmountCents   uint64  `json:"total_amount_cents"`
	Status             string  `json:"status"`
	PaymentRef         *string `json:"payment_ref,omitempty"`
	CancelledAt        *string `json:"cancelled_at,omitempty"`
	CancellationReason *string `json:"cancellation_reason,omitempty"`
	PaidAt             *string `json:"paid_at,omitempty"`
	CreatedAt          string  `json:"created_at"`
	TourName           string  `json:"tour_name"`
	TourLocation       string  `json:"tour_location"`
	TourStartDate      string  `json:"tour_start_date"`
	TourEndDate        string  `json:"tour_end_date"`
	UserEmail          *string `json:"user_email,omitempty"`
}

const bookingDetailSelect = `SELECT b.id, b.user_id, b.tour_id, b.participants, b.total_amount_cents, b.status,
	       b.payment_ref,
	       DATE_FORMAT(b.cancelled_at, '%Y-%m-%d %T'),
	       b.cancellation_reason,
	       DATE_FORMAT(b.paid_at, '%Y-%m-%d %T'),
	       DATE_FORMAT(b.created_at, '%Y-%m-%d %T'),
	       t.name, t.location,
	       DATE_FORMAT(t.start_date, '%Y-%m-%d %T'),
	       DATE_FORMAT(t.end_date, '%Y-%m-%d %T')
	FROM bookings b
	JOIN tours t ON t.id = b.tour_id`

func scanBookingDetail(row bookingScanner) (*BookingDetail, error) {
	var d BookingDetail
	var createdAt sql.NullString
	if err := row.Scan(
		&d.ID, &d.UserID, &d.TourID, &d.Participants, &d.TotalAmountCents, &d.Status,
		&d.PaymentRef, &d.CancelledAt, &d.CancellationReason, &d.PaidAt, &createdAt,
		&d.TourName, &d.TourLocation, &d.TourStartDate, &d.TourEndDate,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if createdAt.Valid {
		d.CreatedAt = createdAt.String
	}
	return &d, nil
}

// ListByUser returns all bookings made by a user, newest first, joined
// with the tour details shown on the "my bookings" page.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]BookingDetail, error) {
	q := bookingDetailSelect + ` WHERE b.user_id = ? ORDER BY b.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]BookingDetail, 0)
	for rows.Next() {
		d, err := scanBookingDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// GetDetail returns a single booking joined with its tour.
func (r *BookingRepo) GetDetail(ctx context.Context, id uint64) (*BookingDetail, error) {
	q := bookingDetailSelect + ` WHERE b.id = ?`
	return scanBookingDetail(r.db.QueryRowContext(ctx, q, id))
}

// ListAll returns every booking joined with tour and user e-mail,
// newest first.  Admin-only listing.
func (r *BookingRepo) ListAll(ctx context.Context) ([]BookingDetail, error) {
	const q = `SELECT b.id, b.user_id, b.tour_id, b.participants, b.total_amount_cents, b.status,
	                  b.payment_ref,
	                  DATE_FORMAT(b.cancelled_at, '%Y-%m-%d %T'),
	                  b.cancellation_reason,
	                  DATE_FORMAT(b.paid_at, '%Y-%m-%d %T'),
	                  DATE_FORMAT(b.created_at, '%Y-%m-%d %T'),
	                  t.name, t.location,
	                  DATE_FORMAT(t.start_date, '%Y-%m-%d %T'),
	                  DATE_FORMAT(t.end_date, '%Y-%m-%d %T'),
	                  u.email
	           FROM bookings b
	           JOIN tours t ON t.id = b.tour_id
	           JOIN users u ON u.id = b.user_id
	           ORDER BY b.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]BookingDetail, 0)
	for rows.Next() {
		var d BookingDetail
		var createdAt sql.NullString
		var email sql.NullString
		if err := rows.Scan(
			&d.ID, &d.UserID, &d.TourID, &d.Participants, &d.TotalAmountCents, &d.Status,
			&d.PaymentRef, &d.CancelledAt, &d.CancellationReason, &d.PaidAt, &createdAt,
			&d.TourName, &d.TourLocation, &d.TourStartDate, &d.TourEndDate, &email,
		); err != nil {
			return nil, err
		}
		if createdAt.Valid {
			d.CreatedAt = createdAt.String
		}
		if email.Valid {
			e := email.String
			d.UserEmail = &e
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// HasBookingForTour reports whether the user has ever booked the tour,
// in any status.  Used as the review-authorization check.
func (r *BookingRepo) HasBookingForTour(ctx context.Context, userID, tourID uint64) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM bookings WHERE user_id = ? AND tour_id = ?)`
	var exists bool
	err := r.db.QueryRowContext(ctx, q, userID, tourID).Scan(&exists)
	return exists, err
}
