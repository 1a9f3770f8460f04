package service

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/selamtours/tour-booking-api/internal/model"
	"github.com/selamtours/tour-booking-api/internal/payment"
	"github.com/selamtours/tour-booking-api/internal/queue"
	"github.com/selamtours/tour-booking-api/internal/repository"
)

// TourStore is the slice of TourRepo the orchestrator depends on.
type TourStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Tour, error)
	GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Tour, error)
	TryReserveSlotsTx(ctx context.Context, tx *sql.Tx, tourID uint64, count uint32) error
	ReleaseSlotsTx(ctx context.Context, tx *sql.Tx, tourID uint64, count uint32) error
}

// BookingStore is the slice of BookingRepo the orchestrator depends on.
type BookingStore interface {
	CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error)
	GetByPaymentRefTx(ctx context.Context, tx *sql.Tx, ref string) (*model.Booking, error)
	HasActiveForUserTourTx(ctx context.Context, tx *sql.Tx, userID, tourID uint64) (bool, error)
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.BookingStatus) error
	MarkCancelledTx(ctx context.Context, tx *sql.Tx, id uint64, reason string, at time.Time) error
	MarkConfirmedTx(ctx context.Context, tx *sql.Tx, id uint64, paidAt time.Time) error
	SetPaymentRef(ctx context.Context, id uint64, ref string) error
}

// UserStore is the slice of UserRepo the orchestrator depends on.
type UserStore interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// BookingService drives the booking lifecycle.  Every status change and
// its slot-ledger effect run in one transaction: the booking row is
// locked FOR UPDATE, the transition is validated against the lifecycle,
// and slots are reserved or released according to whether the booking
// enters or leaves the set of slot-holding states.  Notifications are
// published after commit and are best-effort.
type BookingService struct {
	db        *sql.DB
	tours     TourStore
	bookings  BookingStore
	users     UserStore
	gateway   payment.Gateway
	publisher EventPublisher
	currency  string
}

// NewBookingService wires the orchestrator.  The payment gateway and
// the event publisher are injected so tests can substitute fakes and so
// no package-level client state exists.
func NewBookingService(db *sql.DB, tours TourStore, bookings BookingStore, users UserStore, gateway payment.Gateway, publisher EventPublisher, currency string) *BookingService {
	if currency == "" {
		currency = "ETB"
	}
	return &BookingService{
		db:        db,
		tours:     tours,
		bookings:  bookings,
		users:     users,
		gateway:   gateway,
		publisher: publisher,
		currency:  currency,
	}
}

// CreateBooking places a PENDING booking for the user on the tour,
// atomically claiming participants slots.  The duplicate-booking check,
// the slot reservation and the booking insert share one transaction, so
// a failed reservation leaves no booking row and a failed insert leaves
// no claimed slots.  The total amount is computed from the tour's price
// at this moment and never recomputed.
func (s *BookingService) CreateBooking(ctx context.Context, userID, tourID uint64, participants uint32) (*model.Booking, error) {
	if participants == 0 {
		return nil, ErrInvalidParticipants
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	tour, err := s.tours.GetByIDTx(ctx, tx, tourID)
	if err != nil {
		return nil, err
	}
	if tour.HasStarted(time.Now().UTC()) {
		return nil, ErrTourStarted
	}

	exists, err := s.bookings.HasActiveForUserTourTx(ctx, tx, userID, tourID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateBooking
	}

	if err := s.tours.TryReserveSlotsTx(ctx, tx, tourID, participants); err != nil {
		return nil, err
	}

	booking := &model.Booking{
		UserID:           userID,
		TourID:           tourID,
		Participants:     participants,
		TotalAmountCents: uint64(participants) * tour.PriceCents,
		Status:           model.StatusPending,
	}
	if err := s.bookings.CreateTx(ctx, tx, booking); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	s.publishCreated(ctx, booking, tour)
	return booking, nil
}

// CancelBooking cancels the user's own booking.  PENDING and CONFIRMED
// bookings release their slots in the same transaction; a FAILED booking
// holds no slots and only changes status.  Cancelling twice reports
// ErrAlreadyCancelled without touching the ledger, and COMPLETED
// bookings cannot be cancelled at all.
func (s *BookingService) CancelBooking(ctx context.Context, userID, bookingID uint64, reason string) (*model.Booking, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := s.bookings.GetByIDTx(ctx, tx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, repository.ErrForbidden
	}
	if b.Status == model.StatusCancelled {
		return nil, ErrAlreadyCancelled
	}
	if !b.Status.CanTransitionTo(model.StatusCancelled) {
		return nil, ErrInvalidTransition
	}

	tour, err := s.tours.GetByIDTx(ctx, tx, b.TourID)
	if err != nil {
		return nil, err
	}
	if tour.HasStarted(time.Now().UTC()) {
		return nil, ErrTourStarted
	}

	if b.Status.HoldsSlots() {
		if err := s.tours.ReleaseSlotsTx(ctx, tx, b.TourID, b.Participants); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	if reason == "" {
		reason = "cancelled by user"
	}
	if err := s.bookings.MarkCancelledTx(ctx, tx, b.ID, reason, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	b.Status = model.StatusCancelled
	b.CancelledAt = &now
	b.CancellationReason = &reason
	s.publishCancelled(ctx, b, tour)
	return b, nil
}

// SetStatus applies an admin-requested status change.  The transition
// is validated against the lifecycle, and the slot-ledger effect is
// derived from claim membership: moving into a slot-holding state from
// CANCELLED or FAILED re-reserves capacity (and fails with the current
// shortfall when the tour has filled up in the meantime), while moving
// out of a slot-holding state releases the claim.  Transitions within
// either set leave the ledger untouched.
func (s *BookingService) SetStatus(ctx context.Context, bookingID uint64, target model.BookingStatus, reason string) (*model.Booking, error) {
	if !target.IsValid() {
		return nil, ErrInvalidStatus
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := s.bookings.GetByIDTx(ctx, tx, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.Status.CanTransitionTo(target) {
		return nil, ErrInvalidTransition
	}

	wasHolding := b.Status.HoldsSlots()
	willHold := target.HoldsSlots()
	switch {
	case !wasHolding && willHold:
		if err := s.tours.TryReserveSlotsTx(ctx, tx, b.TourID, b.Participants); err != nil {
			return nil, err
		}
	case wasHolding && !willHold:
		if err := s.tours.ReleaseSlotsTx(ctx, tx, b.TourID, b.Participants); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	if target == model.StatusCancelled {
		if reason == "" {
			reason = "cancelled by admin"
		}
		if err := s.bookings.MarkCancelledTx(ctx, tx, b.ID, reason, now); err != nil {
			return nil, err
		}
	} else {
		if err := s.bookings.UpdateStatusTx(ctx, tx, b.ID, target); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	prev := b.Status
	b.Status = target
	if target == model.StatusCancelled {
		b.CancelledAt = &now
		b.CancellationReason = &reason
	} else if prev == model.StatusCancelled {
		b.CancelledAt = nil
		b.CancellationReason = nil
	}
	if target == model.StatusCancelled {
		if tour, terr := s.tours.GetByID(ctx, b.TourID); terr == nil {
			s.publishCancelled(ctx, b, tour)
		}
	}
	return b, nil
}

// InitializePayment opens a gateway checkout session for a PENDING
// booking owned by the user.  A fresh transaction reference is stored on
// the booking before the gateway is called, so a confirmation callback
// for that reference always finds its booking.  Re-initializing replaces
// the reference; the previous checkout simply becomes stale.
func (s *BookingService) InitializePayment(ctx context.Context, userID, bookingID uint64, returnURL string) (*payment.Checkout, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, repository.ErrForbidden
	}
	if b.Status == model.StatusConfirmed {
		return nil, ErrAlreadyPaid
	}
	if b.Status != model.StatusPending {
		return nil, ErrNotPayable
	}

	user, err := s.users.GetByID(ctx, b.UserID)
	if err != nil {
		return nil, err
	}

	txRef := fmt.Sprintf("TXN-%d-%s", b.ID, uuid.NewString())
	if err := s.bookings.SetPaymentRef(ctx, b.ID, txRef); err != nil {
		return nil, err
	}

	first, last := splitName(user)
	checkout, err := s.gateway.Initialize(ctx, payment.InitializeRequest{
		TxRef:       txRef,
		AmountCents: b.TotalAmountCents,
		Currency:    s.currency,
		Email:       user.Email,
		FirstName:   first,
		LastName:    last,
		ReturnURL:   returnURL,
	})
	if err != nil {
		return nil, err
	}
	return checkout, nil
}

// ConfirmPayment verifies a transaction reference with the gateway and
// settles the booking accordingly.  A successful payment confirms a
// PENDING booking and stamps paid_at; a booking that is already
// CONFIRMED is returned unchanged so duplicate callbacks are harmless
// and paid_at keeps its original value.  A definitive failed status
// moves the booking to FAILED and releases its slots in the same
// transaction.  A transient gateway error or a still-pending status
// leaves the booking untouched.
func (s *BookingService) ConfirmPayment(ctx context.Context, txRef string) (*model.Booking, error) {
	if txRef == "" {
		return nil, ErrNoPaymentRef
	}

	result, err := s.gateway.Verify(ctx, txRef)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := s.bookings.GetByPaymentRefTx(ctx, tx, txRef)
	if err != nil {
		return nil, err
	}
	if b.Status == model.StatusConfirmed {
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		committed = true
		return b, nil
	}
	if b.Status != model.StatusPending {
		return nil, ErrNotPayable
	}

	switch result.Status {
	case payment.StatusSuccess:
		if result.AmountCents != b.TotalAmountCents {
			log.Printf("payment: amount mismatch on %s: gateway=%d booking=%d", txRef, result.AmountCents, b.TotalAmountCents)
		}
		now := time.Now().UTC()
		if err := s.bookings.MarkConfirmedTx(ctx, tx, b.ID, now); err != nil {
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		committed = true
		b.Status = model.StatusConfirmed
		b.PaidAt = &now
		s.publishPaid(ctx, b, txRef)
		return b, nil

	case payment.StatusFailed:
		// A failed payment must not strand capacity: the slots claimed
		// at creation go back to the tour along with the status change.
		if err := s.tours.ReleaseSlotsTx(ctx, tx, b.TourID, b.Participants); err != nil {
			return nil, err
		}
		if err := s.bookings.UpdateStatusTx(ctx, tx, b.ID, model.StatusFailed); err != nil {
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		committed = true
		b.Status = model.StatusFailed
		return b, nil

	default:
		return nil, ErrPaymentPending
	}
}

// splitName derives first and last name fields for the gateway from the
// user's optional display name, falling back to the e-mail local part.
func splitName(u model.User) (string, string) {
	name := ""
	if u.Name != nil {
		name = strings.TrimSpace(*u.Name)
	}
	if name == "" {
		if i := strings.IndexByte(u.Email, '@'); i > 0 {
			return u.Email[:i], ""
		}
		return u.Email, ""
	}
	parts := strings.SplitN(name, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

func (s *BookingService) publishCreated(ctx context.Context, b *model.Booking, tour *model.Tour) {
	if s.publisher == nil {
		return
	}
	email := s.lookupEmail(ctx, b.UserID)
	_ = s.publisher.Publish(ctx, queue.BookingCreatedQueue, queue.BookingCreatedEvent{
		BookingID:        b.ID,
		UserID:           b.UserID,
		UserEmail:        email,
		TourID:           tour.ID,
		TourName:         tour.Name,
		Location:         tour.Location,
		StartDate:        tour.StartDate.UTC().Format(time.RFC3339),
		Participants:     b.Participants,
		TotalAmountCents: b.TotalAmountCents,
		CreatedAt:        b.CreatedAt.UTC().Format(time.RFC3339),
	})
}

func (s *BookingService) publishCancelled(ctx context.Context, b *model.Booking, tour *model.Tour) {
	if s.publisher == nil {
		return
	}
	email := s.lookupEmail(ctx, b.UserID)
	cancelledAt := time.Now().UTC()
	if b.CancelledAt != nil {
		cancelledAt = b.CancelledAt.UTC()
	}
	_ = s.publisher.Publish(ctx, queue.BookingCancelledQueue, queue.BookingCancelledEvent{
		BookingID:    b.ID,
		UserID:       b.UserID,
		UserEmail:    email,
		TourID:       tour.ID,
		TourName:     tour.Name,
		Participants: b.Participants,
		Reason:       b.CancellationReason,
		CancelledAt:  cancelledAt.Format(time.RFC3339),
	})
}

func (s *BookingService) publishPaid(ctx context.Context, b *model.Booking, txRef string) {
	if s.publisher == nil {
		return
	}
	email := s.lookupEmail(ctx, b.UserID)
	tourName := ""
	if tour, err := s.tours.GetByID(ctx, b.TourID); err == nil {
		tourName = tour.Name
	}
	paidAt := time.Now().UTC()
	if b.PaidAt != nil {
		paidAt = b.PaidAt.UTC()
	}
	_ = s.publisher.Publish(ctx, queue.PaymentSucceededQueue, queue.PaymentSucceededEvent{
		BookingID:   b.ID,
		UserID:      b.UserID,
		UserEmail:   email,
		TourID:      b.TourID,
		TourName:    tourName,
		PaymentRef:  txRef,
		AmountCents: b.TotalAmountCents,
		Currency:    s.currency,
		PaidAt:      paidAt.Format(time.RFC3339),
	})
}

func (s *BookingService) lookupEmail(ctx context.Context, userID uint64) string {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return ""
	}
	return u.Email
}
