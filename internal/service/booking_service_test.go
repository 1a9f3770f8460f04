package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selamtours/tour-booking-api/internal/model"
	"github.com/selamtours/tour-booking-api/internal/payment"
	"github.com/selamtours/tour-booking-api/internal/repository"
)

// ----- fakes -----
//
// The fakes implement the store interfaces over in-memory maps and
// ignore the *sql.Tx handle: transaction demarcation itself is covered
// by the sqlmock Begin/Commit/Rollback expectations, while the fakes
// verify what the orchestrator asked the stores to do.

type fakeTours struct {
	mu    sync.Mutex
	tours map[uint64]*model.Tour
}

func (f *fakeTours) get(id uint64) (*model.Tour, error) {
	t, ok := f.tours[id]
	if !ok {
		return nil, repository.ErrTourNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTours) GetByID(ctx context.Context, id uint64) (*model.Tour, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.get(id)
}

func (f *fakeTours) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Tour, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.get(id)
}

func (f *fakeTours) TryReserveSlotsTx(ctx context.Context, tx *sql.Tx, tourID uint64, count uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tours[tourID]
	if !ok {
		return repository.ErrTourNotFound
	}
	if t.BookedSlots+count > t.MaxParticipants {
		return &repository.InsufficientCapacityError{Remaining: t.MaxParticipants - t.BookedSlots}
	}
	t.BookedSlots += count
	return nil
}

func (f *fakeTours) ReleaseSlotsTx(ctx context.Context, tx *sql.Tx, tourID uint64, count uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tours[tourID]
	if !ok || t.BookedSlots < count {
		return repository.ErrSlotUnderflow
	}
	t.BookedSlots -= count
	return nil
}

func (f *fakeTours) booked(id uint64) uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tours[id].BookedSlots
}

type fakeBookings struct {
	mu    sync.Mutex
	seq   uint64
	items map[uint64]*model.Booking
}

func newFakeBookings() *fakeBookings {
	return &fakeBookings{items: make(map[uint64]*model.Booking)}
}

func (f *fakeBookings) put(b model.Booking) { f.items[b.ID] = &b }

func (f *fakeBookings) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	b.ID = f.seq
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt
	f.put(*b)
	return nil
}

func (f *fakeBookings) get(id uint64) (*model.Booking, error) {
	b, ok := f.items[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookings) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.get(id)
}

func (f *fakeBookings) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.get(id)
}

func (f *fakeBookings) GetByPaymentRefTx(ctx context.Context, tx *sql.Tx, ref string) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.items {
		if b.PaymentRef != nil && *b.PaymentRef == ref {
			cp := *b
			return &cp, nil
		}
	}
	return nil, repository.ErrBookingNotFound
}

func (f *fakeBookings) HasActiveForUserTourTx(ctx context.Context, tx *sql.Tx, userID, tourID uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.items {
		if b.UserID == userID && b.TourID == tourID &&
			(b.Status == model.StatusPending || b.Status == model.StatusConfirmed) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBookings) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.BookingStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.items[id]
	if !ok {
		return repository.ErrBookingNotFound
	}
	b.Status = status
	b.CancelledAt = nil
	b.CancellationReason = nil
	return nil
}

func (f *fakeBookings) MarkCancelledTx(ctx context.Context, tx *sql.Tx, id uint64, reason string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.items[id]
	if !ok {
		return repository.ErrBookingNotFound
	}
	b.Status = model.StatusCancelled
	b.CancelledAt = &at
	b.CancellationReason = &reason
	return nil
}

func (f *fakeBookings) MarkConfirmedTx(ctx context.Context, tx *sql.Tx, id uint64, paidAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.items[id]
	if !ok {
		return repository.ErrBookingNotFound
	}
	b.Status = model.StatusConfirmed
	b.PaidAt = &paidAt
	return nil
}

func (f *fakeBookings) SetPaymentRef(ctx context.Context, id uint64, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.items[id]
	if !ok {
		return repository.ErrBookingNotFound
	}
	b.PaymentRef = &ref
	return nil
}

func (f *fakeBookings) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

func (f *fakeBookings) mustGet(t *testing.T, id uint64) model.Booking {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.items[id]
	require.True(t, ok, "booking %d not found", id)
	return *b
}

type fakeUsers struct{ users map[uint64]model.User }

func (f *fakeUsers) GetByID(ctx context.Context, id uint64) (model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

type fakeGateway struct {
	initFn   func(ctx context.Context, req payment.InitializeRequest) (*payment.Checkout, error)
	verifyFn func(ctx context.Context, txRef string) (*payment.VerifyResult, error)
}

func (g *fakeGateway) Initialize(ctx context.Context, req payment.InitializeRequest) (*payment.Checkout, error) {
	return g.initFn(ctx, req)
}

func (g *fakeGateway) Verify(ctx context.Context, txRef string) (*payment.VerifyResult, error) {
	return g.verifyFn(ctx, txRef)
}

type fakePublisher struct {
	mu     sync.Mutex
	queues []string
}

func (p *fakePublisher) Publish(ctx context.Context, queueName string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queues = append(p.queues, queueName)
	return nil
}

func (p *fakePublisher) published(queueName string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, q := range p.queues {
		if q == queueName {
			return true
		}
	}
	return false
}

// ----- fixture -----

type fixture struct {
	svc      *BookingService
	tours    *fakeTours
	bookings *fakeBookings
	gateway  *fakeGateway
	pub      *fakePublisher
	mock     sqlmock.Sqlmock
	db       *sql.DB
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	future := time.Now().UTC().Add(48 * time.Hour)
	tours := &fakeTours{tours: map[uint64]*model.Tour{
		1: {
			ID: 1, ProviderID: 100, Name: "Simien Mountains Trek", Location: "Gondar",
			PriceCents: 500000, MaxParticipants: 5, BookedSlots: 0,
			StartDate: future, EndDate: future.Add(72 * time.Hour),
		},
	}}
	bookings := newFakeBookings()
	users := &fakeUsers{users: map[uint64]model.User{
		10: {ID: 10, Email: "alem@example.com"},
	}}
	gateway := &fakeGateway{}
	pub := &fakePublisher{}

	svc := NewBookingService(db, tours, bookings, users, gateway, pub, "ETB")
	return &fixture{svc: svc, tours: tours, bookings: bookings, gateway: gateway, pub: pub, mock: mock, db: db}
}

// ----- create -----

func TestCreateBookingSuccess(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	b, err := f.svc.CreateBooking(context.Background(), 10, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, b.Status)
	assert.Equal(t, uint64(1500000), b.TotalAmountCents)
	assert.Equal(t, uint32(3), f.tours.booked(1))
	assert.True(t, f.pub.published("booking.created"))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateBookingZeroParticipants(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateBooking(context.Background(), 10, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidParticipants)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateBookingInsufficientCapacity(t *testing.T) {
	f := newFixture(t)
	f.tours.tours[1].BookedSlots = 3
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.CreateBooking(context.Background(), 10, 1, 4)
	var capErr *repository.InsufficientCapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, uint32(2), capErr.Remaining)
	assert.Equal(t, uint32(3), f.tours.booked(1))
	assert.Equal(t, 0, f.bookings.count())
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateBookingDuplicate(t *testing.T) {
	f := newFixture(t)
	f.bookings.put(model.Booking{ID: 50, UserID: 10, TourID: 1, Participants: 1, Status: model.StatusPending})
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.CreateBooking(context.Background(), 10, 1, 1)
	assert.ErrorIs(t, err, ErrDuplicateBooking)
	assert.Equal(t, uint32(0), f.tours.booked(1))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateBookingTourStarted(t *testing.T) {
	f := newFixture(t)
	f.tours.tours[1].StartDate = time.Now().UTC().Add(-time.Hour)
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.CreateBooking(context.Background(), 10, 1, 1)
	assert.ErrorIs(t, err, ErrTourStarted)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestConcurrentBookingNeverOversells(t *testing.T) {
	f := newFixture(t)
	const attempts = 20
	const capacity = 5 // fixture tour capacity

	f.mock.MatchExpectationsInOrder(false)
	for i := 0; i < attempts; i++ {
		f.mock.ExpectBegin()
	}
	for i := 0; i < capacity; i++ {
		f.mock.ExpectCommit()
	}
	for i := 0; i < attempts-capacity; i++ {
		f.mock.ExpectRollback()
	}

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.CreateBooking(context.Background(), uint64(1000+i), 1, 1)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var capErr *repository.InsufficientCapacityError
		assert.ErrorAs(t, err, &capErr)
	}
	assert.Equal(t, capacity, succeeded)
	assert.Equal(t, uint32(capacity), f.tours.booked(1))
	assert.Equal(t, capacity, f.bookings.count())
}

// ----- cancel -----

func TestCancelBookingReleasesSlots(t *testing.T) {
	f := newFixture(t)
	f.tours.tours[1].BookedSlots = 3
	f.bookings.put(model.Booking{ID: 1, UserID: 10, TourID: 1, Participants: 3, Status: model.StatusPending})

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	b, err := f.svc.CancelBooking(context.Background(), 10, 1, "changed plans")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, b.Status)
	assert.NotNil(t, b.CancelledAt)
	assert.Equal(t, uint32(0), f.tours.booked(1))
	assert.True(t, f.pub.published("booking.cancelled"))

	// Cancelling again must not release anything twice.
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	_, err = f.svc.CancelBooking(context.Background(), 10, 1, "")
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
	assert.Equal(t, uint32(0), f.tours.booked(1))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCancelBookingForbidden(t *testing.T) {
	f := newFixture(t)
	f.bookings.put(model.Booking{ID: 1, UserID: 10, TourID: 1, Participants: 1, Status: model.StatusPending})
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.CancelBooking(context.Background(), 99, 1, "")
	assert.ErrorIs(t, err, repository.ErrForbidden)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCancelCompletedRejected(t *testing.T) {
	f := newFixture(t)
	f.tours.tours[1].BookedSlots = 2
	f.bookings.put(model.Booking{ID: 1, UserID: 10, TourID: 1, Participants: 2, Status: model.StatusCompleted})
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.CancelBooking(context.Background(), 10, 1, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, uint32(2), f.tours.booked(1))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

// ----- admin status override -----

func TestSetStatusReactivationShortfall(t *testing.T) {
	f := newFixture(t)
	// Two other slots taken since this booking was cancelled; its four
	// participants no longer fit.
	f.tours.tours[1].BookedSlots = 2
	f.bookings.put(model.Booking{ID: 1, UserID: 10, TourID: 1, Participants: 4, Status: model.StatusCancelled})
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.SetStatus(context.Background(), 1, model.StatusConfirmed, "")
	var capErr *repository.InsufficientCapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, uint32(3), capErr.Remaining)
	assert.Equal(t, uint32(2), f.tours.booked(1))
	assert.Equal(t, model.StatusCancelled, f.bookings.mustGet(t, 1).Status)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestSetStatusReactivationReservesSlots(t *testing.T) {
	f := newFixture(t)
	f.bookings.put(model.Booking{ID: 1, UserID: 10, TourID: 1, Participants: 2, Status: model.StatusFailed})
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	b, err := f.svc.SetStatus(context.Background(), 1, model.StatusPending, "")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, b.Status)
	assert.Equal(t, uint32(2), f.tours.booked(1))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestSetStatusPendingToFailedReleases(t *testing.T) {
	f := newFixture(t)
	f.tours.tours[1].BookedSlots = 2
	f.bookings.put(model.Booking{ID: 1, UserID: 10, TourID: 1, Participants: 2, Status: model.StatusPending})
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	b, err := f.svc.SetStatus(context.Background(), 1, model.StatusFailed, "")
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, b.Status)
	assert.Equal(t, uint32(0), f.tours.booked(1))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestSetStatusConfirmedToCompletedKeepsLedger(t *testing.T) {
	f := newFixture(t)
	f.tours.tours[1].BookedSlots = 2
	f.bookings.put(model.Booking{ID: 1, UserID: 10, TourID: 1, Participants: 2, Status: model.StatusConfirmed})
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	b, err := f.svc.SetStatus(context.Background(), 1, model.StatusCompleted, "")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, b.Status)
	assert.Equal(t, uint32(2), f.tours.booked(1))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestSetStatusCompletedIsFrozen(t *testing.T) {
	f := newFixture(t)
	f.bookings.put(model.Booking{ID: 1, UserID: 10, TourID: 1, Participants: 1, Status: model.StatusCompleted})
	for _, target := range []model.BookingStatus{
		model.StatusPending, model.StatusConfirmed, model.StatusCancelled, model.StatusFailed,
	} {
		f.mock.ExpectBegin()
		f.mock.ExpectRollback()
		_, err := f.svc.SetStatus(context.Background(), 1, target, "")
		assert.ErrorIs(t, err, ErrInvalidTransition, "target %s", target)
	}
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestSetStatusUnknownStatus(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.SetStatus(context.Background(), 1, model.BookingStatus("SHIPPED"), "")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

// ----- payments -----

func TestInitializePaymentSuccess(t *testing.T) {
	f := newFixture(t)
	f.bookings.put(model.Booking{ID: 1, UserID: 10, TourID: 1, Participants: 2, TotalAmountCents: 1000000, Status: model.StatusPending})

	var gotReq payment.InitializeRequest
	f.gateway.initFn = func(ctx context.Context, req payment.InitializeRequest) (*payment.Checkout, error) {
		gotReq = req
		return &payment.Checkout{CheckoutURL: "https://checkout.example/abc", TxRef: req.TxRef}, nil
	}

	checkout, err := f.svc.InitializePayment(context.Background(), 10, 1, "https://app.example/return")
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example/abc", checkout.CheckoutURL)
	assert.True(t, strings.HasPrefix(gotReq.TxRef, "TXN-1-"))
	assert.Equal(t, uint64(1000000), gotReq.AmountCents)
	assert.Equal(t, "ETB", gotReq.Currency)
	assert.Equal(t, "alem@example.com", gotReq.Email)

	stored := f.bookings.mustGet(t, 1)
	require.NotNil(t, stored.PaymentRef)
	assert.Equal(t, gotReq.TxRef, *stored.PaymentRef)
}

func TestInitializePaymentWrongStatus(t *testing.T) {
	f := newFixture(t)
	f.bookings.put(model.Booking{ID: 1, UserID: 10, TourID: 1, Status: model.StatusConfirmed})
	f.bookings.put(model.Booking{ID: 2, UserID: 10, TourID: 1, Status: model.StatusCancelled})

	_, err := f.svc.InitializePayment(context.Background(), 10, 1, "")
	assert.ErrorIs(t, err, ErrAlreadyPaid)

	_, err = f.svc.InitializePayment(context.Background(), 10, 2, "")
	assert.ErrorIs(t, err, ErrNotPayable)
}

func TestInitializePaymentForbidden(t *testing.T) {
	f := newFixture(t)
	f.bookings.put(model.Booking{ID: 1, UserID: 10, TourID: 1, Status: model.StatusPending})
	_, err := f.svc.InitializePayment(context.Background(), 99, 1, "")
	assert.ErrorIs(t, err, repository.ErrForbidden)
}

func withRef(b model.Booking, ref string) model.Booking {
	b.PaymentRef = &ref
	return b
}

func TestConfirmPaymentSuccess(t *testing.T) {
	f := newFixture(t)
	f.tours.tours[1].BookedSlots = 2
	f.bookings.put(withRef(model.Booking{ID: 1, UserID: 10, TourID: 1, Participants: 2, TotalAmountCents: 1000000, Status: model.StatusPending}, "TXN-1-x"))
	f.gateway.verifyFn = func(ctx context.Context, txRef string) (*payment.VerifyResult, error) {
		return &payment.VerifyResult{Status: payment.StatusSuccess, AmountCents: 1000000, Currency: "ETB"}, nil
	}
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	b, err := f.svc.ConfirmPayment(context.Background(), "TXN-1-x")
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, b.Status)
	require.NotNil(t, b.PaidAt)
	assert.Equal(t, uint32(2), f.tours.booked(1))
	assert.True(t, f.pub.published("payment.succeeded"))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestConfirmPaymentIdempotent(t *testing.T) {
	f := newFixture(t)
	paidAt := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	f.bookings.put(withRef(model.Booking{ID: 1, UserID: 10, TourID: 1, Participants: 2, Status: model.StatusConfirmed, PaidAt: &paidAt}, "TXN-1-x"))
	f.gateway.verifyFn = func(ctx context.Context, txRef string) (*payment.VerifyResult, error) {
		return &payment.VerifyResult{Status: payment.StatusSuccess}, nil
	}
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	b, err := f.svc.ConfirmPayment(context.Background(), "TXN-1-x")
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, b.Status)

	stored := f.bookings.mustGet(t, 1)
	require.NotNil(t, stored.PaidAt)
	assert.True(t, stored.PaidAt.Equal(paidAt), "paid_at must keep its original value")
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestConfirmPaymentFailedReleasesSlots(t *testing.T) {
	f := newFixture(t)
	f.tours.tours[1].BookedSlots = 2
	f.bookings.put(withRef(model.Booking{ID: 1, UserID: 10, TourID: 1, Participants: 2, Status: model.StatusPending}, "TXN-1-x"))
	f.gateway.verifyFn = func(ctx context.Context, txRef string) (*payment.VerifyResult, error) {
		return &payment.VerifyResult{Status: payment.StatusFailed}, nil
	}
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	b, err := f.svc.ConfirmPayment(context.Background(), "TXN-1-x")
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, b.Status)
	assert.Equal(t, uint32(0), f.tours.booked(1))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestConfirmPaymentGatewayUnavailable(t *testing.T) {
	f := newFixture(t)
	f.tours.tours[1].BookedSlots = 2
	f.bookings.put(withRef(model.Booking{ID: 1, UserID: 10, TourID: 1, Participants: 2, Status: model.StatusPending}, "TXN-1-x"))
	f.gateway.verifyFn = func(ctx context.Context, txRef string) (*payment.VerifyResult, error) {
		return nil, payment.ErrGatewayUnavailable
	}

	_, err := f.svc.ConfirmPayment(context.Background(), "TXN-1-x")
	assert.True(t, errors.Is(err, payment.ErrGatewayUnavailable))
	// A flaky gateway must leave the booking and the ledger untouched.
	assert.Equal(t, model.StatusPending, f.bookings.mustGet(t, 1).Status)
	assert.Equal(t, uint32(2), f.tours.booked(1))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestConfirmPaymentStillPending(t *testing.T) {
	f := newFixture(t)
	f.bookings.put(withRef(model.Booking{ID: 1, UserID: 10, TourID: 1, Participants: 1, Status: model.StatusPending}, "TXN-1-x"))
	f.gateway.verifyFn = func(ctx context.Context, txRef string) (*payment.VerifyResult, error) {
		return &payment.VerifyResult{Status: payment.StatusPending}, nil
	}
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.ConfirmPayment(context.Background(), "TXN-1-x")
	assert.ErrorIs(t, err, ErrPaymentPending)
	assert.Equal(t, model.StatusPending, f.bookings.mustGet(t, 1).Status)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestConfirmPaymentUnknownRef(t *testing.T) {
	f := newFixture(t)
	f.gateway.verifyFn = func(ctx context.Context, txRef string) (*payment.VerifyResult, error) {
		return &payment.VerifyResult{Status: payment.StatusSuccess}, nil
	}
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.ConfirmPayment(context.Background(), "TXN-404-x")
	assert.ErrorIs(t, err, repository.ErrBookingNotFound)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestConfirmPaymentEmptyRef(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ConfirmPayment(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoPaymentRef)
}

func TestSplitName(t *testing.T) {
	name := func(s string) *string { return &s }
	cases := []struct {
		user  model.User
		first string
		last  string
	}{
		{model.User{Name: name("Alem Tesfaye"), Email: "a@x.com"}, "Alem", "Tesfaye"},
		{model.User{Name: name("Alem"), Email: "a@x.com"}, "Alem", ""},
		{model.User{Name: name("Alem T. Haile"), Email: "a@x.com"}, "Alem", "T. Haile"},
		{model.User{Name: name("  "), Email: "alem@x.com"}, "alem", ""},
		{model.User{Email: "alem@x.com"}, "alem", ""},
		{model.User{Email: "noatsign"}, "noatsign", ""},
	}
	for _, tc := range cases {
		first, last := splitName(tc.user)
		assert.Equal(t, tc.first, first)
		assert.Equal(t, tc.last, last)
	}
}
