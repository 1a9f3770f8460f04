package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/selamtours/tour-booking-api/internal/model"
	"github.com/selamtours/tour-booking-api/internal/repository"
	"github.com/selamtours/tour-booking-api/internal/service"
)

// BookingHandler exposes the user-facing booking flow.  All state
// changes go through the booking service so lifecycle and slot
// accounting stay in one place.
type BookingHandler struct {
	Svc      *service.BookingService
	Bookings *repository.BookingRepo
}

func NewBookingHandler(svc *service.BookingService, bookings *repository.BookingRepo) *BookingHandler {
	return &BookingHandler{Svc: svc, Bookings: bookings}
}

type createBookingReq struct {
	TourID       uint64 `json:"tour_id"`
	Participants uint32 `json:"participants"`
}

type bookingResp struct {
	ID               uint64  `json:"id"`
	TourID           uint64  `json:"tour_id"`
	Participants     uint32  `json:"participants"`
	TotalAmountCents uint64  `json:"total_amount_cents"`
	Status           string  `json:"status"`
	PaymentRef       *string `json:"payment_ref,omitempty"`
	PaidAt           *string `json:"paid_at,omitempty"`
	CancelledAt      *string `json:"cancelled_at,omitempty"`
	Reason           *string `json:"cancellation_reason,omitempty"`
}

func toBookingResp(b *model.Booking) bookingResp {
	resp := bookingResp{
		ID:               b.ID,
		TourID:           b.TourID,
		Participants:     b.Participants,
		TotalAmountCents: b.TotalAmountCents,
		Status:           b.Status.String(),
		PaymentRef:       b.PaymentRef,
		Reason:           b.CancellationReason,
	}
	if b.PaidAt != nil {
		s := b.PaidAt.UTC().Format(time.RFC3339)
		resp.PaidAt = &s
	}
	if b.CancelledAt != nil {
		s := b.CancelledAt.UTC().Format(time.RFC3339)
		resp.CancelledAt = &s
	}
	return resp
}

// Create places a PENDING booking and claims its slots.
// POST /bookings
func (h *BookingHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil || req.TourID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tour_id and participants required"})
	}
	b, err := h.Svc.CreateBooking(c.Request().Context(), uid, req.TourID, req.Participants)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, toBookingResp(b))
}

type cancelReq struct {
	Reason string `json:"reason"`
}

// Cancel cancels the caller's booking and releases its slots.
// POST /bookings/:id/cancel
func (h *BookingHandler) Cancel(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req cancelReq
	_ = c.Bind(&req)
	b, err := h.Svc.CancelBooking(c.Request().Context(), uid, id, req.Reason)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, toBookingResp(b))
}

// ListMine returns the caller's bookings with tour details, newest first.
// GET /bookings
func (h *BookingHandler) ListMine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	details, err := h.Bookings.ListByUser(c.Request().Context(), uid)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": details})
}

// GetMine returns one of the caller's bookings.
// GET /bookings/:id
func (h *BookingHandler) GetMine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	d, err := h.Bookings.GetDetail(c.Request().Context(), id)
	if err != nil {
		return respondErr(c, err)
	}
	if d.UserID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, d)
}
