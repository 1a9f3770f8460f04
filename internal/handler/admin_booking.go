package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/selamtours/tour-booking-api/internal/model"
	"github.com/selamtours/tour-booking-api/internal/repository"
	"github.com/selamtours/tour-booking-api/internal/service"
)

// AdminBookingHandler exposes the admin booking surface: full listings
// and manual status overrides.
type AdminBookingHandler struct {
	Svc      *service.BookingService
	Bookings *repository.BookingRepo
}

func NewAdminBookingHandler(svc *service.BookingService, bookings *repository.BookingRepo) *AdminBookingHandler {
	return &AdminBookingHandler{Svc: svc, Bookings: bookings}
}

// List returns every booking with tour and user details.
// GET /admin/bookings
func (h *AdminBookingHandler) List(c echo.Context) error {
	details, err := h.Bookings.ListAll(c.Request().Context())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": details})
}

// Get returns a single booking with tour details.
// GET /admin/bookings/:id
func (h *AdminBookingHandler) Get(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	d, err := h.Bookings.GetDetail(c.Request().Context(), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

type setStatusReq struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// SetStatus applies an admin status override through the lifecycle
// state machine.  Reactivating a CANCELLED or FAILED booking re-reserves
// capacity and fails with the remaining slot count when the tour has
// filled up.
// PATCH /admin/bookings/:id/status
func (h *AdminBookingHandler) SetStatus(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req setStatusReq
	if err := c.Bind(&req); err != nil || req.Status == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status required"})
	}
	target, err := model.ParseBookingStatus(req.Status)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	b, err := h.Svc.SetStatus(c.Request().Context(), id, target, req.Reason)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, toBookingResp(b))
}
