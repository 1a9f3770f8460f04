package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/selamtours/tour-booking-api/internal/payment"
	"github.com/selamtours/tour-booking-api/internal/repository"
	"github.com/selamtours/tour-booking-api/internal/service"
)

// getUserID extracts the user_id stored in the context by the JWT
// middleware and converts it to uint64.  The jwt library decodes
// numeric claims as float64, so several representations are accepted.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// paramID parses a numeric path parameter.
func paramID(c echo.Context, name string) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}

// respondErr maps domain errors to HTTP responses.  Unrecognized errors
// become a 500 with a generic message so internals never leak to
// clients.
func respondErr(c echo.Context, err error) error {
	var capErr *repository.InsufficientCapacityError
	switch {
	case errors.As(err, &capErr):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":     capErr.Error(),
			"remaining": capErr.Remaining,
		})
	case errors.Is(err, repository.ErrTourNotFound),
		errors.Is(err, repository.ErrBookingNotFound),
		errors.Is(err, repository.ErrCategoryNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrConflict),
		errors.Is(err, service.ErrDuplicateBooking),
		errors.Is(err, service.ErrAlreadyCancelled),
		errors.Is(err, service.ErrAlreadyPaid),
		errors.Is(err, service.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidParticipants),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrTourStarted),
		errors.Is(err, service.ErrNotPayable),
		errors.Is(err, service.ErrNoPaymentRef):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrPaymentPending):
		return c.JSON(http.StatusAccepted, echo.Map{"status": "pending", "message": err.Error()})
	case errors.Is(err, payment.ErrGatewayUnavailable):
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "payment gateway unavailable"})
	case errors.Is(err, payment.ErrTransactionNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "transaction not found"})
	}
	c.Logger().Errorf("internal error: %v", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
