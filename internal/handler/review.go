package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/selamtours/tour-booking-api/internal/model"
	"github.com/selamtours/tour-booking-api/internal/repository"
)

// ReviewHandler lets users review tours they have booked.
type ReviewHandler struct {
	Reviews  *repository.ReviewRepo
	Bookings *repository.BookingRepo
	Tours    *repository.TourRepo
}

func NewReviewHandler(reviews *repository.ReviewRepo, bookings *repository.BookingRepo, tours *repository.TourRepo) *ReviewHandler {
	return &ReviewHandler{Reviews: reviews, Bookings: bookings, Tours: tours}
}

type createReviewReq struct {
	Rating  uint8  `json:"rating"`
	Comment string `json:"comment"`
}

// Create adds a review on a tour.  Only users who have booked the tour
// may review it, and only once each.
// POST /tours/:id/reviews
func (h *ReviewHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tourID, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tour id"})
	}
	var req createReviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Rating < 1 || req.Rating > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be 1-5"})
	}
	req.Comment = strings.TrimSpace(req.Comment)
	if req.Comment == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "comment required"})
	}

	ctx := c.Request().Context()
	if _, err := h.Tours.GetByID(ctx, tourID); err != nil {
		return respondErr(c, err)
	}
	booked, err := h.Bookings.HasBookingForTour(ctx, uid, tourID)
	if err != nil {
		return respondErr(c, err)
	}
	if !booked {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only users who booked this tour can review it"})
	}

	rv := &model.Review{UserID: uid, TourID: tourID, Rating: req.Rating, Comment: req.Comment}
	if err := h.Reviews.Create(ctx, rv); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "you already reviewed this tour"})
		}
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": rv.ID})
}

// ListByTour returns all reviews for a tour, newest first.
// GET /tours/:id/reviews
func (h *ReviewHandler) ListByTour(c echo.Context) error {
	tourID, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tour id"})
	}
	reviews, err := h.Reviews.ListByTour(c.Request().Context(), tourID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reviews": reviews})
}
