package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/selamtours/tour-booking-api/internal/repository"
)

// PublicTourHandler serves the unauthenticated tour catalogue.
type PublicTourHandler struct {
	Tours   *repository.TourRepo
	Reviews *repository.ReviewRepo
}

func NewPublicTourHandler(tours *repository.TourRepo, reviews *repository.ReviewRepo) *PublicTourHandler {
	return &PublicTourHandler{Tours: tours, Reviews: reviews}
}

// List returns every tour with review aggregates and free slot counts.
// GET /tours
func (h *PublicTourHandler) List(c echo.Context) error {
	items, err := h.Tours.ListWithStats(c.Request().Context())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"tours": items})
}

// Search filters the catalogue.  Supported query params: q, location,
// min_price, max_price, start_after, end_before, available, page,
// page_size.  Prices are cents; dates are YYYY-MM-DD.
// GET /tours/search
func (h *PublicTourHandler) Search(c echo.Context) error {
	q := repository.TourSearchQuery{
		Search:   c.QueryParam("q"),
		Location: c.QueryParam("location"),
	}
	if v := c.QueryParam("min_price"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			q.MinPriceCents = &n
		}
	}
	if v := c.QueryParam("max_price"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			q.MaxPriceCents = &n
		}
	}
	if v := c.QueryParam("start_after"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			q.StartAfter = &t
		}
	}
	if v := c.QueryParam("end_before"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			q.EndBefore = &t
		}
	}
	q.AvailableOnly = c.QueryParam("available") == "true"
	if v := c.QueryParam("page"); v != "" {
		q.Page, _ = strconv.Atoi(v)
	}
	if v := c.QueryParam("page_size"); v != "" {
		q.PageSize, _ = strconv.Atoi(v)
	}

	items, total, err := h.Tours.Search(c.Request().Context(), q)
	if err != nil {
		return respondErr(c, err)
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 10
	}
	return c.JSON(http.StatusOK, echo.Map{
		"tours":     items,
		"total":     total,
		"page":      q.Page,
		"page_size": q.PageSize,
	})
}

// Get returns a single tour with its reviews.
// GET /tours/:id
func (h *PublicTourHandler) Get(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tour id"})
	}
	ctx := c.Request().Context()
	tour, err := h.Tours.GetByID(ctx, id)
	if err != nil {
		return respondErr(c, err)
	}
	reviews, err := h.Reviews.ListByTour(ctx, id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":               tour.ID,
		"provider_id":      tour.ProviderID,
		"name":             tour.Name,
		"location":         tour.Location,
		"description":      tour.Description,
		"price_cents":      tour.PriceCents,
		"max_participants": tour.MaxParticipants,
		"booked_slots":     tour.BookedSlots,
		"available_slots":  tour.AvailableSlots(),
		"start_date":       tour.StartDate.UTC().Format(time.RFC3339),
		"end_date":         tour.EndDate.UTC().Format(time.RFC3339),
		"image_url":        tour.ImageURL,
		"reviews":          reviews,
	})
}
