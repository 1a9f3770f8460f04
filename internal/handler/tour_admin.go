package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/selamtours/tour-booking-api/internal/model"
	"github.com/selamtours/tour-booking-api/internal/repository"
)

// AdminTourHandler manages the tour catalogue.  Creation, updates and
// deletion are restricted to ADMIN users by the router.
type AdminTourHandler struct {
	Tours      *repository.TourRepo
	Categories *repository.CategoryRepo
}

func NewAdminTourHandler(tours *repository.TourRepo, categories *repository.CategoryRepo) *AdminTourHandler {
	return &AdminTourHandler{Tours: tours, Categories: categories}
}

type tourReq struct {
	Name            string  `json:"name"`
	Location        string  `json:"location"`
	Description     string  `json:"description"`
	PriceCents      uint64  `json:"price_cents"`
	MaxParticipants uint32  `json:"max_participants"`
	StartDate       string  `json:"start_date"` // RFC3339
	EndDate         string  `json:"end_date"`   // RFC3339
	ImageURL        *string `json:"image_url"`
}

func (req *tourReq) validate() (start, end time.Time, msg string) {
	if req.Name == "" || req.Location == "" {
		return start, end, "name and location required"
	}
	if req.MaxParticipants == 0 {
		return start, end, "max_participants must be positive"
	}
	var err error
	if start, err = time.Parse(time.RFC3339, req.StartDate); err != nil {
		return start, end, "start_date must be RFC3339"
	}
	if end, err = time.Parse(time.RFC3339, req.EndDate); err != nil {
		return start, end, "end_date must be RFC3339"
	}
	if !end.After(start) {
		return start, end, "end_date must be after start_date"
	}
	return start, end, ""
}

// Create registers a new tour.
// POST /admin/tours
func (h *AdminTourHandler) Create(c echo.Context) error {
	var req tourReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	start, end, msg := req.validate()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	t := &model.Tour{
		ProviderID:      uid,
		Name:            req.Name,
		Location:        req.Location,
		Description:     req.Description,
		PriceCents:      req.PriceCents,
		MaxParticipants: req.MaxParticipants,
		StartDate:       start,
		EndDate:         end,
		ImageURL:        req.ImageURL,
	}
	if err := h.Tours.Create(c.Request().Context(), t); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": t.ID})
}

// Update rewrites a tour's mutable fields.  Shrinking capacity below the
// currently booked slots is rejected with 409.
// PUT /admin/tours/:id
func (h *AdminTourHandler) Update(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tour id"})
	}
	var req tourReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	start, end, msg := req.validate()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	t := &model.Tour{
		ID:              id,
		Name:            req.Name,
		Location:        req.Location,
		Description:     req.Description,
		PriceCents:      req.PriceCents,
		MaxParticipants: req.MaxParticipants,
		StartDate:       start,
		EndDate:         end,
		ImageURL:        req.ImageURL,
	}
	if err := h.Tours.Update(c.Request().Context(), t); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": true})
}

// Delete removes a tour with no booking history.
// DELETE /admin/tours/:id
func (h *AdminTourHandler) Delete(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tour id"})
	}
	if err := h.Tours.Delete(c.Request().Context(), id); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type assignCategoriesReq struct {
	CategoryIDs []uint64 `json:"category_ids"`
}

// AssignCategories replaces the category set on a tour.
// PUT /admin/tours/:id/categories
func (h *AdminTourHandler) AssignCategories(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tour id"})
	}
	var req assignCategoriesReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.Categories.AssignToTour(c.Request().Context(), id, req.CategoryIDs); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"assigned": len(req.CategoryIDs)})
}
