package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/selamtours/tour-booking-api/internal/model"
	"github.com/selamtours/tour-booking-api/internal/repository"
)

// CategoryHandler manages tour categories.  Listing is public; writes
// are admin-only via the router.
type CategoryHandler struct {
	Categories *repository.CategoryRepo
}

func NewCategoryHandler(categories *repository.CategoryRepo) *CategoryHandler {
	return &CategoryHandler{Categories: categories}
}

// List returns all categories with tour counts.
// GET /categories
func (h *CategoryHandler) List(c echo.Context) error {
	items, err := h.Categories.List(c.Request().Context())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"categories": items})
}

type categoryReq struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// Create adds a category; its slug is derived from the name.
// POST /admin/categories
func (h *CategoryHandler) Create(c echo.Context) error {
	var req categoryReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	cat := &model.Category{Name: strings.TrimSpace(req.Name), Description: req.Description}
	if err := h.Categories.Create(c.Request().Context(), cat); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "category already exists"})
		}
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": cat.ID, "slug": cat.Slug})
}

// Update renames a category.
// PUT /admin/categories/:id
func (h *CategoryHandler) Update(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category id"})
	}
	var req categoryReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	cat := &model.Category{ID: id, Name: strings.TrimSpace(req.Name), Description: req.Description}
	if err := h.Categories.Update(c.Request().Context(), cat); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "category name already taken"})
		}
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": true, "slug": cat.Slug})
}

// Delete removes a category and its tour assignments.
// DELETE /admin/categories/:id
func (h *CategoryHandler) Delete(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category id"})
	}
	if err := h.Categories.Delete(c.Request().Context(), id); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
