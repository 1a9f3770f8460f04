package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/selamtours/tour-booking-api/internal/repository"
)

// WishlistHandler lets users save tours for later.
type WishlistHandler struct {
	Wishlist *repository.WishlistRepo
}

func NewWishlistHandler(wishlist *repository.WishlistRepo) *WishlistHandler {
	return &WishlistHandler{Wishlist: wishlist}
}

// Add puts a tour on the caller's wishlist.
// POST /wishlist/:tour_id
func (h *WishlistHandler) Add(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tourID, ok := paramID(c, "tour_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tour id"})
	}
	if err := h.Wishlist.Add(c.Request().Context(), uid, tourID); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "tour already on wishlist"})
		}
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"added": true})
}

// Remove takes a tour off the caller's wishlist.
// DELETE /wishlist/:tour_id
func (h *WishlistHandler) Remove(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tourID, ok := paramID(c, "tour_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tour id"})
	}
	if err := h.Wishlist.Remove(c.Request().Context(), uid, tourID); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// List returns the caller's wishlist, most recently added first.
// GET /wishlist
func (h *WishlistHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	entries, err := h.Wishlist.ListByUser(c.Request().Context(), uid)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"wishlist": entries})
}
