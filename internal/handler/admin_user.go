package handler

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/selamtours/tour-booking-api/internal/model"
	"github.com/selamtours/tour-booking-api/internal/repository"
)

// AdminUserHandler manages user accounts and roles.
type AdminUserHandler struct {
	Users *repository.UserRepo
}

func NewAdminUserHandler(users *repository.UserRepo) *AdminUserHandler {
	return &AdminUserHandler{Users: users}
}

// List returns every user account.
// GET /admin/users
func (h *AdminUserHandler) List(c echo.Context) error {
	users, err := h.Users.ListAll(c.Request().Context())
	if err != nil {
		return respondErr(c, err)
	}
	out := make([]userPart, 0, len(users))
	for _, u := range users {
		out = append(out, userPart{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role})
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}

type updateRoleReq struct {
	Role string `json:"role"`
}

// UpdateRole changes a user's role.  Demoting the only remaining admin
// is rejected so the admin surface can never be locked out.
// PATCH /admin/users/:id/role
func (h *AdminUserHandler) UpdateRole(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req updateRoleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if role != model.RoleUser && role != model.RoleAdmin {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be USER or ADMIN"})
	}
	if err := h.Users.UpdateRole(c.Request().Context(), id, role); err != nil {
		switch err {
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		case repository.ErrLastAdmin:
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		}
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": true})
}
