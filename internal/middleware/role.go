package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/selamtours/tour-booking-api/internal/model"
)

// RequireRole returns a middleware that allows the request through only
// when the authenticated user's role, as stored in the context by
// JWTAuth, is one of the given roles.  Anything else gets 403.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get("role").(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// RequireAdmin restricts a route group to ADMIN users.
func RequireAdmin() echo.MiddlewareFunc {
	return RequireRole(model.RoleAdmin)
}
