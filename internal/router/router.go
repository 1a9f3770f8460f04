package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/selamtours/tour-booking-api/internal/handler"
	"github.com/selamtours/tour-booking-api/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Used by load balancers and monitoring to verify the service is up.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes.
// Unauthenticated operations live under /v1/auth; protected endpoints
// live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Issues a new access token without rotating the refresh token.
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout does not require JWT middleware: a refresh token in the
	// body is enough to terminate a single session, and a bearer token
	// alone terminates all of the user's sessions.
	g.POST("/logout", a.Logout)
	e.POST("/v1/logout", a.Logout)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated catalogue endpoints.
// cache may be nil when Redis is unavailable; listings are then served
// uncached.
func RegisterPublic(e *echo.Echo, tours *handler.PublicTourHandler, reviews *handler.ReviewHandler, categories *handler.CategoryHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1")
	if cache != nil {
		g.Use(cache)
	}
	g.GET("/tours", tours.List)
	g.GET("/tours/search", tours.Search)
	g.GET("/tours/:id", tours.Get)
	g.GET("/tours/:id/reviews", reviews.ListByTour)
	g.GET("/categories", categories.List)
}

// RegisterUser registers the authenticated user surface: bookings,
// payments, reviews and the wishlist.  All routes require a valid JWT;
// rate limiting is applied when a limiter is provided.
func RegisterUser(e *echo.Echo, b *handler.BookingHandler, p *handler.PaymentHandler, r *handler.ReviewHandler, w *handler.WishlistHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	if limiter != nil {
		g.Use(limiter)
	}

	g.POST("/bookings", b.Create)
	g.GET("/bookings", b.ListMine)
	g.GET("/bookings/:id", b.GetMine)
	g.POST("/bookings/:id/cancel", b.Cancel)

	g.POST("/bookings/:id/payment", p.Initialize)
	// The gateway redirect lands here; safe to call repeatedly.
	g.GET("/payments/verify/:tx_ref", p.Verify)

	g.POST("/tours/:id/reviews", r.Create)

	g.GET("/wishlist", w.List)
	g.POST("/wishlist/:tour_id", w.Add)
	g.DELETE("/wishlist/:tour_id", w.Remove)
}

// RegisterAdmin registers the admin surface under /v1/admin.  Every
// route requires a valid JWT with the ADMIN role.
func RegisterAdmin(e *echo.Echo, tours *handler.AdminTourHandler, bookings *handler.AdminBookingHandler, users *handler.AdminUserHandler, categories *handler.CategoryHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireAdmin(),
	)

	g.POST("/tours", tours.Create)
	g.PUT("/tours/:id", tours.Update)
	g.DELETE("/tours/:id", tours.Delete)
	g.PUT("/tours/:id/categories", tours.AssignCategories)

	g.GET("/bookings", bookings.List)
	g.GET("/bookings/:id", bookings.Get)
	g.PATCH("/bookings/:id/status", bookings.SetStatus)

	g.GET("/users", users.List)
	g.PATCH("/users/:id/role", users.UpdateRole)

	g.POST("/categories", categories.Create)
	g.PUT("/categories/:id", categories.Update)
	g.DELETE("/categories/:id", categories.Delete)
}
