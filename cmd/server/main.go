package main // Entry point package

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/selamtours/tour-booking-api/internal/config"
	"github.com/selamtours/tour-booking-api/internal/database"
	"github.com/selamtours/tour-booking-api/internal/handler"
	"github.com/selamtours/tour-booking-api/internal/middleware"
	"github.com/selamtours/tour-booking-api/internal/payment"
	"github.com/selamtours/tour-booking-api/internal/queue"
	"github.com/selamtours/tour-booking-api/internal/repository"
	"github.com/selamtours/tour-booking-api/internal/router"
	"github.com/selamtours/tour-booking-api/internal/service"
)

func main() {
	// .env is optional; real deployments set environment variables directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the response cache and the rate limiter.  A nil client
	// disables both; the API keeps working without it.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; response cache and rate limiting disabled")
	}

	// Background consumer that renders booking notifications to
	// logs/notifications.log.  Runs its own reconnect loop.
	go func() {
		if err := queue.StartNotificationConsumer(); err != nil {
			log.Printf("notification consumer stopped: %v", err)
		}
	}()

	gateway := payment.NewClient(cfg.ChapaBaseURL, cfg.ChapaSecretKey, 10*time.Second)

	tourRepo := repository.NewTourRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	reviewRepo := repository.NewReviewRepo(db)
	wishlistRepo := repository.NewWishlistRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)

	bookingSvc := service.NewBookingService(
		db, tourRepo, bookingRepo, userRepo,
		gateway, service.AMQPPublisher{}, cfg.Currency,
	)

	authH := handler.NewAuthHandler(cfg, userRepo, tokenRepo)
	publicTourH := handler.NewPublicTourHandler(tourRepo, reviewRepo)
	adminTourH := handler.NewAdminTourHandler(tourRepo, categoryRepo)
	bookingH := handler.NewBookingHandler(bookingSvc, bookingRepo)
	adminBookingH := handler.NewAdminBookingHandler(bookingSvc, bookingRepo)
	paymentH := handler.NewPaymentHandler(bookingSvc, cfg.ReturnURL)
	reviewH := handler.NewReviewHandler(reviewRepo, bookingRepo, tourRepo)
	wishlistH := handler.NewWishlistHandler(wishlistRepo)
	categoryH := handler.NewCategoryHandler(categoryRepo)
	adminUserH := handler.NewAdminUserHandler(userRepo)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	var cache echo.MiddlewareFunc
	var limiter echo.MiddlewareFunc
	if rdb != nil {
		cache = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
		limiter = middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	}

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, publicTourH, reviewH, categoryH, cache)
	router.RegisterUser(e, bookingH, paymentH, reviewH, wishlistH, cfg.JWTSecret, limiter)
	router.RegisterAdmin(e, adminTourH, adminBookingH, adminUserH, categoryH, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
