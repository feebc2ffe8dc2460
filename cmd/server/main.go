package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/availability"
	"github.com/iliyamo/restaurant-table-reservation/internal/booking"
	"github.com/iliyamo/restaurant-table-reservation/internal/config"
	"github.com/iliyamo/restaurant-table-reservation/internal/database"
	"github.com/iliyamo/restaurant-table-reservation/internal/draft"
	"github.com/iliyamo/restaurant-table-reservation/internal/handler"
	"github.com/iliyamo/restaurant-table-reservation/internal/middleware"
	"github.com/iliyamo/restaurant-table-reservation/internal/payment"
	"github.com/iliyamo/restaurant-table-reservation/internal/queue"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
	"github.com/iliyamo/restaurant-table-reservation/internal/router"
	queue_publisher "github.com/iliyamo/restaurant-table-reservation/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: without it the cache and rate limiter turn
	// themselves into pass-throughs.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, cache and rate limiting disabled")
	}

	// Repositories.
	storeRepo := repository.NewStoreRepo(db)
	tableRepo := repository.NewTableRepo(db)
	slotRepo := repository.NewSlotRepo(db)
	menuRepo := repository.NewMenuRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)

	// Domain services.
	resolver := availability.NewResolver(storeRepo, tableRepo, slotRepo)
	manager := booking.NewManager(storeRepo, tableRepo, slotRepo, menuRepo, bookingRepo)
	manager.PublishConfirmed = queue_publisher.PublishBookingConfirmed
	flows := draft.NewFlowStore(time.Duration(cfg.DraftTTLMin) * time.Minute)
	gateway := payment.NewHTTPGateway(cfg.PayBaseURL, cfg.PaySecretKey, 10*time.Second)
	coordinator := payment.NewCoordinator(bookingRepo, paymentRepo, gateway, cfg.PaySuccessURL, cfg.PayFailURL)

	// Consume booking.confirmed events in the background; the consumer
	// reconnects on its own if RabbitMQ drops.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("queue consumer: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterPublic(e, handler.NewPublicHandler(storeRepo, menuRepo, tableRepo), handler.NewAvailabilityHandler(resolver), rdb)
	router.RegisterCustomer(e,
		handler.NewDraftFlowHandler(flows, resolver, manager, storeRepo, menuRepo),
		handler.NewBookingHandler(manager, bookingRepo),
		handler.NewPaymentHandler(coordinator, flows),
		cfg.JWTSecret,
	)
	router.RegisterOwner(e, handler.NewOwnerHandler(storeRepo, tableRepo, slotRepo), cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
