package main // Entry point package

import (
	"log"  // Logging library
	"time" // Durations for the booking cooldown

	"github.com/joho/godotenv"    // Load .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/coach-booking-service/internal/booking"    // Transactional reserve/cancel facade
	"github.com/iliyamo/coach-booking-service/internal/config"     // Internal config loader
	"github.com/iliyamo/coach-booking-service/internal/database"   // MySQL connection pool
	"github.com/iliyamo/coach-booking-service/internal/handler"    // HTTP handlers
	"github.com/iliyamo/coach-booking-service/internal/middleware" // Rate limiting and response cache
	"github.com/iliyamo/coach-booking-service/internal/queue"      // Reservation event consumer
	"github.com/iliyamo/coach-booking-service/internal/repository" // Data access layer
	"github.com/iliyamo/coach-booking-service/internal/router"     // Route registration
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Printf(".env not loaded: %v", err)
	}

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories share the single pool.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	slots := repository.NewSlotRepo(db)
	reservations := repository.NewReservationRepo(db)

	// The booking facade owns the reserve/cancel transactions.  The
	// cancellation cooldown comes from configuration.
	bookingSvc := booking.NewService(db, slots, reservations,
		time.Duration(cfg.CancelCooldownHours)*time.Hour)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	memberH := handler.NewMemberHandler(users, slots, reservations, bookingSvc)
	coachSlotH := handler.NewCoachSlotHandler(cfg, slots)
	coachResH := handler.NewCoachReservationHandler(slots, reservations, bookingSvc)

	e := echo.New()

	// Redis backs both the token-bucket rate limiter and the public
	// response cache.  Both middlewares fail open when Redis is down.
	rdb := config.NewRedisClient()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, authH, cacheMW)
	router.RegisterMember(e, memberH, cfg.JWTSecret)
	router.RegisterCoach(e, coachSlotH, coachResH, cfg.JWTSecret)

	// Consume reservation events in the background.  The consumer
	// reconnects on its own; a missing broker must not stop the API.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err)
	}
}
