package main // Entry point package

import (
    "context" // cancellation for the background sweep
    "log"     // Logging library

    "github.com/joho/godotenv"    // loads .env files in development
    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/filmreel/movie-booking/internal/config"     // Internal config loader
    "github.com/filmreel/movie-booking/internal/database"   // MySQL connection
    "github.com/filmreel/movie-booking/internal/handler"    // HTTP handlers
    "github.com/filmreel/movie-booking/internal/middleware" // cache and rate-limit middleware
    "github.com/filmreel/movie-booking/internal/queue"      // booking event consumer
    "github.com/filmreel/movie-booking/internal/repository" // data access layer
    "github.com/filmreel/movie-booking/internal/router"     // route registration
    "github.com/filmreel/movie-booking/internal/sweep"      // movie currency sweep
)

func main() {
    // .env is optional; real deployments set env vars directly.
    _ = godotenv.Load()

    cfg := config.Load() // Load environment config

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    // Repositories share the single pooled connection.
    userRepo := repository.NewUserRepo(db)
    tokenRepo := repository.NewTokenRepo(db)
    movieRepo := repository.NewMovieRepo(db)
    cinemaRepo := repository.NewCinemaRepo(db)
    screeningRepo := repository.NewScreeningRepo(db)
    bookingRepo := repository.NewBookingRepo(db)
    reviewRepo := repository.NewReviewRepo(db)
    friendRepo := repository.NewFriendRepo(db)

    e := echo.New() // Create Echo instance

    // Redis is optional: when unreachable the server runs without
    // response caching and rate limiting.
    if rdb := config.NewRedisClient(); rdb != nil {
        e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
        e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
    } else {
        log.Println("redis unavailable; cache and rate limiting disabled")
    }

    authHandler := handler.NewAuthHandler(cfg, userRepo, tokenRepo)
    movieHandler := handler.NewMovieHandler(movieRepo, reviewRepo, screeningRepo, cinemaRepo)
    bookingHandler := handler.NewBookingHandler(bookingRepo, screeningRepo, uint32(cfg.SeatRowWidth))
    reviewHandler := handler.NewReviewHandler(reviewRepo, movieRepo)
    friendHandler := handler.NewFriendHandler(friendRepo, userRepo)
    adminHandler := handler.NewAdminHandler(movieRepo, cinemaRepo, screeningRepo, bookingRepo)

    router.RegisterRoutes(e)
    router.RegisterAuth(e, authHandler, cfg.JWTSecret)
    router.RegisterPublic(e, movieHandler, bookingHandler)
    router.RegisterUser(e, bookingHandler, reviewHandler, friendHandler, cfg.JWTSecret)
    router.RegisterAdmin(e, adminHandler, reviewHandler, cfg.JWTSecret)

    // Background jobs: booking event consumer and the currency sweep.
    go func() {
        if err := queue.StartBookingConsumer(); err != nil {
            log.Printf("booking consumer stopped: %v", err)
        }
    }()
    sweepCtx, cancelSweep := context.WithCancel(context.Background())
    defer cancelSweep()
    go sweep.New(movieRepo, tokenRepo, cfg.SweepInterval).Start(sweepCtx)

    addr := ":" + cfg.Port                                // Address string with port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

    if err := e.Start(addr); err != nil { // Start HTTP server
        log.Fatal(err) // Log and exit if server fails
    }
}
