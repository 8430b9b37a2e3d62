package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"workhive/api/routes"
	"workhive/internal/notifications"
	"workhive/internal/payouts"
	"workhive/internal/shared/config"
	"workhive/internal/shared/database"
	"workhive/internal/shared/validation"
	"workhive/internal/slotlock"
	"workhive/pkg/logger"
	"workhive/pkg/ratelimit"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	appLogger := logger.GetDefault()

	// Smart environment loading
	if err := godotenv.Load(); err != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	// Load config
	cfg := config.Load()

	// Set Gin mode (debug/release)
	gin.SetMode(cfg.GinMode)

	if err := validation.RegisterCustomValidators(); err != nil {
		appLogger.Error("failed to register custom validators:", slog.Any("error", err))
		os.Exit(1)
	}

	// Initialize DB
	db, err := database.InitDB(cfg)
	if err != nil {
		appLogger.Error("failed to connect:", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Preload Redis Lua scripts for atomic slot lock operations
	if db.Redis != nil {
		lockStore := slotlock.NewRedisStore(db.Redis)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := lockStore.PreloadScripts(ctx); err != nil {
			appLogger.Error("Failed to preload Redis Lua scripts", slog.Any("error", err))
			// Continue without failing - scripts will be loaded on first use
		} else {
			appLogger.Info("✅ Redis Lua scripts preloaded for atomic slot lock operations")
		}
		cancel()
	}

	// Initialize Rate Limiter
	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiterConfig := &ratelimit.Config{
			Enabled:         cfg.RateLimit.Enabled,
			WindowDuration:  cfg.RateLimit.WindowDuration,
			DefaultRequests: cfg.RateLimit.DefaultRequests,
			PublicRequests:  cfg.RateLimit.PublicRequests,
			BookingRequests: cfg.RateLimit.BookingRequests,
			WebhookRequests: cfg.RateLimit.WebhookRequests,
			WhitelistedIPs:  cfg.RateLimit.WhitelistedIPs,
		}

		rateLimiter = ratelimit.NewRateLimiter(db.GetRedisClient(), rateLimiterConfig)
		appLogger.Info("Rate limiter initialized",
			slog.Bool("enabled", cfg.RateLimit.Enabled),
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("default_requests", cfg.RateLimit.DefaultRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	// Initialize the notification producer. Kafka being down degrades to a
	// no-op notifier; booking flows never depend on notification delivery.
	var notifier notifications.Notifier = notifications.NoopNotifier{}
	producerConfig := notifications.DefaultKafkaProducerConfig()
	producerConfig.Brokers = cfg.Kafka.Brokers
	producerConfig.Topic = cfg.Kafka.NotificationTopic
	producer, err := notifications.NewKafkaProducer(producerConfig)
	if err != nil {
		appLogger.Error("Failed to initialize Kafka producer", slog.Any("error", err))
		appLogger.Info("Continuing without notifications")
	} else {
		notifier = notifications.NewNotifier(producer, appLogger)
		defer producer.Close()
		appLogger.Info("Kafka notification producer initialized",
			slog.String("topic", cfg.Kafka.NotificationTopic))
	}

	// Setup router with rate limiter
	appRouter := routes.NewRouter(cfg, db, notifier, appLogger)
	engine := setupEngine(cfg, appRouter, rateLimiter)

	// Background jobs: payout scheduler + payee-disconnection guard
	jobProcessor := buildJobProcessor(cfg, db, appRouter, notifier, appLogger)
	jobCtx, jobCancel := context.WithCancel(context.Background())
	defer jobCancel()
	jobProcessor.Start(jobCtx)
	defer jobProcessor.Stop()

	// HTTP server
	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        engine,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		appLogger.Info("🚀 Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("version", cfg.APIVersion),
			slog.Bool("rate_limiting", cfg.RateLimit.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("Server exited gracefully")
}

func setupEngine(cfg *config.Config, appRouter *routes.Router, rateLimiter *ratelimit.RateLimiter) *gin.Engine {
	engine := gin.New()
	appLogger := logger.GetDefault()

	// Built-in middleware: logs requests + recovers from panics
	engine.Use(RequestLoggerMiddleware(appLogger), gin.Recovery())

	// CORS configuration
	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true // allow every origin dynamically
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-RateLimit-*"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Global rate limiting middleware (applied to all routes)
	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter))
		appLogger.Info("Rate limiting middleware applied to all routes")
	}

	appRouter.SetupRoutes(engine)

	return engine
}

func RequestLoggerMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		l.LogHTTPRequest(c, duration)
	}
}

func buildJobProcessor(
	cfg *config.Config,
	db *database.DB,
	appRouter *routes.Router,
	notifier notifications.Notifier,
	appLogger *logger.Logger,
) *payouts.JobProcessor {
	payoutRepo := payouts.NewRepository(db.GetPostgreSQL())

	schedulerConfig := payouts.DefaultSchedulerConfig()
	schedulerConfig.PayoutDelay = cfg.Booking.PayoutDelay
	scheduler := payouts.NewScheduler(
		payoutRepo,
		appRouter.BookingRepo,
		appRouter.PaymentRepo,
		appRouter.Processor,
		notifier,
		schedulerConfig,
		appLogger,
	)

	guardConfig := payouts.DefaultGuardConfig()
	guardConfig.FreezeWindow = cfg.Booking.FreezeWindow
	guardConfig.CancelWindow = cfg.Booking.CancelWindow
	guard := payouts.NewGuard(
		payoutRepo,
		appRouter.BookingRepo,
		appRouter.PaymentRepo,
		appRouter.Processor,
		notifier,
		guardConfig,
		appLogger,
	)

	jobConfig := &payouts.JobConfig{
		PayoutInterval:      cfg.Jobs.PayoutInterval,
		GuardInterval:       cfg.Jobs.GuardInterval,
		ExpirySweepInterval: cfg.Jobs.ExpirySweepInterval,
	}
	return payouts.NewJobProcessor(scheduler, guard, appRouter.BookingService, jobConfig, appLogger)
}
