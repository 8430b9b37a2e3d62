// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"workhive/internal/bookings"
	"workhive/internal/notifications"
	"workhive/internal/payments"
	"workhive/internal/risk"
	"workhive/internal/shared/config"
	"workhive/internal/shared/database"
	"workhive/internal/slotlock"
	"workhive/internal/spaces"
	"workhive/internal/users"
	"workhive/pkg/cache"
	"workhive/pkg/logger"
)

// Router holds all route dependencies
type Router struct {
	config   *config.Config
	db       *database.DB
	notifier notifications.Notifier
	log      *logger.Logger

	// BookingService is exposed so the background jobs in main can share the
	// exact service instance the HTTP layer uses.
	BookingService bookings.Service
	BookingRepo    bookings.Repository
	PaymentRepo    payments.Repository
	UserRepo       users.Repository
	Processor      payments.Processor
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, notifier notifications.Notifier, log *logger.Logger) *Router {
	return &Router{
		config:   cfg,
		db:       db,
		notifier: notifier,
		log:      log,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupSlotLockRoutes(api)
		r.setupBookingRoutes(api)
		r.setupPaymentRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "workhive-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "workhive-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})
}

// setupSlotLockRoutes configures advisory slot lock routes
func (r *Router) setupSlotLockRoutes(rg *gin.RouterGroup) {
	store := slotlock.NewRedisStore(r.db.GetRedisClient())
	service := slotlock.NewService(store, r.config.Booking.SlotHoldTTL, r.log)
	controller := slotlock.NewController(service)

	slotlock.SetupSlotLockRoutes(rg, controller)
}

// setupBookingRoutes configures booking management routes
func (r *Router) setupBookingRoutes(rg *gin.RouterGroup) {
	pg := r.db.GetPostgreSQL()

	bookingRepo := bookings.NewRepository(pg)
	spaceRepo := spaces.NewRepository(pg)
	paymentRepo := payments.NewRepository(pg)
	userRepo := users.NewRepository(pg)
	processor := payments.NewStripeProcessor(r.config.Stripe.SecretKey, r.config.Stripe.Currency)

	cacheSvc := cache.NewService(r.db.GetRedisClient())
	riskSvc := risk.NewService(
		bookings.NewRiskHistoryAdapter(bookingRepo),
		userRepo,
		cacheSvc,
		r.config.Redis.SnapshotCacheTTL,
	)

	policy := bookings.DefaultPolicy()
	policy.ReservationWindow = r.config.Booking.ReservationWindow
	policy.PlatformFeePct = r.config.Booking.PlatformFeePct

	bookingService := bookings.NewService(
		bookingRepo, spaceRepo, paymentRepo, processor,
		riskSvc, r.notifier, policy, r.log,
	)
	controller := bookings.NewController(bookingService)

	bookings.SetupBookingRoutes(rg, controller)

	// Shared with the background jobs and the payment webhook.
	r.BookingService = bookingService
	r.BookingRepo = bookingRepo
	r.PaymentRepo = paymentRepo
	r.UserRepo = userRepo
	r.Processor = processor
}

// setupPaymentRoutes configures the payment webhook (must run after
// setupBookingRoutes so the shared services exist)
func (r *Router) setupPaymentRoutes(rg *gin.RouterGroup) {
	handler := payments.NewWebhookHandler(
		r.config.Stripe.WebhookSecret,
		r.PaymentRepo,
		r.UserRepo,
		r.BookingService,
		r.log,
	)

	payments.SetupPaymentRoutes(rg, handler)
}
