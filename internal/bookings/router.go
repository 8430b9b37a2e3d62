package bookings

import (
	"github.com/gin-gonic/gin"

	"workhive/internal/shared/middleware"
)

// SetupBookingRoutes configures all booking-related routes
func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller) {
	bookings := rg.Group("/bookings")
	bookings.Use(middleware.JWTAuth(), middleware.RequireRoles("USER", "HOST", "ADMIN"))
	{
		bookings.POST("/reserve", controller.Reserve)               // POST /api/v1/bookings/reserve
		bookings.GET("/:id", controller.GetBooking)                 // GET /api/v1/bookings/:id
		bookings.POST("/:id/cancel", controller.CancelBooking)      // POST /api/v1/bookings/:id/cancel
		bookings.GET("/:id/assessment", controller.AssessBooking)   // GET /api/v1/bookings/:id/assessment
		bookings.POST("/:id/decision", controller.DecideBooking)    // POST /api/v1/bookings/:id/decision
	}

	// The service-window trigger is an external collaborator; only admins may
	// drive it over HTTP.
	admin := rg.Group("/bookings")
	admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		admin.POST("/:id/served", controller.MarkServed) // POST /api/v1/bookings/:id/served
	}

	users := rg.Group("/users")
	users.Use(middleware.JWTAuth(), middleware.RequireRoles("USER", "HOST", "ADMIN"))
	{
		users.GET("/bookings", controller.GetUserBookings) // GET /api/v1/users/bookings
	}
}
