package slotlock

import (
	"github.com/gin-gonic/gin"

	"workhive/internal/shared/middleware"
)

// SetupSlotLockRoutes configures the advisory slot lock routes
func SetupSlotLockRoutes(rg *gin.RouterGroup, controller *Controller) {
	slots := rg.Group("/slots")
	slots.Use(middleware.JWTAuth(), middleware.RequireRoles("USER", "HOST", "ADMIN"))
	{
		slots.POST("/lock", controller.Acquire)           // POST /api/v1/slots/lock
		slots.POST("/lock/refresh", controller.Refresh)   // POST /api/v1/slots/lock/refresh
		slots.DELETE("/lock", controller.Release)         // DELETE /api/v1/slots/lock
		slots.GET("/lock/status", controller.Status)      // GET /api/v1/slots/lock/status
	}
}
