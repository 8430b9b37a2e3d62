package slotlock

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// Acquire handles POST /api/v1/slots/lock
func (c *Controller) Acquire(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	var key SlotKey
	if err := ctx.ShouldBindJSON(&key); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	status, err := c.service.Acquire(ctx.Request.Context(), key, userID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to acquire slot lock"})
		return
	}

	code := http.StatusOK
	if !status.OwnHold {
		code = http.StatusConflict
	}
	ctx.JSON(code, gin.H{"data": status})
}

// Refresh handles POST /api/v1/slots/lock/refresh
func (c *Controller) Refresh(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	var key SlotKey
	if err := ctx.ShouldBindJSON(&key); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	status, err := c.service.Refresh(ctx.Request.Context(), key, userID)
	if err != nil {
		if errors.Is(err, ErrNotHolder) {
			ctx.JSON(http.StatusConflict, gin.H{"error": "Slot lock is not held by you", "code": "NOT_HOLDER"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh slot lock"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": status})
}

// Release handles DELETE /api/v1/slots/lock
func (c *Controller) Release(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	var key SlotKey
	if err := ctx.ShouldBindJSON(&key); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := c.service.Release(ctx.Request.Context(), key, userID); err != nil {
		if errors.Is(err, ErrNotHolder) {
			ctx.JSON(http.StatusConflict, gin.H{"error": "Slot lock is not held by you", "code": "NOT_HOLDER"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to release slot lock"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Slot lock released"})
}

// Status handles GET /api/v1/slots/lock/status
func (c *Controller) Status(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	key := SlotKey{
		SpaceID:   ctx.Query("space_id"),
		Date:      ctx.Query("date"),
		StartTime: ctx.Query("start_time"),
		EndTime:   ctx.Query("end_time"),
	}
	if key.SpaceID == "" || key.Date == "" || key.StartTime == "" || key.EndTime == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "space_id, date, start_time and end_time are required"})
		return
	}

	status, err := c.service.Status(ctx.Request.Context(), key, userID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read slot lock status"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": status})
}

func respondUnauthenticated(ctx *gin.Context) {
	ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated", "code": "UNAUTHENTICATED"})
}

func currentUserID(ctx *gin.Context) (string, bool) {
	raw, exists := ctx.Get("user_id")
	if !exists {
		return "", false
	}
	str, ok := raw.(string)
	if !ok {
		return "", false
	}
	if _, err := uuid.Parse(str); err != nil {
		return "", false
	}
	return str, true
}
