package bookings

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"workhive/internal/users"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// Reserve handles POST /api/v1/bookings/reserve
func (c *Controller) Reserve(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		respondCategory(ctx, ErrUnauthenticated)
		return
	}

	var req ReserveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	response, err := c.service.Reserve(ctx.Request.Context(), userID, req)
	if err != nil {
		respondCategory(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Slot reserved successfully",
		"data":    response,
	})
}

// GetBooking handles GET /api/v1/bookings/:id
func (c *Controller) GetBooking(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		respondCategory(ctx, ErrUnauthenticated)
		return
	}

	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	isAdmin := currentRole(ctx) == string(users.RoleAdmin)
	booking, err := c.service.GetBooking(ctx.Request.Context(), bookingID, userID, isAdmin)
	if err != nil {
		respondCategory(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": booking})
}

// GetUserBookings handles GET /api/v1/users/bookings
func (c *Controller) GetUserBookings(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		respondCategory(ctx, ErrUnauthenticated)
		return
	}

	query := BookingListQuery{
		Status: ctx.Query("status"),
	}
	if page, err := strconv.Atoi(ctx.DefaultQuery("page", "1")); err == nil {
		query.Page = page
	}
	if limit, err := strconv.Atoi(ctx.DefaultQuery("limit", "10")); err == nil {
		query.Limit = limit
	}

	bookings, total, err := c.service.GetUserBookings(ctx.Request.Context(), userID, query)
	if err != nil {
		respondCategory(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"data": BookingListResponse{
			Bookings:   bookings,
			TotalCount: total,
			Page:       query.Page,
			Limit:      query.Limit,
			TotalPages: CalculateTotalPages(total, query.Limit),
		},
	})
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel
func (c *Controller) CancelBooking(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		respondCategory(ctx, ErrUnauthenticated)
		return
	}

	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	var req CancelRequest
	_ = ctx.ShouldBindJSON(&req)

	if err := c.service.CancelBooking(ctx.Request.Context(), bookingID, userID, req.Reason); err != nil {
		respondCategory(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Booking cancelled successfully"})
}

// AssessBooking handles GET /api/v1/bookings/:id/assessment
func (c *Controller) AssessBooking(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		respondCategory(ctx, ErrUnauthenticated)
		return
	}

	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	assessment, err := c.service.AssessBooking(ctx.Request.Context(), bookingID, userID)
	if err != nil {
		respondCategory(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": assessment})
}

// DecideBooking handles POST /api/v1/bookings/:id/decision
func (c *Controller) DecideBooking(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		respondCategory(ctx, ErrUnauthenticated)
		return
	}

	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	var req DecisionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := c.service.DecideBooking(ctx.Request.Context(), bookingID, userID, req.Approve); err != nil {
		respondCategory(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Decision recorded"})
}

// MarkServed handles POST /api/v1/bookings/:id/served (admin only; the
// service-window trigger is an external collaborator)
func (c *Controller) MarkServed(ctx *gin.Context) {
	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	if err := c.service.MarkServed(ctx.Request.Context(), bookingID, time.Now()); err != nil {
		respondCategory(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Booking marked as served"})
}

// respondCategory maps each failure category to a distinct user-facing
// response; internal details never leak to the caller.
func respondCategory(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated", "code": "UNAUTHENTICATED"})
	case errors.Is(err, ErrSlotUnavailable):
		ctx.JSON(http.StatusConflict, gin.H{"error": "This slot is no longer available, please pick another one", "code": "SLOT_UNAVAILABLE"})
	case errors.Is(err, ErrPayeeAccountUnusable):
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "This space cannot accept bookings right now", "code": "PAYEE_ACCOUNT_UNUSABLE"})
	case errors.Is(err, ErrSpaceUnavailable):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Space is not available for booking", "code": "SPACE_UNAVAILABLE"})
	case errors.Is(err, ErrBookingNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Booking not found", "code": "NOT_FOUND"})
	case errors.Is(err, ErrForbidden):
		ctx.JSON(http.StatusForbidden, gin.H{"error": "You cannot access this booking", "code": "FORBIDDEN"})
	case errors.Is(err, ErrTerminalStatus), errors.Is(err, ErrInvalidTransition):
		ctx.JSON(http.StatusConflict, gin.H{"error": "Booking state does not allow this operation", "code": "INVALID_STATE"})
	case errors.Is(err, ErrPaymentNotCaptured):
		ctx.JSON(http.StatusConflict, gin.H{"error": "Payment has not been captured yet", "code": "PAYMENT_PENDING"})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong, please try again", "code": "INTERNAL"})
	}
}

func currentUserID(ctx *gin.Context) (uuid.UUID, bool) {
	raw, exists := ctx.Get("user_id")
	if !exists {
		return uuid.Nil, false
	}
	str, ok := raw.(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(str)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func currentRole(ctx *gin.Context) string {
	raw, exists := ctx.Get("user_role")
	if !exists {
		return ""
	}
	role, _ := raw.(string)
	return role
}
