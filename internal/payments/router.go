package payments

import (
	"github.com/gin-gonic/gin"
)

// SetupPaymentRoutes configures the payment processor webhook. The endpoint
// is intentionally outside the JWT middleware; authenticity comes from the
// webhook signature.
func SetupPaymentRoutes(rg *gin.RouterGroup, handler *WebhookHandler) {
	payments := rg.Group("/payments")
	{
		payments.POST("/webhook", handler.Handle) // POST /api/v1/payments/webhook
	}
}
