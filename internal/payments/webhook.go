package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"

	"workhive/internal/users"
	"workhive/pkg/logger"
)

const maxWebhookBodyBytes = 65536

// BookingLifecycle is the slice of the booking service the webhook needs.
// Declared here so the dependency points from bookings to payments only.
type BookingLifecycle interface {
	HandlePaymentCaptured(ctx context.Context, bookingID uuid.UUID) error
}

// WebhookHandler ingests payment processor events. Signature verification
// happens before anything else; an unverifiable payload is dropped with 400.
type WebhookHandler struct {
	secret    string
	repo      Repository
	userRepo  users.Repository
	lifecycle BookingLifecycle
	log       *logger.Logger
}

func NewWebhookHandler(secret string, repo Repository, userRepo users.Repository, lifecycle BookingLifecycle, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		secret:    secret,
		repo:      repo,
		userRepo:  userRepo,
		lifecycle: lifecycle,
		log:       log,
	}
}

// Handle processes POST /api/v1/payments/webhook
func (h *WebhookHandler) Handle(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxWebhookBodyBytes)
	payload, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read webhook body"})
		return
	}

	event, err := webhook.ConstructEvent(payload, ctx.GetHeader("Stripe-Signature"), h.secret)
	if err != nil {
		h.log.LogAuthFailure(ctx.Request.Context(), "invalid webhook signature", ctx.ClientIP())
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook signature"})
		return
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		err = h.handleCheckoutCompleted(ctx.Request.Context(), event)
	case stripe.EventTypeAccountUpdated:
		err = h.handleAccountUpdated(ctx.Request.Context(), event)
	case stripe.EventTypeChargeDisputeCreated:
		err = h.handleDisputeCreated(ctx.Request.Context(), event)
	default:
		h.log.InfoWithContext(ctx.Request.Context(), "Ignoring webhook event", map[string]interface{}{
			"event_type": string(event.Type),
		})
	}

	if err != nil {
		h.log.ErrorWithContext(ctx.Request.Context(), "Webhook processing failed", err, map[string]interface{}{
			"event_id":   event.ID,
			"event_type": string(event.Type),
		})
		// Non-2xx makes the processor retry the event.
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process event"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *WebhookHandler) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return err
	}

	payment, err := h.resolveSessionPayment(ctx, &session)
	if err != nil {
		return err
	}

	paymentIntentID := ""
	if session.PaymentIntent != nil {
		paymentIntentID = session.PaymentIntent.ID
	}
	if err := h.repo.MarkCaptured(ctx, payment.ID, session.ID, paymentIntentID); err != nil {
		return err
	}

	return h.lifecycle.HandlePaymentCaptured(ctx, payment.BookingID)
}

// resolveSessionPayment maps a checkout session back to its payment row. The
// session carries the booking id in its metadata, set when the session was
// created; the session-id lookup covers redelivered events for payments that
// were already captured once.
func (h *WebhookHandler) resolveSessionPayment(ctx context.Context, session *stripe.CheckoutSession) (*Payment, error) {
	if raw, ok := session.Metadata["booking_id"]; ok {
		bookingID, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("malformed booking_id in session metadata: %w", err)
		}
		return h.repo.GetByBookingID(ctx, bookingID)
	}
	return h.repo.GetByCheckoutSessionID(ctx, session.ID)
}

func (h *WebhookHandler) handleAccountUpdated(ctx context.Context, event stripe.Event) error {
	var account stripe.Account
	if err := json.Unmarshal(event.Data.Raw, &account); err != nil {
		return err
	}

	h.log.InfoWithContext(ctx, "Payee account updated", map[string]interface{}{
		"account_id":      account.ID,
		"charges_enabled": account.ChargesEnabled,
		"payouts_enabled": account.PayoutsEnabled,
	})
	return h.userRepo.UpdatePaymentAccount(ctx, account.ID, account.ChargesEnabled, account.PayoutsEnabled)
}

func (h *WebhookHandler) handleDisputeCreated(ctx context.Context, event stripe.Event) error {
	var dispute stripe.Dispute
	if err := json.Unmarshal(event.Data.Raw, &dispute); err != nil {
		return err
	}
	if dispute.PaymentIntent == nil {
		return nil
	}

	payment, err := h.repo.GetByPaymentIntentID(ctx, dispute.PaymentIntent.ID)
	if err != nil {
		return err
	}
	// A dispute blocks the payout until it resolves.
	return h.repo.UpdateStatus(ctx, payment.ID, StatusDisputed)
}
