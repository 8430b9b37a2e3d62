package payouts

import (
	"context"
	"fmt"
	"time"

	"workhive/internal/bookings"
	"workhive/internal/notifications"
	"workhive/internal/payments"
	"workhive/pkg/logger"
)

// GuardConfig controls how the disconnection guard escalates.
type GuardConfig struct {
	// FreezeWindow is how close to the booking start a disconnected payee
	// triggers a freeze.
	FreezeWindow time.Duration
	// CancelWindow is how close to the booking start a still-disconnected
	// payee forces cancellation with a full refund.
	CancelWindow time.Duration
	BatchSize    int
}

func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		FreezeWindow: 48 * time.Hour,
		CancelWindow: 24 * time.Hour,
		BatchSize:    100,
	}
}

// GuardStats summarizes one guard pass.
type GuardStats struct {
	Scanned   int
	Frozen    int
	Cancelled int
	Failed    int
}

// Guard protects guests from hosts whose payment account was disconnected
// after a booking was confirmed. Far from the start it does nothing and
// gives the host time to reconnect; inside the freeze window it freezes the
// booking and warns the host; inside the cancel window it cancels and
// refunds in full.
type Guard struct {
	repo        Repository
	bookingRepo bookings.Repository
	paymentRepo payments.Repository
	processor   payments.Processor
	notifier    notifications.Notifier
	config      GuardConfig
	log         *logger.Logger
}

func NewGuard(
	repo Repository,
	bookingRepo bookings.Repository,
	paymentRepo payments.Repository,
	processor payments.Processor,
	notifier notifications.Notifier,
	config GuardConfig,
	log *logger.Logger,
) *Guard {
	return &Guard{
		repo:        repo,
		bookingRepo: bookingRepo,
		paymentRepo: paymentRepo,
		processor:   processor,
		notifier:    notifier,
		config:      config,
		log:         log,
	}
}

// Run executes one guard pass as of now.
func (g *Guard) Run(ctx context.Context, now time.Time) (GuardStats, error) {
	var stats GuardStats

	affected, err := g.repo.FindActivePayeeDisconnected(ctx, g.config.BatchSize)
	if err != nil {
		return stats, err
	}
	stats.Scanned = len(affected)

	for i := range affected {
		booking := &affected[i]
		if err := g.processBooking(ctx, booking, now, &stats); err != nil {
			stats.Failed++
			g.log.ErrorWithContext(ctx, "Disconnection guard failed on booking", err, map[string]interface{}{
				"booking_id": booking.ID.String(),
			})
		}
	}

	return stats, nil
}

func (g *Guard) processBooking(ctx context.Context, booking *bookings.Booking, now time.Time, stats *GuardStats) error {
	start, err := booking.BookingStart()
	if err != nil {
		return err
	}
	untilStart := start.Sub(now)

	switch {
	case untilStart <= g.config.CancelWindow:
		return g.cancelAndRefund(ctx, booking, now, stats)
	case untilStart <= g.config.FreezeWindow:
		return g.freeze(ctx, booking, now, start, stats)
	default:
		// Plenty of runway left for the host to reconnect.
		return nil
	}
}

func (g *Guard) freeze(ctx context.Context, booking *bookings.Booking, now, start time.Time, stats *GuardStats) error {
	// Already frozen bookings just wait for the cancel window.
	if booking.Status != bookings.StatusConfirmed {
		return nil
	}

	applied, err := g.bookingRepo.Freeze(ctx, booking.ID, bookings.StatusConfirmed, now)
	if err != nil {
		return fmt.Errorf("failed to freeze booking: %w", err)
	}
	if !applied {
		return nil
	}
	stats.Frozen++

	deadline := start.Add(-g.config.CancelWindow)
	g.log.LogBookingFrozen(ctx, booking.ID.String(), booking.Space.HostID.String(), deadline)
	g.notifier.Notify(ctx, booking.Space.HostID, notifications.NotificationTypeBooking,
		"Urgent: reconnect your payment account",
		fmt.Sprintf("Booking %s will be cancelled and refunded unless your payment account is reconnected before %s.",
			booking.BookingRef, deadline.Format(time.RFC3339)),
		map[string]interface{}{
			"booking_id":  booking.ID.String(),
			"booking_ref": booking.BookingRef,
			"deadline":    deadline.Format(time.RFC3339),
		})
	g.notifier.Notify(ctx, booking.UserID, notifications.NotificationTypeBooking,
		"Booking on hold",
		fmt.Sprintf("Booking %s is on hold while the space resolves a payment account issue. It will be cancelled and refunded in full if not resolved by %s.",
			booking.BookingRef, deadline.Format(time.RFC3339)),
		map[string]interface{}{
			"booking_id":  booking.ID.String(),
			"booking_ref": booking.BookingRef,
			"deadline":    deadline.Format(time.RFC3339),
		})

	return nil
}

func (g *Guard) cancelAndRefund(ctx context.Context, booking *bookings.Booking, now time.Time, stats *GuardStats) error {
	applied, err := g.bookingRepo.Cancel(ctx, booking.ID, booking.Status, bookings.CancelParams{
		At:     now,
		ByHost: true,
		Reason: "Host payment account disconnected",
		Fee:    0,
	})
	if err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}
	if !applied {
		return nil
	}
	stats.Cancelled++
	g.log.LogBookingCancelled(ctx, booking.ID.String(), "payee account disconnected", true)

	if err := g.refundInFull(ctx, booking); err != nil {
		// The booking is already cancelled; the refund gets retried through
		// the payment reconciliation path rather than rolled back here.
		g.log.ErrorWithContext(ctx, "Failed to refund cancelled booking", err, map[string]interface{}{
			"booking_id": booking.ID.String(),
		})
	}

	g.notifier.Notify(ctx, booking.UserID, notifications.NotificationTypeBooking,
		"Booking cancelled",
		fmt.Sprintf("Booking %s was cancelled because the space can no longer accept payments. You will be refunded in full.", booking.BookingRef),
		map[string]interface{}{
			"booking_id":  booking.ID.String(),
			"booking_ref": booking.BookingRef,
		})
	g.notifier.Notify(ctx, booking.Space.HostID, notifications.NotificationTypeBooking,
		"Booking cancelled",
		fmt.Sprintf("Booking %s was cancelled because your payment account is disconnected.", booking.BookingRef),
		map[string]interface{}{
			"booking_id":  booking.ID.String(),
			"booking_ref": booking.BookingRef,
		})

	return nil
}

func (g *Guard) refundInFull(ctx context.Context, booking *bookings.Booking) error {
	payment := booking.Payment
	if payment == nil || payment.Status != payments.StatusCompleted {
		// Nothing captured, nothing to refund.
		return nil
	}

	refundID, err := g.processor.RefundPayment(ctx, payment.PaymentIntentID, map[string]string{
		"booking_id": booking.ID.String(),
		"reason":     "payee_disconnected",
	})
	if err != nil {
		return err
	}
	return g.paymentRepo.AttachRefund(ctx, payment.ID, refundID, payments.StatusRefunded)
}
