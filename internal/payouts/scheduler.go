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

// SchedulerConfig controls the payout sweep.
type SchedulerConfig struct {
	// PayoutDelay is how long after service completion funds are released.
	PayoutDelay time.Duration
	// BatchSize caps how many candidates one sweep processes.
	BatchSize int
}

func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		PayoutDelay: 24 * time.Hour,
		BatchSize:   100,
	}
}

// SweepStats summarizes one scheduler pass.
type SweepStats struct {
	Scanned int
	Issued  int
	Skipped int
	Failed  int
}

// Scheduler releases host payouts for served bookings once the delay has
// elapsed. Each candidate is handled independently so one bad record never
// stalls the sweep.
type Scheduler struct {
	repo        Repository
	bookingRepo bookings.Repository
	paymentRepo payments.Repository
	processor   payments.Processor
	notifier    notifications.Notifier
	config      SchedulerConfig
	log         *logger.Logger
}

func NewScheduler(
	repo Repository,
	bookingRepo bookings.Repository,
	paymentRepo payments.Repository,
	processor payments.Processor,
	notifier notifications.Notifier,
	config SchedulerConfig,
	log *logger.Logger,
) *Scheduler {
	return &Scheduler{
		repo:        repo,
		bookingRepo: bookingRepo,
		paymentRepo: paymentRepo,
		processor:   processor,
		notifier:    notifier,
		config:      config,
		log:         log,
	}
}

// Run executes one sweep as of now. Callers may invoke it from the ticker
// loop or directly with a pinned clock.
func (s *Scheduler) Run(ctx context.Context, now time.Time) (SweepStats, error) {
	var stats SweepStats

	cutoff := now.Add(-s.config.PayoutDelay)
	candidates, err := s.repo.FindPayoutCandidates(ctx, cutoff, s.config.BatchSize)
	if err != nil {
		return stats, err
	}
	stats.Scanned = len(candidates)

	for i := range candidates {
		booking := &candidates[i]
		issued, err := s.processCandidate(ctx, booking, now)
		switch {
		case err != nil:
			stats.Failed++
			s.log.ErrorWithContext(ctx, "Payout failed", err, map[string]interface{}{
				"booking_id": booking.ID.String(),
			})
		case issued:
			stats.Issued++
		default:
			stats.Skipped++
		}
	}

	return stats, nil
}

func (s *Scheduler) processCandidate(ctx context.Context, booking *bookings.Booking, now time.Time) (bool, error) {
	payment := booking.Payment
	if payment == nil {
		s.log.LogPayoutSkipped(ctx, booking.ID.String(), "no payment record")
		return false, nil
	}
	if payment.Status.BlocksPayout() {
		s.log.LogPayoutSkipped(ctx, booking.ID.String(), fmt.Sprintf("payment status %s", payment.Status))
		return false, nil
	}

	if booking.Space == nil || booking.Space.Host == nil {
		return false, fmt.Errorf("booking %s has no host loaded", booking.ID)
	}
	host := booking.Space.Host
	if !host.PaymentAccountUsable() {
		s.log.LogPayoutSkipped(ctx, booking.ID.String(), "payee account unusable")
		return false, nil
	}

	// Claim the booking before any money moves. Exactly one sweep wins the
	// claim, so a transfer is created at most once per booking.
	claimed, err := s.bookingRepo.ClaimPayout(ctx, booking.ID, now)
	if err != nil {
		return false, fmt.Errorf("failed to claim payout: %w", err)
	}
	if !claimed {
		s.log.LogPayoutSkipped(ctx, booking.ID.String(), "already claimed by concurrent sweep")
		return false, nil
	}

	transferID, err := s.processor.CreateTransfer(ctx, payments.TransferInput{
		DestinationAccount: host.StripeAccountID,
		Amount:             payment.PayeeAmount,
		Currency:           payment.Currency,
		Metadata: map[string]string{
			"booking_id":  booking.ID.String(),
			"booking_ref": booking.BookingRef,
		},
	})
	if err != nil {
		if _, releaseErr := s.bookingRepo.ReleasePayoutClaim(ctx, booking.ID); releaseErr != nil {
			s.log.ErrorWithContext(ctx, "Failed to release payout claim after transfer error", releaseErr, map[string]interface{}{
				"booking_id": booking.ID.String(),
			})
		}
		return false, fmt.Errorf("failed to create transfer: %w", err)
	}

	applied, err := s.bookingRepo.CompletePayout(ctx, booking.ID, transferID, now)
	if err != nil {
		return false, fmt.Errorf("failed to record payout: %w", err)
	}
	if !applied {
		return false, fmt.Errorf("payout claim for booking %s vanished before completion", booking.ID)
	}

	if err := s.paymentRepo.AttachTransfer(ctx, payment.ID, transferID); err != nil {
		s.log.ErrorWithContext(ctx, "Failed to attach transfer to payment", err, map[string]interface{}{
			"booking_id":  booking.ID.String(),
			"transfer_id": transferID,
		})
	}

	s.log.LogPayoutIssued(ctx, booking.ID.String(), transferID, payment.PayeeAmount)
	s.notifier.Notify(ctx, booking.Space.HostID, notifications.NotificationTypePayout,
		"Payout on the way",
		fmt.Sprintf("Your payout for booking %s has been issued.", booking.BookingRef),
		map[string]interface{}{
			"booking_id":  booking.ID.String(),
			"booking_ref": booking.BookingRef,
			"amount":      payment.PayeeAmount,
			"currency":    payment.Currency,
			"transfer_id": transferID,
		})

	return true, nil
}
