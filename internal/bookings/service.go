package bookings

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"math/big"
	"time"

	"github.com/google/uuid"

	"workhive/internal/notifications"
	"workhive/internal/payments"
	"workhive/internal/risk"
	"workhive/internal/spaces"
	"workhive/pkg/logger"
)

// Policy carries the booking lifecycle knobs the service applies.
type Policy struct {
	// ReservationWindow is how long a fresh reservation is held for payment.
	ReservationWindow time.Duration
	// PlatformFeePct is the platform's cut of the gross amount.
	PlatformFeePct float64
	// LateCancelWindow: guest cancellations inside this window before the
	// booking start incur LateCancelFeePct of the gross amount.
	LateCancelWindow time.Duration
	LateCancelFeePct float64
}

// DefaultPolicy returns the production policy defaults.
func DefaultPolicy() Policy {
	return Policy{
		ReservationWindow: 15 * time.Minute,
		PlatformFeePct:    0.15,
		LateCancelWindow:  24 * time.Hour,
		LateCancelFeePct:  0.5,
	}
}

// Service is the booking business logic: the atomic slot reservation, the
// host decision flow, explicit cancellation, and the lifecycle hooks driven
// by payment capture and the service clock.
type Service interface {
	Reserve(ctx context.Context, userID uuid.UUID, req ReserveRequest) (*ReserveResponse, error)
	GetBooking(ctx context.Context, bookingID, requesterID uuid.UUID, isAdmin bool) (*Booking, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) ([]Booking, int64, error)
	CancelBooking(ctx context.Context, bookingID, actorID uuid.UUID, reason string) error
	AssessBooking(ctx context.Context, bookingID, hostID uuid.UUID) (*risk.Assessment, error)
	DecideBooking(ctx context.Context, bookingID, hostID uuid.UUID, approve bool) error

	// Lifecycle hooks
	HandlePaymentCaptured(ctx context.Context, bookingID uuid.UUID) error
	MarkServed(ctx context.Context, bookingID uuid.UUID, completedAt time.Time) error

	// ReleaseExpiredReservations cancels reservations whose hold window
	// lapsed without a captured payment, freeing their slots.
	ReleaseExpiredReservations(ctx context.Context) (int, error)
}

type service struct {
	repo      Repository
	spaceRepo spaces.Repository
	payments  payments.Repository
	processor payments.Processor
	riskSvc   risk.Service
	notifier  notifications.Notifier
	policy    Policy
	log       *logger.Logger
	now       func() time.Time
}

func NewService(
	repo Repository,
	spaceRepo spaces.Repository,
	paymentRepo payments.Repository,
	processor payments.Processor,
	riskSvc risk.Service,
	notifier notifications.Notifier,
	policy Policy,
	log *logger.Logger,
) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	if notifier == nil {
		notifier = notifications.NoopNotifier{}
	}
	return &service{
		repo:      repo,
		spaceRepo: spaceRepo,
		payments:  paymentRepo,
		processor: processor,
		riskSvc:   riskSvc,
		notifier:  notifier,
		policy:    policy,
		log:       log,
		now:       time.Now,
	}
}

// Reserve validates the requested slot and creates the booking atomically.
// The advisory client lock has no bearing here: the reservation transaction
// is the sole authority on conflicts.
func (s *service) Reserve(ctx context.Context, userID uuid.UUID, req ReserveRequest) (*ReserveResponse, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	spaceID, err := uuid.Parse(req.SpaceID)
	if err != nil {
		return nil, fmt.Errorf("invalid space id: %w", err)
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: must be YYYY-MM-DD", req.Date)
	}
	if err := ValidateSlotTimes(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	today := s.now().Truncate(24 * time.Hour)
	if date.Before(today) {
		return nil, fmt.Errorf("cannot book a past date")
	}

	confirmationType := ConfirmationType(req.ConfirmationType)
	if req.ConfirmationType == "" {
		confirmationType = ConfirmationInstant
	}
	if !confirmationType.IsValid() {
		return nil, fmt.Errorf("invalid confirmation type %q", req.ConfirmationType)
	}

	space, err := s.spaceRepo.GetByIDWithHost(ctx, spaceID)
	if err != nil {
		return nil, ErrSpaceUnavailable
	}
	if !space.IsBookable() {
		return nil, ErrSpaceUnavailable
	}

	// Checked at reservation time, not just at payout time: a payee without a
	// usable connected account cannot take new bookings at all.
	if space.Host == nil || !space.Host.PaymentAccountUsable() {
		return nil, ErrPayeeAccountUnusable
	}

	status := StatusConfirmed
	if confirmationType == ConfirmationHostApproval {
		status = StatusPending
	}

	bookingRef, err := s.generateBookingReference()
	if err != nil {
		return nil, fmt.Errorf("failed to generate booking reference: %w", err)
	}

	reservedUntil := s.now().Add(s.policy.ReservationWindow)
	booking := &Booking{
		SpaceID:          spaceID,
		UserID:           userID,
		Date:             date,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		Status:           status,
		ConfirmationType: confirmationType,
		BookingRef:       bookingRef,
		ReservationToken: uuid.New().String(),
		ReservedUntil:    &reservedUntil,
	}

	gross, payeeAmount, platformFee, err := s.priceBooking(booking, space)
	if err != nil {
		return nil, err
	}

	payment := &payments.Payment{
		GrossAmount: gross,
		PayeeAmount: payeeAmount,
		PlatformFee: platformFee,
		Currency:    "USD",
		Status:      payments.StatusPending,
	}

	if err := s.repo.Reserve(ctx, booking, payment); err != nil {
		if errors.Is(err, ErrSlotUnavailable) {
			s.log.LogSlotConflict(ctx, spaceID.String(), userID.String())
			return nil, ErrSlotUnavailable
		}
		if errors.Is(err, ErrSpaceUnavailable) {
			return nil, ErrSpaceUnavailable
		}
		return nil, fmt.Errorf("reservation failed: %w", err)
	}

	s.log.LogSlotReserved(ctx, booking.ID.String(), spaceID.String(), userID.String())

	s.notifier.Notify(ctx, space.HostID, notifications.NotificationTypeBooking,
		"New booking request",
		fmt.Sprintf("%s was booked for %s %s-%s", space.Title, req.Date, req.StartTime, req.EndTime),
		map[string]interface{}{
			"booking_id":  booking.ID.String(),
			"space_title": space.Title,
			"gross":       gross,
		})

	return &ReserveResponse{
		BookingID:        booking.ID.String(),
		BookingRef:       booking.BookingRef,
		Status:           booking.Status.String(),
		ConfirmationType: string(booking.ConfirmationType),
		ReservationToken: booking.ReservationToken,
		ReservedUntil:    reservedUntil,
		Payment:          payment.ToPaymentInfo(),
	}, nil
}

func (s *service) priceBooking(booking *Booking, space *spaces.Space) (gross, payee, fee float64, err error) {
	hours, err := booking.DurationHours()
	if err != nil {
		return 0, 0, 0, err
	}
	gross = round2(hours * space.HourlyRate)
	fee = round2(gross * s.policy.PlatformFeePct)
	payee = round2(gross - fee)
	return gross, payee, fee, nil
}

// GetBooking retrieves a booking; only the requester, the space host, or an
// admin may read it.
func (s *service) GetBooking(ctx context.Context, bookingID, requesterID uuid.UUID, isAdmin bool) (*Booking, error) {
	booking, err := s.repo.GetByIDWithRelations(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !isAdmin && booking.UserID != requesterID {
		if booking.Space == nil || booking.Space.HostID != requesterID {
			return nil, ErrForbidden
		}
	}
	return booking, nil
}

func (s *service) GetUserBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) ([]Booking, int64, error) {
	return s.repo.GetUserBookings(ctx, userID, query)
}

// CancelBooking cancels a booking on behalf of the guest or the host. Guest
// cancellations close to the start incur a late fee; the rest of the payment
// is refunded through the processor.
func (s *service) CancelBooking(ctx context.Context, bookingID, actorID uuid.UUID, reason string) error {
	booking, err := s.repo.GetByIDWithRelations(ctx, bookingID)
	if err != nil {
		return err
	}

	byHost := booking.Space != nil && booking.Space.HostID == actorID
	if booking.UserID != actorID && !byHost {
		return ErrForbidden
	}

	if booking.Status.IsTerminal() {
		return ErrTerminalStatus
	}
	if !booking.Status.CanBeCancelled() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, StatusCancelled)
	}

	now := s.now()
	fee := 0.0
	if !byHost && booking.Payment != nil && booking.Payment.IsCompleted() {
		start, err := booking.BookingStart()
		if err != nil {
			return err
		}
		if start.Sub(now) < s.policy.LateCancelWindow {
			fee = round2(booking.Payment.GrossAmount * s.policy.LateCancelFeePct)
		}
	}

	applied, err := s.repo.Cancel(ctx, bookingID, booking.Status, CancelParams{
		At:     now,
		ByHost: byHost,
		Reason: reason,
		Fee:    fee,
	})
	if err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}
	if !applied {
		// Lost the race to another transition; report the terminal conflict.
		return ErrTerminalStatus
	}

	if booking.Payment != nil && booking.Payment.IsCompleted() {
		s.refundAfterCancel(ctx, booking, fee)
	}

	s.log.LogBookingCancelled(ctx, bookingID.String(), reason, byHost)
	s.notifyCancellation(ctx, booking, byHost, reason)
	return nil
}

// refundAfterCancel issues the refund for a cancelled booking. Full refunds
// go straight through the processor; partial refunds (late-cancel fee) are
// parked in REFUND_PENDING for the payments pipeline, which also blocks any
// payout until resolved.
func (s *service) refundAfterCancel(ctx context.Context, booking *Booking, fee float64) {
	payment := booking.Payment
	if fee > 0 {
		if err := s.payments.UpdateStatus(ctx, payment.ID, payments.StatusRefundPending); err != nil {
			s.log.ErrorWithContext(ctx, "Failed to mark payment refund-pending", err, map[string]interface{}{
				"booking_id": booking.ID.String(),
				"payment_id": payment.ID.String(),
			})
		}
		return
	}

	refundID, err := s.processor.RefundPayment(ctx, payment.PaymentIntentID, map[string]string{
		"booking_id": booking.ID.String(),
		"payment_id": payment.ID.String(),
		"reason":     "booking_cancelled",
	})
	if err != nil {
		s.log.ErrorWithContext(ctx, "Refund failed", err, map[string]interface{}{
			"booking_id": booking.ID.String(),
			"payment_id": payment.ID.String(),
		})
		return
	}
	if err := s.payments.AttachRefund(ctx, payment.ID, refundID, payments.StatusRefunded); err != nil {
		s.log.ErrorWithContext(ctx, "Failed to record refund", err, map[string]interface{}{
			"booking_id": booking.ID.String(),
			"refund_id":  refundID,
		})
	}
}

func (s *service) notifyCancellation(ctx context.Context, booking *Booking, byHost bool, reason string) {
	data := map[string]interface{}{
		"booking_id": booking.ID.String(),
		"reason":     reason,
	}
	if booking.Space != nil {
		data["space_title"] = booking.Space.Title
	}

	s.notifier.Notify(ctx, booking.UserID, notifications.NotificationTypeBooking,
		"Booking cancelled", "Your booking was cancelled", data)
	if booking.Space != nil {
		s.notifier.Notify(ctx, booking.Space.HostID, notifications.NotificationTypeBooking,
			"Booking cancelled", "A booking for your space was cancelled", data)
	}
}

// AssessBooking returns the advisory risk assessment for a host-gated
// booking. It never changes booking state.
func (s *service) AssessBooking(ctx context.Context, bookingID, hostID uuid.UUID) (*risk.Assessment, error) {
	booking, err := s.repo.GetByIDWithRelations(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Space == nil || booking.Space.HostID != hostID {
		return nil, ErrForbidden
	}
	return s.riskSvc.Assess(ctx, booking.UserID, booking.SpaceID)
}

// DecideBooking applies the host's approve/reject decision to a
// host-approval booking.
func (s *service) DecideBooking(ctx context.Context, bookingID, hostID uuid.UUID, approve bool) error {
	booking, err := s.repo.GetByIDWithRelations(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.Space == nil || booking.Space.HostID != hostID {
		return ErrForbidden
	}
	if booking.ConfirmationType != ConfirmationHostApproval {
		return fmt.Errorf("booking %s does not require host approval", bookingID)
	}
	if booking.Status != StatusPending {
		if booking.Status.IsTerminal() {
			return ErrTerminalStatus
		}
		return fmt.Errorf("%w: booking is %s", ErrInvalidTransition, booking.Status)
	}

	if approve {
		if booking.Payment == nil || !booking.Payment.IsCompleted() {
			return ErrPaymentNotCaptured
		}
		applied, err := s.repo.TransitionStatus(ctx, bookingID, StatusPending, StatusConfirmed, nil)
		if err != nil {
			return err
		}
		if applied {
			s.notifier.Notify(ctx, booking.UserID, notifications.NotificationTypeBooking,
				"Booking approved", "The host approved your booking", map[string]interface{}{
					"booking_id": booking.ID.String(),
				})
		}
		return nil
	}

	applied, err := s.repo.TransitionStatus(ctx, bookingID, StatusPending, StatusRejected, nil)
	if err != nil {
		return err
	}
	if !applied {
		return nil
	}

	if booking.Payment != nil && booking.Payment.IsCompleted() {
		s.refundAfterCancel(ctx, booking, 0)
	}
	s.notifier.Notify(ctx, booking.UserID, notifications.NotificationTypeBooking,
		"Booking declined", "The host declined your booking request", map[string]interface{}{
			"booking_id": booking.ID.String(),
		})
	return nil
}

// HandlePaymentCaptured reacts to the payment processor confirming capture.
// Instant bookings are already CONFIRMED; host-approval bookings stay PENDING
// and the host is prompted with an advisory risk assessment.
func (s *service) HandlePaymentCaptured(ctx context.Context, bookingID uuid.UUID) error {
	booking, err := s.repo.GetByIDWithRelations(ctx, bookingID)
	if err != nil {
		return err
	}

	data := map[string]interface{}{
		"booking_id": booking.ID.String(),
	}
	if booking.Space != nil {
		data["space_title"] = booking.Space.Title
	}

	if booking.ConfirmationType == ConfirmationHostApproval && booking.Status == StatusPending {
		if assessment, err := s.riskSvc.Assess(ctx, booking.UserID, booking.SpaceID); err == nil {
			data["risk_action"] = string(assessment.Action)
			data["risk_score"] = assessment.Score
			data["risk_confidence"] = assessment.Confidence
		} else {
			s.log.ErrorWithContext(ctx, "Risk assessment failed", err, map[string]interface{}{
				"booking_id": booking.ID.String(),
			})
		}

		if booking.Space != nil {
			s.notifier.Notify(ctx, booking.Space.HostID, notifications.NotificationTypeBooking,
				"Booking awaiting your decision",
				"A paid booking request is waiting for approval", data)
		}
		s.notifier.Notify(ctx, booking.UserID, notifications.NotificationTypeBooking,
			"Payment received", "Your booking request is awaiting host approval", data)
		return nil
	}

	s.notifier.Notify(ctx, booking.UserID, notifications.NotificationTypeBooking,
		"Booking confirmed", "Your payment was received and the booking is confirmed", data)
	return nil
}

// MarkServed records that the booked service window has elapsed. Idempotent:
// re-marking an already served booking is a no-op.
func (s *service) MarkServed(ctx context.Context, bookingID uuid.UUID, completedAt time.Time) error {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.Status == StatusServed {
		return nil
	}
	if booking.Status != StatusConfirmed {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, StatusServed)
	}

	_, err = s.repo.MarkServed(ctx, bookingID, completedAt)
	return err
}

// expiredSweepBatch bounds one sweep so a backlog drains across runs.
const expiredSweepBatch = 100

// ReleaseExpiredReservations releases slot holds that were never paid for.
// Each booking is cancelled through the usual compare-and-swap, so a payment
// capture or host decision landing mid-sweep wins the race and the booking is
// left alone. Failures on one booking do not stop the rest.
func (s *service) ReleaseExpiredReservations(ctx context.Context) (int, error) {
	now := s.now()
	expired, err := s.repo.FindExpiredUnpaid(ctx, now, expiredSweepBatch)
	if err != nil {
		return 0, fmt.Errorf("failed to find expired reservations: %w", err)
	}

	released := 0
	for i := range expired {
		booking := &expired[i]

		if booking.Payment != nil && booking.Payment.IsCompleted() {
			continue
		}

		applied, err := s.repo.Cancel(ctx, booking.ID, booking.Status, CancelParams{
			At:     now,
			ByHost: false,
			Reason: "Reservation expired unpaid",
			Fee:    0,
		})
		if err != nil {
			s.log.ErrorWithContext(ctx, "Failed to release expired reservation", err, map[string]interface{}{
				"booking_id": booking.ID.String(),
			})
			continue
		}
		if !applied {
			continue
		}

		released++
		s.log.LogBookingCancelled(ctx, booking.ID.String(), "Reservation expired unpaid", false)
		s.notifier.Notify(ctx, booking.UserID, notifications.NotificationTypeBooking,
			"Reservation expired",
			"Your reservation was released because payment was not completed in time",
			map[string]interface{}{
				"booking_id": booking.ID.String(),
			})
	}

	return released, nil
}

// generateBookingReference generates a unique booking reference
func (s *service) generateBookingReference() (string, error) {
	timestamp := s.now().Format("20060102")

	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	randomPart := make([]byte, 6)

	for i := range randomPart {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
		if err != nil {
			return "", err
		}
		randomPart[i] = letters[num.Int64()]
	}

	return fmt.Sprintf("WRK-%s-%s", timestamp, string(randomPart)), nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
