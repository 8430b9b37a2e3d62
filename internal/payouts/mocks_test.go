package payouts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"workhive/internal/bookings"
	"workhive/internal/payments"
	"workhive/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New()
}

type mockCandidateRepo struct {
	mock.Mock
}

func (m *mockCandidateRepo) FindPayoutCandidates(ctx context.Context, cutoff time.Time, limit int) ([]bookings.Booking, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]bookings.Booking), args.Error(1)
}

func (m *mockCandidateRepo) FindActivePayeeDisconnected(ctx context.Context, limit int) ([]bookings.Booking, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]bookings.Booking), args.Error(1)
}

type mockBookingRepo struct {
	mock.Mock
}

func (m *mockBookingRepo) Reserve(ctx context.Context, booking *bookings.Booking, payment *payments.Payment) error {
	args := m.Called(ctx, booking, payment)
	return args.Error(0)
}

func (m *mockBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*bookings.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bookings.Booking), args.Error(1)
}

func (m *mockBookingRepo) GetByIDWithRelations(ctx context.Context, id uuid.UUID) (*bookings.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bookings.Booking), args.Error(1)
}

func (m *mockBookingRepo) GetUserBookings(ctx context.Context, userID uuid.UUID, query bookings.BookingListQuery) ([]bookings.Booking, int64, error) {
	args := m.Called(ctx, userID, query)
	return args.Get(0).([]bookings.Booking), args.Get(1).(int64), args.Error(2)
}

func (m *mockBookingRepo) TransitionStatus(ctx context.Context, id uuid.UUID, from, to bookings.Status, extra map[string]interface{}) (bool, error) {
	args := m.Called(ctx, id, from, to, extra)
	return args.Bool(0), args.Error(1)
}

func (m *mockBookingRepo) MarkServed(ctx context.Context, id uuid.UUID, completedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, completedAt)
	return args.Bool(0), args.Error(1)
}

func (m *mockBookingRepo) Freeze(ctx context.Context, id uuid.UUID, from bookings.Status, now time.Time) (bool, error) {
	args := m.Called(ctx, id, from, now)
	return args.Bool(0), args.Error(1)
}

func (m *mockBookingRepo) Cancel(ctx context.Context, id uuid.UUID, from bookings.Status, params bookings.CancelParams) (bool, error) {
	args := m.Called(ctx, id, from, params)
	return args.Bool(0), args.Error(1)
}

func (m *mockBookingRepo) ClaimPayout(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	args := m.Called(ctx, id, now)
	return args.Bool(0), args.Error(1)
}

func (m *mockBookingRepo) ReleasePayoutClaim(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockBookingRepo) CompletePayout(ctx context.Context, id uuid.UUID, transferID string, now time.Time) (bool, error) {
	args := m.Called(ctx, id, transferID, now)
	return args.Bool(0), args.Error(1)
}

func (m *mockBookingRepo) FindExpiredUnpaid(ctx context.Context, now time.Time, limit int) ([]bookings.Booking, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]bookings.Booking), args.Error(1)
}

func (m *mockBookingRepo) GuestStats(ctx context.Context, guestID, spaceID uuid.UUID) (*bookings.GuestStats, error) {
	args := m.Called(ctx, guestID, spaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bookings.GuestStats), args.Error(1)
}

type mockPaymentRepo struct {
	mock.Mock
}

func (m *mockPaymentRepo) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*payments.Payment, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payments.Payment), args.Error(1)
}

func (m *mockPaymentRepo) GetByCheckoutSessionID(ctx context.Context, sessionID string) (*payments.Payment, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payments.Payment), args.Error(1)
}

func (m *mockPaymentRepo) GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*payments.Payment, error) {
	args := m.Called(ctx, paymentIntentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payments.Payment), args.Error(1)
}

func (m *mockPaymentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status payments.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockPaymentRepo) MarkCaptured(ctx context.Context, id uuid.UUID, sessionID, paymentIntentID string) error {
	args := m.Called(ctx, id, sessionID, paymentIntentID)
	return args.Error(0)
}

func (m *mockPaymentRepo) AttachTransfer(ctx context.Context, id uuid.UUID, transferID string) error {
	args := m.Called(ctx, id, transferID)
	return args.Error(0)
}

func (m *mockPaymentRepo) AttachRefund(ctx context.Context, id uuid.UUID, refundID string, status payments.Status) error {
	args := m.Called(ctx, id, refundID, status)
	return args.Error(0)
}

type mockProcessor struct {
	mock.Mock
}

func (m *mockProcessor) CreateTransfer(ctx context.Context, input payments.TransferInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

func (m *mockProcessor) RefundPayment(ctx context.Context, paymentIntentID string, metadata map[string]string) (string, error) {
	args := m.Called(ctx, paymentIntentID, metadata)
	return args.String(0), args.Error(1)
}
