package payouts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"workhive/internal/bookings"
	"workhive/internal/notifications"
	"workhive/internal/payments"
	"workhive/internal/spaces"
	"workhive/internal/users"
)

var guardNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

// recordingNotifier captures every send so tests can assert who was told what.
type recordingNotifier struct {
	sent []recordedNotification
}

type recordedNotification struct {
	UserID uuid.UUID
	Title  string
}

func (r *recordingNotifier) Notify(ctx context.Context, userID uuid.UUID, nType notifications.NotificationType, title, body string, data map[string]interface{}) {
	r.sent = append(r.sent, recordedNotification{UserID: userID, Title: title})
}

func (r *recordingNotifier) titlesFor(userID uuid.UUID) []string {
	var titles []string
	for _, n := range r.sent {
		if n.UserID == userID {
			titles = append(titles, n.Title)
		}
	}
	return titles
}

type guardFixture struct {
	repo        *mockCandidateRepo
	bookingRepo *mockBookingRepo
	paymentRepo *mockPaymentRepo
	processor   *mockProcessor
	notifier    *recordingNotifier
	guard       *Guard
}

func newGuardFixture(t *testing.T) *guardFixture {
	t.Helper()
	f := &guardFixture{
		repo:        new(mockCandidateRepo),
		bookingRepo: new(mockBookingRepo),
		paymentRepo: new(mockPaymentRepo),
		processor:   new(mockProcessor),
		notifier:    &recordingNotifier{},
	}
	f.guard = NewGuard(
		f.repo, f.bookingRepo, f.paymentRepo, f.processor,
		f.notifier, DefaultGuardConfig(), testLogger(),
	)
	return f
}

// disconnectedBooking builds a booking whose host lost their payment account,
// starting at the given instant.
func disconnectedBooking(status bookings.Status, start time.Time) bookings.Booking {
	hostID := uuid.New()
	return bookings.Booking{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		BookingRef: "WRK-20260901-GHIJKL",
		Status:     status,
		Date:       time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC),
		StartTime:  start.Format("15:04"),
		EndTime:    start.Add(2 * time.Hour).Format("15:04"),
		Payment: &payments.Payment{
			ID:              uuid.New(),
			GrossAmount:     200,
			Status:          payments.StatusCompleted,
			PaymentIntentID: "pi_guard",
		},
		Space: &spaces.Space{
			ID:     uuid.New(),
			HostID: hostID,
			Host: &users.User{
				ID:              hostID,
				StripeAccountID: "",
			},
		},
	}
}

func TestGuardRun_CancelsAndRefundsInsideCancelWindow(t *testing.T) {
	f := newGuardFixture(t)
	ctx := context.Background()
	booking := disconnectedBooking(bookings.StatusConfirmed, guardNow.Add(23*time.Hour))

	f.repo.On("FindActivePayeeDisconnected", ctx, 100).Return([]bookings.Booking{booking}, nil)
	f.bookingRepo.On("Cancel", ctx, booking.ID, bookings.StatusConfirmed, bookings.CancelParams{
		At:     guardNow,
		ByHost: true,
		Reason: "Host payment account disconnected",
		Fee:    0,
	}).Return(true, nil)
	f.processor.On("RefundPayment", ctx, "pi_guard", mock.Anything).Return("re_guard", nil)
	f.paymentRepo.On("AttachRefund", ctx, booking.Payment.ID, "re_guard", payments.StatusRefunded).Return(nil)

	stats, err := f.guard.Run(ctx, guardNow)
	require.NoError(t, err)

	assert.Equal(t, GuardStats{Scanned: 1, Cancelled: 1}, stats)
	f.bookingRepo.AssertExpectations(t)
	f.processor.AssertExpectations(t)
}

func TestGuardRun_FrozenBookingIsCancelledDirectly(t *testing.T) {
	f := newGuardFixture(t)
	ctx := context.Background()
	booking := disconnectedBooking(bookings.StatusFrozen, guardNow.Add(10*time.Hour))

	f.repo.On("FindActivePayeeDisconnected", ctx, 100).Return([]bookings.Booking{booking}, nil)
	f.bookingRepo.On("Cancel", ctx, booking.ID, bookings.StatusFrozen, mock.Anything).Return(true, nil)
	f.processor.On("RefundPayment", ctx, "pi_guard", mock.Anything).Return("re_guard", nil)
	f.paymentRepo.On("AttachRefund", ctx, booking.Payment.ID, "re_guard", payments.StatusRefunded).Return(nil)

	stats, err := f.guard.Run(ctx, guardNow)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Cancelled)
	f.bookingRepo.AssertNotCalled(t, "Freeze", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGuardRun_FreezesInsideFreezeWindow(t *testing.T) {
	f := newGuardFixture(t)
	ctx := context.Background()
	booking := disconnectedBooking(bookings.StatusConfirmed, guardNow.Add(47*time.Hour))

	f.repo.On("FindActivePayeeDisconnected", ctx, 100).Return([]bookings.Booking{booking}, nil)
	f.bookingRepo.On("Freeze", ctx, booking.ID, bookings.StatusConfirmed, guardNow).Return(true, nil)

	stats, err := f.guard.Run(ctx, guardNow)
	require.NoError(t, err)

	assert.Equal(t, GuardStats{Scanned: 1, Frozen: 1}, stats)
	f.processor.AssertNotCalled(t, "RefundPayment", mock.Anything, mock.Anything, mock.Anything)
	f.bookingRepo.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	// Both parties hear about the freeze.
	assert.Equal(t, []string{"Urgent: reconnect your payment account"}, f.notifier.titlesFor(booking.Space.HostID))
	assert.Equal(t, []string{"Booking on hold"}, f.notifier.titlesFor(booking.UserID))
}

func TestGuardRun_AlreadyFrozenOutsideCancelWindowWaits(t *testing.T) {
	f := newGuardFixture(t)
	ctx := context.Background()
	booking := disconnectedBooking(bookings.StatusFrozen, guardNow.Add(30*time.Hour))

	f.repo.On("FindActivePayeeDisconnected", ctx, 100).Return([]bookings.Booking{booking}, nil)

	stats, err := f.guard.Run(ctx, guardNow)
	require.NoError(t, err)

	assert.Equal(t, GuardStats{Scanned: 1}, stats)
	f.bookingRepo.AssertNotCalled(t, "Freeze", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.bookingRepo.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGuardRun_FarFromStartDoesNothing(t *testing.T) {
	f := newGuardFixture(t)
	ctx := context.Background()
	booking := disconnectedBooking(bookings.StatusConfirmed, guardNow.Add(72*time.Hour))

	f.repo.On("FindActivePayeeDisconnected", ctx, 100).Return([]bookings.Booking{booking}, nil)

	stats, err := f.guard.Run(ctx, guardNow)
	require.NoError(t, err)

	assert.Equal(t, GuardStats{Scanned: 1}, stats)
	f.bookingRepo.AssertNotCalled(t, "Freeze", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.bookingRepo.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGuardRun_LostCancelRaceDoesNotRefund(t *testing.T) {
	f := newGuardFixture(t)
	ctx := context.Background()
	booking := disconnectedBooking(bookings.StatusConfirmed, guardNow.Add(1*time.Hour))

	f.repo.On("FindActivePayeeDisconnected", ctx, 100).Return([]bookings.Booking{booking}, nil)
	f.bookingRepo.On("Cancel", ctx, booking.ID, bookings.StatusConfirmed, mock.Anything).Return(false, nil)

	stats, err := f.guard.Run(ctx, guardNow)
	require.NoError(t, err)

	assert.Equal(t, GuardStats{Scanned: 1}, stats)
	f.processor.AssertNotCalled(t, "RefundPayment", mock.Anything, mock.Anything, mock.Anything)
}

func TestGuardRun_UncapturedPaymentCancelsWithoutRefund(t *testing.T) {
	f := newGuardFixture(t)
	ctx := context.Background()
	booking := disconnectedBooking(bookings.StatusConfirmed, guardNow.Add(2*time.Hour))
	booking.Payment.Status = payments.StatusPending

	f.repo.On("FindActivePayeeDisconnected", ctx, 100).Return([]bookings.Booking{booking}, nil)
	f.bookingRepo.On("Cancel", ctx, booking.ID, bookings.StatusConfirmed, mock.Anything).Return(true, nil)

	stats, err := f.guard.Run(ctx, guardNow)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Cancelled)
	f.processor.AssertNotCalled(t, "RefundPayment", mock.Anything, mock.Anything, mock.Anything)
}

func TestGuardRun_PerItemIsolation(t *testing.T) {
	f := newGuardFixture(t)
	ctx := context.Background()

	broken := disconnectedBooking(bookings.StatusConfirmed, guardNow.Add(time.Hour))
	broken.StartTime = "not-a-time"

	healthy := disconnectedBooking(bookings.StatusConfirmed, guardNow.Add(47*time.Hour))

	f.repo.On("FindActivePayeeDisconnected", ctx, 100).
		Return([]bookings.Booking{broken, healthy}, nil)
	f.bookingRepo.On("Freeze", ctx, healthy.ID, bookings.StatusConfirmed, guardNow).Return(true, nil)

	stats, err := f.guard.Run(ctx, guardNow)
	require.NoError(t, err)

	assert.Equal(t, GuardStats{Scanned: 2, Frozen: 1, Failed: 1}, stats)
}
