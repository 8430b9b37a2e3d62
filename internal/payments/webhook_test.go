package payments

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"

	"workhive/internal/users"
	"workhive/pkg/logger"
)

const testWebhookSecret = "whsec_test_secret"

type mockWebhookPaymentRepo struct {
	mock.Mock
}

func (m *mockWebhookPaymentRepo) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*Payment, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Payment), args.Error(1)
}

func (m *mockWebhookPaymentRepo) GetByCheckoutSessionID(ctx context.Context, sessionID string) (*Payment, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Payment), args.Error(1)
}

func (m *mockWebhookPaymentRepo) GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*Payment, error) {
	args := m.Called(ctx, paymentIntentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Payment), args.Error(1)
}

func (m *mockWebhookPaymentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *mockWebhookPaymentRepo) MarkCaptured(ctx context.Context, id uuid.UUID, sessionID, paymentIntentID string) error {
	return m.Called(ctx, id, sessionID, paymentIntentID).Error(0)
}

func (m *mockWebhookPaymentRepo) AttachTransfer(ctx context.Context, id uuid.UUID, transferID string) error {
	return m.Called(ctx, id, transferID).Error(0)
}

func (m *mockWebhookPaymentRepo) AttachRefund(ctx context.Context, id uuid.UUID, refundID string, status Status) error {
	return m.Called(ctx, id, refundID, status).Error(0)
}

type mockUsersRepo struct {
	mock.Mock
}

func (m *mockUsersRepo) GetByID(ctx context.Context, id uuid.UUID) (*users.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*users.User), args.Error(1)
}

func (m *mockUsersRepo) UpdatePaymentAccount(ctx context.Context, accountID string, chargesEnabled, payoutsEnabled bool) error {
	return m.Called(ctx, accountID, chargesEnabled, payoutsEnabled).Error(0)
}

type mockLifecycle struct {
	mock.Mock
}

func (m *mockLifecycle) HandlePaymentCaptured(ctx context.Context, bookingID uuid.UUID) error {
	return m.Called(ctx, bookingID).Error(0)
}

type webhookFixture struct {
	repo      *mockWebhookPaymentRepo
	userRepo  *mockUsersRepo
	lifecycle *mockLifecycle
	handler   *WebhookHandler
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := &webhookFixture{
		repo:      new(mockWebhookPaymentRepo),
		userRepo:  new(mockUsersRepo),
		lifecycle: new(mockLifecycle),
	}
	f.handler = NewWebhookHandler(testWebhookSecret, f.repo, f.userRepo, f.lifecycle, logger.New())
	return f
}

// deliver posts the payload with a signature computed from the given secret
// and returns the recorded response.
func (f *webhookFixture) deliver(payload, secret string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", strings.NewReader(payload))
	ts := time.Now()
	signature := webhook.ComputeSignature(ts, []byte(payload), secret)
	req.Header.Set("Stripe-Signature", fmt.Sprintf("t=%d,v1=%x", ts.Unix(), signature))
	ctx.Request = req

	f.handler.Handle(ctx)
	return rec
}

func eventPayload(eventType, object string) string {
	return fmt.Sprintf(`{"id":"evt_test","api_version":%q,"type":%q,"data":{"object":%s}}`,
		stripe.APIVersion, eventType, object)
}

func TestWebhook_RejectsInvalidSignature(t *testing.T) {
	f := newWebhookFixture(t)

	payload := eventPayload("checkout.session.completed", `{"id":"cs_123"}`)
	rec := f.deliver(payload, "whsec_wrong_secret")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.repo.AssertNotCalled(t, "GetByCheckoutSessionID", mock.Anything, mock.Anything)
}

func TestWebhook_CheckoutCompletedCapturesPayment(t *testing.T) {
	f := newWebhookFixture(t)

	payment := &Payment{ID: uuid.New(), BookingID: uuid.New(), Status: StatusPending}
	f.repo.On("GetByBookingID", mock.Anything, payment.BookingID).Return(payment, nil)
	f.repo.On("MarkCaptured", mock.Anything, payment.ID, "cs_123", "pi_123").Return(nil)
	f.lifecycle.On("HandlePaymentCaptured", mock.Anything, payment.BookingID).Return(nil)

	object := fmt.Sprintf(`{"id":"cs_123","payment_intent":"pi_123","metadata":{"booking_id":%q}}`,
		payment.BookingID)
	rec := f.deliver(eventPayload("checkout.session.completed", object), testWebhookSecret)

	require.Equal(t, http.StatusOK, rec.Code)
	f.repo.AssertExpectations(t)
	f.lifecycle.AssertExpectations(t)
	f.repo.AssertNotCalled(t, "GetByCheckoutSessionID", mock.Anything, mock.Anything)
}

func TestWebhook_CheckoutCompletedFallsBackToSessionLookup(t *testing.T) {
	f := newWebhookFixture(t)

	payment := &Payment{ID: uuid.New(), BookingID: uuid.New(), Status: StatusPending}
	f.repo.On("GetByCheckoutSessionID", mock.Anything, "cs_456").Return(payment, nil)
	f.repo.On("MarkCaptured", mock.Anything, payment.ID, "cs_456", "pi_456").Return(nil)
	f.lifecycle.On("HandlePaymentCaptured", mock.Anything, payment.BookingID).Return(nil)

	payload := eventPayload("checkout.session.completed", `{"id":"cs_456","payment_intent":"pi_456"}`)
	rec := f.deliver(payload, testWebhookSecret)

	require.Equal(t, http.StatusOK, rec.Code)
	f.repo.AssertExpectations(t)
	f.lifecycle.AssertExpectations(t)
}

func TestWebhook_CheckoutCompletedRejectsMalformedBookingID(t *testing.T) {
	f := newWebhookFixture(t)

	payload := eventPayload("checkout.session.completed",
		`{"id":"cs_789","metadata":{"booking_id":"not-a-uuid"}}`)
	rec := f.deliver(payload, testWebhookSecret)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	f.repo.AssertNotCalled(t, "MarkCaptured", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhook_AccountUpdatedSyncsPayeeCapabilities(t *testing.T) {
	f := newWebhookFixture(t)

	f.userRepo.On("UpdatePaymentAccount", mock.Anything, "acct_123", true, false).Return(nil)

	payload := eventPayload("account.updated", `{"id":"acct_123","charges_enabled":true,"payouts_enabled":false}`)
	rec := f.deliver(payload, testWebhookSecret)

	require.Equal(t, http.StatusOK, rec.Code)
	f.userRepo.AssertExpectations(t)
}

func TestWebhook_DisputeMarksPaymentDisputed(t *testing.T) {
	f := newWebhookFixture(t)

	payment := &Payment{ID: uuid.New(), Status: StatusCompleted}
	f.repo.On("GetByPaymentIntentID", mock.Anything, "pi_disputed").Return(payment, nil)
	f.repo.On("UpdateStatus", mock.Anything, payment.ID, StatusDisputed).Return(nil)

	payload := eventPayload("charge.dispute.created", `{"id":"dp_123","payment_intent":"pi_disputed"}`)
	rec := f.deliver(payload, testWebhookSecret)

	require.Equal(t, http.StatusOK, rec.Code)
	f.repo.AssertExpectations(t)
}

func TestWebhook_ProcessingFailureReturns500ForRetry(t *testing.T) {
	f := newWebhookFixture(t)

	f.repo.On("GetByCheckoutSessionID", mock.Anything, "cs_unknown").
		Return(nil, fmt.Errorf("payment not found"))

	payload := eventPayload("checkout.session.completed", `{"id":"cs_unknown"}`)
	rec := f.deliver(payload, testWebhookSecret)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestWebhook_UnknownEventIsAcknowledged(t *testing.T) {
	f := newWebhookFixture(t)

	payload := eventPayload("invoice.paid", `{"id":"in_123"}`)
	rec := f.deliver(payload, testWebhookSecret)

	assert.Equal(t, http.StatusOK, rec.Code)
}
