package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*Payment, error)
	GetByCheckoutSessionID(ctx context.Context, sessionID string) (*Payment, error)
	GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*Payment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	MarkCaptured(ctx context.Context, id uuid.UUID, sessionID, paymentIntentID string) error
	AttachTransfer(ctx context.Context, id uuid.UUID, transferID string) error
	AttachRefund(ctx context.Context, id uuid.UUID, refundID string, status Status) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*Payment, error) {
	var payment Payment
	err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) GetByCheckoutSessionID(ctx context.Context, sessionID string) (*Payment, error) {
	var payment Payment
	err := r.db.WithContext(ctx).Where("checkout_session_id = ?", sessionID).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*Payment, error) {
	var payment Payment
	err := r.db.WithContext(ctx).Where("payment_intent_id = ?", paymentIntentID).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	return r.db.WithContext(ctx).
		Model(&Payment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

// MarkCaptured records a completed capture. The checkout session id lands
// here because the session is created out of band after the reservation, so
// the webhook delivery is the first time this process sees it.
func (r *repository) MarkCaptured(ctx context.Context, id uuid.UUID, sessionID, paymentIntentID string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&Payment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":              StatusCompleted,
			"checkout_session_id": sessionID,
			"payment_intent_id":   paymentIntentID,
			"processed_at":        now,
			"updated_at":          now,
		}).Error
}

func (r *repository) AttachTransfer(ctx context.Context, id uuid.UUID, transferID string) error {
	return r.db.WithContext(ctx).
		Model(&Payment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"transfer_id": transferID,
			"updated_at":  time.Now(),
		}).Error
}

func (r *repository) AttachRefund(ctx context.Context, id uuid.UUID, refundID string, status Status) error {
	return r.db.WithContext(ctx).
		Model(&Payment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"refund_id":  refundID,
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}
