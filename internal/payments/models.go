package payments

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending       Status = "PENDING"
	StatusCompleted     Status = "COMPLETED"
	StatusFailed        Status = "FAILED"
	StatusRefundPending Status = "REFUND_PENDING"
	StatusDisputed      Status = "DISPUTED"
	StatusRefunded      Status = "REFUNDED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed,
		StatusRefundPending, StatusDisputed, StatusRefunded:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// BlocksPayout reports whether a payment in this status must not be paid out.
// REFUND_PENDING and DISPUTED explicitly block; anything short of COMPLETED
// has no cleared funds to transfer.
func (s Status) BlocksPayout() bool {
	return s != StatusCompleted
}

// Payment tracks the money side of a booking: what the guest paid, what the
// payee receives, and the platform's cut.
type Payment struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingID   uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"booking_id"`
	GrossAmount float64   `gorm:"not null" json:"gross_amount"`
	PayeeAmount float64   `gorm:"not null" json:"payee_amount"`
	PlatformFee float64   `gorm:"not null" json:"platform_fee"`
	Currency    string    `gorm:"type:varchar(3);default:'USD'" json:"currency"`
	Status      Status    `gorm:"type:varchar(20);default:'PENDING'" json:"status"`

	// External processor identifiers
	CheckoutSessionID string `gorm:"index" json:"checkout_session_id,omitempty"`
	PaymentIntentID   string `gorm:"index" json:"payment_intent_id,omitempty"`
	TransferID        string `json:"transfer_id,omitempty"`
	RefundID          string `json:"refund_id,omitempty"`

	FailureReason string     `json:"failure_reason,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}

func (p *Payment) IsCompleted() bool {
	return p.Status == StatusCompleted
}

func (p *Payment) MarkCompleted(paymentIntentID string) {
	p.Status = StatusCompleted
	p.PaymentIntentID = paymentIntentID
	now := time.Now()
	p.ProcessedAt = &now
	p.UpdatedAt = now
}

func (p *Payment) MarkFailed(reason string) {
	p.Status = StatusFailed
	p.FailureReason = reason
	now := time.Now()
	p.ProcessedAt = &now
	p.UpdatedAt = now
}

// PaymentInfo represents payment information in responses
type PaymentInfo struct {
	ID          string     `json:"id"`
	GrossAmount float64    `json:"gross_amount"`
	PayeeAmount float64    `json:"payee_amount"`
	PlatformFee float64    `json:"platform_fee"`
	Currency    string     `json:"currency"`
	Status      string     `json:"status"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

func (p *Payment) ToPaymentInfo() PaymentInfo {
	return PaymentInfo{
		ID:          p.ID.String(),
		GrossAmount: p.GrossAmount,
		PayeeAmount: p.PayeeAmount,
		PlatformFee: p.PlatformFee,
		Currency:    p.Currency,
		Status:      p.Status.String(),
		ProcessedAt: p.ProcessedAt,
	}
}
