package payments

import "context"

// TransferInput describes a payout transfer to a payee's connected account.
type TransferInput struct {
	DestinationAccount string
	Amount             float64
	Currency           string
	Metadata           map[string]string
}

// Processor is the payment-processor surface the booking core consumes:
// transfers to connected accounts and refunds of captured payments. The
// account-status callback arrives over the webhook, not through this
// interface.
type Processor interface {
	CreateTransfer(ctx context.Context, in TransferInput) (transferID string, err error)
	RefundPayment(ctx context.Context, paymentIntentID string, metadata map[string]string) (refundID string, err error)
}
