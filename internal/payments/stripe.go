package payments

import (
	"context"
	"fmt"

	stripe "github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/refund"
	"github.com/stripe/stripe-go/v78/transfer"
)

// StripeProcessor implements Processor against Stripe Connect.
type StripeProcessor struct {
	currency string
}

// NewStripeProcessor configures the Stripe client with the given secret key.
func NewStripeProcessor(secretKey, currency string) *StripeProcessor {
	stripe.Key = secretKey
	if currency == "" {
		currency = "usd"
	}
	return &StripeProcessor{currency: currency}
}

// CreateTransfer issues a transfer to a payee's connected account. Amount is
// in major currency units and converted to the smallest unit for Stripe.
func (p *StripeProcessor) CreateTransfer(ctx context.Context, in TransferInput) (string, error) {
	if in.DestinationAccount == "" {
		return "", fmt.Errorf("transfer requires a destination account")
	}
	if in.Amount <= 0 {
		return "", fmt.Errorf("transfer amount must be positive, got %.2f", in.Amount)
	}

	currency := in.Currency
	if currency == "" {
		currency = p.currency
	}

	params := &stripe.TransferParams{
		Amount:      stripe.Int64(toMinorUnits(in.Amount)),
		Currency:    stripe.String(currency),
		Destination: stripe.String(in.DestinationAccount),
	}
	params.Context = ctx
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}

	t, err := transfer.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe transfer failed: %w", err)
	}
	return t.ID, nil
}

// RefundPayment refunds the full captured amount of a payment intent.
func (p *StripeProcessor) RefundPayment(ctx context.Context, paymentIntentID string, metadata map[string]string) (string, error) {
	if paymentIntentID == "" {
		return "", fmt.Errorf("refund requires a payment intent id")
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentIntentID),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	r, err := refund.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe refund failed: %w", err)
	}
	return r.ID, nil
}

// toMinorUnits converts a major-unit amount to cents.
func toMinorUnits(amount float64) int64 {
	return int64(amount*100 + 0.5)
}
