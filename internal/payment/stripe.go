package payment

import (
	"context"
	"fmt"

	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// StripeGateway implements Gateway on the Stripe API.
type StripeGateway struct {
	api *client.API
}

// NewStripeGateway creates a gateway using the given secret key.
func NewStripeGateway(secretKey string) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{api: api}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amount int64, currency string) (string, string, error) {
	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
			// Redirect flows cannot complete inside a synchronous confirm.
			AllowRedirects: stripe.String("never"),
		},
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return "", "", fmt.Errorf("stripe create intent failed: %w", err)
	}
	return pi.ID, pi.ClientSecret, nil
}

func (g *StripeGateway) ConfirmIntent(ctx context.Context, gatewayID string, details MethodDetails) (Status, error) {
	params := &stripe.PaymentIntentConfirmParams{
		Params:        stripe.Params{Context: ctx},
		PaymentMethod: stripe.String(details.PaymentMethodID),
	}

	pi, err := g.api.PaymentIntents.Confirm(gatewayID, params)
	if err != nil {
		return StatusFailed, fmt.Errorf("stripe confirm intent failed: %w", err)
	}
	return statusFromStripe(pi.Status), nil
}

func (g *StripeGateway) RefundIntent(ctx context.Context, gatewayID string) error {
	params := &stripe.RefundParams{
		Params:        stripe.Params{Context: ctx},
		PaymentIntent: stripe.String(gatewayID),
	}

	if _, err := g.api.Refunds.New(params); err != nil {
		return fmt.Errorf("stripe refund failed: %w", err)
	}
	return nil
}

func statusFromStripe(s stripe.PaymentIntentStatus) Status {
	switch s {
	case stripe.PaymentIntentStatusSucceeded:
		return StatusSucceeded
	case stripe.PaymentIntentStatusCanceled:
		return StatusCanceled
	case stripe.PaymentIntentStatusProcessing,
		stripe.PaymentIntentStatusRequiresAction,
		stripe.PaymentIntentStatusRequiresConfirmation,
		stripe.PaymentIntentStatusRequiresCapture:
		return StatusPending
	default:
		return StatusFailed
	}
}
