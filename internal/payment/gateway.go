package payment

import "context"

// Gateway abstracts the external payment processor. The correlator
// orchestrates intent lifecycle through it and observes status; settlement
// and card handling stay on the gateway's side.
type Gateway interface {
	// CreateIntent registers a new payment intent and returns the gateway
	// intent id plus the client secret for the paying client.
	CreateIntent(ctx context.Context, amount int64, currency string) (gatewayID, clientSecret string, err error)

	// ConfirmIntent attempts to confirm the intent with the given method
	// reference and returns the resulting status.
	ConfirmIntent(ctx context.Context, gatewayID string, details MethodDetails) (Status, error)

	// RefundIntent requests a full refund for a succeeded intent.
	RefundIntent(ctx context.Context, gatewayID string) error
}
