package payment

import (
	"net/http"
	"time"

	"github.com/tutorhive/lesson-booking-backend/internal/pkg/apperror"
)

var (
	// ErrPaymentFailed is returned when an intent did not reach succeeded.
	ErrPaymentFailed = apperror.New(http.StatusPaymentRequired, "payment was not successful")
	// ErrPaymentTimeout is returned when confirmation exceeded its deadline.
	ErrPaymentTimeout = apperror.New(http.StatusGatewayTimeout, "payment confirmation timed out")
	// ErrRefundFailed marks a refund whose retry budget is exhausted. It is
	// surfaced through the reconciliation alert, never to the canceling caller.
	ErrRefundFailed = apperror.New(http.StatusInternalServerError, "refund failed after retries")
	// ErrNotFound is returned for unknown intent ids.
	ErrNotFound = apperror.New(http.StatusNotFound, "payment intent not found")
)

// Status mirrors the gateway-side lifecycle of a payment intent.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCanceled  Status = "canceled"
	// StatusRefunded is set once a refund request was accepted by the gateway.
	StatusRefunded Status = "refunded"
)

// Intent is the tracked attempt to collect payment for a booking. Its status
// is independent of the booking's own status; the booking service only ever
// reads it.
type Intent struct {
	ID           string
	GatewayID    string // gateway-side intent id (e.g. Stripe "pi_...")
	ClientSecret string // handed to the paying client, never logged
	Amount       int64  // minor units (cents)
	Currency     string
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// MethodDetails references a payment method registered with the gateway.
// Raw card data never enters this system.
type MethodDetails struct {
	PaymentMethodID string
}
