package payment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// Correlator owns the payment side of a booking: it creates and confirms
// intents synchronously (bounded by a deadline) and hands refunds to a
// background worker. A booking is only ever committed after CreateAndConfirm
// returned a succeeded intent.
type Correlator struct {
	gateway        Gateway
	repo           Repository // may be nil (volatile, used in tests)
	confirmTimeout time.Duration
	refunds        *RefundWorker
}

// NewCorrelator creates a Correlator. confirmTimeout bounds ConfirmIntent as
// observed by callers.
func NewCorrelator(gateway Gateway, repo Repository, confirmTimeout time.Duration, refunds *RefundWorker) *Correlator {
	return &Correlator{
		gateway:        gateway,
		repo:           repo,
		confirmTimeout: confirmTimeout,
		refunds:        refunds,
	}
}

// CreateAndConfirm creates a payment intent for the amount and synchronously
// confirms it. It returns ErrPaymentTimeout when the deadline elapsed first
// and ErrPaymentFailed when the gateway reported any terminal state other
// than succeeded. The returned intent is succeeded on the nil-error path.
func (c *Correlator) CreateAndConfirm(ctx context.Context, amount int64, currency string, details MethodDetails) (*Intent, error) {
	gatewayID, clientSecret, err := c.gateway.CreateIntent(ctx, amount, currency)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}

	intent := &Intent{
		ID:           uuid.New().String(),
		GatewayID:    gatewayID,
		ClientSecret: clientSecret,
		Amount:       amount,
		Currency:     currency,
		Status:       StatusPending,
		CreatedAt:    time.Now().UTC(),
	}
	if c.repo != nil {
		if err := c.repo.Create(ctx, intent); err != nil {
			return nil, fmt.Errorf("failed to persist payment intent: %w", err)
		}
	}

	confirmCtx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
	defer cancel()

	status, err := c.gateway.ConfirmIntent(confirmCtx, gatewayID, details)
	if err != nil {
		c.markStatus(intent, StatusFailed)
		if errors.Is(err, context.DeadlineExceeded) || confirmCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w: %v", ErrPaymentTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}

	if status != StatusSucceeded {
		c.markStatus(intent, StatusFailed)
		return nil, fmt.Errorf("%w: gateway status %q", ErrPaymentFailed, status)
	}

	c.markStatus(intent, StatusSucceeded)
	return intent, nil
}

// GetIntent returns the persisted intent record.
func (c *Correlator) GetIntent(ctx context.Context, id string) (*Intent, error) {
	if c.repo == nil {
		return nil, ErrNotFound
	}
	return c.repo.GetByID(ctx, id)
}

// RequestRefund queues an asynchronous refund for the intent. It never
// blocks the caller; retry and alerting happen inside the worker.
func (c *Correlator) RequestRefund(intentID, gatewayID string) {
	if c.refunds == nil {
		log.Printf("refund requested for intent %s but no refund worker is running", intentID)
		return
	}
	c.refunds.Enqueue(intentID, gatewayID)
}

func (c *Correlator) markStatus(intent *Intent, status Status) {
	intent.Status = status
	intent.UpdatedAt = time.Now().UTC()
	if c.repo == nil {
		return
	}
	// Status bookkeeping must not mask the confirm outcome; a failed write
	// only loses audit detail.
	if err := c.repo.UpdateStatus(context.Background(), intent.ID, status); err != nil {
		log.Printf("failed to update payment intent %s status to %s: %v", intent.ID, status, err)
	}
}
