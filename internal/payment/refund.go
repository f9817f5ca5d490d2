package payment

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// AlertFunc is invoked when a refund exhausts its retry budget and needs
// manual reconciliation.
type AlertFunc func(intentID string, err error)

// LogAlert is the default AlertFunc.
func LogAlert(intentID string, err error) {
	log.Printf("ALERT: manual reconciliation required for payment intent %s: %v", intentID, err)
}

type refundJob struct {
	intentID  string
	gatewayID string
}

// RefundWorker processes refund requests outside the booking request path.
// Each job is retried with exponential backoff up to a fixed attempt budget;
// exhaustion raises the reconciliation alert instead of propagating a hard
// failure to the caller who already canceled successfully.
type RefundWorker struct {
	gateway     Gateway
	repo        Repository // may be nil
	maxAttempts uint64
	alert       AlertFunc

	// newBackOff builds the per-job retry policy. Tests shrink the intervals.
	newBackOff func() backoff.BackOff

	jobs chan refundJob
	wg   sync.WaitGroup
}

// NewRefundWorker creates a worker with the given retry budget.
// maxAttempts counts retries after the first try.
func NewRefundWorker(gateway Gateway, repo Repository, maxAttempts int, alert AlertFunc) *RefundWorker {
	if alert == nil {
		alert = LogAlert
	}
	return &RefundWorker{
		gateway:     gateway,
		repo:        repo,
		maxAttempts: uint64(maxAttempts),
		alert:       alert,
		newBackOff: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.InitialInterval = time.Second
			bo.MaxInterval = time.Minute
			return bo
		},
		jobs: make(chan refundJob, 64),
	}
}

// Start launches the worker goroutine. It drains until ctx is canceled.
func (w *RefundWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case job := <-w.jobs:
				w.process(ctx, job)
			}
		}
	}()
}

// Wait blocks until the worker goroutine has exited.
func (w *RefundWorker) Wait() {
	w.wg.Wait()
}

// Enqueue schedules a refund. It never blocks the caller: when the queue is
// full the job is handed off in a goroutine.
func (w *RefundWorker) Enqueue(intentID, gatewayID string) {
	job := refundJob{intentID: intentID, gatewayID: gatewayID}
	select {
	case w.jobs <- job:
	default:
		go func() { w.jobs <- job }()
	}
}

func (w *RefundWorker) process(ctx context.Context, job refundJob) {
	op := func() error {
		return w.gateway.RefundIntent(ctx, job.gatewayID)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(w.newBackOff(), w.maxAttempts), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		w.alert(job.intentID, fmt.Errorf("%w: %v", ErrRefundFailed, err))
		return
	}

	if w.repo != nil {
		if err := w.repo.UpdateStatus(ctx, job.intentID, StatusRefunded); err != nil {
			log.Printf("refund succeeded but status update failed for intent %s: %v", job.intentID, err)
		}
	}
}
