package payment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway is a scriptable Gateway that records refund calls.
type fakeGateway struct {
	mu sync.Mutex

	confirmStatus Status
	confirmErr    error
	confirmDelay  time.Duration

	refundErrs []error // consumed per call; nil entry means success
	refundLog  []string
}

func (g *fakeGateway) CreateIntent(ctx context.Context, amount int64, currency string) (string, string, error) {
	return "pi_test", "secret_test", nil
}

func (g *fakeGateway) ConfirmIntent(ctx context.Context, gatewayID string, details MethodDetails) (Status, error) {
	if g.confirmDelay > 0 {
		select {
		case <-time.After(g.confirmDelay):
		case <-ctx.Done():
			return StatusFailed, ctx.Err()
		}
	}
	return g.confirmStatus, g.confirmErr
}

func (g *fakeGateway) RefundIntent(ctx context.Context, gatewayID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refundLog = append(g.refundLog, gatewayID)
	if len(g.refundErrs) > 0 {
		err := g.refundErrs[0]
		g.refundErrs = g.refundErrs[1:]
		return err
	}
	return nil
}

func (g *fakeGateway) refunds() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.refundLog...)
}

func TestCreateAndConfirmSucceeds(t *testing.T) {
	gw := &fakeGateway{confirmStatus: StatusSucceeded}
	c := NewCorrelator(gw, nil, time.Second, nil)

	intent, err := c.CreateAndConfirm(context.Background(), 2500, "usd", MethodDetails{PaymentMethodID: "pm_ok"})
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, intent.Status)
	assert.Equal(t, "pi_test", intent.GatewayID)
	assert.Equal(t, int64(2500), intent.Amount)
}

func TestCreateAndConfirmFailedStatus(t *testing.T) {
	gw := &fakeGateway{confirmStatus: StatusFailed}
	c := NewCorrelator(gw, nil, time.Second, nil)

	_, err := c.CreateAndConfirm(context.Background(), 2500, "usd", MethodDetails{PaymentMethodID: "pm_declined"})
	assert.ErrorIs(t, err, ErrPaymentFailed)
}

func TestCreateAndConfirmGatewayError(t *testing.T) {
	gw := &fakeGateway{confirmStatus: StatusFailed, confirmErr: errors.New("card declined")}
	c := NewCorrelator(gw, nil, time.Second, nil)

	_, err := c.CreateAndConfirm(context.Background(), 2500, "usd", MethodDetails{})
	assert.ErrorIs(t, err, ErrPaymentFailed)
	assert.NotErrorIs(t, err, ErrPaymentTimeout)
}

func TestCreateAndConfirmTimesOut(t *testing.T) {
	gw := &fakeGateway{confirmStatus: StatusSucceeded, confirmDelay: 200 * time.Millisecond}
	c := NewCorrelator(gw, nil, 20*time.Millisecond, nil)

	start := time.Now()
	_, err := c.CreateAndConfirm(context.Background(), 2500, "usd", MethodDetails{})
	assert.ErrorIs(t, err, ErrPaymentTimeout)
	assert.Less(t, time.Since(start), 150*time.Millisecond, "confirm must respect its deadline")
}

func newTestWorker(gw *fakeGateway, attempts int, alert AlertFunc) *RefundWorker {
	w := NewRefundWorker(gw, nil, attempts, alert)
	w.newBackOff = func() backoff.BackOff {
		bo := backoff.NewExponentialBackOff()
		bo.InitialInterval = time.Millisecond
		bo.MaxInterval = 2 * time.Millisecond
		return bo
	}
	return w
}

func TestRefundWorkerRetriesUntilSuccess(t *testing.T) {
	gw := &fakeGateway{refundErrs: []error{errors.New("503"), errors.New("503"), nil}}
	w := newTestWorker(gw, 5, func(string, error) { t.Error("alert must not fire when a retry succeeds") })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	w.Enqueue("intent-1", "pi_1")

	assert.Eventually(t, func() bool {
		return len(gw.refunds()) == 3
	}, time.Second, 5*time.Millisecond, "refund should be retried until the gateway accepts it")
}

func TestRefundWorkerAlertsOnExhaustion(t *testing.T) {
	gw := &fakeGateway{refundErrs: []error{
		errors.New("503"), errors.New("503"), errors.New("503"), errors.New("503"),
	}}

	alerts := make(chan string, 1)
	w := newTestWorker(gw, 2, func(intentID string, err error) {
		assert.ErrorIs(t, err, ErrRefundFailed)
		alerts <- intentID
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	w.Enqueue("intent-1", "pi_1")

	select {
	case id := <-alerts:
		assert.Equal(t, "intent-1", id)
	case <-time.After(time.Second):
		t.Fatal("expected a reconciliation alert")
	}
	// 1 initial try + 2 retries
	assert.Len(t, gw.refunds(), 3)
}

func TestRequestRefundNeverBlocks(t *testing.T) {
	gw := &fakeGateway{}
	w := newTestWorker(gw, 1, nil)
	// Worker intentionally not started; Enqueue must still return.
	c := NewCorrelator(gw, nil, time.Second, w)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			c.RequestRefund("intent", "pi")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RequestRefund blocked the caller")
	}
}
