package event

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcasterPushesToAllSubscribers(t *testing.T) {
	b := NewBroadcaster()

	ch1, cancel1 := b.Subscribe()
	defer cancel1()
	ch2, cancel2 := b.Subscribe()
	defer cancel2()

	evt := StatusChanged{
		BookingID:  "booking-1",
		NewStatus:  "scheduled",
		OccurredAt: time.Now().UTC(),
	}
	require.NoError(t, b.Publish(context.Background(), evt))

	for _, ch := range []<-chan StatusChanged{ch1, ch2} {
		select {
		case got := <-ch:
			assert.Equal(t, "booking-1", got.BookingID)
			assert.Equal(t, "scheduled", got.NewStatus)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the event")
		}
	}
}

func TestBroadcasterUnsubscribedChannelIsClosed(t *testing.T) {
	b := NewBroadcaster()

	ch, cancel := b.Subscribe()
	cancel()

	_, open := <-ch
	assert.False(t, open)

	// Publishing after unsubscribe must not panic or deliver.
	require.NoError(t, b.Publish(context.Background(), StatusChanged{BookingID: "x"}))
}

func TestBroadcasterCancelDuringPendingDeliveries(t *testing.T) {
	b := NewBroadcaster()

	// Subscriber that never reads, so deliveries beyond the buffer stay
	// blocked in sender goroutines when cancel arrives.
	ch, cancel := b.Subscribe()
	for i := 0; i < 50; i++ {
		require.NoError(t, b.Publish(context.Background(), StatusChanged{BookingID: "b"}))
	}

	cancel()

	// The channel must still drain buffered events and then close, without
	// any sender panicking.
	deadline := time.After(time.Second)
	for {
		select {
		case _, open := <-ch:
			if !open {
				return
			}
		case <-deadline:
			t.Fatal("channel was not closed after cancel")
		}
	}
}

func TestBroadcasterDoesNotBlockOnSlowSubscriber(t *testing.T) {
	b := NewBroadcaster()

	// Subscriber that never reads.
	_, cancel := b.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			_ = b.Publish(context.Background(), StatusChanged{BookingID: "b"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}
