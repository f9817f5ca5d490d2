package event

import (
	"context"
	"sync"
)

// subscription tracks one subscriber's channel and its liveness. senders
// counts in-flight deliveries so the channel is only closed once they have
// drained.
type subscription struct {
	ch      chan StatusChanged
	done    chan struct{}
	senders sync.WaitGroup
}

// Broadcaster delivers events to in-process subscribers over channels, so
// collaborators get pushed updates instead of polling. Subscribers with a
// full buffer are served from a goroutine; events are never dropped, which
// can reorder or duplicate delivery for a lagging subscriber.
type Broadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*subscription
}

// NewBroadcaster creates an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]*subscription)}
}

// Subscribe registers a new subscriber and returns its channel plus a
// cancel function. The channel is closed on cancel, after any in-flight
// deliveries have settled.
func (b *Broadcaster) Subscribe() (<-chan StatusChanged, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	sub := &subscription{
		ch:   make(chan StatusChanged, 16),
		done: make(chan struct{}),
	}
	b.subs[id] = sub

	cancel := func() {
		b.mu.Lock()
		sub, ok := b.subs[id]
		if ok {
			delete(b.subs, id)
		}
		b.mu.Unlock()
		if !ok {
			return
		}

		// Signal liveness first so blocked senders bail out, then close the
		// data channel once the last of them is gone.
		close(sub.done)
		go func() {
			sub.senders.Wait()
			close(sub.ch)
		}()
	}
	return sub.ch, cancel
}

// Publish pushes the event to every subscriber.
func (b *Broadcaster) Publish(ctx context.Context, e StatusChanged) error {
	b.mu.Lock()
	subs := make([]*subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		// Registered under the lock, before cancel can observe the removal,
		// so close(ch) always waits for this delivery.
		sub.senders.Add(1)
		subs = append(subs, sub)
	}
	b.mu.Unlock()

	for _, sub := range subs {
		select {
		case sub.ch <- e:
			sub.senders.Done()
		default:
			// Slow subscriber: finish delivery off the request path. The
			// send is not tied to the request context; at-least-once
			// delivery outlives the originating request.
			go func(sub *subscription) {
				defer sub.senders.Done()
				select {
				case sub.ch <- e:
				case <-sub.done:
				}
			}(sub)
		}
	}
	return nil
}
