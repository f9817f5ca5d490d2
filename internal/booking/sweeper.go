package booking

import (
	"context"
	"errors"
	"log"
	"time"
)

const sweepBatchSize = 100

// Sweeper drives the scheduled -> completed transition: once a lesson's end
// time has passed it is marked completed. External callers never trigger
// completion directly.
type Sweeper struct {
	repo     Repository
	svc      Service
	interval time.Duration

	now func() time.Time
}

// NewSweeper creates a sweeper ticking at the given interval.
func NewSweeper(repo Repository, svc Service, interval time.Duration) *Sweeper {
	return &Sweeper{
		repo:     repo,
		svc:      svc,
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Run blocks until ctx is canceled, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep completes every scheduled booking whose end time has passed.
func (s *Sweeper) Sweep(ctx context.Context) {
	due, err := s.repo.ListDueForCompletion(ctx, s.now(), sweepBatchSize)
	if err != nil {
		log.Printf("sweep: failed to list due bookings: %v", err)
		return
	}

	for _, b := range due {
		if err := s.svc.Complete(ctx, b.ID); err != nil {
			// A concurrent cancel can win the race; that is not a sweep error.
			if errors.Is(err, ErrTerminalState) || errors.Is(err, ErrNotFound) {
				continue
			}
			log.Printf("sweep: failed to complete booking %s: %v", b.ID, err)
		}
	}
}
