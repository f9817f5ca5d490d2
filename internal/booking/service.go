package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/tutorhive/lesson-booking-backend/internal/auth"
	"github.com/tutorhive/lesson-booking-backend/internal/availability"
	"github.com/tutorhive/lesson-booking-backend/internal/event"
	"github.com/tutorhive/lesson-booking-backend/internal/payment"
)

// PaymentCorrelator is the payment surface the booking service depends on.
// Implemented by payment.Correlator; tests substitute a fake.
type PaymentCorrelator interface {
	CreateAndConfirm(ctx context.Context, amount int64, currency string, details payment.MethodDetails) (*payment.Intent, error)
	GetIntent(ctx context.Context, id string) (*payment.Intent, error)
	RequestRefund(intentID, gatewayID string)
}

// BookRequest carries everything needed to book a lesson. The caller
// identity is a separate argument on every Service method.
type BookRequest struct {
	TeacherID string
	StudentID string
	Start     time.Time
	End       time.Time
	// Amount is the lesson price in minor units; zero books without payment.
	Amount          int64
	Currency        string
	PaymentMethodID string
}

type Service interface {
	Book(ctx context.Context, caller auth.Identity, req BookRequest) (*Booking, error)
	Reschedule(ctx context.Context, caller auth.Identity, id string, newStart, newEnd time.Time) (*Booking, error)
	Cancel(ctx context.Context, caller auth.Identity, id string) error
	GetByID(ctx context.Context, caller auth.Identity, id string) (*Booking, error)
	List(ctx context.Context, caller auth.Identity, filter Filter) ([]*Booking, int, error)

	// Complete transitions a scheduled booking whose end time has passed.
	// Only the sweeper calls it; it is not routed to external callers.
	Complete(ctx context.Context, id string) error

	// AvailableSlots lists the teacher's free ranges within business hours
	// for the given day.
	AvailableSlots(ctx context.Context, teacherID string, day time.Time) ([]TimeSlot, error)
}

type service struct {
	repo     Repository
	store    *availability.Store
	payments PaymentCorrelator
	emitter  event.Emitter

	businessStart int // local hour of day
	businessEnd   int

	now func() time.Time
}

// NewService wires the booking orchestration. payments may be nil when the
// deployment takes free lessons only.
func NewService(repo Repository, store *availability.Store, payments PaymentCorrelator, emitter event.Emitter, businessStart, businessEnd int) Service {
	return &service{
		repo:          repo,
		store:         store,
		payments:      payments,
		emitter:       emitter,
		businessStart: businessStart,
		businessEnd:   businessEnd,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Book(ctx context.Context, caller auth.Identity, req BookRequest) (*Booking, error) {
	if !req.Start.Before(req.End) {
		return nil, ErrInvalidRange
	}
	if req.Start.Before(s.now()) {
		return nil, ErrInvalidRange
	}
	if caller.UserID != req.StudentID && caller.UserID != req.TeacherID {
		return nil, ErrPermissionDenied
	}

	b := &Booking{
		ID:          uuid.New().String(),
		TeacherID:   req.TeacherID,
		StudentID:   req.StudentID,
		Start:       req.Start,
		End:         req.End,
		Status:      StatusPending,
		PriceAmount: req.Amount,
		Currency:    req.Currency,
	}

	// Reserve first; the interval is the only thing that can conflict, and
	// holding it makes the rest of the flow race-free for this teacher.
	interval, err := s.store.Reserve(ctx, req.TeacherID, b.ID, req.Start, req.End)
	if err != nil {
		if errors.Is(err, availability.ErrConflict) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to reserve slot: %w", err)
	}
	b.IntervalID = interval.ID

	// A failure from here on must not leave an orphaned hold.
	release := func() {
		if rerr := s.store.Release(context.WithoutCancel(ctx), interval.ID); rerr != nil {
			log.Printf("failed to release interval %s after aborted booking %s: %v", interval.ID, b.ID, rerr)
		}
	}

	if req.Amount > 0 {
		if s.payments == nil {
			release()
			return nil, payment.ErrPaymentFailed
		}
		intent, err := s.payments.CreateAndConfirm(ctx, req.Amount, req.Currency, payment.MethodDetails{
			PaymentMethodID: req.PaymentMethodID,
		})
		if err != nil {
			release()
			return nil, err
		}
		b.PaymentIntentID = &intent.ID
	}

	// Payment (if any) is confirmed; the booking commits as scheduled.
	b.Status = StatusScheduled
	if err := s.repo.Create(ctx, b); err != nil {
		release()
		// The charge went through but the booking cannot be committed; hand
		// the money back rather than stranding it.
		if b.PaymentIntentID != nil {
			s.refund(ctx, *b.PaymentIntentID)
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.publish(ctx, b, StatusPending, StatusScheduled)

	return b, nil
}

func (s *service) Reschedule(ctx context.Context, caller auth.Identity, id string, newStart, newEnd time.Time) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller.UserID != b.StudentID && caller.UserID != b.TeacherID {
		return nil, ErrPermissionDenied
	}
	if b.Status.Terminal() {
		return nil, ErrTerminalState
	}
	if !newStart.Before(newEnd) || newStart.Before(s.now()) {
		return nil, ErrInvalidRange
	}

	// One logical transaction: the store swaps under the teacher's critical
	// section and restores the old interval on conflict, so the booking is
	// never left without a reservation.
	if _, err := s.store.Swap(ctx, b.IntervalID, newStart, newEnd); err != nil {
		if errors.Is(err, availability.ErrConflict) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to move slot: %w", err)
	}

	oldStart, oldEnd := b.Start, b.End
	b.Start, b.End = newStart, newEnd
	if err := s.repo.Update(ctx, b); err != nil {
		// Undo the move; the old range was just freed so this cannot conflict
		// with the booking's own slot, but another booking may have taken it.
		if _, serr := s.store.Swap(context.WithoutCancel(ctx), b.IntervalID, oldStart, oldEnd); serr != nil {
			log.Printf("failed to restore interval for booking %s after update error: %v", b.ID, serr)
		}
		// The row-level guard reports a booking that went terminal between
		// the read above and the write.
		if errors.Is(err, ErrTerminalState) {
			return nil, ErrTerminalState
		}
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}

	// Status stays scheduled throughout; the event lets calendars refresh.
	s.publish(ctx, b, StatusScheduled, StatusScheduled)

	return b, nil
}

func (s *service) Cancel(ctx context.Context, caller auth.Identity, id string) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if caller.UserID != b.StudentID && caller.UserID != b.TeacherID {
		return ErrPermissionDenied
	}
	if b.Status.Terminal() {
		return ErrTerminalState
	}

	// Compare-and-swap on the status read above: if a concurrent Complete or
	// Cancel got there first, this write hits zero rows and the booking stays
	// in its terminal state.
	old := b.Status
	if err := s.repo.UpdateStatus(ctx, id, old, StatusCancelled); err != nil {
		return err
	}
	b.Status = StatusCancelled

	if err := s.store.Release(ctx, b.IntervalID); err != nil {
		log.Printf("failed to release interval %s for cancelled booking %s: %v", b.IntervalID, b.ID, err)
	}

	// Refunds never block the cancel call.
	if b.PaymentIntentID != nil {
		s.refund(ctx, *b.PaymentIntentID)
	}

	s.publish(ctx, b, old, StatusCancelled)
	return nil
}

func (s *service) Complete(ctx context.Context, id string) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if b.Status.Terminal() {
		return ErrTerminalState
	}
	if s.now().Before(b.End) {
		return ErrNotDue
	}

	old := b.Status
	if err := s.repo.UpdateStatus(ctx, id, old, StatusCompleted); err != nil {
		return err
	}
	b.Status = StatusCompleted

	// The lesson is over; its interval can no longer conflict with anything
	// bookable, so drop it from the working set.
	if err := s.store.Release(ctx, b.IntervalID); err != nil {
		log.Printf("failed to release interval %s for completed booking %s: %v", b.IntervalID, b.ID, err)
	}

	s.publish(ctx, b, old, StatusCompleted)
	return nil
}

func (s *service) GetByID(ctx context.Context, caller auth.Identity, id string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller.UserID != b.StudentID && caller.UserID != b.TeacherID {
		return nil, ErrPermissionDenied
	}
	return b, nil
}

func (s *service) List(ctx context.Context, caller auth.Identity, filter Filter) ([]*Booking, int, error) {
	// Callers only ever see their own side of the calendar.
	switch caller.Role {
	case "teacher":
		filter.TeacherID = caller.UserID
	default:
		filter.StudentID = caller.UserID
	}
	return s.repo.List(ctx, filter)
}

func (s *service) AvailableSlots(ctx context.Context, teacherID string, day time.Time) ([]TimeSlot, error) {
	dayOpen := time.Date(day.Year(), day.Month(), day.Day(), s.businessStart, 0, 0, 0, day.Location())
	dayClose := time.Date(day.Year(), day.Month(), day.Day(), s.businessEnd, 0, 0, 0, day.Location())
	if !dayOpen.Before(dayClose) {
		return nil, ErrInvalidRange
	}

	busy := s.store.Query(teacherID, dayOpen, dayClose)
	return FreeSlots(dayOpen, dayClose, busy), nil
}

func (s *service) refund(ctx context.Context, intentID string) {
	if s.payments == nil {
		return
	}
	intent, err := s.payments.GetIntent(ctx, intentID)
	if err != nil {
		log.Printf("failed to load payment intent %s for refund: %v", intentID, err)
		return
	}
	if intent.Status != payment.StatusSucceeded {
		return
	}
	s.payments.RequestRefund(intent.ID, intent.GatewayID)
}

func (s *service) publish(ctx context.Context, b *Booking, old, new Status) {
	if s.emitter == nil {
		return
	}
	err := s.emitter.Publish(ctx, event.StatusChanged{
		BookingID:  b.ID,
		TeacherID:  b.TeacherID,
		StudentID:  b.StudentID,
		OldStatus:  string(old),
		NewStatus:  string(new),
		OccurredAt: s.now(),
	})
	if err != nil {
		log.Printf("failed to publish status change for booking %s: %v", b.ID, err)
	}
}
