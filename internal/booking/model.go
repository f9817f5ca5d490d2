package booking

import (
	"net/http"
	"time"

	"github.com/tutorhive/lesson-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "booking not found")
	ErrConflict         = apperror.New(http.StatusConflict, "time slot already booked")
	ErrInvalidRange     = apperror.New(http.StatusBadRequest, "invalid lesson time window")
	ErrTerminalState    = apperror.New(http.StatusConflict, "booking is already completed or cancelled")
	ErrNotDue           = apperror.New(http.StatusConflict, "booking has not ended yet")
	ErrPermissionDenied = apperror.New(http.StatusForbidden, "permission denied")
)

type Status string

const (
	// StatusPending exists only between reservation and payment confirmation;
	// callers never observe it on a returned booking.
	StatusPending   Status = "pending"
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transition is allowed out of s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Booking is a reserved teacher-student lesson slot with a lifecycle status.
type Booking struct {
	ID          string
	TeacherID   string
	TeacherName string
	StudentID   string
	StudentName string
	Start       time.Time
	End         time.Time
	Status      Status
	// PriceAmount is the lesson price in minor units; zero means free.
	PriceAmount int64
	Currency    string
	// PaymentIntentID references the correlated payment intent, if any.
	PaymentIntentID *string
	// IntervalID is the availability interval owned by this booking while it
	// is not cancelled. Internal bookkeeping, never serialized.
	IntervalID string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Filter narrows List results.
type Filter struct {
	TeacherID string
	StudentID string
	Status    string
	StartFrom *time.Time
	StartTo   *time.Time
	Page      int
	PageSize  int
}

// TimeSlot is a free range in a teacher's day, built for display purposes.
type TimeSlot struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}
