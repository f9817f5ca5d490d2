package availability

import (
	"net/http"
	"time"

	"github.com/tutorhive/lesson-booking-backend/internal/pkg/apperror"
)

var (
	// ErrConflict is returned when a requested interval overlaps an existing
	// interval for the same teacher.
	ErrConflict = apperror.New(http.StatusConflict, "time slot already booked")
	// ErrNotFound is returned when an interval id is unknown. Release treats
	// this case as a no-op instead.
	ErrNotFound = apperror.New(http.StatusNotFound, "availability interval not found")
)

// Interval is a half-open [Start, End) time range marked busy for a teacher,
// owned by exactly one booking.
type Interval struct {
	ID        string
	TeacherID string
	BookingID string
	Start     time.Time
	End       time.Time
}

// Overlaps reports whether two half-open intervals share any instant.
func (iv Interval) Overlaps(start, end time.Time) bool {
	return iv.Start.Before(end) && iv.End.After(start)
}
