// Package event publishes booking state-change events to external watchers
// such as calendar and notification collaborators. Delivery is at least once;
// consumers must be idempotent on (booking_id, new_status).
package event

import (
	"context"
	"time"
)

// StatusChanged is emitted on every booking status transition. It carries
// enough information for downstream consumers to log, notify, or refresh a
// calendar without querying the primary database.
type StatusChanged struct {
	BookingID  string    `json:"booking_id"`
	TeacherID  string    `json:"teacher_id"`
	StudentID  string    `json:"student_id"`
	OldStatus  string    `json:"old_status"`
	NewStatus  string    `json:"new_status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RoutingKey is the topic key used on the broker exchange.
const RoutingKey = "booking.status_changed"

// Emitter publishes booking state changes. Implementations must not block
// the booking request path on slow consumers.
type Emitter interface {
	Publish(ctx context.Context, e StatusChanged) error
}

// Multi fans a publish out to several emitters. The first error is returned
// after every emitter had its chance; callers typically just log it.
type Multi []Emitter

func (m Multi) Publish(ctx context.Context, e StatusChanged) error {
	var first error
	for _, em := range m {
		if err := em.Publish(ctx, e); err != nil && first == nil {
			first = err
		}
	}
	return first
}
