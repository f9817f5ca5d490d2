package booking

import (
	"sort"
	"time"

	"github.com/tutorhive/lesson-booking-backend/internal/availability"
)

// FreeSlots subtracts the busy intervals from the [open, close) window and
// returns the remaining free ranges in order. Busy intervals may arrive
// unsorted; ranges outside the window are clamped.
func FreeSlots(open, close time.Time, busy []availability.Interval) []TimeSlot {
	sorted := make([]availability.Interval, len(busy))
	copy(sorted, busy)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	var slots []TimeSlot
	cursor := open

	for _, iv := range sorted {
		if !iv.End.After(cursor) || !iv.Start.Before(close) {
			continue
		}
		if iv.Start.After(cursor) {
			slots = append(slots, TimeSlot{StartTime: cursor, EndTime: minTime(iv.Start, close)})
		}
		if iv.End.After(cursor) {
			cursor = iv.End
		}
		if !cursor.Before(close) {
			return slots
		}
	}

	if cursor.Before(close) {
		slots = append(slots, TimeSlot{StartTime: cursor, EndTime: close})
	}
	return slots
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
