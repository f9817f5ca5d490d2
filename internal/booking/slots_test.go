package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tutorhive/lesson-booking-backend/internal/availability"
)

func TestFreeSlots(t *testing.T) {
	open := at(9, 0)
	close := at(21, 0)

	iv := func(startH, startM, endH, endM int) availability.Interval {
		return availability.Interval{Start: at(startH, startM), End: at(endH, endM)}
	}
	slot := func(startH, startM, endH, endM int) TimeSlot {
		return TimeSlot{StartTime: at(startH, startM), EndTime: at(endH, endM)}
	}

	tests := []struct {
		name string
		busy []availability.Interval
		want []TimeSlot
	}{
		{
			name: "empty day is one full slot",
			busy: nil,
			want: []TimeSlot{slot(9, 0, 21, 0)},
		},
		{
			name: "single lesson splits the day",
			busy: []availability.Interval{iv(12, 0, 13, 0)},
			want: []TimeSlot{slot(9, 0, 12, 0), slot(13, 0, 21, 0)},
		},
		{
			name: "lesson at opening leaves only the tail",
			busy: []availability.Interval{iv(9, 0, 10, 30)},
			want: []TimeSlot{slot(10, 30, 21, 0)},
		},
		{
			name: "lesson at closing leaves only the head",
			busy: []availability.Interval{iv(19, 0, 21, 0)},
			want: []TimeSlot{slot(9, 0, 19, 0)},
		},
		{
			name: "back to back lessons leave no gap between them",
			busy: []availability.Interval{iv(10, 0, 11, 0), iv(11, 0, 12, 0)},
			want: []TimeSlot{slot(9, 0, 10, 0), slot(12, 0, 21, 0)},
		},
		{
			name: "unsorted input is handled",
			busy: []availability.Interval{iv(15, 0, 16, 0), iv(10, 0, 11, 0)},
			want: []TimeSlot{slot(9, 0, 10, 0), slot(11, 0, 15, 0), slot(16, 0, 21, 0)},
		},
		{
			name: "lesson spilling past closing is clamped",
			busy: []availability.Interval{iv(20, 0, 22, 0)},
			want: []TimeSlot{slot(9, 0, 20, 0)},
		},
		{
			name: "lesson starting before opening is clamped",
			busy: []availability.Interval{iv(8, 0, 9, 30)},
			want: []TimeSlot{slot(9, 30, 21, 0)},
		},
		{
			name: "fully booked day has no slots",
			busy: []availability.Interval{iv(9, 0, 21, 0)},
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FreeSlots(open, close, tt.busy)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("window outside business hours", func(t *testing.T) {
		got := FreeSlots(open, close, []availability.Interval{
			{Start: at(6, 0), End: at(7, 0)},
			{Start: at(22, 0), End: at(23, 0)},
		})
		assert.Equal(t, []TimeSlot{{StartTime: open, EndTime: close}}, got)
	})
}
