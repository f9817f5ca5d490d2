package availability

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 9, 14, hour, min, 0, 0, time.UTC)
}

func TestReserveRejectsOverlap(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)

	first, err := store.Reserve(ctx, "teacher-1", "booking-1", at(10, 0), at(11, 0))
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	cases := []struct {
		name       string
		start, end time.Time
		wantErr    error
	}{
		{"contained", at(10, 30), at(10, 45), ErrConflict},
		{"overlaps head", at(9, 30), at(10, 30), ErrConflict},
		{"overlaps tail", at(10, 45), at(11, 30), ErrConflict},
		{"covers", at(9, 0), at(12, 0), ErrConflict},
		{"identical", at(10, 0), at(11, 0), ErrConflict},
		{"touching before is free", at(9, 0), at(10, 0), nil},
		{"touching after is free", at(11, 0), at(12, 0), nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := store.Reserve(ctx, "teacher-1", "booking-x", tc.start, tc.end)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestReserveDifferentTeachersNeverConflict(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)

	_, err := store.Reserve(ctx, "teacher-1", "b1", at(10, 0), at(11, 0))
	require.NoError(t, err)

	_, err = store.Reserve(ctx, "teacher-2", "b2", at(10, 0), at(11, 0))
	assert.NoError(t, err)
}

func TestConcurrentReserveExactlyOneWins(t *testing.T) {
	ctx := context.Background()

	// Repeat to give the race a chance to show up.
	for i := 0; i < 50; i++ {
		store := NewStore(nil)

		var wg sync.WaitGroup
		errs := make([]error, 2)

		wg.Add(2)
		go func() {
			defer wg.Done()
			_, errs[0] = store.Reserve(ctx, "teacher-1", "b1", at(10, 0), at(11, 0))
		}()
		go func() {
			defer wg.Done()
			_, errs[1] = store.Reserve(ctx, "teacher-1", "b2", at(10, 30), at(11, 30))
		}()
		wg.Wait()

		okCount := 0
		conflictCount := 0
		for _, err := range errs {
			switch {
			case err == nil:
				okCount++
			case assert.ErrorIs(t, err, ErrConflict):
				conflictCount++
			}
		}
		require.Equal(t, 1, okCount, "exactly one reservation must win")
		require.Equal(t, 1, conflictCount, "the loser must see ErrConflict")
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)

	iv, err := store.Reserve(ctx, "teacher-1", "b1", at(10, 0), at(11, 0))
	require.NoError(t, err)

	require.NoError(t, store.Release(ctx, iv.ID))
	require.NoError(t, store.Release(ctx, iv.ID), "second release is a no-op")
	require.NoError(t, store.Release(ctx, "never-existed"))

	// The slot is free again.
	_, err = store.Reserve(ctx, "teacher-1", "b2", at(10, 0), at(11, 0))
	assert.NoError(t, err)
}

func TestSwapRestoresOldIntervalOnConflict(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)

	moving, err := store.Reserve(ctx, "teacher-1", "b1", at(10, 0), at(11, 0))
	require.NoError(t, err)
	_, err = store.Reserve(ctx, "teacher-1", "b2", at(12, 0), at(13, 0))
	require.NoError(t, err)

	_, err = store.Swap(ctx, moving.ID, at(12, 30), at(13, 30))
	require.ErrorIs(t, err, ErrConflict)

	// Old interval is still held exactly as it was.
	got := store.Query("teacher-1", at(9, 0), at(14, 0))
	require.Len(t, got, 2)
	assert.Equal(t, at(10, 0), got[0].Start)
	assert.Equal(t, at(11, 0), got[0].End)
	assert.Equal(t, "b1", got[0].BookingID)
}

func TestSwapMovesInterval(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)

	iv, err := store.Reserve(ctx, "teacher-1", "b1", at(10, 0), at(11, 0))
	require.NoError(t, err)

	moved, err := store.Swap(ctx, iv.ID, at(14, 0), at(15, 0))
	require.NoError(t, err)
	assert.Equal(t, iv.ID, moved.ID)
	assert.Equal(t, "b1", moved.BookingID)

	// Old slot is free, new slot is busy.
	_, err = store.Reserve(ctx, "teacher-1", "b2", at(10, 0), at(11, 0))
	assert.NoError(t, err)
	_, err = store.Reserve(ctx, "teacher-1", "b3", at(14, 30), at(15, 30))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestSwapToOwnRangeIsNoOp(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)

	iv, err := store.Reserve(ctx, "teacher-1", "b1", at(10, 0), at(11, 0))
	require.NoError(t, err)

	moved, err := store.Swap(ctx, iv.ID, at(10, 0), at(11, 0))
	require.NoError(t, err, "moving onto the booking's own interval must not conflict")
	assert.Equal(t, iv.ID, moved.ID)
	assert.Len(t, store.Query("teacher-1", at(9, 0), at(12, 0)), 1)
}

func TestSwapToAdjacentOverlappingRange(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)

	iv, err := store.Reserve(ctx, "teacher-1", "b1", at(10, 0), at(11, 0))
	require.NoError(t, err)

	// Shifting by 30 minutes overlaps the old range; the swap must ignore
	// the booking's own interval when checking.
	moved, err := store.Swap(ctx, iv.ID, at(10, 30), at(11, 30))
	require.NoError(t, err)
	assert.Equal(t, at(10, 30), moved.Start)

	got := store.Query("teacher-1", at(9, 0), at(12, 0))
	require.Len(t, got, 1)
	assert.Equal(t, at(10, 30), got[0].Start)
}

func TestQueryOrderedAndBounded(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)

	// Insert out of order.
	_, err := store.Reserve(ctx, "teacher-1", "b3", at(15, 0), at(16, 0))
	require.NoError(t, err)
	_, err = store.Reserve(ctx, "teacher-1", "b1", at(9, 0), at(10, 0))
	require.NoError(t, err)
	_, err = store.Reserve(ctx, "teacher-1", "b2", at(12, 0), at(13, 0))
	require.NoError(t, err)

	got := store.Query("teacher-1", at(9, 30), at(15, 30))
	require.Len(t, got, 3, "range-overlapping intervals are included")
	assert.Equal(t, "b1", got[0].BookingID)
	assert.Equal(t, "b2", got[1].BookingID)
	assert.Equal(t, "b3", got[2].BookingID)

	// Half-open semantics: an interval starting exactly at the range end is out.
	got = store.Query("teacher-1", at(9, 0), at(15, 0))
	require.Len(t, got, 2)

	assert.Nil(t, store.Query("unknown-teacher", at(9, 0), at(15, 0)))
}

func TestManyConcurrentReservationsStayDisjoint(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)

	// 40 goroutines race over 10 distinct slots; every slot must end up with
	// exactly one owner.
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for slot := 0; slot < 10; slot++ {
				start := at(8, 0).Add(time.Duration(slot) * time.Hour)
				_, _ = store.Reserve(ctx, "teacher-1", "b", start, start.Add(time.Hour))
			}
		}()
	}
	wg.Wait()

	got := store.Query("teacher-1", at(0, 0), at(23, 59))
	require.Len(t, got, 10)
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i-1].Overlaps(got[i].Start, got[i].End),
			"intervals %d and %d overlap", i-1, i)
		assert.True(t, got[i-1].End.Compare(got[i].Start) <= 0, "query result must be ordered")
	}
}
