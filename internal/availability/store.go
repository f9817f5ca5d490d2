package availability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/btree"
	"github.com/google/uuid"
)

// Store is the in-process authority on per-teacher busy intervals. All
// overlap decisions are made here, under a critical section scoped to one
// teacher, so concurrent reservations for the same teacher are serialized
// while different teachers never contend.
//
// Intervals are kept per teacher in a btree ordered by start time, which
// gives the predecessor/successor lookups needed to decide overlap without
// scanning the whole calendar. An optional Repository receives write-through
// updates so the busy set survives restarts.
type Store struct {
	repo Repository // may be nil (volatile store, used heavily in tests)

	mu       sync.RWMutex
	teachers map[string]*teacherCalendar
	byID     map[string]*Interval
}

type teacherCalendar struct {
	mu   sync.Mutex
	tree *btree.BTreeG[*Interval]
}

func lessByStart(a, b *Interval) bool {
	if a.Start.Equal(b.Start) {
		return a.ID < b.ID
	}
	return a.Start.Before(b.Start)
}

// NewStore creates an empty Store. repo may be nil to disable persistence.
func NewStore(repo Repository) *Store {
	return &Store{
		repo:     repo,
		teachers: make(map[string]*teacherCalendar),
		byID:     make(map[string]*Interval),
	}
}

// Load seeds the in-memory calendars from the repository. It must be called
// before the store starts taking reservations.
func (s *Store) Load(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	intervals, err := s.repo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load availability intervals: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, iv := range intervals {
		cal, ok := s.teachers[iv.TeacherID]
		if !ok {
			cal = &teacherCalendar{tree: btree.NewG(8, lessByStart)}
			s.teachers[iv.TeacherID] = cal
		}
		cal.tree.ReplaceOrInsert(iv)
		s.byID[iv.ID] = iv
	}
	return nil
}

// Reserve atomically checks and inserts a busy interval for the teacher.
// It fails with ErrConflict if the interval overlaps any existing interval
// for that teacher. The check and the insert happen under the same
// per-teacher critical section, so of two concurrent overlapping reservations
// exactly one succeeds.
func (s *Store) Reserve(ctx context.Context, teacherID, bookingID string, start, end time.Time) (*Interval, error) {
	iv := &Interval{
		ID:        uuid.New().String(),
		TeacherID: teacherID,
		BookingID: bookingID,
		Start:     start,
		End:       end,
	}

	cal := s.calendarFor(teacherID)

	cal.mu.Lock()
	defer cal.mu.Unlock()

	if conflicts(cal.tree, start, end, "") {
		return nil, ErrConflict
	}

	if s.repo != nil {
		if err := s.repo.Create(ctx, iv); err != nil {
			return nil, fmt.Errorf("failed to persist interval: %w", err)
		}
	}
	cal.tree.ReplaceOrInsert(iv)

	s.mu.Lock()
	s.byID[iv.ID] = iv
	s.mu.Unlock()

	return iv, nil
}

// Release frees a previously reserved interval. Releasing an id that is
// unknown or already released is a no-op, not an error.
func (s *Store) Release(ctx context.Context, intervalID string) error {
	s.mu.RLock()
	iv, ok := s.byID[intervalID]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	cal := s.calendarFor(iv.TeacherID)

	cal.mu.Lock()
	defer cal.mu.Unlock()

	// Re-check under the teacher lock; a concurrent Release may have won.
	s.mu.RLock()
	iv, ok = s.byID[intervalID]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	if s.repo != nil {
		if err := s.repo.Delete(ctx, intervalID); err != nil {
			return fmt.Errorf("failed to delete interval: %w", err)
		}
	}
	cal.tree.Delete(iv)

	s.mu.Lock()
	delete(s.byID, intervalID)
	s.mu.Unlock()

	return nil
}

// Swap atomically moves an interval to a new time range under one teacher
// critical section: the old range is removed, the new range checked, and on
// conflict the old range is kept exactly as it was. A target identical to the
// current range is a successful no-op. The interval keeps its id, so the
// owning booking never points at a stale reservation.
func (s *Store) Swap(ctx context.Context, intervalID string, newStart, newEnd time.Time) (*Interval, error) {
	s.mu.RLock()
	old, ok := s.byID[intervalID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	cal := s.calendarFor(old.TeacherID)

	cal.mu.Lock()
	defer cal.mu.Unlock()

	s.mu.RLock()
	old, ok = s.byID[intervalID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	if old.Start.Equal(newStart) && old.End.Equal(newEnd) {
		return old, nil
	}

	if conflicts(cal.tree, newStart, newEnd, intervalID) {
		return nil, ErrConflict
	}

	moved := &Interval{
		ID:        old.ID,
		TeacherID: old.TeacherID,
		BookingID: old.BookingID,
		Start:     newStart,
		End:       newEnd,
	}

	if s.repo != nil {
		if err := s.repo.UpdateRange(ctx, intervalID, newStart, newEnd); err != nil {
			return nil, fmt.Errorf("failed to persist interval move: %w", err)
		}
	}

	cal.tree.Delete(old)
	cal.tree.ReplaceOrInsert(moved)

	s.mu.Lock()
	s.byID[intervalID] = moved
	s.mu.Unlock()

	return moved, nil
}

// Query returns a snapshot of the intervals overlapping [from, to) for the
// teacher, ordered by start time. The copy is taken under the teacher lock,
// so a concurrent Reserve is either fully visible or not at all.
func (s *Store) Query(teacherID string, from, to time.Time) []Interval {
	s.mu.RLock()
	cal, ok := s.teachers[teacherID]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	cal.mu.Lock()
	defer cal.mu.Unlock()

	var out []Interval
	cal.tree.AscendLessThan(&Interval{Start: to}, func(iv *Interval) bool {
		if iv.Overlaps(from, to) {
			out = append(out, *iv)
		}
		return true
	})
	return out
}

func (s *Store) calendarFor(teacherID string) *teacherCalendar {
	s.mu.RLock()
	cal, ok := s.teachers[teacherID]
	s.mu.RUnlock()
	if ok {
		return cal
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cal, ok = s.teachers[teacherID]; ok {
		return cal
	}
	cal = &teacherCalendar{tree: btree.NewG(8, lessByStart)}
	s.teachers[teacherID] = cal
	return cal
}

// conflicts decides overlap for a half-open candidate range by inspecting
// only the neighbors of the insertion point. Intervals in the tree are
// pairwise disjoint, so the latest interval starting at or before the
// candidate and the earliest interval starting after it are the only possible
// collisions.
func conflicts(tree *btree.BTreeG[*Interval], start, end time.Time, excludeID string) bool {
	conflict := false

	// Predecessor side: latest interval with Start <= start. The "\xff"
	// sentinel id sorts the pivot after real intervals sharing the start.
	tree.DescendLessOrEqual(&Interval{Start: start, ID: "\xff"}, func(iv *Interval) bool {
		if iv.ID == excludeID {
			return true // skip the excluded interval, its own predecessor still counts
		}
		conflict = iv.End.After(start)
		return false
	})
	if conflict {
		return true
	}

	// Successor side: earliest interval with Start >= start.
	tree.AscendGreaterOrEqual(&Interval{Start: start}, func(iv *Interval) bool {
		if iv.ID == excludeID {
			return true
		}
		conflict = iv.Start.Before(end) && iv.End.After(start)
		return false
	})
	return conflict
}
