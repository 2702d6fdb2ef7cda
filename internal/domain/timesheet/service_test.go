package timesheet

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"roster/internal/domain/auth"
	"roster/internal/domain/schedule"
	"roster/internal/platform/clock"
)

var (
	worker  = auth.Actor{UserID: "user-w", WorkerID: "w1"}
	manager = auth.Actor{UserID: "user-m", Manager: true}
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fakeEntryStore struct {
	entries map[string]TimeEntry
	nextID  int
}

func newFakeEntryStore() *fakeEntryStore {
	return &fakeEntryStore{entries: map[string]TimeEntry{}}
}

func (s *fakeEntryStore) Create(_ context.Context, e TimeEntry) (TimeEntry, error) {
	for _, existing := range s.entries {
		if existing.AssignmentID == e.AssignmentID && existing.WorkerID == e.WorkerID {
			return TimeEntry{}, ErrDuplicateEntry
		}
	}
	s.nextID++
	e.ID = fmt.Sprintf("e%d", s.nextID)
	e.CreatedAt = time.Now()
	s.entries[e.ID] = e
	return e, nil
}

func (s *fakeEntryStore) Get(_ context.Context, id string) (TimeEntry, error) {
	e, ok := s.entries[id]
	if !ok {
		return TimeEntry{}, ErrNotFound
	}
	return e, nil
}

func (s *fakeEntryStore) Update(_ context.Context, e TimeEntry) error {
	if _, ok := s.entries[e.ID]; !ok {
		return ErrNotFound
	}
	s.entries[e.ID] = e
	return nil
}

func (s *fakeEntryStore) Delete(_ context.Context, id string) error {
	if _, ok := s.entries[id]; !ok {
		return ErrNotFound
	}
	delete(s.entries, id)
	return nil
}

func (s *fakeEntryStore) ListForWorker(_ context.Context, workerID string, from, to time.Time) ([]TimeEntry, error) {
	var out []TimeEntry
	for _, e := range s.entries {
		if e.WorkerID == workerID && !e.Date.Before(from) && !e.Date.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakeEntryStore) Exists(_ context.Context, assignmentID, workerID string) (bool, error) {
	for _, e := range s.entries {
		if e.AssignmentID == assignmentID && e.WorkerID == workerID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeEntryStore) ListKeysBetween(_ context.Context, from, to time.Time) ([]EntryKey, error) {
	var out []EntryKey
	for _, e := range s.entries {
		if !e.Date.Before(from) && !e.Date.After(to) {
			out = append(out, EntryKey{AssignmentID: e.AssignmentID, WorkerID: e.WorkerID})
		}
	}
	return out, nil
}

type fakeSchedule struct {
	assignments map[string]schedule.Assignment
}

func newFakeSchedule(assignments ...schedule.Assignment) *fakeSchedule {
	f := &fakeSchedule{assignments: map[string]schedule.Assignment{}}
	for _, a := range assignments {
		f.assignments[a.ID] = a
	}
	return f
}

func (f *fakeSchedule) GetAssignment(_ context.Context, id string) (schedule.Assignment, error) {
	a, ok := f.assignments[id]
	if !ok {
		return schedule.Assignment{}, schedule.ErrNotFound
	}
	return a, nil
}

func (f *fakeSchedule) ListShifts(_ context.Context, from, to time.Time) ([]schedule.Assignment, error) {
	var out []schedule.Assignment
	for _, a := range f.assignments {
		if a.Kind == schedule.KindShift && !a.Date.Before(from) && !a.Date.After(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeSchedule) ListShiftsForWorker(ctx context.Context, workerID string, from, to time.Time) ([]schedule.Assignment, error) {
	all, err := f.ListShifts(ctx, from, to)
	if err != nil {
		return nil, err
	}
	var out []schedule.Assignment
	for _, a := range all {
		if a.HasWorker(workerID) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeSchedule) SaveWorkers(_ context.Context, a schedule.Assignment) error {
	stored, ok := f.assignments[a.ID]
	if !ok {
		return schedule.ErrNotFound
	}
	stored.PrimaryWorkerID = a.PrimaryWorkerID
	stored.Attachments = a.Attachments
	f.assignments[a.ID] = stored
	return nil
}

func shiftOn(id string, date time.Time, workerIDs ...string) schedule.Assignment {
	a := schedule.Assignment{
		ID:        id,
		Date:      date,
		Event:     "Evening service",
		Kind:      schedule.KindShift,
		StartTime: "20:00",
		EndTime:   "23:00",
	}
	if len(workerIDs) > 0 {
		a.PrimaryWorkerID = workerIDs[0]
		for _, id := range workerIDs[1:] {
			a.Attachments = append(a.Attachments, schedule.Attachment{WorkerID: id})
		}
	}
	return a
}

func newTestService(sched *fakeSchedule, today time.Time) (*Service, *fakeEntryStore) {
	store := newFakeEntryStore()
	clk := clock.Fixed{Instant: today}
	return NewService(store, sched, clk), store
}

func TestCreateEntry(t *testing.T) {
	today := day(2026, 2, 22)
	sched := newFakeSchedule(shiftOn("a1", day(2026, 2, 21), "w1"))
	svc, _ := newTestService(sched, today)

	e, err := svc.Create(context.Background(), worker, EntryParams{
		AssignmentID: "a1",
		WorkerID:     "w1",
		Hours:        decimal.NewFromFloat(3.5),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !e.Date.Equal(day(2026, 2, 21)) {
		t.Fatalf("entry date should come from the assignment, got %v", e.Date)
	}
}

func TestCreateEntryDuplicate(t *testing.T) {
	today := day(2026, 2, 22)
	sched := newFakeSchedule(shiftOn("a1", day(2026, 2, 21), "w1"))
	svc, _ := newTestService(sched, today)

	params := EntryParams{AssignmentID: "a1", WorkerID: "w1", Hours: decimal.NewFromInt(3)}
	if _, err := svc.Create(context.Background(), worker, params); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.Create(context.Background(), worker, params); !errors.Is(err, ErrDuplicateEntry) {
		t.Fatalf("expected ErrDuplicateEntry, got %v", err)
	}
}

func TestCreateEntryNotMember(t *testing.T) {
	today := day(2026, 2, 22)
	sched := newFakeSchedule(shiftOn("a1", day(2026, 2, 21), "w2"))
	svc, _ := newTestService(sched, today)

	_, err := svc.Create(context.Background(), manager, EntryParams{
		AssignmentID: "a1",
		WorkerID:     "w1",
		Hours:        decimal.NewFromInt(3),
	})
	if !errors.Is(err, ErrNotMember) {
		t.Fatalf("expected ErrNotMember, got %v", err)
	}
}

func TestCreateEntryFutureDate(t *testing.T) {
	today := day(2026, 2, 22)
	sched := newFakeSchedule(shiftOn("a1", day(2026, 2, 23), "w1"))
	svc, _ := newTestService(sched, today)

	_, err := svc.Create(context.Background(), worker, EntryParams{
		AssignmentID: "a1",
		WorkerID:     "w1",
		Hours:        decimal.NewFromInt(3),
	})
	if !errors.Is(err, ErrFutureDate) {
		t.Fatalf("expected ErrFutureDate, got %v", err)
	}
}

func TestCreateEntryForOtherWorkerRequiresManager(t *testing.T) {
	today := day(2026, 2, 22)
	sched := newFakeSchedule(shiftOn("a1", day(2026, 2, 21), "w2"))
	svc, _ := newTestService(sched, today)

	_, err := svc.Create(context.Background(), worker, EntryParams{
		AssignmentID: "a1",
		WorkerID:     "w2",
		Hours:        decimal.NewFromInt(3),
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	if _, err := svc.Create(context.Background(), manager, EntryParams{
		AssignmentID: "a1",
		WorkerID:     "w2",
		Hours:        decimal.NewFromInt(3),
	}); err != nil {
		t.Fatalf("manager create for other worker: %v", err)
	}
}

func TestUpdateEntry(t *testing.T) {
	today := day(2026, 2, 22)
	sched := newFakeSchedule(shiftOn("a1", day(2026, 2, 21), "w1"))
	svc, _ := newTestService(sched, today)

	e, err := svc.Create(context.Background(), worker, EntryParams{
		AssignmentID: "a1",
		WorkerID:     "w1",
		Hours:        decimal.NewFromInt(3),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(context.Background(), worker, e.ID, EntryUpdateParams{
		Hours: decimal.NewFromFloat(4.25),
		Note:  "covered closing",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.Hours.Equal(decimal.NewFromFloat(4.25)) || updated.Note != "covered closing" {
		t.Fatalf("unexpected updated entry: %+v", updated)
	}

	if _, err := svc.Update(context.Background(), auth.Actor{UserID: "u", WorkerID: "w9"}, e.ID, EntryUpdateParams{
		Hours: decimal.NewFromInt(1),
	}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for foreign update, got %v", err)
	}
}

func TestDeleteEntry(t *testing.T) {
	today := day(2026, 2, 22)
	sched := newFakeSchedule(shiftOn("a1", day(2026, 2, 21), "w1"))
	svc, store := newTestService(sched, today)

	e, err := svc.Create(context.Background(), worker, EntryParams{
		AssignmentID: "a1",
		WorkerID:     "w1",
		Hours:        decimal.NewFromInt(3),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(context.Background(), worker, e.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(context.Background(), e.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("entry should be gone, got %v", err)
	}
}

func TestCreateSameDayEntryInReferenceZone(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	// Stored dates scan as UTC midnights; the clock runs in the reference
	// zone. Same calendar day must not read as a future date.
	sched := newFakeSchedule(shiftOn("a1", day(2026, 2, 22), "w1"))
	store := newFakeEntryStore()
	svc := NewService(store, sched, clock.Fixed{Instant: time.Date(2026, 2, 22, 9, 0, 0, 0, rome)})

	if _, err := svc.Create(context.Background(), worker, EntryParams{
		AssignmentID: "a1",
		WorkerID:     "w1",
		Hours:        decimal.NewFromInt(3),
	}); err != nil {
		t.Fatalf("same-day entry must be allowed: %v", err)
	}
}

func TestCreateNextDayEntryStillRejectedInReferenceZone(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	sched := newFakeSchedule(shiftOn("a1", day(2026, 2, 23), "w1"))
	store := newFakeEntryStore()
	svc := NewService(store, sched, clock.Fixed{Instant: time.Date(2026, 2, 22, 9, 0, 0, 0, rome)})

	if _, err := svc.Create(context.Background(), worker, EntryParams{
		AssignmentID: "a1",
		WorkerID:     "w1",
		Hours:        decimal.NewFromInt(3),
	}); !errors.Is(err, ErrFutureDate) {
		t.Fatalf("expected ErrFutureDate, got %v", err)
	}
}
