package unavailability

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"roster/internal/domain/auth"
	"roster/internal/domain/schedule"
)

type fakeStore struct {
	records map[string]Unavailability
	nextID  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]Unavailability{}}
}

func (f *fakeStore) Create(ctx context.Context, u Unavailability) (Unavailability, error) {
	f.nextID++
	u.ID = "u" + strconv.Itoa(f.nextID)
	u.CreatedAt = time.Now()
	f.records[u.ID] = u
	return u, nil
}

func (f *fakeStore) Get(ctx context.Context, id string) (Unavailability, error) {
	u, ok := f.records[id]
	if !ok {
		return Unavailability{}, ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) ListForWorker(ctx context.Context, workerID string, limit, offset int) ([]Unavailability, error) {
	var out []Unavailability
	for _, u := range f.records {
		if u.WorkerID == workerID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeStore) List(ctx context.Context, limit, offset int) ([]Unavailability, error) {
	var out []Unavailability
	for _, u := range f.records {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeStore) UpdateFields(ctx context.Context, id string, dateStart, dateEnd time.Time, startTime, endTime, note string) error {
	u, ok := f.records[id]
	if !ok {
		return ErrNotFound
	}
	u.DateStart, u.DateEnd, u.StartTime, u.EndTime, u.Note = dateStart, dateEnd, startTime, endTime, note
	f.records[id] = u
	return nil
}

func (f *fakeStore) UpdateNote(ctx context.Context, id, note string) error {
	u, ok := f.records[id]
	if !ok {
		return ErrNotFound
	}
	u.Note = note
	f.records[id] = u
	return nil
}

func (f *fakeStore) UpdateStatus(ctx context.Context, id, status string) error {
	u, ok := f.records[id]
	if !ok {
		return ErrNotFound
	}
	u.Status = status
	f.records[id] = u
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, id string) error {
	if _, ok := f.records[id]; !ok {
		return ErrNotFound
	}
	delete(f.records, id)
	return nil
}

type fakeSchedule struct {
	assignments map[string]schedule.Assignment
	saved       []string
}

func newFakeSchedule(assignments ...schedule.Assignment) *fakeSchedule {
	f := &fakeSchedule{assignments: map[string]schedule.Assignment{}}
	for _, a := range assignments {
		f.assignments[a.ID] = a
	}
	return f
}

func (f *fakeSchedule) GetAssignment(ctx context.Context, id string) (schedule.Assignment, error) {
	a, ok := f.assignments[id]
	if !ok {
		return schedule.Assignment{}, schedule.ErrNotFound
	}
	return a, nil
}

func (f *fakeSchedule) ListShifts(ctx context.Context, from, to time.Time) ([]schedule.Assignment, error) {
	var out []schedule.Assignment
	for _, a := range f.assignments {
		if a.Kind == schedule.KindShift && !a.Date.Before(from) && !a.Date.After(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeSchedule) ListShiftsForWorker(ctx context.Context, workerID string, from, to time.Time) ([]schedule.Assignment, error) {
	all, _ := f.ListShifts(ctx, from, to)
	var out []schedule.Assignment
	for _, a := range all {
		if a.HasWorker(workerID) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeSchedule) SaveWorkers(ctx context.Context, a schedule.Assignment) error {
	if _, ok := f.assignments[a.ID]; !ok {
		return schedule.ErrNotFound
	}
	f.assignments[a.ID] = a
	f.saved = append(f.saved, a.ID)
	return nil
}

var (
	worker  = auth.Actor{UserID: "user-w", WorkerID: "w1"}
	manager = auth.Actor{UserID: "user-m", Manager: true}
)

func TestCreateWithoutShiftsApprovesImmediately(t *testing.T) {
	svc := NewService(newFakeStore(), newFakeSchedule())

	result, err := svc.Create(context.Background(), worker, CreateParams{
		WorkerID:  "w1",
		DateStart: day(2026, 3, 1),
		DateEnd:   day(2026, 3, 1),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.HadConflict {
		t.Fatal("expected no conflict on an empty schedule")
	}
	if result.Record.Status != StatusApproved {
		t.Fatalf("expected immediate approval, got %s", result.Record.Status)
	}
}

func TestCreateWithConflictStaysPending(t *testing.T) {
	sched := newFakeSchedule(schedule.Assignment{
		ID: "a1", Kind: schedule.KindShift, Date: day(2026, 3, 1),
		StartTime: "09:00", EndTime: "13:00", PrimaryWorkerID: "w1",
	})
	svc := NewService(newFakeStore(), sched)

	result, err := svc.Create(context.Background(), worker, CreateParams{
		WorkerID:  "w1",
		DateStart: day(2026, 3, 1),
		DateEnd:   day(2026, 3, 1),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.HadConflict {
		t.Fatal("expected a conflict")
	}
	if result.Record.Status != StatusPendingApproval {
		t.Fatalf("expected PENDING_APPROVAL, got %s", result.Record.Status)
	}
}

func TestCreateRejectsInvertedRange(t *testing.T) {
	svc := NewService(newFakeStore(), newFakeSchedule())
	_, err := svc.Create(context.Background(), worker, CreateParams{
		WorkerID:  "w1",
		DateStart: day(2026, 3, 2),
		DateEnd:   day(2026, 3, 1),
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestCreateForOtherWorkerRequiresManager(t *testing.T) {
	svc := NewService(newFakeStore(), newFakeSchedule())
	params := CreateParams{WorkerID: "w2", DateStart: day(2026, 3, 1), DateEnd: day(2026, 3, 1)}

	if _, err := svc.Create(context.Background(), worker, params); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Create(context.Background(), manager, params); err != nil {
		t.Fatalf("manager must be allowed: %v", err)
	}
}

func TestApproveDetachesFromConflictingShifts(t *testing.T) {
	sched := newFakeSchedule(
		schedule.Assignment{
			ID: "a1", Kind: schedule.KindShift, Date: day(2026, 3, 1),
			StartTime: "09:00", EndTime: "13:00",
			PrimaryWorkerID: "w1",
			Attachments:     []schedule.Attachment{{WorkerID: "w2", DutyID: "bar"}},
		},
		schedule.Assignment{
			ID: "a2", Kind: schedule.KindShift, Date: day(2026, 3, 2),
			StartTime: "20:00", EndTime: "23:00",
			Attachments: []schedule.Attachment{{WorkerID: "w1"}},
		},
		// outside the range, must stay untouched
		schedule.Assignment{
			ID: "a3", Kind: schedule.KindShift, Date: day(2026, 3, 5),
			StartTime: "09:00", EndTime: "13:00", PrimaryWorkerID: "w1",
		},
	)
	store := newFakeStore()
	svc := NewService(store, sched)

	created, err := svc.Create(context.Background(), worker, CreateParams{
		WorkerID:  "w1",
		DateStart: day(2026, 3, 1),
		DateEnd:   day(2026, 3, 2),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	result, err := svc.Approve(context.Background(), manager, created.Record.ID)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if result.Record.Status != StatusApproved {
		t.Fatalf("expected APPROVED, got %s", result.Record.Status)
	}
	if len(result.DetachedAssignmentIDs) != 2 {
		t.Fatalf("expected 2 detached assignments, got %v", result.DetachedAssignmentIDs)
	}

	for _, id := range []string{"a1", "a2"} {
		a, _ := sched.GetAssignment(context.Background(), id)
		if a.HasWorker("w1") {
			t.Fatalf("worker still attached to %s after approval", id)
		}
	}
	a3, _ := sched.GetAssignment(context.Background(), "a3")
	if !a3.HasWorker("w1") {
		t.Fatal("assignment outside the range must not be touched")
	}
	a1, _ := sched.GetAssignment(context.Background(), "a1")
	if !a1.HasWorker("w2") {
		t.Fatal("other members must survive the detach")
	}
}

type fakeTxRunner struct {
	store *fakeStore
	sched *fakeSchedule
	runs  int
	fail  error
}

func (f *fakeTxRunner) InTx(ctx context.Context, fn func(TxStores) error) error {
	f.runs++
	if f.fail != nil {
		return f.fail
	}
	return fn(TxStores{Unavailabilities: f.store, Schedule: f.sched})
}

func TestApproveUsesTransactionWhenAvailable(t *testing.T) {
	sched := newFakeSchedule(schedule.Assignment{
		ID: "a1", Kind: schedule.KindShift, Date: day(2026, 3, 1),
		StartTime: "09:00", EndTime: "13:00", PrimaryWorkerID: "w1",
	})
	store := newFakeStore()
	svc := NewService(store, sched)
	runner := &fakeTxRunner{store: store, sched: sched}
	svc.Tx = runner

	created, _ := store.Create(context.Background(), Unavailability{
		WorkerID:  "w1",
		DateStart: day(2026, 3, 1),
		DateEnd:   day(2026, 3, 1),
		Status:    StatusPendingApproval,
	})

	result, err := svc.Approve(context.Background(), manager, created.ID)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if runner.runs != 1 {
		t.Fatalf("expected one transaction, got %d", runner.runs)
	}
	if len(result.DetachedAssignmentIDs) != 1 {
		t.Fatalf("expected 1 detached assignment, got %v", result.DetachedAssignmentIDs)
	}
}

func TestApproveTransactionFailureLeavesRecordPending(t *testing.T) {
	sched := newFakeSchedule()
	store := newFakeStore()
	svc := NewService(store, sched)
	svc.Tx = &fakeTxRunner{store: store, sched: sched, fail: errors.New("tx aborted")}

	created, _ := store.Create(context.Background(), Unavailability{
		WorkerID:  "w1",
		DateStart: day(2026, 3, 1),
		DateEnd:   day(2026, 3, 1),
		Status:    StatusPendingApproval,
	})

	if _, err := svc.Approve(context.Background(), manager, created.ID); err == nil {
		t.Fatal("expected the transaction error to surface")
	}
	u, _ := store.Get(context.Background(), created.ID)
	if u.Status != StatusPendingApproval {
		t.Fatalf("record must stay pending, got %s", u.Status)
	}
}

func TestApproveRequiresManager(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, newFakeSchedule())
	created, _ := store.Create(context.Background(), Unavailability{WorkerID: "w1", Status: StatusPendingApproval})

	if _, err := svc.Approve(context.Background(), worker, created.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestApproveRejectsApprovedRecord(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, newFakeSchedule())
	created, _ := store.Create(context.Background(), Unavailability{WorkerID: "w1", Status: StatusApproved})

	if _, err := svc.Approve(context.Background(), manager, created.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestApproveRescansCurrentSchedule(t *testing.T) {
	sched := newFakeSchedule()
	store := newFakeStore()
	svc := NewService(store, sched)

	created, _ := store.Create(context.Background(), Unavailability{
		WorkerID:  "w1",
		DateStart: day(2026, 3, 1),
		DateEnd:   day(2026, 3, 1),
		Status:    StatusPendingApproval,
	})

	// shift added after the record was created
	sched.assignments["late"] = schedule.Assignment{
		ID: "late", Kind: schedule.KindShift, Date: day(2026, 3, 1),
		StartTime: "09:00", EndTime: "13:00", PrimaryWorkerID: "w1",
	}

	result, err := svc.Approve(context.Background(), manager, created.ID)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if len(result.DetachedAssignmentIDs) != 1 || result.DetachedAssignmentIDs[0] != "late" {
		t.Fatalf("expected the late shift to be detached, got %v", result.DetachedAssignmentIDs)
	}
}

func TestUpdateStructuralFieldsFrozenAfterApproval(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, newFakeSchedule())
	created, _ := store.Create(context.Background(), Unavailability{
		WorkerID:  "w1",
		DateStart: day(2026, 3, 1),
		DateEnd:   day(2026, 3, 1),
		Status:    StatusApproved,
	})

	_, err := svc.Update(context.Background(), worker, created.ID, UpdateParams{
		DateStart: day(2026, 3, 2),
		DateEnd:   day(2026, 3, 3),
	})
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}

	// the note alone stays editable
	updated, err := svc.Update(context.Background(), worker, created.ID, UpdateParams{
		DateStart: day(2026, 3, 1),
		DateEnd:   day(2026, 3, 1),
		Note:      "family matter",
	})
	if err != nil {
		t.Fatalf("note update failed: %v", err)
	}
	if updated.Note != "family matter" {
		t.Fatalf("note not updated: %q", updated.Note)
	}
}

func TestDeleteAllowedInAnyStatus(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, newFakeSchedule())
	created, _ := store.Create(context.Background(), Unavailability{WorkerID: "w1", Status: StatusApproved})

	if err := svc.Delete(context.Background(), worker, created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.Get(context.Background(), created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatal("record must be gone")
	}
}

func TestDeleteForeignRecordForbidden(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, newFakeSchedule())
	created, _ := store.Create(context.Background(), Unavailability{WorkerID: "w2", Status: StatusApproved})

	if err := svc.Delete(context.Background(), worker, created.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
