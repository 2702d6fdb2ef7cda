package unavailability

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"roster/internal/domain/auth"
	"roster/internal/domain/schedule"
	"roster/internal/platform/clock"
)

// TxStores are transaction-scoped store handles for the approval write set.
type TxStores struct {
	Unavailabilities StoreAPI
	Schedule         schedule.StoreAPI
}

// TxRunner runs fn inside a single transaction; every write through the
// stores it hands out commits or rolls back together.
type TxRunner interface {
	InTx(ctx context.Context, fn func(TxStores) error) error
}

type Service struct {
	Store    StoreAPI
	Schedule schedule.StoreAPI

	// Tx, when set, makes Approve apply its detach fan-out and status flip
	// atomically. Without it the writes are applied one by one; a repeat
	// detach after a crash is a no-op, so re-approval converges.
	Tx TxRunner
}

func NewService(store StoreAPI, scheduleStore schedule.StoreAPI) *Service {
	return &Service{Store: store, Schedule: scheduleStore}
}

type CreateParams struct {
	WorkerID  string
	DateStart time.Time
	DateEnd   time.Time
	StartTime string
	EndTime   string
	Note      string
}

type CreateResult struct {
	Record      Unavailability
	HadConflict bool
}

// Create validates the request, decides the initial status by scanning the
// worker's shifts for conflicts, and persists the record. No conflict means
// nothing will ever need detaching, so the record is approved on the spot.
func (s *Service) Create(ctx context.Context, actor auth.Actor, params CreateParams) (CreateResult, error) {
	if !actor.CanManage(params.WorkerID) {
		return CreateResult{}, ErrForbidden
	}
	if err := ValidateRange(params.DateStart, params.DateEnd); err != nil {
		return CreateResult{}, err
	}
	if err := ValidateWindow(params.StartTime, params.EndTime); err != nil {
		return CreateResult{}, err
	}

	u := Unavailability{
		WorkerID:  params.WorkerID,
		DateStart: clock.Midnight(params.DateStart),
		DateEnd:   clock.Midnight(params.DateEnd),
		StartTime: params.StartTime,
		EndTime:   params.EndTime,
		Note:      params.Note,
	}

	conflicts, err := s.conflictingShifts(ctx, u)
	if err != nil {
		return CreateResult{}, fmt.Errorf("conflict scan: %w", err)
	}

	u.Status = StatusApproved
	if len(conflicts) > 0 {
		u.Status = StatusPendingApproval
	}

	created, err := s.Store.Create(ctx, u)
	if err != nil {
		return CreateResult{}, err
	}
	return CreateResult{Record: created, HadConflict: len(conflicts) > 0}, nil
}

type ApproveResult struct {
	Record                Unavailability
	DetachedAssignmentIDs []string
}

// Approve flips a pending record to APPROVED and detaches the worker from
// every conflicting shift. The scan is re-run because schedules may have
// changed since creation. With a TxRunner the detach fan-out and the status
// flip land in one transaction.
func (s *Service) Approve(ctx context.Context, actor auth.Actor, id string) (ApproveResult, error) {
	if !actor.Manager {
		return ApproveResult{}, ErrForbidden
	}

	u, err := s.Store.Get(ctx, id)
	if err != nil {
		return ApproveResult{}, err
	}
	if u.Status != StatusPendingApproval {
		return ApproveResult{}, fmt.Errorf("%w: cannot approve a record in status %s", ErrInvalidState, u.Status)
	}

	conflicts, err := s.conflictingShifts(ctx, u)
	if err != nil {
		return ApproveResult{}, fmt.Errorf("conflict scan: %w", err)
	}

	apply := func(stores TxStores) error {
		for _, a := range conflicts {
			if err := stores.Schedule.SaveWorkers(ctx, a.Detach(u.WorkerID)); err != nil {
				return fmt.Errorf("detach worker from assignment %s: %w", a.ID, err)
			}
		}
		return stores.Unavailabilities.UpdateStatus(ctx, u.ID, StatusApproved)
	}

	if s.Tx != nil {
		err = s.Tx.InTx(ctx, apply)
	} else {
		err = apply(TxStores{Unavailabilities: s.Store, Schedule: s.Schedule})
	}
	if err != nil {
		return ApproveResult{}, err
	}

	detached := make([]string, 0, len(conflicts))
	for _, a := range conflicts {
		detached = append(detached, a.ID)
	}
	u.Status = StatusApproved

	slog.Info("unavailability approved",
		"unavailabilityId", u.ID,
		"workerId", u.WorkerID,
		"detachedAssignments", len(detached),
	)
	return ApproveResult{Record: u, DetachedAssignmentIDs: detached}, nil
}

type UpdateParams struct {
	DateStart time.Time
	DateEnd   time.Time
	StartTime string
	EndTime   string
	Note      string
}

// Update edits a record owned by the actor's worker (or any record for a
// manager). Dates and the time window are structural and only editable while
// the record is still pending; the note stays editable afterwards. Status is
// never set through Update.
func (s *Service) Update(ctx context.Context, actor auth.Actor, id string, params UpdateParams) (Unavailability, error) {
	u, err := s.Store.Get(ctx, id)
	if err != nil {
		return Unavailability{}, err
	}
	if !actor.CanManage(u.WorkerID) {
		return Unavailability{}, ErrForbidden
	}

	structural := !params.DateStart.Equal(u.DateStart) || !params.DateEnd.Equal(u.DateEnd) ||
		params.StartTime != u.StartTime || params.EndTime != u.EndTime
	if structural {
		if u.Status != StatusPendingApproval {
			return Unavailability{}, fmt.Errorf("%w: dates and time window are frozen once approved", ErrInvalidState)
		}
		if err := ValidateRange(params.DateStart, params.DateEnd); err != nil {
			return Unavailability{}, err
		}
		if err := ValidateWindow(params.StartTime, params.EndTime); err != nil {
			return Unavailability{}, err
		}
		if err := s.Store.UpdateFields(ctx, id, clock.Midnight(params.DateStart), clock.Midnight(params.DateEnd), params.StartTime, params.EndTime, params.Note); err != nil {
			return Unavailability{}, err
		}
	} else if err := s.Store.UpdateNote(ctx, id, params.Note); err != nil {
		return Unavailability{}, err
	}

	return s.Store.Get(ctx, id)
}

// Delete removes the record in any status. Deletion never re-attaches the
// worker to previously detached shifts.
func (s *Service) Delete(ctx context.Context, actor auth.Actor, id string) error {
	u, err := s.Store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanManage(u.WorkerID) {
		return ErrForbidden
	}
	return s.Store.Delete(ctx, u.ID)
}

func (s *Service) Get(ctx context.Context, actor auth.Actor, id string) (Unavailability, error) {
	u, err := s.Store.Get(ctx, id)
	if err != nil {
		return Unavailability{}, err
	}
	if !actor.CanManage(u.WorkerID) {
		return Unavailability{}, ErrForbidden
	}
	return u, nil
}

func (s *Service) conflictingShifts(ctx context.Context, u Unavailability) ([]schedule.Assignment, error) {
	shifts, err := s.Schedule.ListShiftsForWorker(ctx, u.WorkerID, u.DateStart, u.DateEnd)
	if err != nil {
		return nil, err
	}
	var conflicts []schedule.Assignment
	for _, a := range shifts {
		if ConflictsWith(a, u) {
			conflicts = append(conflicts, a)
		}
	}
	return conflicts, nil
}
