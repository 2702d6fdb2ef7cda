package timesheet

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"roster/internal/domain/auth"
	"roster/internal/domain/schedule"
	"roster/internal/platform/clock"
)

type Service struct {
	Store    StoreAPI
	Schedule schedule.StoreAPI
	Clock    clock.Clock
}

func NewService(store StoreAPI, scheduleStore schedule.StoreAPI, clk clock.Clock) *Service {
	return &Service{Store: store, Schedule: scheduleStore, Clock: clk}
}

type EntryParams struct {
	AssignmentID string
	WorkerID     string
	Hours        decimal.Decimal
	ActualStart  string
	ActualEnd    string
	Breaks       []schedule.BreakWindow
	Note         string
}

// Create logs worked hours for a member of the assignment. The entry date is
// copied from the assignment's workday; entries for dates after "today" in
// the reference timezone are rejected.
func (s *Service) Create(ctx context.Context, actor auth.Actor, params EntryParams) (TimeEntry, error) {
	if !actor.CanManage(params.WorkerID) {
		return TimeEntry{}, ErrForbidden
	}
	if err := ValidateHours(params.Hours); err != nil {
		return TimeEntry{}, err
	}
	if err := ValidateActualWindow(params.ActualStart, params.ActualEnd); err != nil {
		return TimeEntry{}, err
	}

	a, err := s.Schedule.GetAssignment(ctx, params.AssignmentID)
	if err != nil {
		return TimeEntry{}, err
	}
	if !a.HasWorker(params.WorkerID) {
		return TimeEntry{}, ErrNotMember
	}

	date := clock.Midnight(a.Date)
	if err := ValidateDate(date, s.Clock.Today()); err != nil {
		return TimeEntry{}, err
	}

	return s.Store.Create(ctx, TimeEntry{
		AssignmentID: a.ID,
		WorkerID:     params.WorkerID,
		Date:         date,
		Hours:        params.Hours,
		ActualStart:  params.ActualStart,
		ActualEnd:    params.ActualEnd,
		Breaks:       params.Breaks,
		Note:         params.Note,
	})
}

type EntryUpdateParams struct {
	Hours       decimal.Decimal
	ActualStart string
	ActualEnd   string
	Breaks      []schedule.BreakWindow
	Note        string
}

func (s *Service) Update(ctx context.Context, actor auth.Actor, id string, params EntryUpdateParams) (TimeEntry, error) {
	e, err := s.authorizedEntry(ctx, actor, id)
	if err != nil {
		return TimeEntry{}, err
	}
	if err := ValidateHours(params.Hours); err != nil {
		return TimeEntry{}, err
	}
	if err := ValidateActualWindow(params.ActualStart, params.ActualEnd); err != nil {
		return TimeEntry{}, err
	}

	e.Hours = params.Hours
	e.ActualStart = params.ActualStart
	e.ActualEnd = params.ActualEnd
	e.Breaks = params.Breaks
	e.Note = params.Note
	if err := s.Store.Update(ctx, e); err != nil {
		return TimeEntry{}, err
	}
	return e, nil
}

func (s *Service) Delete(ctx context.Context, actor auth.Actor, id string) error {
	e, err := s.authorizedEntry(ctx, actor, id)
	if err != nil {
		return err
	}
	return s.Store.Delete(ctx, e.ID)
}

func (s *Service) ListForWorker(ctx context.Context, actor auth.Actor, workerID string, from, to time.Time) ([]TimeEntry, error) {
	if !actor.CanManage(workerID) {
		return nil, ErrForbidden
	}
	return s.Store.ListForWorker(ctx, workerID, from, to)
}

// authorizedEntry loads an entry and applies the ownership and future-date
// restrictions shared by Update and Delete.
func (s *Service) authorizedEntry(ctx context.Context, actor auth.Actor, id string) (TimeEntry, error) {
	e, err := s.Store.Get(ctx, id)
	if err != nil {
		return TimeEntry{}, err
	}
	if !actor.CanManage(e.WorkerID) {
		return TimeEntry{}, ErrForbidden
	}
	if err := ValidateDate(clock.Midnight(e.Date), s.Clock.Today()); err != nil {
		return TimeEntry{}, fmt.Errorf("entry %s: %w", e.ID, err)
	}
	return e, nil
}
