package timesheet

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"roster/internal/domain/schedule"
	"roster/internal/platform/clock"
)

var (
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("time entry not found")
	ErrNotMember      = errors.New("worker is not assigned to this shift")
	ErrDuplicateEntry = errors.New("time entry already exists for this shift")
	ErrFutureDate     = errors.New("cannot log hours for a future date")
)

// ValidateHours rejects zero or negative worked hours.
func ValidateHours(hours decimal.Decimal) error {
	if hours.LessThanOrEqual(decimal.Zero) {
		return errors.New("hours must be positive")
	}
	return nil
}

// ValidateDate enforces the future-date restriction: entries may only be
// created, changed or removed for dates not after "today" in the reference
// timezone. The comparison is by calendar date; stored dates arrive as UTC
// midnights while today is midnight in the reference zone.
func ValidateDate(date, today time.Time) error {
	if clock.DayAfter(date, today) {
		return ErrFutureDate
	}
	return nil
}

// ValidateActualWindow checks the optional actual start/end pair. The end may
// wrap past midnight like the scheduled window.
func ValidateActualWindow(start, end string) error {
	if start == "" && end == "" {
		return nil
	}
	if start == "" || end == "" {
		return errors.New("actualStart and actualEnd must be set together")
	}
	if _, err := schedule.ToMinutes(start); err != nil {
		return err
	}
	if _, err := schedule.ToMinutes(end); err != nil {
		return err
	}
	return nil
}
