package unavailability

import (
	"errors"
	"fmt"
	"time"

	"roster/internal/domain/schedule"
)

var (
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidState  = errors.New("invalid state")
	ErrNotFound      = errors.New("unavailability not found")
	ErrInvalidRange  = errors.New("dateEnd must be on or after dateStart")
	ErrInvalidWindow = errors.New("invalid time window")
)

// ValidateRange rejects an inverted date range.
func ValidateRange(dateStart, dateEnd time.Time) error {
	if dateEnd.Before(dateStart) {
		return ErrInvalidRange
	}
	return nil
}

// ValidateWindow checks an optional HH:MM time-of-day window. Both bounds
// must be given together. An end at or before the start is legal and means
// the window closes on the following day, same as shifts.
func ValidateWindow(startTime, endTime string) error {
	if startTime == "" && endTime == "" {
		return nil
	}
	if startTime == "" || endTime == "" {
		return fmt.Errorf("%w: startTime and endTime must be set together", ErrInvalidWindow)
	}
	if _, err := schedule.ToMinutes(startTime); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWindow, err)
	}
	if _, err := schedule.ToMinutes(endTime); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWindow, err)
	}
	return nil
}

// ConflictsWith reports whether the unavailability's window overlaps the
// shift's window on the extended minute scale. A shift without a window is an
// automatic conflict: it cannot be proven non-overlapping. Only SHIFT
// assignments participate.
func ConflictsWith(a schedule.Assignment, u Unavailability) bool {
	if a.Kind != schedule.KindShift {
		return false
	}
	if !a.HasWindow() {
		return true
	}

	shiftStart, err := schedule.ToMinutes(a.StartTime)
	if err != nil {
		return true
	}
	shiftEnd, err := schedule.ToMinutes(a.EndTime)
	if err != nil {
		return true
	}
	shiftEnd = schedule.NormalizedEnd(shiftStart, shiftEnd)

	uStart, uEnd := schedule.FullDayStart, schedule.FullDayEnd
	if !u.AllDay() {
		if uStart, err = schedule.ToMinutes(u.StartTime); err != nil {
			return true
		}
		if uEnd, err = schedule.ToMinutes(u.EndTime); err != nil {
			return true
		}
		uEnd = schedule.NormalizedEnd(uStart, uEnd)
	}

	return schedule.Overlaps(shiftStart, shiftEnd, uStart, uEnd)
}
