package clock

import "time"

// Clock supplies "now" and the current calendar date in the single reference
// timezone every date-boundary decision is made in. Injected instead of read
// from ambient state so the engine stays deterministic under test.
type Clock interface {
	Now() time.Time
	Today() time.Time
}

type zoneClock struct {
	loc *time.Location
}

func New(timezone string) (Clock, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, err
	}
	return zoneClock{loc: loc}, nil
}

func (c zoneClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c zoneClock) Today() time.Time {
	return Midnight(c.Now())
}

// Midnight truncates an instant to its calendar date, keeping the location.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayBefore reports whether a's calendar date falls before b's, each read in
// its own location. DATE columns scan as UTC midnights while Today() is
// midnight in the reference zone, so comparing the instants would misread
// the day boundary whenever the zones differ.
func DayBefore(a, b time.Time) bool {
	return a.Format(time.DateOnly) < b.Format(time.DateOnly)
}

// DayAfter is the mirror of DayBefore.
func DayAfter(a, b time.Time) bool {
	return a.Format(time.DateOnly) > b.Format(time.DateOnly)
}

// Fixed is a clock pinned to one instant, for tests and replayed scans.
type Fixed struct {
	Instant time.Time
}

func (f Fixed) Now() time.Time   { return f.Instant }
func (f Fixed) Today() time.Time { return Midnight(f.Instant) }
