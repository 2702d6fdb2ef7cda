package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// MinutesPerDay is the extended-scale value of the "24:00" sentinel.
	MinutesPerDay = 1440

	FullDayStart = 0
	FullDayEnd   = MinutesPerDay
)

// ToMinutes parses an HH:MM wall-clock string into minutes since midnight.
// The sentinel "24:00" maps to 1440.
func ToMinutes(value string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", value)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", value, err)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", value, err)
	}
	if hours == 24 && minutes == 0 {
		return MinutesPerDay, nil
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid time %q: out of range", value)
	}
	return hours*60 + minutes, nil
}

// NormalizedEnd lifts an end instant onto the extended minute scale: an end
// at or before the start means the window closes on the following day.
func NormalizedEnd(start, end int) int {
	if end <= start {
		return end + MinutesPerDay
	}
	return end
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Both intervals must already be on the same
// extended minute scale.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}
