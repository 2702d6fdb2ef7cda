package shared

import "time"

// ParseDate accepts the two date forms the API takes: a full RFC3339
// timestamp or a plain YYYY-MM-DD day. Empty input parses to the zero time
// so callers can apply their own defaults.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse("2006-01-02", value)
}
