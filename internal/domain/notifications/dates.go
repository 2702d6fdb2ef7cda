package notifications

import (
	"encoding/json"
	"regexp"
	"sort"
	"time"

	"roster/internal/platform/i18n"
)

const isoDay = "2006-01-02"

// legacyDayPattern matches the DD/MM/YYYY dates older reminders carried only
// inside their message text.
var legacyDayPattern = regexp.MustCompile(`\b(\d{2})/(\d{2})/(\d{4})\b`)

// EncodeDates serializes a date set as a sorted, deduplicated JSON array of
// ISO days. This payload, not the rendered message, is what later reads
// interpret.
func EncodeDates(dates []time.Time) ([]byte, error) {
	days := make([]string, 0, len(dates))
	for _, d := range sortedUnique(dates) {
		days = append(days, d.Format(isoDay))
	}
	return json.Marshal(days)
}

// DecodeDates parses a stored payload back into dates. Malformed or absent
// payloads decode to nil so the caller can fall back to the message text.
func DecodeDates(payload []byte) []time.Time {
	if len(payload) == 0 {
		return nil
	}
	var days []string
	if err := json.Unmarshal(payload, &days); err != nil {
		return nil
	}
	var out []time.Time
	for _, day := range days {
		d, err := time.Parse(isoDay, day)
		if err != nil {
			return nil
		}
		out = append(out, d)
	}
	return sortedUnique(out)
}

// DatesFromMessage recovers the date set from a legacy reminder's rendered
// text. Only zero-padded DD/MM/YYYY tokens count.
func DatesFromMessage(message string) []time.Time {
	var out []time.Time
	for _, m := range legacyDayPattern.FindAllString(message, -1) {
		d, err := time.Parse("02/01/2006", m)
		if err != nil {
			continue
		}
		out = append(out, d)
	}
	return sortedUnique(out)
}

// FormatDateList renders dates as DD/MM/YYYY joined with commas and a
// localized final separator, e.g. "01/02/2026, 02/02/2026 and 05/02/2026".
func FormatDateList(dates []time.Time, locale string) string {
	days := sortedUnique(dates)
	switch len(days) {
	case 0:
		return ""
	case 1:
		return days[0].Format("02/01/2006")
	}

	last := i18n.T(locale, "list_last_separator", nil)
	out := days[0].Format("02/01/2006")
	for i := 1; i < len(days); i++ {
		if i == len(days)-1 {
			out += last
		} else {
			out += ", "
		}
		out += days[i].Format("02/01/2006")
	}
	return out
}

func sortedUnique(dates []time.Time) []time.Time {
	if len(dates) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(dates))
	out := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		key := d.Format(isoDay)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
