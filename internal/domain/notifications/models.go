package notifications

import (
	"errors"
	"time"
)

const (
	// TypeMissingHours tags reminders emitted by the missing-hours scan.
	TypeMissingHours = "MISSING_HOURS"

	// DedupWindow is how long a worker is shielded from a repeat reminder of
	// the same type. Deliberately short of a full day so a daily batch run
	// that drifts earlier still gets through.
	DedupWindow = 20 * time.Hour
)

var ErrNotFound = errors.New("notification not found")

type Notification struct {
	ID       string `json:"id"`
	WorkerID string `json:"workerId"`
	Type     string `json:"type"`
	Title    string `json:"title,omitempty"`
	Message  string `json:"message"`
	// Dates is the machine-readable date set the reminder covers, decoded
	// from the stored payload. Empty for non-reminder notifications.
	Dates     []time.Time `json:"dates,omitempty"`
	Read      bool        `json:"read"`
	CreatedAt time.Time   `json:"createdAt"`
}
