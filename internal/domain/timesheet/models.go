package timesheet

import (
	"time"

	"github.com/shopspring/decimal"

	"roster/internal/domain/schedule"
)

// TimeEntry is a worker's actual logged record against one assignment.
// At most one entry exists per (assignment, worker) pair.
type TimeEntry struct {
	ID           string                 `json:"id"`
	AssignmentID string                 `json:"assignmentId"`
	WorkerID     string                 `json:"workerId"`
	Date         time.Time              `json:"date"`
	Hours        decimal.Decimal        `json:"hours"`
	ActualStart  string                 `json:"actualStart,omitempty"`
	ActualEnd    string                 `json:"actualEnd,omitempty"`
	Breaks       []schedule.BreakWindow `json:"breaks,omitempty"`
	Note         string                 `json:"note,omitempty"`
	CreatedAt    time.Time              `json:"createdAt"`
}

// EntryKey identifies the (assignment, worker) pair an entry belongs to.
type EntryKey struct {
	AssignmentID string
	WorkerID     string
}
