package schedule

import "time"

type Kind string

const (
	KindShift    Kind = "SHIFT"
	KindActivity Kind = "ACTIVITY"
)

// Attachment binds one worker to an assignment, optionally tagged with a duty.
type Attachment struct {
	WorkerID string `json:"workerId"`
	DutyID   string `json:"dutyId,omitempty"`
}

// BreakWindow is an informational scheduled break inside a shift.
type BreakWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Assignment is one schedulable unit of work on one workday. Workers are
// attached through two mechanisms: the legacy single primary-worker slot and
// the ordered attachment list. Both count as membership; callers must go
// through Members/HasWorker/Detach instead of touching the raw slots.
type Assignment struct {
	ID              string        `json:"id"`
	Date            time.Time     `json:"date"`
	Event           string        `json:"event"`
	Location        string        `json:"location,omitempty"`
	Kind            Kind          `json:"kind"`
	StartTime       string        `json:"startTime,omitempty"`
	EndTime         string        `json:"endTime,omitempty"`
	PrimaryWorkerID string        `json:"primaryWorkerId,omitempty"`
	Attachments     []Attachment  `json:"attachments,omitempty"`
	Breaks          []BreakWindow `json:"breaks,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// Members returns the de-duplicated worker set of the assignment: the primary
// slot first, then the attachment list in order.
func (a Assignment) Members() []string {
	members := make([]string, 0, len(a.Attachments)+1)
	seen := make(map[string]bool, len(a.Attachments)+1)
	if a.PrimaryWorkerID != "" {
		members = append(members, a.PrimaryWorkerID)
		seen[a.PrimaryWorkerID] = true
	}
	for _, att := range a.Attachments {
		if att.WorkerID == "" || seen[att.WorkerID] {
			continue
		}
		members = append(members, att.WorkerID)
		seen[att.WorkerID] = true
	}
	return members
}

func (a Assignment) HasWorker(workerID string) bool {
	if workerID == "" {
		return false
	}
	if a.PrimaryWorkerID == workerID {
		return true
	}
	for _, att := range a.Attachments {
		if att.WorkerID == workerID {
			return true
		}
	}
	return false
}

// DutyFor returns the duty tag attached to the worker, if any. A worker
// attached only through the primary slot has no duty.
func (a Assignment) DutyFor(workerID string) (string, bool) {
	for _, att := range a.Attachments {
		if att.WorkerID == workerID && att.DutyID != "" {
			return att.DutyID, true
		}
	}
	return "", false
}

// Detach returns a copy of the assignment with the worker removed from both
// the primary slot and the attachment list. Detaching an absent worker is a
// no-op.
func (a Assignment) Detach(workerID string) Assignment {
	out := a
	if out.PrimaryWorkerID == workerID {
		out.PrimaryWorkerID = ""
	}
	if len(a.Attachments) > 0 {
		kept := make([]Attachment, 0, len(a.Attachments))
		for _, att := range a.Attachments {
			if att.WorkerID == workerID {
				continue
			}
			kept = append(kept, att)
		}
		out.Attachments = kept
	}
	return out
}

// HasWindow reports whether both wall-clock bounds are set. Assignments
// without a window cannot be proven non-overlapping and are treated as
// conflicting with any unavailability on their date.
func (a Assignment) HasWindow() bool {
	return a.StartTime != "" && a.EndTime != ""
}
