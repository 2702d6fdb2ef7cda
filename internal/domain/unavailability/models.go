package unavailability

import "time"

const (
	StatusPendingApproval = "PENDING_APPROVAL"
	StatusApproved        = "APPROVED"
)

// Unavailability is a worker's declared inability to work during an inclusive
// date range. An empty StartTime/EndTime pair means the whole day.
type Unavailability struct {
	ID        string    `json:"id"`
	WorkerID  string    `json:"workerId"`
	DateStart time.Time `json:"dateStart"`
	DateEnd   time.Time `json:"dateEnd"`
	StartTime string    `json:"startTime,omitempty"`
	EndTime   string    `json:"endTime,omitempty"`
	Note      string    `json:"note,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u Unavailability) AllDay() bool {
	return u.StartTime == "" || u.EndTime == ""
}
