package workers

import "time"

// Worker is one member of the staffing pool. Ordinary marks accounts
// explicitly flagged as shift workers; non-management accounts are eligible
// for the batch missing-hours scan even without the flag.
type Worker struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId,omitempty"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email"`
	Active     bool      `json:"active"`
	Archived   bool      `json:"archived"`
	Ordinary   bool      `json:"ordinary"`
	Management bool      `json:"management"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Eligible reports whether the worker belongs to the batch-scan population.
func (w Worker) Eligible() bool {
	if !w.Active || w.Archived {
		return false
	}
	return w.Ordinary || !w.Management
}
