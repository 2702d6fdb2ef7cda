package auth

// Actor is the already-authenticated identity performing an operation. Role
// inference and login happen at the transport boundary; the domain services
// only enforce "owner or authorized manager".
type Actor struct {
	UserID   string
	WorkerID string
	Manager  bool
}

// CanManage reports whether the actor may act on the given worker's records.
func (a Actor) CanManage(workerID string) bool {
	return a.Manager || (a.WorkerID != "" && a.WorkerID == workerID)
}

func ActorForRole(userID, workerID, role string) Actor {
	return Actor{
		UserID:   userID,
		WorkerID: workerID,
		Manager:  role == RoleManager || role == RoleAdmin,
	}
}
