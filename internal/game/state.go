package game

// SessionStatus is the lifecycle state of a simulation session
type SessionStatus string

const (
	StatusWaiting SessionStatus = "WAITING"
	StatusRunning SessionStatus = "RUNNING"
	StatusStopped SessionStatus = "STOPPED"
)
