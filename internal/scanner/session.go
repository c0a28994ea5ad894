package scanner

import "time"

// State is a scan session lifecycle state.
type State string

const (
	StateIdle      State = "idle"
	StateLaunching State = "launching"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
	StateTimedOut  State = "timed-out"
)

// Terminal reports whether the state ends a session.
func (s State) Terminal() bool {
	switch s {
	case StateSucceeded, StateFailed, StateTimedOut:
		return true
	default:
		return false
	}
}

// Active reports whether a session currently owns the supervisor.
func (s State) Active() bool {
	return s == StateLaunching || s == StateRunning
}

// Status is a point-in-time view of the supervisor.
type Status struct {
	State      State     `json:"state"`
	SessionID  string    `json:"session_id,omitempty"`
	Percentage int       `json:"percentage"`
	Phase      string    `json:"phase,omitempty"`
	// GamesFound mirrors the scanner's advisory count; Merged is the
	// merger's authoritative total for the session.
	GamesFound int       `json:"games_found"`
	Merged     int       `json:"merged"`
	StartedAt  time.Time `json:"started_at,omitempty"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
	// Reason carries a human-readable failure description on terminal
	// failure states, for presentation as a notification.
	Reason string `json:"reason,omitempty"`
}
