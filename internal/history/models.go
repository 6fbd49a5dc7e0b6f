package history

import "time"

// Outcome is the terminal state of a run.
type Outcome string

const (
	OutcomeRunning   Outcome = "running"
	OutcomeCompleted Outcome = "completed"
	OutcomeAborted   Outcome = "aborted"
)

// Run is one invocation of the reboot pipeline.
type Run struct {
	ID              string     `json:"id"`
	Organization    string     `json:"organization"`
	OrganizationID  string     `json:"organization_id,omitempty"`
	Shard           string     `json:"shard,omitempty"`
	NetworkID       string     `json:"network_id"`
	IntervalSeconds int        `json:"interval_seconds"`
	DeviceCount     int        `json:"device_count"`
	Succeeded       int        `json:"succeeded"`
	Failed          int        `json:"failed"`
	Placeholder     bool       `json:"placeholder"`
	Outcome         Outcome    `json:"outcome"`
	Error           string     `json:"error,omitempty"`
	StartedAt       time.Time  `json:"started_at"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
}

// Duration returns the elapsed run time, or zero while the run is open.
func (r Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Result is one dispatched reboot.
type Result struct {
	RunID       string    `json:"run_id"`
	Position    int       `json:"position"`
	Serial      string    `json:"serial"`
	Model       string    `json:"model,omitempty"`
	StatusCode  int       `json:"status_code"`
	Error       string    `json:"error,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}
