package domain

import "time"

// EscalationCycleReport summarises one pass of the escalation scheduler.
type EscalationCycleReport struct {
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
	Companies int           `json:"companies"`
	Scanned   int           `json:"scanned"`
	Escalated int           `json:"escalated"`
	Flagged   int           `json:"flagged"`
	Conflicts int           `json:"conflicts"`
	Failures  int           `json:"failures"`
	Cancelled bool          `json:"cancelled"`
}
