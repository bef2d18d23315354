package engine

import (
	"time"

	"github.com/google/uuid"
)

// ScheduleOutcome classifies how one due schedule fared in a batch.
type ScheduleOutcome string

const (
	OutcomeCreated ScheduleOutcome = "created"
	OutcomeFailed  ScheduleOutcome = "failed"
	OutcomeSkipped ScheduleOutcome = "skipped" // claim lost to a concurrent invocation
)

// ScheduleResult is one schedule's line in the batch report.
type ScheduleResult struct {
	ScheduleID  uuid.UUID       `json:"schedule_id"`
	Outcome     ScheduleOutcome `json:"outcome"`
	TicketID    *uuid.UUID      `json:"ticket_id,omitempty"`
	CycleNumber int             `json:"cycle_number,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// BatchReport is the authoritative shape returned to the invoker.
type BatchReport struct {
	StartedAt  time.Time        `json:"started_at"`
	Considered int              `json:"considered"`
	Succeeded  int              `json:"succeeded"`
	Failed     int              `json:"failed"`
	Skipped    int              `json:"skipped"`
	Results    []ScheduleResult `json:"results"`
}
