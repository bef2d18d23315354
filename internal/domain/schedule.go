package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Frequency is the closed set of supported recurrence classes.
type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

// Valid reports whether f is one of the supported recurrence classes.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

// RunStatus is the outcome of a schedule's most recent firing.
type RunStatus string

const (
	RunStatusSuccess RunStatus = "success"
	RunStatusFailed  RunStatus = "failed"
)

type Schedule struct {
	ID        uuid.UUID `json:"id"`         // unique schedule identifier
	ProjectID uuid.UUID `json:"project_id"` // owning project
	BasketID  uuid.UUID `json:"basket_id"`  // target basket
	RecipeID  uuid.UUID `json:"recipe_id"`  // recipe to run each cycle

	Frequency Frequency `json:"frequency"`   // weekly/biweekly/monthly
	DayOfWeek int       `json:"day_of_week"` // 0=Sunday .. 6=Saturday
	Hour      int       `json:"hour"`        // time of day, UTC
	Minute    int       `json:"minute"`

	Params json.RawMessage `json:"params"` // opaque bag forwarded to every ticket

	Enabled         bool       `json:"enabled"`
	NextTriggerAt   time.Time  `json:"next_trigger_at"`
	LastTriggeredAt *time.Time `json:"last_triggered_at,omitempty"`
	LastRunStatus   *RunStatus `json:"last_run_status,omitempty"`
	LastTicketID    *uuid.UUID `json:"last_ticket_id,omitempty"`
	RunCount        int        `json:"run_count"`
	ClaimedUntil    *time.Time `json:"claimed_until,omitempty"` // lease held by an in-flight invocation

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
