package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TicketMode distinguishes schedule-originated chains from manual one-shot work.
type TicketMode string

const (
	ModeOneShot    TicketMode = "one_shot"
	ModeContinuous TicketMode = "continuous"
)

type Ticket struct {
	ID          uuid.UUID       `json:"id"`
	BasketID    uuid.UUID       `json:"basket_id"`
	WorkspaceID uuid.UUID       `json:"workspace_id"`
	RecipeID    uuid.UUID       `json:"recipe_id"`
	ScheduleID  *uuid.UUID      `json:"schedule_id,omitempty"` // nil for non-scheduled tickets
	Mode        TicketMode      `json:"mode"`
	CycleNumber int             `json:"cycle_number"` // 1-based position in the chain, continuous mode only
	Params      json.RawMessage `json:"params"`
	Metadata    json.RawMessage `json:"metadata"` // audit block: triggering schedule, recipe, cycle
	CreatedAt   time.Time       `json:"created_at"`
}
