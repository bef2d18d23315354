package domain

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Recipe is read-only catalog data; the engine only stamps its identity
// onto tickets and never interprets its semantics.
type Recipe struct {
	ID                  uuid.UUID       `json:"id"`
	AgentType           string          `json:"agent_type"`
	ContextRequirements json.RawMessage `json:"context_requirements"`
}

// Basket resolves to its owning workspace at ticket-creation time.
type Basket struct {
	ID          uuid.UUID `json:"id"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
}
