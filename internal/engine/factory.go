package engine

import (
	"context"
	"encoding/json"
	"time"

	"ScheduleEngine/internal/domain"

	"github.com/google/uuid"
)

// TicketFactory builds and persists one continuous-mode ticket per claimed
// due schedule.
type TicketFactory struct {
	tickets TicketStore
	baskets BasketLookup
}

func NewTicketFactory(tickets TicketStore, baskets BasketLookup) *TicketFactory {
	return &TicketFactory{tickets: tickets, baskets: baskets}
}

// ticketMetadata is the audit block stamped onto every scheduled ticket so
// downstream consumers can correlate it back to its trigger.
type ticketMetadata struct {
	ScheduleID  uuid.UUID `json:"schedule_id"`
	RecipeID    uuid.UUID `json:"recipe_id"`
	AgentType   string    `json:"agent_type"`
	CycleNumber int       `json:"cycle_number"`
	TriggeredAt time.Time `json:"triggered_at"`
}

// Create resolves the basket's workspace, builds the ticket, and persists
// it. Errors are ErrDependencyNotFound (basket gone) or ErrWriteFailed.
func (f *TicketFactory) Create(ctx context.Context, s *domain.Schedule, recipe *domain.Recipe, cycleNumber int, now time.Time) (*domain.Ticket, error) {
	basket, err := f.baskets.BasketByID(ctx, s.BasketID)
	if err != nil {
		return nil, err
	}

	meta, _ := json.Marshal(ticketMetadata{
		ScheduleID:  s.ID,
		RecipeID:    recipe.ID,
		AgentType:   recipe.AgentType,
		CycleNumber: cycleNumber,
		TriggeredAt: now,
	})

	scheduleID := s.ID
	t := &domain.Ticket{
		ID:          uuid.New(),
		BasketID:    basket.ID,
		WorkspaceID: basket.WorkspaceID,
		RecipeID:    recipe.ID,
		ScheduleID:  &scheduleID,
		Mode:        domain.ModeContinuous,
		CycleNumber: cycleNumber,
		Params:      s.Params,
		Metadata:    meta,
	}
	if err := f.tickets.Insert(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}
