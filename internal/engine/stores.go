package engine

import (
	"context"
	"time"

	"ScheduleEngine/internal/domain"

	"github.com/google/uuid"
)

// ScheduleStore is the engine's view of persisted schedules. Claim is the
// single serialization point between overlapping invocations: a
// compare-and-set keyed on the schedule's current next trigger instant.
type ScheduleStore interface {
	ListDue(ctx context.Context, now time.Time) ([]domain.Schedule, error)
	Claim(ctx context.Context, id uuid.UUID, expectedNextTrigger time.Time) (bool, error)
	RecordRun(ctx context.Context, id uuid.UUID, status domain.RunStatus, ticketID *uuid.UUID, triggeredAt, nextTriggerAt time.Time) error
}

// TicketStore persists execution-chain tickets and answers the max-cycle
// query the resolver needs.
type TicketStore interface {
	MaxCycle(ctx context.Context, scheduleID uuid.UUID) (int, error)
	Insert(ctx context.Context, t *domain.Ticket) error
}

// RecipeLookup is the read-only recipe catalog. A missing recipe is
// reported as ErrDependencyNotFound.
type RecipeLookup interface {
	RecipeByID(ctx context.Context, id uuid.UUID) (*domain.Recipe, error)
}

// BasketLookup resolves a basket to its owning workspace. A missing basket
// is reported as ErrDependencyNotFound.
type BasketLookup interface {
	BasketByID(ctx context.Context, id uuid.UUID) (*domain.Basket, error)
}
