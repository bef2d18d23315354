package engine

import (
	"context"

	"github.com/google/uuid"
)

// CycleResolver determines the next cycle number for a schedule's chain.
type CycleResolver struct {
	tickets TicketStore
}

func NewCycleResolver(tickets TicketStore) *CycleResolver {
	return &CycleResolver{tickets: tickets}
}

// NextCycle returns max existing continuous-mode cycle + 1, so the first
// firing of a schedule gets cycle 1. Read-only; callers must hold the
// schedule's claim before acting on the result so the chain stays gap-free.
func (r *CycleResolver) NextCycle(ctx context.Context, scheduleID uuid.UUID) (int, error) {
	max, err := r.tickets.MaxCycle(ctx, scheduleID)
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}
