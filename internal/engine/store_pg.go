package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ScheduleEngine/internal/domain"
	"ScheduleEngine/internal/repo"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStores backs all four engine interfaces with Postgres. The claim lease
// TTL bounds how long a crashed invocation can hold a schedule.
type PGStores struct {
	db       *pgxpool.Pool
	leaseTTL time.Duration
}

func NewPGStores(db *pgxpool.Pool, leaseTTL time.Duration) *PGStores {
	return &PGStores{db: db, leaseTTL: leaseTTL}
}

func (p *PGStores) ListDue(ctx context.Context, now time.Time) ([]domain.Schedule, error) {
	return repo.ListDueSchedules(ctx, p.db, now)
}

func (p *PGStores) Claim(ctx context.Context, id uuid.UUID, expectedNextTrigger time.Time) (bool, error) {
	return repo.ClaimSchedule(ctx, p.db, id, expectedNextTrigger, p.leaseTTL)
}

func (p *PGStores) RecordRun(ctx context.Context, id uuid.UUID, status domain.RunStatus, ticketID *uuid.UUID, triggeredAt, nextTriggerAt time.Time) error {
	if err := repo.RecordRun(ctx, p.db, id, status, ticketID, triggeredAt, nextTriggerAt); err != nil {
		return fmt.Errorf("%w: record run: %v", ErrWriteFailed, err)
	}
	return nil
}

func (p *PGStores) MaxCycle(ctx context.Context, scheduleID uuid.UUID) (int, error) {
	return repo.GetMaxCycleByScheduleID(ctx, p.db, scheduleID)
}

func (p *PGStores) Insert(ctx context.Context, t *domain.Ticket) error {
	if err := repo.InsertTicket(ctx, p.db, t); err != nil {
		return fmt.Errorf("%w: insert ticket: %v", ErrWriteFailed, err)
	}
	return nil
}

func (p *PGStores) RecipeByID(ctx context.Context, id uuid.UUID) (*domain.Recipe, error) {
	r, err := repo.GetRecipeByID(ctx, p.db, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: recipe %s", ErrDependencyNotFound, id)
	}
	return r, err
}

func (p *PGStores) BasketByID(ctx context.Context, id uuid.UUID) (*domain.Basket, error) {
	b, err := repo.GetBasketByID(ctx, p.db, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: basket %s", ErrDependencyNotFound, id)
	}
	return b, err
}
