package service

import (
	"context"
	"encoding/json"
	"time"

	"ScheduleEngine/internal/domain"
	"ScheduleEngine/internal/occurrence"
	"ScheduleEngine/internal/repo"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ScheduleService is the user-edit mutation surface: creation and spec
// edits land here, run-state mutation belongs to the engine alone. The two
// writers are kept from racing by the engine's claim CAS.
type ScheduleService struct {
	db *pgxpool.Pool
}

func NewScheduleService(db *pgxpool.Pool) *ScheduleService {
	return &ScheduleService{db: db}
}

type ScheduleSpecParams struct {
	Frequency domain.Frequency
	DayOfWeek int
	Hour      int
	Minute    int
	Params    json.RawMessage
}

type CreateScheduleParams struct {
	ProjectID uuid.UUID
	BasketID  uuid.UUID
	RecipeID  uuid.UUID
	Spec      ScheduleSpecParams
	Enabled   bool
}

func (s *ScheduleService) CreateSchedule(ctx context.Context, p CreateScheduleParams) (*domain.Schedule, error) {
	if err := occurrence.ValidateSpec(p.Spec.Frequency, p.Spec.DayOfWeek, p.Spec.Hour, p.Spec.Minute); err != nil {
		return nil, err
	}
	params := p.Spec.Params
	if len(params) == 0 {
		params = json.RawMessage(`{}`)
	}
	sch := &domain.Schedule{
		ID:        uuid.New(),
		ProjectID: p.ProjectID,
		BasketID:  p.BasketID,
		RecipeID:  p.RecipeID,
		Frequency: p.Spec.Frequency,
		DayOfWeek: p.Spec.DayOfWeek,
		Hour:      p.Spec.Hour,
		Minute:    p.Spec.Minute,
		Params:    params,
		Enabled:   p.Enabled,
	}
	sch.NextTriggerAt = occurrence.NextForSchedule(sch, time.Now().UTC())
	if err := repo.CreateSchedule(ctx, s.db, sch); err != nil {
		return nil, err
	}
	return sch, nil
}

func (s *ScheduleService) ListSchedules(ctx context.Context, enabled *bool) ([]domain.Schedule, error) {
	return repo.ListSchedules(ctx, s.db, enabled)
}

func (s *ScheduleService) GetSchedule(ctx context.Context, id uuid.UUID) (*domain.Schedule, error) {
	return repo.GetScheduleByID(ctx, s.db, id)
}

func (s *ScheduleService) ToggleSchedule(ctx context.Context, id uuid.UUID, enabled bool) error {
	return repo.ToggleScheduleEnabled(ctx, s.db, id, enabled)
}

// UpdateScheduleSpec edits the recurrence spec and params. The next
// trigger is recomputed immediately so the engine never fires an edited
// schedule on its stale instant.
func (s *ScheduleService) UpdateScheduleSpec(ctx context.Context, id uuid.UUID, spec ScheduleSpecParams) (*domain.Schedule, error) {
	if err := occurrence.ValidateSpec(spec.Frequency, spec.DayOfWeek, spec.Hour, spec.Minute); err != nil {
		return nil, err
	}
	sch, err := repo.GetScheduleByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	sch.Frequency = spec.Frequency
	sch.DayOfWeek = spec.DayOfWeek
	sch.Hour = spec.Hour
	sch.Minute = spec.Minute
	if len(spec.Params) > 0 {
		sch.Params = spec.Params
	}
	sch.NextTriggerAt = occurrence.NextForSchedule(sch, time.Now().UTC())
	if err := repo.UpdateScheduleSpec(ctx, s.db, sch); err != nil {
		return nil, err
	}
	return sch, nil
}

func (s *ScheduleService) GetTicket(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	return repo.GetTicketByID(ctx, s.db, id)
}

func (s *ScheduleService) ListScheduleTickets(ctx context.Context, scheduleID uuid.UUID) ([]domain.Ticket, error) {
	return repo.ListTicketsByScheduleID(ctx, s.db, scheduleID)
}
