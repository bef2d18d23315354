package engine

import (
	"context"
	"time"

	"ScheduleEngine/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// BatchRunner executes one stateless invocation: list due schedules, run
// the claim → resolve → create → record pipeline per schedule with
// contained failures, and aggregate a report.
type BatchRunner struct {
	schedules ScheduleStore
	recipes   RecipeLookup
	resolver  *CycleResolver
	factory   *TicketFactory
	recorder  *RunRecorder

	now func() time.Time
}

func NewBatchRunner(schedules ScheduleStore, tickets TicketStore, recipes RecipeLookup, baskets BasketLookup) *BatchRunner {
	return &BatchRunner{
		schedules: schedules,
		recipes:   recipes,
		resolver:  NewCycleResolver(tickets),
		factory:   NewTicketFactory(tickets, baskets),
		recorder:  NewRunRecorder(schedules),
		now:       time.Now,
	}
}

// WithClock overrides the runner's time source. Tests only.
func (b *BatchRunner) WithClock(now func() time.Time) *BatchRunner {
	b.now = now
	return b
}

// RunOnce processes every currently due schedule. A listing error aborts
// the whole invocation with zero schedules touched; per-schedule errors are
// contained in the report.
func (b *BatchRunner) RunOnce(ctx context.Context) (*BatchReport, error) {
	now := b.now().UTC()
	due, err := b.schedules.ListDue(ctx, now)
	if err != nil {
		return nil, err
	}

	report := &BatchReport{StartedAt: now, Considered: len(due)}
	for i := range due {
		res := b.runOne(ctx, &due[i], now)
		switch res.Outcome {
		case OutcomeCreated:
			report.Succeeded++
		case OutcomeFailed:
			report.Failed++
		case OutcomeSkipped:
			report.Skipped++
		}
		report.Results = append(report.Results, res)
	}

	log.Info().
		Int("considered", report.Considered).
		Int("succeeded", report.Succeeded).
		Int("failed", report.Failed).
		Int("skipped", report.Skipped).
		Msg("batch run complete")
	return report, nil
}

// runOne drives a single schedule through the pipeline. Ticket creation and
// cycle resolution happen only inside the claimed section, and every exit
// path after a successful claim goes through the recorder so the claim is
// released.
func (b *BatchRunner) runOne(ctx context.Context, s *domain.Schedule, now time.Time) ScheduleResult {
	res := ScheduleResult{ScheduleID: s.ID}

	ok, err := b.schedules.Claim(ctx, s.ID, s.NextTriggerAt)
	if err != nil {
		// Claim was never acquired, so nothing to release; the schedule
		// stays eligible for the next invocation.
		log.Error().Err(err).Stringer("schedule_id", s.ID).Msg("claim write failed")
		res.Outcome = OutcomeFailed
		res.Error = err.Error()
		return res
	}
	if !ok {
		res.Outcome = OutcomeSkipped
		return res
	}

	ticketID, cycle, runErr := b.fire(ctx, s, now)

	out := Outcome{Status: domain.RunStatusSuccess, TicketID: ticketID}
	if runErr != nil {
		out = Outcome{Status: domain.RunStatusFailed, Reason: runErr.Error()}
		log.Warn().Err(runErr).Stringer("schedule_id", s.ID).Msg("schedule firing failed")
	}
	next, recErr := b.recorder.Record(ctx, s, out, now)
	if recErr != nil {
		// The claim stays held until the lease expires; reclaim is the
		// store's job, not ours.
		log.Error().Err(recErr).Stringer("schedule_id", s.ID).Msg("record run failed")
		res.Outcome = OutcomeFailed
		res.Error = recErr.Error()
		return res
	}

	if runErr != nil {
		res.Outcome = OutcomeFailed
		res.Error = runErr.Error()
		return res
	}
	res.Outcome = OutcomeCreated
	res.TicketID = ticketID
	res.CycleNumber = cycle
	log.Info().
		Stringer("schedule_id", s.ID).
		Stringer("ticket_id", *ticketID).
		Int("cycle", cycle).
		Time("next_trigger_at", next).
		Msg("schedule fired")
	return res
}

// fire performs the fallible middle of the pipeline: recipe lookup, cycle
// resolution, ticket creation.
func (b *BatchRunner) fire(ctx context.Context, s *domain.Schedule, now time.Time) (*uuid.UUID, int, error) {
	recipe, err := b.recipes.RecipeByID(ctx, s.RecipeID)
	if err != nil {
		return nil, 0, err
	}
	cycle, err := b.resolver.NextCycle(ctx, s.ID)
	if err != nil {
		return nil, 0, err
	}
	ticket, err := b.factory.Create(ctx, s, recipe, cycle, now)
	if err != nil {
		return nil, 0, err
	}
	return &ticket.ID, cycle, nil
}
