package engine

import (
	"context"
	"time"

	"ScheduleEngine/internal/domain"
	"ScheduleEngine/internal/occurrence"

	"github.com/google/uuid"
)

// Outcome is one attempt's result as seen by the recorder.
type Outcome struct {
	Status   domain.RunStatus
	TicketID *uuid.UUID // set on success only
	Reason   string     // set on failure only
}

// RunRecorder writes post-attempt bookkeeping. It always recomputes the
// next trigger from "now", on success and failure alike, so a persistently
// failing schedule cannot re-fire on the same due window every invocation.
type RunRecorder struct {
	schedules ScheduleStore
}

func NewRunRecorder(schedules ScheduleStore) *RunRecorder {
	return &RunRecorder{schedules: schedules}
}

// Record persists the outcome and releases the claim. The returned instant
// is the newly computed next trigger.
func (r *RunRecorder) Record(ctx context.Context, s *domain.Schedule, out Outcome, now time.Time) (time.Time, error) {
	next := occurrence.NextForSchedule(s, now)
	if err := r.schedules.RecordRun(ctx, s.ID, out.Status, out.TicketID, now, next); err != nil {
		return next, err
	}
	return next, nil
}
