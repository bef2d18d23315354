package repo

import (
	"context"
	"time"

	"ScheduleEngine/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const scheduleColumns = `id, project_id, basket_id, recipe_id, frequency, day_of_week, hour, minute,
        params, enabled, next_trigger_at, last_triggered_at, last_run_status, last_ticket_id,
        run_count, claimed_until, created_at, updated_at`

func scanSchedule(row pgx.Row) (*domain.Schedule, error) {
	var s domain.Schedule
	if err := row.Scan(
		&s.ID, &s.ProjectID, &s.BasketID, &s.RecipeID, &s.Frequency, &s.DayOfWeek, &s.Hour, &s.Minute,
		&s.Params, &s.Enabled, &s.NextTriggerAt, &s.LastTriggeredAt, &s.LastRunStatus, &s.LastTicketID,
		&s.RunCount, &s.ClaimedUntil, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSchedule inserts a new recurring schedule.
func CreateSchedule(ctx context.Context, db *pgxpool.Pool, s *domain.Schedule) error {
	_, err := db.Exec(ctx, `
		INSERT INTO schedules (id, project_id, basket_id, recipe_id, frequency, day_of_week, hour, minute,
            params, enabled, next_trigger_at, run_count, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 0, NOW(), NOW())
	`, s.ID, s.ProjectID, s.BasketID, s.RecipeID, s.Frequency, s.DayOfWeek, s.Hour, s.Minute,
		s.Params, s.Enabled, s.NextTriggerAt)
	return err
}

// ListSchedules filters by enabled when the pointer is non-nil.
func ListSchedules(ctx context.Context, db *pgxpool.Pool, enabled *bool) ([]domain.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules`
	args := []any{}
	if enabled != nil {
		query += " WHERE enabled=$1"
		args = append(args, *enabled)
	}
	query += " ORDER BY created_at DESC"
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *s)
	}
	return res, rows.Err()
}

// GetScheduleByID fetches a single schedule.
func GetScheduleByID(ctx context.Context, db *pgxpool.Pool, id uuid.UUID) (*domain.Schedule, error) {
	row := db.QueryRow(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE id = $1`, id)
	return scanSchedule(row)
}

// ListDueSchedules returns enabled schedules whose next trigger is at or
// before now, ascending by trigger instant then id so concurrent invocations
// walk the set in the same deterministic order.
func ListDueSchedules(ctx context.Context, db *pgxpool.Pool, now time.Time) ([]domain.Schedule, error) {
	rows, err := db.Query(ctx, `
		SELECT `+scheduleColumns+`
        FROM schedules
        WHERE enabled AND next_trigger_at <= $1
        ORDER BY next_trigger_at ASC, id ASC
	`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *s)
	}
	return res, rows.Err()
}

// ClaimSchedule is the single serialization point between concurrent
// invocations: a compare-and-set keyed on the schedule's current
// next_trigger_at plus a lease. The predicate also treats an expired lease
// as free, so a crashed invocation never strands a schedule.
func ClaimSchedule(ctx context.Context, db *pgxpool.Pool, id uuid.UUID, expectedNextTrigger time.Time, leaseTTL time.Duration) (bool, error) {
	leaseUntil := time.Now().UTC().Add(leaseTTL)
	tag, err := db.Exec(ctx, `
		UPDATE schedules
        SET claimed_until = $3, updated_at = NOW()
        WHERE id = $1
          AND next_trigger_at = $2
          AND enabled
          AND (claimed_until IS NULL OR claimed_until < NOW())
	`, id, expectedNextTrigger, leaseUntil)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// RecordRun writes the post-attempt state and releases the claim. It runs
// on success and failure alike so next_trigger_at always advances.
func RecordRun(ctx context.Context, db *pgxpool.Pool, id uuid.UUID, status domain.RunStatus, ticketID *uuid.UUID, triggeredAt, nextTriggerAt time.Time) error {
	_, err := db.Exec(ctx, `
		UPDATE schedules
        SET last_triggered_at = $2,
            last_run_status = $3,
            last_ticket_id = COALESCE($4, last_ticket_id),
            run_count = run_count + 1,
            next_trigger_at = $5,
            claimed_until = NULL,
            updated_at = NOW()
        WHERE id = $1
	`, id, triggeredAt, status, ticketID, nextTriggerAt)
	return err
}

// UpdateScheduleSpec applies a user edit of the recurrence spec and params,
// recomputing next_trigger_at outside. The claim CAS keys on
// next_trigger_at, so an in-flight engine claim for the old instant simply
// loses.
func UpdateScheduleSpec(ctx context.Context, db *pgxpool.Pool, s *domain.Schedule) error {
	_, err := db.Exec(ctx, `
		UPDATE schedules
        SET frequency = $2, day_of_week = $3, hour = $4, minute = $5,
            params = $6, next_trigger_at = $7, updated_at = NOW()
        WHERE id = $1
	`, s.ID, s.Frequency, s.DayOfWeek, s.Hour, s.Minute, s.Params, s.NextTriggerAt)
	return err
}

// ToggleScheduleEnabled enables or disables a schedule.
func ToggleScheduleEnabled(ctx context.Context, db *pgxpool.Pool, id uuid.UUID, enabled bool) error {
	_, err := db.Exec(ctx, `
		UPDATE schedules
        SET enabled = $1, updated_at = NOW()
        WHERE id = $2
	`, enabled, id)
	return err
}

// CountSchedules returns (due, enabled) totals for the status entrypoint.
func CountSchedules(ctx context.Context, db *pgxpool.Pool, now time.Time) (due int, enabled int, err error) {
	row := db.QueryRow(ctx, `
		SELECT
            COUNT(*) FILTER (WHERE next_trigger_at <= $1),
            COUNT(*)
        FROM schedules
        WHERE enabled
	`, now)
	if err := row.Scan(&due, &enabled); err != nil {
		return 0, 0, err
	}
	return due, enabled, nil
}
