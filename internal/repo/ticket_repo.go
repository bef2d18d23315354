package repo

import (
	"context"

	"ScheduleEngine/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InsertTicket persists one unit of chained work. The unique
// (schedule_id, cycle_number) index rejects a duplicate cycle outright.
func InsertTicket(ctx context.Context, db *pgxpool.Pool, t *domain.Ticket) error {
	_, err := db.Exec(ctx, `
		INSERT INTO tickets (id, basket_id, workspace_id, recipe_id, schedule_id, mode, cycle_number, params, metadata, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
	`, t.ID, t.BasketID, t.WorkspaceID, t.RecipeID, t.ScheduleID, t.Mode, t.CycleNumber, t.Params, t.Metadata)
	return err
}

// GetTicketByID fetches a single ticket.
func GetTicketByID(ctx context.Context, db *pgxpool.Pool, id uuid.UUID) (*domain.Ticket, error) {
	row := db.QueryRow(ctx, `
		SELECT id, basket_id, workspace_id, recipe_id, schedule_id, mode, cycle_number, params, metadata, created_at
        FROM tickets
        WHERE id = $1
	`, id)
	var t domain.Ticket
	if err := row.Scan(
		&t.ID, &t.BasketID, &t.WorkspaceID, &t.RecipeID, &t.ScheduleID, &t.Mode, &t.CycleNumber,
		&t.Params, &t.Metadata, &t.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTicketsByScheduleID returns a schedule's chain, newest cycle first.
func ListTicketsByScheduleID(ctx context.Context, db *pgxpool.Pool, scheduleID uuid.UUID) ([]domain.Ticket, error) {
	rows, err := db.Query(ctx, `
		SELECT id, basket_id, workspace_id, recipe_id, schedule_id, mode, cycle_number, params, metadata, created_at
        FROM tickets
        WHERE schedule_id = $1
        ORDER BY cycle_number DESC
	`, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Ticket
	for rows.Next() {
		var t domain.Ticket
		if err := rows.Scan(
			&t.ID, &t.BasketID, &t.WorkspaceID, &t.RecipeID, &t.ScheduleID, &t.Mode, &t.CycleNumber,
			&t.Params, &t.Metadata, &t.CreatedAt,
		); err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

// GetMaxCycleByScheduleID returns the highest continuous-mode cycle number
// in the schedule's chain, 0 when the chain is empty.
func GetMaxCycleByScheduleID(ctx context.Context, db *pgxpool.Pool, scheduleID uuid.UUID) (int, error) {
	row := db.QueryRow(ctx, `
		SELECT COALESCE(MAX(cycle_number), 0)
        FROM tickets
        WHERE schedule_id = $1 AND mode = 'continuous'
	`, scheduleID)
	var max int
	if err := row.Scan(&max); err != nil {
		return 0, err
	}
	return max, nil
}
