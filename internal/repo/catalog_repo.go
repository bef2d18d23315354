package repo

import (
	"context"

	"ScheduleEngine/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// The recipe catalog and basket table are owned elsewhere; the engine only
// reads identity from them.

func GetRecipeByID(ctx context.Context, db *pgxpool.Pool, id uuid.UUID) (*domain.Recipe, error) {
	row := db.QueryRow(ctx, `
		SELECT id, agent_type, context_requirements
        FROM recipes
        WHERE id = $1
	`, id)
	var r domain.Recipe
	if err := row.Scan(&r.ID, &r.AgentType, &r.ContextRequirements); err != nil {
		return nil, err
	}
	return &r, nil
}

func GetBasketByID(ctx context.Context, db *pgxpool.Pool, id uuid.UUID) (*domain.Basket, error) {
	row := db.QueryRow(ctx, `
		SELECT id, workspace_id
        FROM baskets
        WHERE id = $1
	`, id)
	var b domain.Basket
	if err := row.Scan(&b.ID, &b.WorkspaceID); err != nil {
		return nil, err
	}
	return &b, nil
}
