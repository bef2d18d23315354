package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

func Init(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	// connection check
	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}
	return pool, nil
}

func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS baskets (
            id UUID PRIMARY KEY,
            workspace_id UUID NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS recipes (
            id UUID PRIMARY KEY,
            agent_type TEXT NOT NULL,
            context_requirements JSONB NOT NULL DEFAULT '{}'::jsonb
        );`,
		`CREATE TABLE IF NOT EXISTS schedules (
            id UUID PRIMARY KEY,
            project_id UUID NOT NULL,
            basket_id UUID NOT NULL,
            recipe_id UUID NOT NULL,
            frequency TEXT NOT NULL,
            day_of_week INT NOT NULL,
            hour INT NOT NULL,
            minute INT NOT NULL,
            params JSONB NOT NULL DEFAULT '{}'::jsonb,
            enabled BOOLEAN NOT NULL DEFAULT TRUE,
            next_trigger_at TIMESTAMPTZ NOT NULL,
            last_triggered_at TIMESTAMPTZ,
            last_run_status TEXT,
            last_ticket_id UUID,
            run_count INT NOT NULL DEFAULT 0,
            claimed_until TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE INDEX IF NOT EXISTS idx_schedules_due ON schedules(next_trigger_at) WHERE enabled;`,
		`CREATE TABLE IF NOT EXISTS tickets (
            id UUID PRIMARY KEY,
            basket_id UUID NOT NULL,
            workspace_id UUID NOT NULL,
            recipe_id UUID NOT NULL,
            schedule_id UUID REFERENCES schedules(id),
            mode TEXT NOT NULL,
            cycle_number INT NOT NULL DEFAULT 0,
            params JSONB NOT NULL DEFAULT '{}'::jsonb,
            metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		// Backs the gap-free cycle chain: one ticket per (schedule, cycle).
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_tickets_schedule_cycle
            ON tickets(schedule_id, cycle_number) WHERE mode = 'continuous';`,
	}
	for _, q := range ddl {
		if _, err := pool.Exec(ctx, q); err != nil {
			return err
		}
	}
	return nil
}
