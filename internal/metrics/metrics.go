// Package metrics records each batch invocation's summary in Redis so the
// metrics endpoint can serve the last run without touching Postgres.
package metrics

import (
	"context"
	"time"

	"ScheduleEngine/internal/engine"

	"github.com/redis/go-redis/v9"
)

const (
	lastRunKey  = "metrics:engine:last"
	runCountKey = "metrics:engine:runs"
)

// Connect parses the Redis URL and verifies the connection.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// RecordBatch writes the run summary. Metric writes are best effort and
// never fail the invocation.
func RecordBatch(ctx context.Context, rdb *redis.Client, report *engine.BatchReport) {
	_ = rdb.Incr(ctx, runCountKey).Err()
	_ = rdb.HSet(ctx, lastRunKey, map[string]any{
		"time":       report.StartedAt.Format(time.RFC3339),
		"considered": report.Considered,
		"succeeded":  report.Succeeded,
		"failed":     report.Failed,
		"skipped":    report.Skipped,
	}).Err()
}

// LastBatch reads back the stored summary and total run count.
func LastBatch(ctx context.Context, rdb *redis.Client) (map[string]string, int64, error) {
	last, err := rdb.HGetAll(ctx, lastRunKey).Result()
	if err != nil {
		return nil, 0, err
	}
	runs, err := rdb.Get(ctx, runCountKey).Int64()
	if err != nil && err != redis.Nil {
		return nil, 0, err
	}
	return last, runs, nil
}
