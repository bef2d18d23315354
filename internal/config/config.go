package config

import (
	"os"
	"time"
)

type AppConfig struct {
	HTTPPort        string
	PostgresDSN     string
	RedisURL        string
	SchedulerSecret string
	ClaimLeaseTTL   time.Duration
	InvokerCron     string
	APIBaseURL      string
}

func Load() AppConfig {
	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost port=5432 user=engine dbname=schedule_engine sslmode=disable"
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	// Shared secret for the trigger entrypoint; empty disables it entirely
	// so a misconfigured deployment fails closed.
	secret := os.Getenv("SCHEDULER_SECRET")

	leaseTTL := 5 * time.Minute
	if v := os.Getenv("CLAIM_LEASE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			leaseTTL = d
		}
	}

	invokerCron := os.Getenv("INVOKER_CRON")
	if invokerCron == "" {
		invokerCron = "@every 1m"
	}

	apiBase := os.Getenv("API_BASE_URL")
	if apiBase == "" {
		apiBase = "http://localhost:" + port
	}

	return AppConfig{
		HTTPPort:        port,
		PostgresDSN:     dsn,
		RedisURL:        redisURL,
		SchedulerSecret: secret,
		ClaimLeaseTTL:   leaseTTL,
		InvokerCron:     invokerCron,
		APIBaseURL:      apiBase,
	}
}
