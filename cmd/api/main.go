package main

import (
	"context"
	"os"
	"time"

	"ScheduleEngine/internal/config"
	"ScheduleEngine/internal/db"
	"ScheduleEngine/internal/engine"
	"ScheduleEngine/internal/http/handler"
	"ScheduleEngine/internal/metrics"
	"ScheduleEngine/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg := config.Load()
	if cfg.SchedulerSecret == "" {
		log.Warn().Msg("SCHEDULER_SECRET is not set; trigger entrypoint is disabled")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.Init(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres init failed")
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("ensure schema failed")
	}

	rdb, err := metrics.Connect(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("redis init failed")
	}
	defer rdb.Close()

	// Wire the engine over its Postgres stores.
	stores := engine.NewPGStores(pool, cfg.ClaimLeaseTTL)
	runner := engine.NewBatchRunner(stores, stores, stores, stores)
	scheduleSvc := service.NewScheduleService(pool)

	r := gin.Default()
	health := handler.NewHealthHandler(pool, rdb)
	trigger := handler.NewTriggerHandler(runner, pool, rdb, cfg.SchedulerSecret)
	schedules := handler.NewScheduleHandler(scheduleSvc)
	tickets := handler.NewTicketHandler(scheduleSvc)
	engineMetrics := handler.NewMetricsHandler(rdb)

	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	internal := r.Group("/internal/scheduler")
	{
		internal.POST("/run", trigger.Run)
		internal.GET("/status", trigger.Status)
	}

	api := r.Group("/api/v1")
	{
		api.POST("/schedules", schedules.CreateSchedule)
		api.GET("/schedules", schedules.ListSchedules)
		api.GET("/schedules/:id", schedules.GetSchedule)
		api.PUT("/schedules/:id", schedules.UpdateSchedule)
		api.POST("/schedules/:id/toggle", schedules.ToggleSchedule)
		api.GET("/schedules/:id/tickets", tickets.ListScheduleTickets)
		api.GET("/tickets/:id", tickets.GetTicket)
		api.GET("/metrics/engine", engineMetrics.GetEngineMetrics)
	}

	log.Info().Str("port", cfg.HTTPPort).Msg("starting api server")
	if err := r.Run(":" + cfg.HTTPPort); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
