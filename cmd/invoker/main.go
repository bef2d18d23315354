// The invoker is the periodic external trigger: on a cron spec it POSTs
// the engine's run entrypoint with the shared secret and logs the batch
// summary. It holds no state of its own; overlapping firings are safe
// because the engine serializes per schedule via its claim.
package main

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ScheduleEngine/internal/config"
	"ScheduleEngine/internal/engine"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg := config.Load()
	if cfg.SchedulerSecret == "" {
		log.Fatal().Msg("SCHEDULER_SECRET is required")
	}

	client := &http.Client{Timeout: 60 * time.Second}
	runURL := cfg.APIBaseURL + "/internal/scheduler/run"

	c := cron.New()
	if _, err := c.AddFunc(cfg.InvokerCron, func() { invoke(client, runURL, cfg.SchedulerSecret) }); err != nil {
		log.Fatal().Err(err).Str("spec", cfg.InvokerCron).Msg("invalid INVOKER_CRON")
	}

	log.Info().Str("spec", cfg.InvokerCron).Str("url", runURL).Msg("invoker started")
	c.Start()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	<-c.Stop().Done()
	log.Info().Msg("invoker stopped")
}

func invoke(client *http.Client, url, secret string) {
	req, err := http.NewRequest(http.MethodPost, url, nil)
	if err != nil {
		log.Error().Err(err).Msg("build trigger request failed")
		return
	}
	req.Header.Set("X-Scheduler-Secret", secret)

	resp, err := client.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("trigger request failed")
		return
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		log.Error().Int("status", resp.StatusCode).Bytes("body", body).Msg("trigger rejected")
		return
	}

	var report engine.BatchReport
	if err := json.Unmarshal(body, &report); err != nil {
		log.Error().Err(err).Msg("unreadable batch report")
		return
	}
	log.Info().
		Int("considered", report.Considered).
		Int("succeeded", report.Succeeded).
		Int("failed", report.Failed).
		Int("skipped", report.Skipped).
		Msg("batch invoked")
}
