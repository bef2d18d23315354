package handler

import (
	"crypto/subtle"
	"net/http"
	"time"

	"ScheduleEngine/internal/engine"
	"ScheduleEngine/internal/metrics"
	"ScheduleEngine/internal/repo"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// SecretHeader carries the shared secret of the periodic invoker.
const SecretHeader = "X-Scheduler-Secret"

type TriggerHandler struct {
	runner *engine.BatchRunner
	db     *pgxpool.Pool
	rdb    *redis.Client
	secret []byte
}

func NewTriggerHandler(runner *engine.BatchRunner, db *pgxpool.Pool, rdb *redis.Client, secret string) *TriggerHandler {
	return &TriggerHandler{runner: runner, db: db, rdb: rdb, secret: []byte(secret)}
}

// authorized compares the caller's secret in constant time. An empty
// configured secret disables the entrypoint outright.
func (h *TriggerHandler) authorized(c *gin.Context) bool {
	if len(h.secret) == 0 {
		return false
	}
	given := []byte(c.GetHeader(SecretHeader))
	return subtle.ConstantTimeCompare(given, h.secret) == 1
}

// POST /internal/scheduler/run
func (h *TriggerHandler) Run(c *gin.Context) {
	if !h.authorized(c) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	report, err := h.runner.RunOnce(c.Request.Context())
	if err != nil {
		// Listing-level failure: whole invocation aborted, zero schedules touched.
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "considered": 0})
		return
	}
	metrics.RecordBatch(c.Request.Context(), h.rdb, report)
	c.JSON(http.StatusOK, report)
}

// GET /internal/scheduler/status
func (h *TriggerHandler) Status(c *gin.Context) {
	due, enabled, err := repo.CountSchedules(c.Request.Context(), h.db, time.Now().UTC())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"due_count":     due,
		"enabled_count": enabled,
	})
}
