package handler

import (
	"net/http"

	"ScheduleEngine/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type MetricsHandler struct {
	rdb *redis.Client
}

func NewMetricsHandler(rdb *redis.Client) *MetricsHandler {
	return &MetricsHandler{rdb: rdb}
}

// GET /api/v1/metrics/engine
func (h *MetricsHandler) GetEngineMetrics(c *gin.Context) {
	last, runs, err := metrics.LastBatch(c.Request.Context(), h.rdb)
	if err != nil {
		log.Error().Err(err).Msg("failed to read engine metrics")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"runs": runs,
		"last": last, // time, considered, succeeded, failed, skipped
	})
}
