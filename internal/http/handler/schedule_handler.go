package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"ScheduleEngine/internal/domain"
	"ScheduleEngine/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ScheduleHandler struct {
	svc *service.ScheduleService
}

func NewScheduleHandler(svc *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{svc: svc}
}

type scheduleSpecRequest struct {
	Frequency string          `json:"frequency" binding:"required"`
	DayOfWeek *int            `json:"day_of_week" binding:"required"`
	Hour      *int            `json:"hour" binding:"required"`
	Minute    int             `json:"minute"`
	Params    json.RawMessage `json:"params"`
}

func (r scheduleSpecRequest) toParams() service.ScheduleSpecParams {
	return service.ScheduleSpecParams{
		Frequency: domain.Frequency(r.Frequency),
		DayOfWeek: *r.DayOfWeek,
		Hour:      *r.Hour,
		Minute:    r.Minute,
		Params:    r.Params,
	}
}

type createScheduleRequest struct {
	ProjectID string `json:"project_id" binding:"required"`
	BasketID  string `json:"basket_id" binding:"required"`
	RecipeID  string `json:"recipe_id" binding:"required"`
	scheduleSpecRequest
	Enabled *bool `json:"enabled"` // optional, defaults to true
}

// POST /api/v1/schedules
func (h *ScheduleHandler) CreateSchedule(c *gin.Context) {
	var req createScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project_id"})
		return
	}
	basketID, err := uuid.Parse(req.BasketID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid basket_id"})
		return
	}
	recipeID, err := uuid.Parse(req.RecipeID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe_id"})
		return
	}
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	sch, err := h.svc.CreateSchedule(c.Request.Context(), service.CreateScheduleParams{
		ProjectID: projectID,
		BasketID:  basketID,
		RecipeID:  recipeID,
		Spec:      req.toParams(),
		Enabled:   enabled,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, scheduleToDTO(sch))
}

type scheduleDTO struct {
	ID              string          `json:"id"`
	ProjectID       string          `json:"project_id"`
	BasketID        string          `json:"basket_id"`
	RecipeID        string          `json:"recipe_id"`
	Frequency       string          `json:"frequency"`
	DayOfWeek       int             `json:"day_of_week"`
	Hour            int             `json:"hour"`
	Minute          int             `json:"minute"`
	Params          json.RawMessage `json:"params"`
	Enabled         bool            `json:"enabled"`
	NextTriggerAt   string          `json:"next_trigger_at"`
	LastTriggeredAt *string         `json:"last_triggered_at,omitempty"`
	LastRunStatus   *string         `json:"last_run_status,omitempty"`
	LastTicketID    *string         `json:"last_ticket_id,omitempty"`
	RunCount        int             `json:"run_count"`
}

func scheduleToDTO(s *domain.Schedule) scheduleDTO {
	dto := scheduleDTO{
		ID:            s.ID.String(),
		ProjectID:     s.ProjectID.String(),
		BasketID:      s.BasketID.String(),
		RecipeID:      s.RecipeID.String(),
		Frequency:     string(s.Frequency),
		DayOfWeek:     s.DayOfWeek,
		Hour:          s.Hour,
		Minute:        s.Minute,
		Params:        s.Params,
		Enabled:       s.Enabled,
		NextTriggerAt: s.NextTriggerAt.Format(time.RFC3339),
		RunCount:      s.RunCount,
	}
	if s.LastTriggeredAt != nil {
		str := s.LastTriggeredAt.Format(time.RFC3339)
		dto.LastTriggeredAt = &str
	}
	if s.LastRunStatus != nil {
		str := string(*s.LastRunStatus)
		dto.LastRunStatus = &str
	}
	if s.LastTicketID != nil {
		str := s.LastTicketID.String()
		dto.LastTicketID = &str
	}
	return dto
}

// GET /api/v1/schedules?enabled=true/false
func (h *ScheduleHandler) ListSchedules(c *gin.Context) {
	var enabledPtr *bool
	if v := c.Query("enabled"); v != "" {
		val := v == "true"
		enabledPtr = &val
	}
	schedules, err := h.svc.ListSchedules(c.Request.Context(), enabledPtr)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	dtos := make([]scheduleDTO, 0, len(schedules))
	for i := range schedules {
		dtos = append(dtos, scheduleToDTO(&schedules[i]))
	}
	c.JSON(http.StatusOK, gin.H{"schedules": dtos})
}

// GET /api/v1/schedules/:id
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	sch, err := h.svc.GetSchedule(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "schedule not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, scheduleToDTO(sch))
}

// PUT /api/v1/schedules/:id
func (h *ScheduleHandler) UpdateSchedule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req scheduleSpecRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sch, err := h.svc.UpdateScheduleSpec(c.Request.Context(), id, req.toParams())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "schedule not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, scheduleToDTO(sch))
}

type toggleScheduleRequest struct {
	Enabled bool `json:"enabled"`
}

// POST /api/v1/schedules/:id/toggle
func (h *ScheduleHandler) ToggleSchedule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req toggleScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.svc.ToggleSchedule(c.Request.Context(), id, req.Enabled); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id.String(), "enabled": req.Enabled})
}
