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

// TicketHandler exposes read-only chain inspection; ticket execution state
// is owned by the external runtime and never served here.
type TicketHandler struct {
	svc *service.ScheduleService
}

func NewTicketHandler(svc *service.ScheduleService) *TicketHandler {
	return &TicketHandler{svc: svc}
}

type ticketDTO struct {
	ID          string          `json:"id"`
	BasketID    string          `json:"basket_id"`
	WorkspaceID string          `json:"workspace_id"`
	RecipeID    string          `json:"recipe_id"`
	ScheduleID  *string         `json:"schedule_id,omitempty"`
	Mode        string          `json:"mode"`
	CycleNumber int             `json:"cycle_number"`
	Params      json.RawMessage `json:"params"`
	Metadata    json.RawMessage `json:"metadata"`
	CreatedAt   string          `json:"created_at"`
}

func ticketToDTO(t *domain.Ticket) ticketDTO {
	dto := ticketDTO{
		ID:          t.ID.String(),
		BasketID:    t.BasketID.String(),
		WorkspaceID: t.WorkspaceID.String(),
		RecipeID:    t.RecipeID.String(),
		Mode:        string(t.Mode),
		CycleNumber: t.CycleNumber,
		Params:      t.Params,
		Metadata:    t.Metadata,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
	}
	if t.ScheduleID != nil {
		str := t.ScheduleID.String()
		dto.ScheduleID = &str
	}
	return dto
}

// GET /api/v1/tickets/:id
func (h *TicketHandler) GetTicket(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	t, err := h.svc.GetTicket(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ticketToDTO(t))
}

// GET /api/v1/schedules/:id/tickets
func (h *TicketHandler) ListScheduleTickets(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	tickets, err := h.svc.ListScheduleTickets(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	dtos := make([]ticketDTO, 0, len(tickets))
	for i := range tickets {
		dtos = append(dtos, ticketToDTO(&tickets[i]))
	}
	c.JSON(http.StatusOK, gin.H{"tickets": dtos, "count": len(dtos)})
}
