package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lumenlearn/lumen-backend/internal/http/response"
	"github.com/lumenlearn/lumen-backend/internal/services"
)

type EventHandler struct {
	mastery  services.MasteryService
	registry services.SkillRegistryService
}

func NewEventHandler(mastery services.MasteryService, registry services.SkillRegistryService) *EventHandler {
	return &EventHandler{mastery: mastery, registry: registry}
}

type recordEventRequest struct {
	UserID           uuid.UUID       `json:"user_id"`
	SkillID          string          `json:"skill_id"`
	IsCorrect        *bool           `json:"is_correct"`
	Attempts         int             `json:"attempts"`
	TimeSpentSeconds int             `json:"time_spent_seconds"`
	EventType        string          `json:"event_type"`
	SourceText       string          `json:"source_text"`
	Metadata         json.RawMessage `json:"metadata"`
	Timestamp        *time.Time      `json:"timestamp"`
}

func (h *EventHandler) Record(c *gin.Context) {
	var req recordEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_json", err)
		return
	}
	if req.IsCorrect == nil {
		response.RespondError(c, http.StatusBadRequest, "missing_is_correct", nil)
		return
	}
	in := services.RecordEventInput{
		UserID:           req.UserID,
		SkillID:          req.SkillID,
		IsCorrect:        *req.IsCorrect,
		Attempts:         req.Attempts,
		TimeSpentSeconds: req.TimeSpentSeconds,
		EventType:        req.EventType,
		SourceText:       req.SourceText,
		Metadata:         req.Metadata,
	}
	if req.Timestamp != nil {
		in.Timestamp = *req.Timestamp
	}
	result, err := h.mastery.RecordEvent(c.Request.Context(), in)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, result)
}

func (h *EventHandler) ListByUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_limit", err)
			return
		}
	}
	rows, err := h.registry.ListEvents(c.Request.Context(), userID, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"events": rows, "count": len(rows)})
}
