package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lumenlearn/lumen-backend/internal/http/response"
	"github.com/lumenlearn/lumen-backend/internal/services"
)

type InsightsHandler struct {
	insights services.InsightsService
}

func NewInsightsHandler(insights services.InsightsService) *InsightsHandler {
	return &InsightsHandler{insights: insights}
}

func (h *InsightsHandler) LearnerState(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
		return
	}
	result, err := h.insights.LearnerState(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, result)
}

func (h *InsightsHandler) ClassOverview(c *gin.Context) {
	strugglingOnly := c.Query("struggling_only") == "true"
	var minMastery *float64
	if raw := c.Query("min_mastery"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_min_mastery", err)
			return
		}
		minMastery = &v
	}
	result, err := h.insights.ClassOverview(c.Request.Context(), strugglingOnly, minMastery)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, result)
}
