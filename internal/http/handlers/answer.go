package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lumenlearn/lumen-backend/internal/http/response"
	"github.com/lumenlearn/lumen-backend/internal/services"
)

type AnswerHandler struct {
	grounding services.GroundingService
}

func NewAnswerHandler(grounding services.GroundingService) *AnswerHandler {
	return &AnswerHandler{grounding: grounding}
}

type answerRequest struct {
	Query string `json:"query"`
}

func (h *AnswerHandler) Answer(c *gin.Context) {
	if h.grounding == nil {
		response.RespondError(c, http.StatusServiceUnavailable, "answering_disabled",
			fmt.Errorf("no language model configured"))
		return
	}
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_json", err)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		response.RespondError(c, http.StatusBadRequest, "empty_query", nil)
		return
	}
	result, err := h.grounding.Answer(c.Request.Context(), req.Query)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, result)
}
