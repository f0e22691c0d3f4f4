package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lumenlearn/lumen-backend/internal/http/response"
	"github.com/lumenlearn/lumen-backend/internal/services"
)

type RetrievalHandler struct {
	retrieval services.RetrievalService
}

func NewRetrievalHandler(retrieval services.RetrievalService) *RetrievalHandler {
	return &RetrievalHandler{retrieval: retrieval}
}

type searchRequest struct {
	Embedding  []float32 `json:"embedding"`
	GradeLevel string    `json:"grade_level"`
	Subject    string    `json:"subject"`
	Limit      int       `json:"limit"`
	Threshold  *float64  `json:"threshold"`
}

func (h *RetrievalHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_json", err)
		return
	}
	matches, err := h.retrieval.Search(c.Request.Context(), services.SearchInput{
		Embedding:  req.Embedding,
		GradeLevel: req.GradeLevel,
		Subject:    req.Subject,
		Limit:      req.Limit,
		Threshold:  req.Threshold,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"matches": matches, "count": len(matches)})
}

func (h *RetrievalHandler) ConceptContext(c *gin.Context) {
	label := strings.TrimSpace(c.Param("label"))
	if label == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_label", nil)
		return
	}
	relations, err := h.retrieval.ConceptContext(c.Request.Context(), label)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"concept": label, "relations": relations, "count": len(relations)})
}
