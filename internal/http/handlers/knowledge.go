package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lumenlearn/lumen-backend/internal/http/response"
	"github.com/lumenlearn/lumen-backend/internal/services"
)

type KnowledgeHandler struct {
	knowledge services.KnowledgeService
}

func NewKnowledgeHandler(knowledge services.KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{knowledge: knowledge}
}

type ingestChunksRequest struct {
	Chunks []services.ChunkInput `json:"chunks"`
}

func (h *KnowledgeHandler) IngestChunks(c *gin.Context) {
	var req ingestChunksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_json", err)
		return
	}
	if len(req.Chunks) == 0 {
		response.RespondError(c, http.StatusBadRequest, "empty_chunk_batch", nil)
		return
	}
	rows, err := h.knowledge.IngestChunks(c.Request.Context(), req.Chunks)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID.String())
	}
	response.RespondOK(c, gin.H{"ingested": len(rows), "chunk_ids": ids})
}

func (h *KnowledgeHandler) UpsertConceptGraph(c *gin.Context) {
	var req services.ConceptGraphInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_json", err)
		return
	}
	result, err := h.knowledge.UpsertConceptGraph(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, result)
}
