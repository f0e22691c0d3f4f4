package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lumenlearn/lumen-backend/internal/http/response"
	"github.com/lumenlearn/lumen-backend/internal/services"
)

type SkillHandler struct {
	registry services.SkillRegistryService
}

func NewSkillHandler(registry services.SkillRegistryService) *SkillHandler {
	return &SkillHandler{registry: registry}
}

type upsertSkillsRequest struct {
	Skills []services.SkillInput `json:"skills"`
}

// Upsert accepts either {"skills":[...]} or a single skill object.
func (h *SkillHandler) Upsert(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	var inputs []services.SkillInput
	var env upsertSkillsRequest
	if err := json.Unmarshal(raw, &env); err == nil && len(env.Skills) > 0 {
		inputs = env.Skills
	} else {
		var one services.SkillInput
		if err2 := json.Unmarshal(raw, &one); err2 != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_json", err2)
			return
		}
		inputs = []services.SkillInput{one}
	}
	rows, err := h.registry.UpsertSkills(c.Request.Context(), inputs)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"skills": rows, "count": len(rows)})
}

func (h *SkillHandler) List(c *gin.Context) {
	rows, err := h.registry.ListSkills(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"skills": rows, "count": len(rows)})
}
