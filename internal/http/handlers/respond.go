package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/lumenlearn/lumen-backend/internal/http/response"
	"github.com/lumenlearn/lumen-backend/internal/platform/apierr"
)

// respondServiceError maps a service-layer error onto the envelope using
// the status and code carried by the error itself.
func respondServiceError(c *gin.Context, err error) {
	ae := apierr.From(err)
	response.RespondError(c, ae.Status, ae.Code, ae)
}
