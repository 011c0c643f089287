package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecoles/schoolmanager/internal/security"
	"github.com/ecoles/schoolmanager/pkg/response"
)

// SecurityHandler exposes the authorization posture review.
type SecurityHandler struct {
	reviewer *security.Reviewer
}

func NewSecurityHandler(reviewer *security.Reviewer) *SecurityHandler {
	return &SecurityHandler{reviewer: reviewer}
}

// GET /api/security/audit
func (h *SecurityHandler) Audit(c *gin.Context) {
	response.Success(c, http.StatusOK, h.reviewer.Run(c.Request.Context()))
}
