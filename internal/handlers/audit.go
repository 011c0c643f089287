package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ecoles/schoolmanager/internal/services"
	"github.com/ecoles/schoolmanager/pkg/errors"
	"github.com/ecoles/schoolmanager/pkg/response"
)

// AuditHandler lists the authorization audit trail.
type AuditHandler struct {
	svc *services.AuditService
}

func NewAuditHandler(svc *services.AuditService) *AuditHandler {
	return &AuditHandler{svc: svc}
}

// GET /api/audit?actor_id=&action=&resource=&result=&since=&limit=
func (h *AuditHandler) List(c *gin.Context) {
	filters := services.AuditFilters{
		ActorID:  strings.TrimSpace(c.Query("actor_id")),
		Action:   strings.TrimSpace(c.Query("action")),
		Resource: strings.TrimSpace(c.Query("resource")),
		Result:   strings.TrimSpace(c.Query("result")),
	}

	if raw := strings.TrimSpace(c.Query("since")); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, errors.NewBadRequest("since must be an RFC3339 timestamp"))
			return
		}
		filters.Since = &since
	}

	limit, _ := strconv.Atoi(c.Query("limit"))

	logs, err := h.svc.List(requestContext(c), filters, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, logs)
}

// GET /api/audit/summary?hours=
func (h *AuditHandler) Summary(c *gin.Context) {
	hours := 24
	if raw := strings.TrimSpace(c.Query("hours")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 24*90 {
			response.Error(c, errors.NewBadRequest("hours must be between 1 and 2160"))
			return
		}
		hours = parsed
	}

	summary, err := h.svc.Summary(requestContext(c), time.Now().Add(-time.Duration(hours)*time.Hour))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, summary)
}
