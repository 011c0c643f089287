package api

import (
	"github.com/gin-gonic/gin"

	"github.com/ecoles/schoolmanager/internal/handlers"
	"github.com/ecoles/schoolmanager/internal/permissions"
)

func registerAuditRoutes(api *gin.RouterGroup, handler *handlers.AuditHandler, guard *permissions.Guard) {
	audit := api.Group("/audit", administrators(guard))
	audit.GET("", handler.List)
	audit.GET("/summary", handler.Summary)
}
