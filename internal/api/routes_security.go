package api

import (
	"github.com/gin-gonic/gin"

	"github.com/ecoles/schoolmanager/internal/handlers"
	"github.com/ecoles/schoolmanager/internal/middleware"
	"github.com/ecoles/schoolmanager/internal/permissions"
)

func registerSecurityRoutes(api *gin.RouterGroup, handler *handlers.SecurityHandler, guard *permissions.Guard) {
	api.GET("/security/audit",
		middleware.RequirePermission(guard, permissions.PermManagePermissions, permissions.ResourceConfig),
		handler.Audit,
	)
}
