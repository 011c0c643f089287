package api

import (
	"github.com/gin-gonic/gin"

	"github.com/ecoles/schoolmanager/internal/handlers"
	"github.com/ecoles/schoolmanager/internal/middleware"
	"github.com/ecoles/schoolmanager/internal/permissions"
)

func registerPermissionRoutes(api *gin.RouterGroup, handler *handlers.PermissionHandler, guard *permissions.Guard) {
	admins := administrators(guard)

	perms := api.Group("/permissions")
	{
		perms.GET("/my", middleware.RequireProfile(guard), handler.My)
		perms.GET("/check", middleware.RequireProfile(guard), handler.Check)
		perms.GET("/catalog", middleware.RequirePermission(guard, permissions.PermViewConfig, permissions.ResourceConfig), handler.Catalog)

		perms.GET("/roles", admins, handler.ListRoles)
		perms.POST("/roles", middleware.RequirePermission(guard, permissions.PermManagePermissions, permissions.ResourceConfig), handler.SaveRole)
		perms.PUT("/roles/:codename/permissions", admins, handler.SetRolePermissions)

		perms.POST("/grants", admins, handler.Grant)
		perms.DELETE("/grants", admins, handler.Revoke)
		perms.POST("/assignments", admins, handler.AssignRole)
		perms.DELETE("/assignments", admins, handler.RemoveRole)
	}
}
