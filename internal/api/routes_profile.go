package api

import (
	"github.com/gin-gonic/gin"

	"github.com/ecoles/schoolmanager/internal/handlers"
	"github.com/ecoles/schoolmanager/internal/middleware"
	"github.com/ecoles/schoolmanager/internal/permissions"
)

func registerProfileRoutes(api *gin.RouterGroup, handler *handlers.ProfileHandler, perms *handlers.PermissionHandler, guard *permissions.Guard) {
	profiles := api.Group("/profiles")
	{
		// Access to a single profile is decided per target by the profile access rules.
		profiles.GET("/:id", middleware.RequireProfile(guard), handler.Get)
		profiles.PATCH("/:id", middleware.RequireProfile(guard), handler.Update)
		profiles.GET("/:id/permissions", administrators(guard), perms.ProfilePermissions)
	}
}
