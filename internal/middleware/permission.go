package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ecoles/schoolmanager/internal/auditctx"
	"github.com/ecoles/schoolmanager/internal/models"
	"github.com/ecoles/schoolmanager/internal/permissions"
	"github.com/ecoles/schoolmanager/pkg/logger"
	"github.com/ecoles/schoolmanager/pkg/metrics"
	"github.com/ecoles/schoolmanager/pkg/response"
)

// RequirePermission lets the request through only when the principal holds codename on
// resource. The resolved profile is stored under CtxProfileKey.
func RequirePermission(guard *permissions.Guard, codename, resource string) gin.HandlerFunc {
	return RequireAnyPermission(guard, permissions.Require(codename, resource))
}

// RequireAnyPermission lets the request through when the principal holds any of reqs.
func RequireAnyPermission(guard *permissions.Guard, reqs ...permissions.Requirement) gin.HandlerFunc {
	if len(reqs) == 0 {
		panic("middleware: RequireAnyPermission needs at least one requirement")
	}
	label := reqs[0]

	return func(c *gin.Context) {
		profile, err := guard.Authorize(c.Request.Context(), UserID(c), reqs...)
		if err != nil {
			appErr := TranslateError(err)
			result := "denied"
			if appErr.StatusCode >= 500 {
				result = "error"
				logger.WithModule("guard").Error("permission check failed",
					zap.String("codename", label.Codename),
					zap.Error(err),
				)
			}
			metrics.PermissionChecks.WithLabelValues(label.Codename, label.Resource, result).Inc()
			response.Abort(c, appErr)
			return
		}

		metrics.PermissionChecks.WithLabelValues(label.Codename, label.Resource, "allowed").Inc()
		setProfile(c, profile)
		c.Next()
	}
}

// RequireProfile only demands an authenticated principal with a profile.
func RequireProfile(guard *permissions.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, err := guard.Principal(c.Request.Context(), UserID(c))
		if err != nil {
			response.Abort(c, TranslateError(err))
			return
		}
		setProfile(c, profile)
		c.Next()
	}
}

// Profile returns the profile resolved by a guard earlier in the chain.
func Profile(c *gin.Context) *models.Profile {
	if v, ok := c.Get(CtxProfileKey); ok {
		if profile, ok := v.(*models.Profile); ok {
			return profile
		}
	}
	return nil
}

func setProfile(c *gin.Context, profile *models.Profile) {
	c.Set(CtxProfileKey, profile)
	c.Request = c.Request.WithContext(auditctx.WithProfile(c.Request.Context(), profile.ID))
}
