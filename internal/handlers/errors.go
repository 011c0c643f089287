package handlers

import (
	"context"
	stderrors "errors"

	"github.com/gin-gonic/gin"

	"github.com/ecoles/schoolmanager/internal/middleware"
	"github.com/ecoles/schoolmanager/internal/permissions"
	"github.com/ecoles/schoolmanager/pkg/errors"
	"github.com/ecoles/schoolmanager/pkg/response"
)

// respondError renders err, translating authorization engine errors first.
func respondError(c *gin.Context, err error) {
	response.Error(c, middleware.TranslateError(err))
}

// respondTargetError renders err for a profile addressed in the URL. A missing target is a
// 404 rather than the 403 reserved for callers without a profile.
func respondTargetError(c *gin.Context, err error) {
	if stderrors.Is(err, permissions.ErrProfileNotFound) {
		response.Error(c, errors.ErrNotFound.WithMessage("Profile not found"))
		return
	}
	respondError(c, err)
}

// requestContext returns the request context, or Background for handlers driven without one.
func requestContext(c *gin.Context) context.Context {
	if c == nil || c.Request == nil {
		return context.Background()
	}
	return c.Request.Context()
}
