package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ecoles/schoolmanager/internal/auditctx"
	iauth "github.com/ecoles/schoolmanager/internal/auth"
	"github.com/ecoles/schoolmanager/pkg/errors"
	"github.com/ecoles/schoolmanager/pkg/response"
)

const (
	CtxClaimsKey  = "authClaims"
	CtxUserIDKey  = "userID"
	CtxProfileKey = "profile"
)

// Auth enforces JWT authentication using the supplied JWT service.
func Auth(jwt *iauth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
			c.Header("WWW-Authenticate", "Bearer")
			response.Abort(c, errors.ErrUnauthorized)
			return
		}

		claims, err := jwt.Validate(strings.TrimSpace(authz[7:]))
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			response.Abort(c, errors.ErrUnauthorized)
			return
		}

		c.Set(CtxClaimsKey, claims)
		c.Set(CtxUserIDKey, claims.UserID)

		ctx := auditctx.WithActor(c.Request.Context(), auditctx.Actor{
			UserID:    claims.UserID,
			Username:  claims.Username,
			IPAddress: c.ClientIP(),
		})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// UserID returns the authenticated user ID, or "" when the request is anonymous.
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserIDKey)
}
