package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"

	"github.com/ecoles/schoolmanager/pkg/logger"
)

// DefaultContentSecurityPolicy restricts resources to same origin.
const DefaultContentSecurityPolicy = "default-src 'self'"

// SecurityOptions toggles the transport-dependent headers.
type SecurityOptions struct {
	// Production enables HSTS and HTTPS redirects.
	Production bool
}

// SecurityHeaders applies hardening headers through unrolled/secure.
func SecurityHeaders(opts SecurityOptions) gin.HandlerFunc {
	sec := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "no-referrer",
		PermissionsPolicy:     "geolocation=(), microphone=(), camera=()",
		ContentSecurityPolicy: DefaultContentSecurityPolicy,
		STSSeconds:            31536000,
		STSIncludeSubdomains:  true,
		SSLRedirect:           opts.Production,
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:         !opts.Production,
	})

	return func(c *gin.Context) {
		// Process has already written the redirect or rejection when it errors.
		if err := sec.Process(c.Writer, c.Request); err != nil {
			logger.WithModule("http").Debug("secure middleware stopped request", zap.Error(err))
			c.Abort()
			return
		}
		c.Next()
	}
}
