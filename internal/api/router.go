package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/ecoles/schoolmanager/internal/app"
	iauth "github.com/ecoles/schoolmanager/internal/auth"
	"github.com/ecoles/schoolmanager/internal/handlers"
	"github.com/ecoles/schoolmanager/internal/middleware"
	"github.com/ecoles/schoolmanager/internal/monitoring"
	"github.com/ecoles/schoolmanager/internal/monitoring/checks"
	"github.com/ecoles/schoolmanager/internal/permissions"
	"github.com/ecoles/schoolmanager/internal/security"
	"github.com/ecoles/schoolmanager/internal/services"
)

// Dependencies carries what the router needs from the process bootstrap.
type Dependencies struct {
	DB     *gorm.DB
	JWT    *iauth.JWTService
	Config *app.Config
	// RateStore backs the request limiter; nil disables it.
	RateStore middleware.RateStore
	// Redis is probed by the readiness endpoint when set.
	Redis redis.UniversalClient
}

// NewRouter builds the Gin engine, wires middleware and registers the API routes.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	if deps.DB == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if deps.JWT == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if deps.Config == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	cfg := deps.Config

	store, err := permissions.NewGormStore(deps.DB)
	if err != nil {
		return nil, err
	}
	resolver, err := permissions.NewResolver(store)
	if err != nil {
		return nil, err
	}
	guard, err := permissions.NewGuard(resolver, store)
	if err != nil {
		return nil, err
	}

	auditSvc, err := services.NewAuditService(deps.DB)
	if err != nil {
		return nil, err
	}
	permSvc, err := services.NewPermissionService(store, resolver, auditSvc)
	if err != nil {
		return nil, err
	}
	userSvc, err := services.NewUserService(deps.DB, auditSvc)
	if err != nil {
		return nil, err
	}
	access, err := services.NewProfileAccess(resolver)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{Production: cfg.Server.Production}))
	r.Use(middleware.RateLimit(deps.RateStore, cfg.Server.RateLimit.Requests, cfg.Server.RateLimit.Window))
	r.NoRoute(middleware.NotFoundHandler)

	health := monitoring.NewHealthManager(
		checks.Database(deps.DB, 0),
		checks.Redis(deps.Redis, cfg.Cache.Redis.Timeout),
		checks.Catalog(store, 0),
	)
	registerHealthRoutes(r, health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler := handlers.NewAuthHandler(userSvc, deps.JWT)
	r.POST("/api/auth/login", authHandler.Login)

	api := r.Group("/api")
	api.Use(middleware.Auth(deps.JWT))

	api.GET("/auth/me", authHandler.Me)

	permHandler := handlers.NewPermissionHandler(permSvc)
	registerPermissionRoutes(api, permHandler, guard)
	registerProfileRoutes(api, handlers.NewProfileHandler(store, userSvc, access), permHandler, guard)
	registerAuditRoutes(api, handlers.NewAuditHandler(auditSvc), guard)

	reviewer := security.NewReviewer(deps.DB, deps.JWT, security.Options{Production: cfg.Server.Production})
	registerSecurityRoutes(api, handlers.NewSecurityHandler(reviewer), guard)

	return r, nil
}

// administrators accept either permission that the role screens are gated on.
func administrators(guard *permissions.Guard) gin.HandlerFunc {
	return middleware.RequireAnyPermission(guard,
		permissions.Require(permissions.PermAssignRolePermissions, permissions.ResourceConfig),
		permissions.Require(permissions.PermManagePermissions, permissions.ResourceConfig),
	)
}
