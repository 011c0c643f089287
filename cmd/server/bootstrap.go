package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ecoles/schoolmanager/internal/api"
	"github.com/ecoles/schoolmanager/internal/app"
	"github.com/ecoles/schoolmanager/internal/app/maintenance"
	iauth "github.com/ecoles/schoolmanager/internal/auth"
	"github.com/ecoles/schoolmanager/internal/cache"
	"github.com/ecoles/schoolmanager/internal/database"
	"github.com/ecoles/schoolmanager/internal/middleware"
	"github.com/ecoles/schoolmanager/internal/permissions"
	"github.com/ecoles/schoolmanager/internal/services"
	"github.com/ecoles/schoolmanager/pkg/logger"
)

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB        *gorm.DB
	Redis     *redis.Client
	Cleaner   *maintenance.Cleaner
	RateStore middleware.RateStore
	Router    *gin.Engine

	stopRates context.CancelFunc
}

// bootstrapRuntime initialises the database, cache, maintenance jobs and the HTTP router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(context.Background(), log)
		}
	}()

	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	store, err := permissions.NewGormStore(stack.DB)
	if err != nil {
		return nil, err
	}

	if cfg.Bootstrap.SeedPermissions {
		if _, err := permissions.Seed(ctx, store, cfg.Bootstrap.ForceUpdate); err != nil {
			return nil, err
		}
	}

	if cfg.Cache.Redis.Enabled {
		if stack.Redis, err = cache.NewRedisClient(ctx, cfg.Cache.RedisClientConfig()); err != nil {
			log.Warn("redis unavailable; falling back to in-memory rate limiting", zap.Error(err))
			stack.Redis = nil
		} else {
			log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Address))
		}
	}

	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise jwt service: %w", err)
	}

	auditSvc, err := services.NewAuditService(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise audit service: %w", err)
	}

	stack.Cleaner = maintenance.NewCleaner(store, auditSvc,
		maintenance.WithAuditRetentionDays(cfg.Maintenance.AuditRetentionDays),
		maintenance.WithAuditSchedule(cfg.Maintenance.AuditSchedule),
		maintenance.WithGrantSchedule(cfg.Maintenance.GrantSchedule),
	)
	if err := stack.Cleaner.Start(); err != nil {
		return nil, fmt.Errorf("start maintenance jobs: %w", err)
	}

	var rateCtx context.Context
	rateCtx, stack.stopRates = context.WithCancel(context.Background())
	stack.RateStore = middleware.NewMemoryRateStore(rateCtx)
	if stack.Redis != nil {
		redisStore, err := cache.NewRedisStore(stack.Redis)
		if err != nil {
			return nil, err
		}
		stack.RateStore = middleware.NewCacheRateStore(redisStore)
	}

	deps := api.Dependencies{
		DB:        stack.DB,
		JWT:       jwtSvc,
		Config:    cfg,
		RateStore: stack.RateStore,
	}
	if stack.Redis != nil {
		deps.Redis = stack.Redis
	}
	stack.Router, err = api.NewRouter(deps)
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// Shutdown stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Cleaner != nil {
		<-s.Cleaner.Stop().Done()
	}

	if s.stopRates != nil {
		s.stopRates()
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.Warn("redis shutdown", zap.Error(err))
		}
	}

	if s.DB != nil {
		closeDatabase(s.DB, log)
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.ConnectionConfig()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	logger.WithModule("database").Info("database connected", zap.String("driver", dbCfg.Driver))
	return db, nil
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("failed to obtain underlying sql DB for closing", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
