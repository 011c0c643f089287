package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ecoles/schoolmanager/internal/services"
	"github.com/ecoles/schoolmanager/pkg/logger"
)

const (
	defaultAuditRetentionDays = 90
	defaultAuditSpec          = "@daily"
	defaultGrantSpec          = "@hourly"
)

// GrantPruner deactivates direct grant records left without permissions.
type GrantPruner interface {
	DeactivateEmptyDirectGrants(ctx context.Context) (int64, error)
}

// Cleaner coordinates background maintenance: pruning stale audit logs and retiring empty
// direct grant records.
type Cleaner struct {
	grants    GrantPruner
	audit     *services.AuditService
	cron      *cron.Cron
	log       *zap.Logger
	retention int

	auditSchedule string
	grantSchedule string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithAuditRetentionDays adjusts how long audit logs are retained before cleanup.
func WithAuditRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.retention = days
		}
	}
}

// WithAuditSchedule overrides the cron specification for audit retention enforcement.
func WithAuditSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.auditSchedule = spec
		}
	}
}

// WithGrantSchedule overrides the cron specification for direct grant pruning.
func WithGrantSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.grantSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner. A nil dependency skips the corresponding job.
func NewCleaner(grants GrantPruner, audit *services.AuditService, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		grants:        grants,
		audit:         audit,
		retention:     defaultAuditRetentionDays,
		auditSchedule: defaultAuditSpec,
		grantSchedule: defaultGrantSpec,
		log:           logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return cleaner
}

// Start registers the jobs with the scheduler and launches it.
func (c *Cleaner) Start() error {
	if c.grants == nil && c.audit == nil {
		return nil
	}

	if c.audit != nil {
		if _, err := c.cron.AddFunc(c.auditSchedule, func() {
			if err := c.cleanupAudit(context.Background()); err != nil {
				c.log.Warn("audit cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	if c.grants != nil {
		if _, err := c.cron.AddFunc(c.grantSchedule, func() {
			if err := c.pruneGrants(context.Background()); err != nil {
				c.log.Warn("direct grant pruning failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	c.cron.Start()
	return nil
}

// Stop halts the scheduler. The returned context is done once running jobs complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes every configured job sequentially and combines their failures.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error
	if c.audit != nil {
		errs = multierr.Append(errs, c.cleanupAudit(ctx))
	}
	if c.grants != nil {
		errs = multierr.Append(errs, c.pruneGrants(ctx))
	}
	return errs
}

func (c *Cleaner) cleanupAudit(ctx context.Context) error {
	start := time.Now()
	removed, err := c.audit.CleanupOlderThan(ctx, c.retention)
	if err != nil {
		return err
	}
	c.log.Info("audit logs pruned",
		zap.Int64("removed", removed),
		zap.Int("retention_days", c.retention),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

func (c *Cleaner) pruneGrants(ctx context.Context) error {
	deactivated, err := c.grants.DeactivateEmptyDirectGrants(ctx)
	if err != nil {
		return err
	}
	if deactivated > 0 {
		c.log.Info("empty direct grants deactivated", zap.Int64("count", deactivated))
	}
	return nil
}
