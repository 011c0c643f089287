package database

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ecoles/schoolmanager/pkg/logger"
)

// Config contains database connection options.
type Config struct {
	Driver   string
	Path     string // SQLite database path when Driver == sqlite
	DSN      string // Optional DSN override
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	Options  map[string]string

	Pool PoolConfig
	// SlowQueryThreshold logs statements slower than this at warn level. Zero disables it.
	SlowQueryThreshold time.Duration
}

// PoolConfig bounds the underlying sql.DB pool. Zero values keep database/sql defaults.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open initialises a gorm.DB using the provided configuration.
func Open(cfg Config) (*gorm.DB, error) {
	driver := normaliseDriver(cfg.Driver)

	var (
		dialector gorm.Dialector
		err       error
	)
	switch driver {
	case "sqlite":
		dialector, err = sqliteDialector(cfg)
	case "postgres":
		dialector, err = postgresDialector(cfg)
	case "mysql":
		dialector, err = mysqlDialector(cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         NewGormLogger(logger.WithModule("database"), cfg.SlowQueryThreshold),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if err := applyPool(db, cfg.Pool); err != nil {
		return nil, err
	}

	if driver == "sqlite" {
		if err := enableForeignKeys(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

func normaliseDriver(driver string) string {
	switch d := strings.ToLower(strings.TrimSpace(driver)); d {
	case "", "sqlite", "sqlite3":
		return "sqlite"
	case "postgres", "postgresql":
		return "postgres"
	case "mysql", "mariadb":
		return "mysql"
	default:
		return d
	}
}

func applyPool(db *gorm.DB, pool PoolConfig) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}
	return nil
}
