package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const defaultSQLiteName = "schoolmanager"

func sqliteDialector(cfg Config) (gorm.Dialector, error) {
	dsn, err := buildSQLiteDSN(cfg)
	if err != nil {
		return nil, err
	}
	return sqlite.Open(dsn), nil
}

// buildSQLiteDSN returns a file DSN for Path, or a named shared-cache memory database when Path
// is empty or ":memory:". Sharing the cache keeps every pooled connection on the same data.
func buildSQLiteDSN(cfg Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}

	path := strings.TrimSpace(cfg.Path)
	if path == "" || strings.EqualFold(path, ":memory:") {
		name := strings.TrimSpace(cfg.Name)
		if name == "" {
			name = defaultSQLiteName
		}
		return fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name), nil
	}

	if err := ensureDir(path); err != nil {
		return "", fmt.Errorf("create sqlite directory: %w", err)
	}
	// The maintenance jobs write concurrently with requests; WAL plus a busy timeout avoids
	// spurious "database is locked" errors.
	return fmt.Sprintf("file:%s?_foreign_keys=1&_journal_mode=WAL&_busy_timeout=5000", filepath.ToSlash(path)), nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func enableForeignKeys(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil && !errors.Is(err, sql.ErrConnDone) {
		return err
	}
	return nil
}
