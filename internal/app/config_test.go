package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromFile(t *testing.T) {
	cfg, err := LoadConfig("testdata")
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, 20, cfg.Server.RateLimit.Requests)
	require.Equal(t, 30*time.Second, cfg.Server.RateLimit.Window)

	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "db.example.com", cfg.Database.Postgres.Host)
	require.Equal(t, 20, cfg.Database.MaxOpenConns)
	require.Equal(t, time.Second, cfg.Database.SlowQueryThreshold)

	require.True(t, cfg.Cache.Redis.Enabled)
	require.Equal(t, 2*time.Second, cfg.Cache.Redis.Timeout)

	require.Equal(t, "jwt-secret", cfg.Auth.JWT.Secret)
	require.Equal(t, 30*time.Minute, cfg.Auth.JWT.TTL)

	require.True(t, cfg.Bootstrap.SeedPermissions)
	require.True(t, cfg.Bootstrap.ForceUpdate)

	require.Equal(t, 30, cfg.Maintenance.AuditRetentionDays)
	require.Equal(t, "@daily", cfg.Maintenance.AuditSchedule)
	require.Equal(t, "@every 10m", cfg.Maintenance.GrantSchedule)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, 100, cfg.Server.RateLimit.Requests)
	require.Equal(t, time.Minute, cfg.Server.RateLimit.Window)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, 200*time.Millisecond, cfg.Database.SlowQueryThreshold)
	require.False(t, cfg.Cache.Redis.Enabled)
	require.Equal(t, 15*time.Minute, cfg.Auth.JWT.TTL)
	require.True(t, cfg.Bootstrap.SeedPermissions)
	require.Equal(t, 90, cfg.Maintenance.AuditRetentionDays)
}

func TestLoadConfigEnvironmentOverride(t *testing.T) {
	t.Setenv("SCHOOLMANAGER_SERVER_PORT", "7070")
	t.Setenv("SCHOOLMANAGER_AUTH_JWT_SECRET", "from-env")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, 7070, cfg.Server.Port)
	require.Equal(t, "from-env", cfg.Auth.JWT.Secret)
}

func TestDatabaseConnectionConfig(t *testing.T) {
	cfg := DatabaseConfig{
		Driver:   "Postgres",
		Postgres: DBAuthConfig{Host: "db", Port: 5432, Database: "school", Username: "u", Password: "p"},
		MySQL:    DBAuthConfig{Host: "other"},
	}
	conn := cfg.ConnectionConfig()
	require.Equal(t, "postgres", conn.Driver)
	require.Equal(t, "db", conn.Host)
	require.Equal(t, "school", conn.Name)

	sqlite := DatabaseConfig{Driver: "sqlite", Path: "/tmp/x.db"}.ConnectionConfig()
	require.Equal(t, "/tmp/x.db", sqlite.Path)
	require.Zero(t, sqlite.Pool.MaxOpenConns)

	pooled := DatabaseConfig{Driver: "mysql", MaxOpenConns: 8, ConnMaxLifetime: time.Hour, SlowQueryThreshold: time.Second}.ConnectionConfig()
	require.Equal(t, 8, pooled.Pool.MaxOpenConns)
	require.Equal(t, time.Hour, pooled.Pool.ConnMaxLifetime)
	require.Equal(t, time.Second, pooled.SlowQueryThreshold)
	require.Empty(t, sqlite.Host)
}
