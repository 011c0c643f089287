package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ecoles/schoolmanager/internal/models"
)

func TestOpenSQLiteMemory(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite", Name: "open_memory"})
	require.NoError(t, err)
	require.NoError(t, db.Exec("SELECT 1").Error)
}

func TestOpenAppliesPool(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite", Name: "open_pool", Pool: PoolConfig{MaxOpenConns: 3}})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.Equal(t, 3, sqlDB.Stats().MaxOpenConnections)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.Error(t, err)
}

func TestAutoMigrateCreatesAuthorizationTables(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite", Name: "automigrate"})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	migrator := db.Migrator()
	for _, model := range []any{
		&models.User{},
		&models.Profile{},
		&models.Permission{},
		&models.Role{},
		&models.RoleAssignment{},
		&models.DirectGrant{},
		&models.AuditLog{},
	} {
		require.True(t, migrator.HasTable(model))
	}
	require.True(t, migrator.HasTable("role_permissions"))
	require.True(t, migrator.HasTable("direct_grant_permissions"))
	require.True(t, migrator.HasIndex(&models.Permission{}, "idx_permission_key"))
	require.True(t, migrator.HasIndex(&models.RoleAssignment{}, "idx_profile_role"))
}

func TestAutoMigrateNilHandle(t *testing.T) {
	require.Error(t, AutoMigrate(nil))
}
