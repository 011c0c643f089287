package monitoring_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/ecoles/schoolmanager/internal/database/testutil"
	"github.com/ecoles/schoolmanager/internal/models"
	"github.com/ecoles/schoolmanager/internal/monitoring"
	"github.com/ecoles/schoolmanager/internal/monitoring/checks"
	"github.com/ecoles/schoolmanager/internal/permissions"
)

func TestReadinessAllUp(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	manager := monitoring.NewHealthManager(checks.Database(db, 0), checks.Redis(client, 0))
	report := manager.EvaluateReadiness(context.Background())

	require.True(t, report.Success)
	require.Equal(t, monitoring.StatusUp, report.Status)
	require.Len(t, report.Checks, 2)
	require.Equal(t, "database", report.Checks[0].Component)
	require.Equal(t, "redis", report.Checks[1].Component)
}

func TestReadinessRedisDisabled(t *testing.T) {
	report := monitoring.NewHealthManager(checks.Redis(nil, 0)).EvaluateReadiness(context.Background())
	require.True(t, report.Success)
	require.Equal(t, "redis disabled", report.Checks[0].Details)
}

func TestReadinessFailures(t *testing.T) {
	manager := monitoring.NewHealthManager(
		monitoring.NewCheck("slow", func(context.Context) monitoring.ProbeResult {
			return monitoring.ResultFromError(context.DeadlineExceeded, 0)
		}),
		monitoring.NewCheck("broken", func(context.Context) monitoring.ProbeResult {
			return monitoring.ResultFromError(errors.New("refused"), 0)
		}),
		monitoring.NewCheck("panics", func(context.Context) monitoring.ProbeResult {
			panic("kaboom")
		}),
	)

	report := manager.EvaluateReadiness(context.Background())
	require.False(t, report.Success)
	require.Equal(t, monitoring.StatusDown, report.Status)
	require.Equal(t, monitoring.StatusDegraded, report.Checks[0].Status)
	require.Equal(t, "kaboom", report.Checks[2].Details)
	require.Equal(t, "panics", report.Checks[2].Component)
}

func TestCatalogCheck(t *testing.T) {
	ctx := context.Background()
	store := permissions.NewMemoryStore()
	check := checks.Catalog(store, 0)

	missing := check.Run(ctx)
	require.Equal(t, monitoring.StatusDown, missing.Status)
	require.Contains(t, missing.Details, "init-permissions")

	_, err := permissions.Seed(ctx, store, false)
	require.NoError(t, err)
	require.Equal(t, monitoring.StatusUp, check.Run(ctx).Status)

	_, err = store.SetPermissionActive(ctx, permissions.ResourceGrades, models.ActionView, "view_grade", false)
	require.NoError(t, err)
	degraded := check.Run(ctx)
	require.Equal(t, monitoring.StatusDegraded, degraded.Status)
	require.Contains(t, degraded.Details, "catalog permissions active")

	require.Equal(t, monitoring.StatusDown, checks.Catalog(nil, 0).Run(ctx).Status)
}
