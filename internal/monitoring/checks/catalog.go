package checks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ecoles/schoolmanager/internal/models"
	"github.com/ecoles/schoolmanager/internal/monitoring"
	"github.com/ecoles/schoolmanager/internal/permissions"
)

// CatalogReader is the part of the permission store the catalog probe reads.
type CatalogReader interface {
	ListPermissions(ctx context.Context, activeOnly bool) ([]models.Permission, error)
	FindRole(ctx context.Context, codename string) (*models.Role, error)
}

// Catalog reports down when the admin role is missing and degraded when fewer active
// permissions are registered than the built-in catalog defines.
func Catalog(store CatalogReader, timeout time.Duration) monitoring.Check {
	return monitoring.NewCheck("permission_catalog", func(ctx context.Context) monitoring.ProbeResult {
		start := time.Now()
		if store == nil {
			return monitoring.ProbeResult{Status: monitoring.StatusDown, Details: "permission store not configured"}
		}

		probeCtx, cancel := context.WithTimeout(ctx, chooseTimeout(timeout))
		defer cancel()

		if _, err := store.FindRole(probeCtx, models.RoleAdmin); err != nil {
			result := monitoring.ResultFromError(err, time.Since(start))
			if errors.Is(err, permissions.ErrRoleNotFound) {
				result.Details = "admin role missing; run init-permissions"
			}
			return result
		}

		perms, err := store.ListPermissions(probeCtx, true)
		if err != nil {
			return monitoring.ResultFromError(err, time.Since(start))
		}

		want := len(permissions.CatalogPermissions)
		if len(perms) < want {
			return monitoring.ProbeResult{
				Status:   monitoring.StatusDegraded,
				Details:  fmt.Sprintf("%d of %d catalog permissions active", len(perms), want),
				Duration: time.Since(start),
			}
		}
		return monitoring.ProbeResult{Status: monitoring.StatusUp, Duration: time.Since(start)}
	})
}
