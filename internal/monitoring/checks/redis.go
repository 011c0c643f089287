package checks

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ecoles/schoolmanager/internal/monitoring"
)

// Redis probes the rate-limit backend. A nil client means Redis is disabled and the process
// falls back to in-memory counters, which is reported as up.
func Redis(client redis.UniversalClient, timeout time.Duration) monitoring.Check {
	return monitoring.NewCheck("redis", func(ctx context.Context) monitoring.ProbeResult {
		if client == nil {
			return monitoring.ProbeResult{Status: monitoring.StatusUp, Details: "redis disabled"}
		}

		start := time.Now()
		probeCtx, cancel := context.WithTimeout(ctx, chooseTimeout(timeout))
		defer cancel()

		return monitoring.ResultFromError(client.Ping(probeCtx).Err(), time.Since(start))
	})
}
