package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records login attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schoolmanager_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// PermissionChecks counts guarded permission evaluations by codename, resource and outcome
	// (allowed|denied|error).
	PermissionChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schoolmanager_permission_checks_total",
			Help: "Total number of permission checks",
		},
		[]string{"permission", "resource", "result"},
	)

	// GrantMutations counts writes to role assignments, direct grants and role permission sets.
	GrantMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schoolmanager_grant_mutations_total",
			Help: "Total number of authorization data mutations",
		},
		[]string{"operation"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "schoolmanager_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
