package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ecoles/schoolmanager/internal/handlers/testutil"
)

func TestHealthEndpoints(t *testing.T) {
	env := testutil.NewEnv(t)

	live := env.Request(http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, live.Code)

	ready := env.Request(http.MethodGet, "/health/ready", nil, "")
	require.Equal(t, http.StatusOK, ready.Code, ready.Body.String())
	require.Contains(t, ready.Body.String(), `"component":"database"`)
	require.Contains(t, ready.Body.String(), `"component":"permission_catalog"`)

	metrics := env.Request(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, metrics.Code)
	require.Contains(t, metrics.Body.String(), "go_goroutines")

	missing := env.Request(http.MethodGet, "/nowhere", nil, "")
	require.Equal(t, http.StatusNotFound, missing.Code)
}

func TestAuditEndpoint(t *testing.T) {
	env := testutil.NewEnv(t)
	admin := env.CreateUser("staff", "admin")
	student := env.CreateUser("student", "student")

	w := env.Request(http.MethodGet, "/api/audit?action=user.create", nil, env.Token(admin))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var logs []map[string]any
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &logs)
	require.Len(t, logs, 2)

	bad := env.Request(http.MethodGet, "/api/audit?since=yesterday", nil, env.Token(admin))
	require.Equal(t, http.StatusBadRequest, bad.Code)

	denied := env.Request(http.MethodGet, "/api/audit", nil, env.Token(student))
	require.Equal(t, http.StatusForbidden, denied.Code)

	summary := env.Request(http.MethodGet, "/api/audit/summary?hours=1", nil, env.Token(admin))
	require.Equal(t, http.StatusOK, summary.Code, summary.Body.String())
	var actions []struct {
		Action  string `json:"action"`
		Success int64  `json:"success"`
	}
	testutil.DecodeInto(t, testutil.DecodeResponse(t, summary).Data, &actions)
	require.NotEmpty(t, actions)
	require.Equal(t, "user.create", actions[0].Action)
	require.EqualValues(t, 2, actions[0].Success)

	badHours := env.Request(http.MethodGet, "/api/audit/summary?hours=0", nil, env.Token(admin))
	require.Equal(t, http.StatusBadRequest, badHours.Code)
}

func TestSecurityAuditEndpoint(t *testing.T) {
	env := testutil.NewEnv(t)
	admin := env.CreateUser("staff", "admin")
	teacher := env.CreateUser("teacher", "teacher")

	w := env.Request(http.MethodGet, "/api/security/audit", nil, env.Token(admin))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result struct {
		Checks []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"checks"`
	}
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &result)
	require.NotEmpty(t, result.Checks)

	statuses := make(map[string]string, len(result.Checks))
	for _, check := range result.Checks {
		statuses[check.ID] = check.Status
	}
	require.Equal(t, "pass", statuses["administrator_assigned"])

	denied := env.Request(http.MethodGet, "/api/security/audit", nil, env.Token(teacher))
	require.Equal(t, http.StatusForbidden, denied.Code)
}
