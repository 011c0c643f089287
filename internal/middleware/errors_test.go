package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ecoles/schoolmanager/internal/permissions"
	apperrors "github.com/ecoles/schoolmanager/pkg/errors"
)

func TestTranslateError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unauthenticated", permissions.ErrAuthenticationRequired, http.StatusUnauthorized, "AUTHENTICATION_REQUIRED"},
		{"no profile", permissions.ErrProfileNotFound, http.StatusForbidden, "PROFILE_NOT_FOUND"},
		{"denied", &permissions.PermissionDeniedError{Codename: "edit_grade", Resource: "grades"}, http.StatusForbidden, "FORBIDDEN"},
		{"ambiguous", fmt.Errorf("resolve: %w", permissions.ErrAmbiguousPermission), http.StatusBadRequest, "AMBIGUOUS_PERMISSION"},
		{"invalid", permissions.ErrInvalidDefinition, http.StatusBadRequest, "INVALID_DEFINITION"},
		{"role missing", permissions.ErrRoleNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"app error", apperrors.ErrConflict, http.StatusConflict, apperrors.ErrConflict.Code},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, apperrors.ErrInternalServer.Code},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := TranslateError(tc.err)
			require.Equal(t, tc.status, got.StatusCode)
			require.Equal(t, tc.code, got.Code)
		})
	}

	require.Nil(t, TranslateError(nil))
}
