package handlers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	appValidator "github.com/ecoles/schoolmanager/pkg/validator"
)

type roleRequest struct {
	Codename string `json:"codename" validate:"required,codename"`
	Kind     string `json:"kind" validate:"omitempty,oneof=system custom"`
}

func TestValidationErrorDetails(t *testing.T) {
	err := appValidator.ValidateStruct(&roleRequest{Codename: "Bad Name", Kind: "guest"})
	require.Error(t, err)

	appErr := validationError(err)
	require.Equal(t, 400, appErr.StatusCode)
	require.Equal(t, "codename must be lower snake case; kind must be one of: system custom", appErr.Message)

	fields := appErr.Details["fields"].(map[string]any)
	require.Equal(t, "must be lower snake case", fields["codename"])
	require.Equal(t, "must be one of: system custom", fields["kind"])
}

func TestValidationErrorFallback(t *testing.T) {
	appErr := validationError(errors.New("reflect failure"))
	require.Equal(t, "invalid request payload", appErr.Message)
	require.Empty(t, appErr.Details)
}
