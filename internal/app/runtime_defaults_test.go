package app

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyRuntimeDefaultsGeneratesSecret(t *testing.T) {
	cfg := &Config{}
	generated, err := ApplyRuntimeDefaults(cfg)
	require.NoError(t, err)
	require.True(t, generated["auth.jwt.secret"])
	require.Len(t, cfg.Auth.JWT.Secret, jwtSecretBytes*2)
}

func TestApplyRuntimeDefaultsKeepsConfiguredSecret(t *testing.T) {
	cfg := &Config{Auth: AuthConfig{JWT: JWTSettings{Secret: "configured"}}}
	generated, err := ApplyRuntimeDefaults(cfg)
	require.NoError(t, err)
	require.Empty(t, generated)
	require.Equal(t, "configured", cfg.Auth.JWT.Secret)
}

func TestApplyRuntimeDefaultsNilConfig(t *testing.T) {
	_, err := ApplyRuntimeDefaults(nil)
	require.Error(t, err)
}

func TestApplyRuntimeDefaultsProductionRequiresSecret(t *testing.T) {
	cfg := &Config{Server: ServerConfig{Production: true}}
	_, err := ApplyRuntimeDefaults(cfg)
	require.ErrorIs(t, err, ErrWeakSecret)
	require.Empty(t, cfg.Auth.JWT.Secret)

	cfg.Auth.JWT.Secret = "too-short"
	_, err = ApplyRuntimeDefaults(cfg)
	require.ErrorIs(t, err, ErrWeakSecret)

	cfg.Auth.JWT.Secret = "0123456789abcdef0123456789abcdef"
	generated, err := ApplyRuntimeDefaults(cfg)
	require.NoError(t, err)
	require.Empty(t, generated)
}

func TestApplyRuntimeDefaultsFillsIssuer(t *testing.T) {
	cfg := &Config{Auth: AuthConfig{JWT: JWTSettings{Secret: "configured"}}}
	_, err := ApplyRuntimeDefaults(cfg)
	require.NoError(t, err)
	require.Equal(t, "schoolmanager", cfg.Auth.JWT.Issuer)
}
