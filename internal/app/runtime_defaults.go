package app

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const (
	jwtSecretBytes = 48
	// MinProductionSecretLength is the shortest JWT secret accepted when server.production is set.
	MinProductionSecretLength = 32
)

// ErrWeakSecret is returned when a production deployment lacks a usable JWT secret.
var ErrWeakSecret = errors.New("auth.jwt.secret must be configured with at least 32 characters in production")

// ApplyRuntimeDefaults fills secrets missing from configuration. Outside production an empty JWT
// secret is generated so tokens last until restart; production refuses to start instead, since
// replicas would not share it. The returned map names generated keys without exposing values.
func ApplyRuntimeDefaults(cfg *Config) (map[string]bool, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	generated := make(map[string]bool)
	secret := strings.TrimSpace(cfg.Auth.JWT.Secret)

	if cfg.Server.Production {
		if len(secret) < MinProductionSecretLength {
			return nil, ErrWeakSecret
		}
		return generated, nil
	}

	if secret == "" {
		value, err := generateHexKey(jwtSecretBytes)
		if err != nil {
			return nil, fmt.Errorf("generate jwt secret: %w", err)
		}
		cfg.Auth.JWT.Secret = value
		generated["auth.jwt.secret"] = true
	}

	if strings.TrimSpace(cfg.Auth.JWT.Issuer) == "" {
		cfg.Auth.JWT.Issuer = "schoolmanager"
	}

	return generated, nil
}

func generateHexKey(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be positive")
	}
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
