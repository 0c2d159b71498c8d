package configs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv("LEGAL_API_BASE", "")
	t.Setenv("JWT_SECRET", "from-env")

	cfg := Default("development")

	assert.Equal(t, "development", cfg.Env.CurrentEnv)
	assert.Equal(t, "http://localhost:8089/api", cfg.API.BaseURL)
	assert.NotEmpty(t, cfg.API.CredentialsFile)
	assert.Equal(t, "sqlite", cfg.Stub.Driver)
	assert.Equal(t, "from-env", cfg.Stub.JWTSecret)
	assert.Equal(t, ":8089", cfg.ListenAddress())
}

func TestBaseURLEnvOverride(t *testing.T) {
	t.Setenv("LEGAL_API_BASE", "https://api.example.test/api")
	t.Setenv("LEGAL_API_TIMEOUT_SECONDS", "30")

	cfg := Default("development")

	assert.Equal(t, "https://api.example.test/api", cfg.API.BaseURL)
	assert.Equal(t, 30, cfg.API.TimeoutSeconds)
}
