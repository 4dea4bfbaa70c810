package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_DevelopmentAcceptsDefaults(t *testing.T) {
	cfg := &Config{Env: "development", IdentityJWTSecret: DefaultIdentitySecret, AllowedOrigins: []string{"*"}}
	assert.NoError(t, cfg.Validate())
}

func TestValidate_ProductionRejectsDefaultSecret(t *testing.T) {
	cfg := &Config{Env: "production", IdentityJWTSecret: DefaultIdentitySecret}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IDENTITY_JWT_SECRET")

	cfg.IdentityJWTSecret = ""
	assert.Error(t, cfg.Validate())

	cfg.IdentityJWTSecret = "a-real-secret"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_ProductionRejectsWildcardOrigin(t *testing.T) {
	cfg := &Config{Env: "production", IdentityJWTSecret: "a-real-secret", AllowedOrigins: []string{"https://app.example.com", "*"}}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CORS_ALLOWED_ORIGINS")
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("SMARTRFQ_TEST_ORIGINS", " https://a.example.com, ,https://b.example.com ")
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, getEnvList("SMARTRFQ_TEST_ORIGINS", nil))
	assert.Equal(t, []string{"x"}, getEnvList("SMARTRFQ_TEST_UNSET", []string{"x"}))
}
