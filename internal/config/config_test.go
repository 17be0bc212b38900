package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validAuth() AuthConfig {
	return AuthConfig{
		AccessSecret:           "access-secret",
		RefreshSecret:          "refresh-secret",
		Algorithm:              "HS256",
		AccessTokenTTLMinutes:  30,
		RefreshTokenTTLMinutes: 60,
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("AUTH_ACCESS_SECRET", "a")
	t.Setenv("AUTH_REFRESH_SECRET", "b")
	t.Setenv("AUTH_ALGORITHM", "")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "")
	t.Setenv("AUTH_REFRESH_TOKEN_TTL_MINUTES", "")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("USER_CACHE_TTL_SECONDS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "HS256", cfg.Auth.Algorithm)
	assert.Equal(t, 30*time.Minute, cfg.Auth.AccessTTL())
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTTL())
	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	assert.Zero(t, cfg.Redis.UserCacheTTL(), "user cache must be opt-in")
}

func TestLoadNormalizesAlgorithmCase(t *testing.T) {
	t.Setenv("AUTH_ACCESS_SECRET", "a")
	t.Setenv("AUTH_REFRESH_SECRET", "b")
	t.Setenv("AUTH_ALGORITHM", "hs512")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "HS512", cfg.Auth.Algorithm)
}

func TestLoadRejectsMissingSecrets(t *testing.T) {
	t.Setenv("AUTH_ACCESS_SECRET", "")
	t.Setenv("AUTH_REFRESH_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestAuthConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AuthConfig)
	}{
		{"shared secret", func(a *AuthConfig) { a.RefreshSecret = a.AccessSecret }},
		{"missing refresh secret", func(a *AuthConfig) { a.RefreshSecret = "" }},
		{"asymmetric algorithm", func(a *AuthConfig) { a.Algorithm = "RS256" }},
		{"none algorithm", func(a *AuthConfig) { a.Algorithm = "none" }},
		{"zero access lifetime", func(a *AuthConfig) { a.AccessTokenTTLMinutes = 0 }},
		{"negative refresh lifetime", func(a *AuthConfig) { a.RefreshTokenTTLMinutes = -1 }},
	}

	require.NoError(t, validAuth().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validAuth()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestRequestTimeoutDisabledWhenNonPositive(t *testing.T) {
	assert.Zero(t, AppConfig{RequestTimeoutSeconds: 0}.RequestTimeout())
	assert.Equal(t, 5*time.Second, AppConfig{RequestTimeoutSeconds: 5}.RequestTimeout())
	assert.Zero(t, RedisConfig{}.UserCacheTTL())
}
