package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "HS256", cfg.Algorithm)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, bcrypt.DefaultCost, cfg.BcryptCost)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, time.Hour, cfg.RevocationCleanupInterval)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("ALGORITHM", "hs512")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "45")
	t.Setenv("STORE_TIMEOUT", "750ms")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "HS512", cfg.Algorithm)
	assert.Equal(t, 45*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 750*time.Millisecond, cfg.StoreTimeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
}

func TestLoad_LegacySecretName(t *testing.T) {
	t.Setenv("SECRET_KEY", "")
	t.Setenv("JWT_SECRET_KEY", "legacy-secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "legacy-secret", cfg.SecretKey)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing secret",
			env:  map[string]string{"SECRET_KEY": "", "JWT_SECRET_KEY": ""},
		},
		{
			name: "unsupported algorithm",
			env:  map[string]string{"SECRET_KEY": "s", "ALGORITHM": "none"},
		},
		{
			name: "asymmetric algorithm",
			env:  map[string]string{"SECRET_KEY": "s", "ALGORITHM": "RS256"},
		},
		{
			name: "non-positive ttl",
			env:  map[string]string{"SECRET_KEY": "s", "ACCESS_TOKEN_EXPIRE_MINUTES": "0"},
		},
		{
			name: "bcrypt cost too high",
			env:  map[string]string{"SECRET_KEY": "s", "BCRYPT_COST": "99"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
