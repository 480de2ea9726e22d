package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "")
	t.Setenv("APP_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)
	assert.Equal(t, 24*60, cfg.Auth.AccessTokenTTLMinutes)
	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	assert.Equal(t, "grievance.events", cfg.Redis.EventsChannel)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "cassandra")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadFallsBackOnMalformedNumbers(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("AUTH_BCRYPT_COST", "lots")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Zero(t, cfg.App.RequestTimeout())
	assert.False(t, RedisConfig{}.Enabled())
}

func TestJWTSecretFallbackOnlyInDevelopment(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("AUTH_JWT_SECRET", "")

	t.Setenv("APP_ENV", "development")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dev-secret", cfg.Auth.JWTSecret)

	t.Setenv("APP_ENV", "production")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.Auth.JWTSecret)
}
