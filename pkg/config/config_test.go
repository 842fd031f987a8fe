package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "mongo", cfg.Store.Driver)
	assert.Equal(t, "social-media", cfg.Mongo.Database)
	assert.Equal(t, 168*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, int64(5<<20), cfg.Upload.MaxBytes)
	assert.Equal(t, []string{"*"}, cfg.CORS.Origins)
	assert.Equal(t, "local", cfg.Storage.Driver)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("MONGO_TRANSACTIONS", "true")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("STORAGE_LOCAL_DIR", "/tmp/uploads")
	t.Setenv("RATELIMIT_AUTH_BURST", "3")
	t.Setenv("CORS_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.True(t, cfg.Mongo.Transactions)
	assert.Equal(t, 2*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, "/tmp/uploads", cfg.Storage.LocalDir)
	assert.Equal(t, 3, cfg.RateLimit.AuthBurst)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.Origins)
}

func TestLoad_RejectsDevSecretInProduction(t *testing.T) {
	t.Setenv("ENV", "production")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "a-real-secret")
	_, err = Load()
	assert.NoError(t, err)
}

func TestValidate_Drivers(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Store.Driver = "sqlite"
	assert.Error(t, cfg.Validate())

	cfg.Store.Driver = "memory"
	cfg.Storage.Driver = "s3"
	assert.Error(t, cfg.Validate())

	cfg.Storage.Bucket = "media"
	assert.NoError(t, cfg.Validate())
}

func TestBodyLimit(t *testing.T) {
	cfg := &Config{}
	cfg.Upload.MaxBytes = 5 << 20
	assert.Equal(t, "6144K", cfg.BodyLimit())
}
