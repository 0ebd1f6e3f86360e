package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{
		"SERVER_PORT", "DB_SSLMODE", "REDIS_URL", "LOG_LEVEL", "PUSH_PROVIDER",
		"REVIEW_SUMMARY_TTL", "WORKER_COUNT", "STOREFRONT_API_URL", "ROLLBACK_ON_FAILURE",
	} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "require", cfg.DBSSLMode)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, PushProviderExpo, cfg.PushProvider)
	assert.Equal(t, 10*time.Minute, cfg.ReviewSummaryTTL)
	assert.Equal(t, 2, cfg.WorkerCount)
	assert.Equal(t, "http://localhost:8080", cfg.StorefrontAPIURL)
	assert.True(t, cfg.RollbackOnFailure)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("PUSH_PROVIDER", "fcm")
	t.Setenv("REVIEW_SUMMARY_TTL", "30")
	t.Setenv("WORKER_COUNT", "4")
	t.Setenv("ROLLBACK_ON_FAILURE", "false")
	t.Setenv("STOREFRONT_API_URL", "https://api.example.com")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, PushProviderFCM, cfg.PushProvider)
	assert.Equal(t, 30*time.Second, cfg.ReviewSummaryTTL)
	assert.Equal(t, 4, cfg.WorkerCount)
	assert.False(t, cfg.RollbackOnFailure)
	assert.Equal(t, "https://api.example.com", cfg.StorefrontAPIURL)
}

func TestLoadConfig_UnknownPushProviderFallsBackToExpo(t *testing.T) {
	t.Setenv("PUSH_PROVIDER", "apns")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, PushProviderExpo, cfg.PushProvider)
}
