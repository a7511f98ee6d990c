package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("APP_PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, "gemini-2.5-flash", cfg.Model.Name)
	assert.False(t, cfg.Model.Enabled())
	assert.Equal(t, 50, cfg.Labeler.BatchSize)
	assert.Equal(t, 20, cfg.Labeler.DailyCallCap)
	assert.Equal(t, 13*time.Second, cfg.Labeler.CallInterval())
	assert.Equal(t, 30, cfg.Data.ExampleCount)
	assert.Equal(t, uint64(42), cfg.Data.ExampleSeed)
	assert.Equal(t, 5*time.Minute, cfg.App.MetricsLogInterval())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("GEMINI_MODEL", "gemini-x")
	t.Setenv("LABELER_SECONDS_BETWEEN_CALLS", "0.5")
	t.Setenv("CACHE_TTL_SECONDS", "0")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "not-a-number")
	t.Setenv("METRICS_LOG_INTERVAL_SECONDS", "-1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Model.Enabled())
	assert.Equal(t, "gemini-x", cfg.Model.Name)
	assert.Equal(t, 500*time.Millisecond, cfg.Labeler.CallInterval())
	assert.Zero(t, cfg.Cache.TTL())
	assert.Equal(t, 60*time.Second, cfg.App.RequestTimeout())
	assert.Zero(t, cfg.App.MetricsLogInterval())
}

func TestLoadRejectsBadTemperature(t *testing.T) {
	t.Setenv("GEMINI_TEMPERATURE", "warm")

	_, err := Load()
	assert.Error(t, err)
}
