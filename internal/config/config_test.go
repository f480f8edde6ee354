package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, 10, cfg.MessageRateLimit)
	assert.Equal(t, 10000, cfg.MaxConnections)
	assert.Equal(t, 32, cfg.MaxConnectionsPerIP)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("HEARTBEAT_INTERVAL", "5s")
	t.Setenv("MESSAGE_RATE_LIMIT", "3")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, 3, cfg.MessageRateLimit)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"zero heartbeat", "HEARTBEAT_INTERVAL", "0s"},
		{"negative heartbeat", "HEARTBEAT_INTERVAL", "-10s"},
		{"zero rate limit", "MESSAGE_RATE_LIMIT", "0"},
		{"zero max connections", "MAX_CONNECTIONS", "0"},
		{"zero per-ip max", "MAX_CONNECTIONS_PER_IP", "0"},
		{"zero connection rate", "CONNECTION_RATE_PER_SECOND", "0"},
		{"zero burst", "CONNECTION_BURST", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
		})
	}
}
