package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("UPSTREAM_URL", "")
	t.Setenv("UPSTREAM_API_KEY", "")
	t.Setenv("UPSTREAM_TIMEOUT", "")
	t.Setenv("STREAM_ERROR_FRAME", "")

	manager, err := NewManager()
	require.NoError(t, err)

	serverConfig := manager.GetServerConfig()
	assert.Equal(t, "0.0.0.0", serverConfig.Host)
	assert.Equal(t, 3000, serverConfig.Port)

	upstreamConfig := manager.GetUpstreamConfig()
	assert.Equal(t, "https://api.deepseek.com/v1/chat/completions", upstreamConfig.URL)
	assert.Equal(t, 120*time.Second, upstreamConfig.RequestTimeout)
	assert.False(t, upstreamConfig.StreamErrorFrame)
	assert.False(t, manager.IsAPIKeyConfigured())

	retentionConfig := manager.GetRetentionConfig()
	assert.Equal(t, 60*time.Second, retentionConfig.FlushInterval)
	assert.Equal(t, 1000, retentionConfig.MaxPendingEntries)
}

func TestNewManager_EnvironmentOverrides(t *testing.T) {
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "8080")
	t.Setenv("UPSTREAM_URL", "http://localhost:9000/v1/chat/completions")
	t.Setenv("UPSTREAM_API_KEY", "sk-test")
	t.Setenv("UPSTREAM_TIMEOUT", "30")
	t.Setenv("STREAM_ERROR_FRAME", "true")
	t.Setenv("LOG_LEVEL", "debug")

	manager, err := NewManager()
	require.NoError(t, err)

	serverConfig := manager.GetServerConfig()
	assert.Equal(t, "127.0.0.1", serverConfig.Host)
	assert.Equal(t, 8080, serverConfig.Port)

	upstreamConfig := manager.GetUpstreamConfig()
	assert.Equal(t, "http://localhost:9000/v1/chat/completions", upstreamConfig.URL)
	assert.Equal(t, "sk-test", upstreamConfig.APIKey)
	assert.Equal(t, 30*time.Second, upstreamConfig.RequestTimeout)
	assert.True(t, upstreamConfig.StreamErrorFrame)
	assert.True(t, manager.IsAPIKeyConfigured())

	assert.Equal(t, "debug", manager.GetLogConfig().Level)
}

func TestNewManager_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "port out of range", key: "PORT", value: "70000"},
		{name: "upstream URL without scheme", key: "UPSTREAM_URL", value: "api.example.com"},
		{name: "non-positive upstream timeout", key: "UPSTREAM_TIMEOUT", value: "-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := NewManager()
			assert.Error(t, err)
		})
	}
}

func TestNewManager_MissingAPIKeyIsNotFatal(t *testing.T) {
	t.Setenv("UPSTREAM_API_KEY", "")

	manager, err := NewManager()
	require.NoError(t, err)
	assert.False(t, manager.IsAPIKeyConfigured())
}

func TestNewManager_InvalidNumbersFallBackToDefaults(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	t.Setenv("UPSTREAM_TIMEOUT", "abc")

	manager, err := NewManager()
	require.NoError(t, err)
	assert.Equal(t, 3000, manager.GetServerConfig().Port)
	assert.Equal(t, 120*time.Second, manager.GetUpstreamConfig().RequestTimeout)
}
