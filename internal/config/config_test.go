package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "ENV", "LOG_LEVEL", "ARK_API_KEY", "ARK_ACCESS_KEY", "ARK_SECRET_KEY", "ARK_MODEL",
		"ARK_TEMPERATURE", "ARK_TOP_P", "ARK_MAX_TOKENS", "AI_TIMEOUT_SECONDS", "STORE_DRIVER",
		"DATABASE_URL", "REDIS_URL", "FEED_CHANNEL", "JOIN_CODE", "DEFAULT_ROOM",
		"ASSISTANT_RATE_PER_MINUTE", "ASSISTANT_RATE_BURST",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 60*time.Second, cfg.AI.Timeout)
	assert.False(t, cfg.AI.Enabled())
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.False(t, cfg.Store.Configured())
	assert.Equal(t, "default", cfg.Room.DefaultRoom)
	assert.Equal(t, "securemov:messages", cfg.Feed.Channel)
	assert.Equal(t, AssistantConfig{RatePerMinute: 20, Burst: 5}, cfg.Assistant)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "127.0.0.1:9000")
	t.Setenv("ARK_API_KEY", "key")
	t.Setenv("ARK_MODEL", "ep-123")
	t.Setenv("ARK_TEMPERATURE", "0.3")
	t.Setenv("ARK_MAX_TOKENS", "512")
	t.Setenv("AI_TIMEOUT_SECONDS", "15")
	t.Setenv("STORE_DRIVER", "MEMORY")
	t.Setenv("JOIN_CODE", " segreto ")
	t.Setenv("ASSISTANT_RATE_PER_MINUTE", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.True(t, cfg.AI.Enabled())
	require.NotNil(t, cfg.AI.Temperature)
	assert.InDelta(t, 0.3, *cfg.AI.Temperature, 1e-9)
	require.NotNil(t, cfg.AI.MaxTokens)
	assert.Equal(t, 512, *cfg.AI.MaxTokens)
	assert.Equal(t, 15*time.Second, cfg.AI.Timeout)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.True(t, cfg.Store.Configured())
	assert.Equal(t, "segreto", cfg.Room.JoinCode)
	assert.Equal(t, 0, cfg.Assistant.RatePerMinute)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"PORT":                      "80 80",
		"ARK_TOP_P":                 "alto",
		"AI_TIMEOUT_SECONDS":        "0",
		"STORE_DRIVER":              "sqlite",
		"ASSISTANT_RATE_BURST":      "-1",
		"ASSISTANT_RATE_PER_MINUTE": "venti",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestAIConfigEnabledWithAccessKeys(t *testing.T) {
	cfg := AIConfig{Model: "m", AccessKey: "ak", SecretKey: "sk"}
	assert.True(t, cfg.Enabled())

	cfg.SecretKey = ""
	assert.False(t, cfg.Enabled())
}
