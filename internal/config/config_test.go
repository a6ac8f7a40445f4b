package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.True(t, cfg.BotEnabled)
	assert.Equal(t, 1200, cfg.BotDelayMs)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ADDR", ":9999")
	t.Setenv("BOT_ENABLED", "false")
	t.Setenv("BOT_DELAY_MS", "50")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()
	assert.Equal(t, ":9999", cfg.Addr)
	assert.False(t, cfg.BotEnabled)
	assert.Equal(t, 50, cfg.BotDelayMs)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("BOT_ENABLED", "definitely")
	t.Setenv("BOT_DELAY_MS", "soon")

	cfg := Load()
	assert.True(t, cfg.BotEnabled)
	assert.Equal(t, 1200, cfg.BotDelayMs)
}
