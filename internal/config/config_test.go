package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/plexybot/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, "telegram:\n  token: \"123:abc\"\n")

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, config.DefaultOpenRouterURL, cfg.AI.BaseURL)
	assert.Equal(t, 75*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 3, cfg.AI.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.AI.BaseDelay)
	assert.Equal(t, 16*time.Second, cfg.AI.MaxDelay)
	assert.Equal(t, "memory", cfg.Conversation.Backend)
	assert.Equal(t, config.DefaultMessages, cfg.Messages)

	require.Contains(t, cfg.Scheduler.Tasks, config.TaskStoreMaintenance)
	assert.Equal(t, "0 0 4 * * *", cfg.Scheduler.Tasks[config.TaskStoreMaintenance].Schedule)
	assert.True(t, cfg.Scheduler.Tasks[config.TaskSeedSync].Enabled)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  json: true
telegram:
  token: "123:abc"
  admin_user_id: 42
storage:
  backend: file
  file:
    dir: /var/lib/plexy
ai:
  provider: gemini
  model: gemini-2.0-flash
  vision_temperature: 0.3
messages:
  not_found: "Ничего нет."
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.True(t, cfg.Logger.JSON)
	assert.Equal(t, int64(42), cfg.Telegram.AdminUserID)
	assert.Equal(t, "/var/lib/plexy", cfg.Storage.File.Dir)
	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.InDelta(t, 0.3, cfg.AI.VisionTemperature, 0.0001)
	assert.Equal(t, "Ничего нет.", cfg.Messages.NotFound)
	assert.Equal(t, config.DefaultMessages.MainMenu, cfg.Messages.MainMenu)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("BOT_TELEGRAM_TOKEN", "env-token")
	t.Setenv("BOT_AI_API_KEY", "env-key")
	t.Setenv("BOT_LOG_LEVEL", "warn")

	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Telegram.Token)
	assert.Equal(t, "env-key", cfg.AI.APIKey)
	assert.Equal(t, "warn", cfg.Logger.Level)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing token", body: "log:\n  level: info\n"},
		{name: "bad log level", body: "telegram:\n  token: x\nlog:\n  level: loud\n"},
		{name: "unknown storage backend", body: "telegram:\n  token: x\nstorage:\n  backend: postgres\n"},
		{name: "vision temperature too high", body: "telegram:\n  token: x\nai:\n  vision_temperature: 0.9\n"},
		{name: "max delay below base", body: "telegram:\n  token: x\nai:\n  base_delay: 10s\n  max_delay: 1s\n"},
		{name: "redis without addr", body: "telegram:\n  token: x\nconversation:\n  backend: redis\n  redis:\n    addr: \"\"\n"},
		{name: "enabled task without schedule", body: "telegram:\n  token: x\nscheduler:\n  tasks:\n    seed_sync:\n      enabled: true\n      schedule: \"\"\n"},
		{name: "malformed yaml", body: "telegram: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.LoadConfig(writeConfig(t, tt.body))
			require.Error(t, err)
		})
	}
}
