package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, "sqlite3", cfg.DBType)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, 8, cfg.NotificationStartHour)
	assert.Equal(t, 22, cfg.NotificationEndHour)
	assert.Equal(t, 4*time.Hour, cfg.ReminderCooldown)
	assert.Equal(t, 10*time.Second, cfg.CollaboratorTimeout)
	assert.True(t, cfg.EnableScheduler)
	assert.Error(t, cfg.ValidateBot())
	assert.Equal(t, filepath.Join("data", "wordbot.lock"), cfg.LockPath())
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"TELEGRAM_BOT_TOKEN":      "123:abc",
		"TELEGRAM_CHAT_ID":        "42",
		"DB_TYPE":                 "Postgres",
		"DATABASE_URL":            "postgres://localhost/words",
		"LOG_FORMAT":              "JSON",
		"NOTIFICATION_START_HOUR": "7",
		"NOTIFICATION_END_HOUR":   "21",
		"REMINDER_COOLDOWN":       "90m",
		"COLLABORATOR_TIMEOUT":    "3s",
		"ENABLE_SCHEDULER":        "false",
		"METRICS_ADDR":            ":9090",
	}))
	require.NoError(t, err)

	assert.NoError(t, cfg.ValidateBot())
	assert.Equal(t, int64(42), cfg.ChatID)
	assert.Equal(t, "postgres", cfg.DBType)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 7, cfg.NotificationStartHour)
	assert.Equal(t, 21, cfg.NotificationEndHour)
	assert.Equal(t, 90*time.Minute, cfg.ReminderCooldown)
	assert.Equal(t, 3*time.Second, cfg.CollaboratorTimeout)
	assert.False(t, cfg.EnableScheduler)
	assert.Equal(t, ":9090", cfg.MetricsAddr)

	opts := cfg.DatabaseOptions()
	assert.Equal(t, "postgres", opts.Driver)
	assert.Equal(t, "postgres://localhost/words", opts.DSN)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	tests := map[string]map[string]string{
		"chat id":          {"TELEGRAM_CHAT_ID": "me"},
		"hour range":       {"NOTIFICATION_START_HOUR": "24"},
		"cooldown":         {"REMINDER_COOLDOWN": "soon"},
		"negative timeout": {"COLLABORATOR_TIMEOUT": "-1s"},
		"db type":          {"DB_TYPE": "mysql"},
		"postgres no url":  {"DB_TYPE": "postgres"},
		"log format":       {"LOG_FORMAT": "xml"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := FromEnv(envMap(env))
			assert.Error(t, err)
		})
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("WORDBOT_TEST_DATA_DIR=/tmp/x\nDATA_DIR=/srv/wordbot\n"), 0o600))
	t.Setenv("DATA_DIR", "")
	os.Unsetenv("DATA_DIR")
	t.Cleanup(func() { os.Unsetenv("WORDBOT_TEST_DATA_DIR") })

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"), path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/wordbot", cfg.DataDir)
}
