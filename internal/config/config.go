// Package config reads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/example/wordbot/internal/database"
	"github.com/example/wordbot/internal/reminder"
	"github.com/example/wordbot/internal/review"
)

// Config holds everything the binary needs to start
type Config struct {
	BotToken string
	ChatID   int64

	DBType      string
	DatabaseURL string
	DataDir     string

	LogLevel  string
	LogFormat string

	NotificationStartHour int
	NotificationEndHour   int
	ReminderCooldown      time.Duration
	CollaboratorTimeout   time.Duration
	EnableScheduler       bool

	MetricsAddr string
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		DBType:                database.DriverSQLite,
		DataDir:               "data",
		LogLevel:              "info",
		LogFormat:             "text",
		NotificationStartHour: reminder.DefaultNotificationStartHour,
		NotificationEndHour:   reminder.DefaultNotificationEndHour,
		ReminderCooldown:      reminder.DefaultCooldown,
		CollaboratorTimeout:   review.DefaultCallTimeout,
		EnableScheduler:       true,
	}
}

// Load reads the given .env files, when present, into the process
// environment and then parses it. Variables already set win over the files.
func Load(envFiles ...string) (*Config, error) {
	for _, file := range envFiles {
		if _, err := os.Stat(file); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv parses configuration through lookup
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	var errs []error
	cfg.BotToken = get("TELEGRAM_BOT_TOKEN")
	if v := get("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("TELEGRAM_CHAT_ID: %w", err))
		}
		cfg.ChatID = id
	}

	if v := get("DB_TYPE"); v != "" {
		cfg.DBType = strings.ToLower(v)
	}
	cfg.DatabaseURL = get("DATABASE_URL")
	if v := get("DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := get("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := get("LOG_FORMAT"); v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}

	errs = append(errs,
		parseHour(get("NOTIFICATION_START_HOUR"), "NOTIFICATION_START_HOUR", &cfg.NotificationStartHour),
		parseHour(get("NOTIFICATION_END_HOUR"), "NOTIFICATION_END_HOUR", &cfg.NotificationEndHour),
		parseDuration(get("REMINDER_COOLDOWN"), "REMINDER_COOLDOWN", &cfg.ReminderCooldown),
		parseDuration(get("COLLABORATOR_TIMEOUT"), "COLLABORATOR_TIMEOUT", &cfg.CollaboratorTimeout),
	)

	cfg.EnableScheduler = get("ENABLE_SCHEDULER") != "false"
	cfg.MetricsAddr = get("METRICS_ADDR")

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that do not depend on which command runs
func (c *Config) Validate() error {
	switch c.DBType {
	case database.DriverSQLite, "sqlite":
	case database.DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when DB_TYPE=postgres")
		}
	default:
		return fmt.Errorf("unsupported DB_TYPE %q", c.DBType)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported LOG_FORMAT %q", c.LogFormat)
	}
	return nil
}

// ValidateBot checks the settings the Telegram front end needs
func (c *Config) ValidateBot() error {
	if c.BotToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN environment variable is not set")
	}
	if c.ChatID == 0 {
		return errors.New("TELEGRAM_CHAT_ID environment variable is not set")
	}
	return nil
}

// DatabaseOptions maps the configuration onto database.Connect options
func (c *Config) DatabaseOptions() database.Options {
	return database.Options{
		Driver:  c.DBType,
		DSN:     c.DatabaseURL,
		DataDir: c.DataDir,
	}
}

// LockPath is the file that keeps two servers off one data directory
func (c *Config) LockPath() string {
	return filepath.Join(c.DataDir, "wordbot.lock")
}

func parseHour(raw, key string, dst *int) error {
	if raw == "" {
		return nil
	}
	h, err := strconv.Atoi(raw)
	if err != nil || h < 0 || h > 23 {
		return fmt.Errorf("%s must be an hour between 0 and 23, got %q", key, raw)
	}
	*dst = h
	return nil
}

func parseDuration(raw, key string, dst *time.Duration) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return fmt.Errorf("%s must be positive, got %s", key, raw)
	}
	*dst = d
	return nil
}
