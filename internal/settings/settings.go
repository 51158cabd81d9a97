// Package settings persists user preferences through a key/value backend.
//
// Reads never fail: when the backend is unreachable or holds garbage the last
// known value is used, then the built-in default. Writes update the in-memory
// value first so callers see the change even if persisting it fails.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/example/wordbot/internal/logging"
)

// Setting keys
const (
	KeyDailyLimit        = "daily_limit"
	KeyPushIntervalHours = "push_interval_hours"
	KeyLastReminderAt    = "last_reminder_at"
)

// Defaults and bounds
const (
	DefaultDailyLimit = 15
	MinDailyLimit     = 5
	MaxDailyLimit     = 50

	DefaultPushIntervalHours = 4
	MinPushIntervalHours     = 2
	MaxPushIntervalHours     = 8
)

// ErrSettingsUnavailable is returned when the backend cannot persist a value.
var ErrSettingsUnavailable = errors.New("settings unavailable")

// Backend is the durable key/value store behind Store.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Store reads and writes typed settings.
type Store struct {
	backend Backend
	logger  *slog.Logger

	mu        sync.Mutex
	cache     map[string]string
	listeners []func(key string)
}

// New creates a Store over backend.
func New(backend Backend, logger *slog.Logger) *Store {
	return &Store{
		backend: backend,
		logger:  logging.Component(logger, "settings"),
		cache:   make(map[string]string),
	}
}

// OnChange registers fn to be called after a setting is written.
func (s *Store) OnChange(fn func(key string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// DailyLimit returns how many new words a session start introduces.
func (s *Store) DailyLimit(ctx context.Context) int {
	return clampInt(s.getInt(ctx, KeyDailyLimit, DefaultDailyLimit), MinDailyLimit, MaxDailyLimit)
}

// SetDailyLimit stores the daily limit, clamped to its bounds, and returns the stored value.
func (s *Store) SetDailyLimit(ctx context.Context, limit int) (int, error) {
	limit = clampInt(limit, MinDailyLimit, MaxDailyLimit)
	return limit, s.set(ctx, KeyDailyLimit, strconv.Itoa(limit))
}

// PushIntervalHours returns the reminder poll cadence.
func (s *Store) PushIntervalHours(ctx context.Context) int {
	return clampInt(s.getInt(ctx, KeyPushIntervalHours, DefaultPushIntervalHours), MinPushIntervalHours, MaxPushIntervalHours)
}

// SetPushIntervalHours stores the poll cadence, clamped to its bounds, and returns the stored value.
func (s *Store) SetPushIntervalHours(ctx context.Context, hours int) (int, error) {
	hours = clampInt(hours, MinPushIntervalHours, MaxPushIntervalHours)
	return hours, s.set(ctx, KeyPushIntervalHours, strconv.Itoa(hours))
}

// LastReminderAt returns when a reminder was last delivered, or the zero time.
func (s *Store) LastReminderAt(ctx context.Context) time.Time {
	raw, ok := s.get(ctx, KeyLastReminderAt)
	if !ok || raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		s.logger.Warn("ignoring malformed setting", slog.String("key", KeyLastReminderAt), slog.String("value", raw))
		return time.Time{}
	}
	return t
}

// SetLastReminderAt records a delivered reminder.
func (s *Store) SetLastReminderAt(ctx context.Context, t time.Time) error {
	return s.set(ctx, KeyLastReminderAt, t.UTC().Format(time.RFC3339Nano))
}

func (s *Store) getInt(ctx context.Context, key string, fallback int) int {
	raw, ok := s.get(ctx, key)
	if !ok {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		s.logger.Warn("ignoring malformed setting", slog.String("key", key), slog.String("value", raw))
		return fallback
	}
	return v
}

func (s *Store) get(ctx context.Context, key string) (string, bool) {
	value, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		s.logger.Warn("settings read failed, using fallback", slog.String("key", key), slog.Any("error", err))
		s.mu.Lock()
		defer s.mu.Unlock()
		value, ok = s.cache[key]
		return value, ok
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ok {
		s.cache[key] = value
	} else if cached, hit := s.cache[key]; hit {
		// written while the backend was down
		return cached, true
	}
	return value, ok
}

func (s *Store) set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	s.cache[key] = value
	listeners := append([]func(string){}, s.listeners...)
	s.mu.Unlock()

	err := s.backend.Set(ctx, key, value)
	if err != nil {
		s.logger.Warn("settings write failed", slog.String("key", key), slog.Any("error", err))
		err = fmt.Errorf("%w: %v", ErrSettingsUnavailable, err)
	}

	for _, fn := range listeners {
		fn(key)
	}
	return err
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
