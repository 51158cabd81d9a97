// Package reminder polls for due reviews and nudges the user at most once per
// cool-down window.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/wordbot/internal/logging"
	"github.com/example/wordbot/internal/metrics"
	"github.com/example/wordbot/internal/settings"
)

// Default notification window and cool-down
const (
	DefaultNotificationStartHour = 8
	DefaultNotificationEndHour   = 22
	DefaultCooldown              = 4 * time.Hour
)

// Notifier delivers a reminder to the user
type Notifier interface {
	SendReminder(ctx context.Context, dueCount int) error
}

// DueCounter reports how many items are due now
type DueCounter interface {
	DueCount(ctx context.Context) (int, error)
}

// Settings is the part of the settings store the scheduler needs
type Settings interface {
	PushIntervalHours(ctx context.Context) int
	LastReminderAt(ctx context.Context) time.Time
	SetLastReminderAt(ctx context.Context, t time.Time) error
}

// Options configure a Scheduler
type Options struct {
	StartHour int
	EndHour   int
	Cooldown  time.Duration
	Location  *time.Location
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
}

// Scheduler runs the reminder poll
type Scheduler struct {
	scheduler *gocron.Scheduler
	counter   DueCounter
	notifier  Notifier
	settings  Settings

	startHour int
	endHour   int
	cooldown  time.Duration
	location  *time.Location
	logger    *slog.Logger
	metrics   *metrics.Metrics

	// tickMu keeps a manual check and the job from firing twice
	tickMu sync.Mutex

	mu       sync.Mutex
	ctx      context.Context
	interval int
}

// New creates a scheduler. Zero options fall back to the defaults.
func New(counter DueCounter, notifier Notifier, st Settings, opts Options) *Scheduler {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	cooldown := opts.Cooldown
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	startHour, endHour := opts.StartHour, opts.EndHour
	if startHour == 0 && endHour == 0 {
		startHour, endHour = DefaultNotificationStartHour, DefaultNotificationEndHour
	}

	return &Scheduler{
		scheduler: gocron.NewScheduler(loc),
		counter:   counter,
		notifier:  notifier,
		settings:  st,
		startHour: startHour,
		endHour:   endHour,
		cooldown:  cooldown,
		location:  loc,
		logger:    logging.Component(opts.Logger, "reminder"),
		metrics:   opts.Metrics,
		ctx:       context.Background(),
	}
}

// Start schedules the poll every PushIntervalHours and runs it in the background.
// ctx is handed to every tick; cancel it together with Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	if err := s.Reschedule(); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates the poll
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// Interval returns the current poll interval in hours, 0 before Start
func (s *Scheduler) Interval() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// Reschedule replaces the poll job using the current push interval setting
func (s *Scheduler) Reschedule() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hours := s.settings.PushIntervalHours(s.ctx)
	if hours < settings.MinPushIntervalHours || hours > settings.MaxPushIntervalHours {
		hours = settings.DefaultPushIntervalHours
	}

	s.scheduler.Clear()
	_, err := s.scheduler.Every(hours).Hours().WaitForSchedule().Do(s.runJob)
	if err != nil {
		return fmt.Errorf("failed to schedule reminder poll: %w", err)
	}
	if s.interval != hours {
		s.logger.Info("reminder poll scheduled", slog.Int("interval_hours", hours))
	}
	s.interval = hours
	return nil
}

// SettingChanged is meant for settings.Store.OnChange
func (s *Scheduler) SettingChanged(key string) {
	if key != settings.KeyPushIntervalHours {
		return
	}
	if err := s.Reschedule(); err != nil {
		s.logger.Error("failed to reschedule reminder poll", slog.Any("error", err))
	}
}

func (s *Scheduler) runJob() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx.Err() != nil {
		return
	}
	if _, err := s.Tick(ctx, time.Now()); err != nil {
		s.logger.Warn("reminder poll failed", slog.Any("error", err))
	}
}

// ShouldFire is the reminder gate: something is due and the last reminder is
// at least cooldown old.
func ShouldFire(dueCount int, lastFiredAt, now time.Time, cooldown time.Duration) bool {
	if dueCount <= 0 {
		return false
	}
	return lastFiredAt.IsZero() || now.Sub(lastFiredAt) >= cooldown
}

// WithinHours reports whether hour falls in [start, end]. A window with
// start > end wraps past midnight.
func WithinHours(hour, start, end int) bool {
	if start <= end {
		return hour >= start && hour <= end
	}
	return hour >= start || hour <= end
}

// Tick runs one poll at now and reports whether a reminder was sent.
// A failed delivery is returned as an error and leaves lastFiredAt untouched.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) (bool, error) {
	return s.tick(ctx, now, true)
}

// RunManualCheck polls immediately, ignoring the notification hours but not
// the cool-down.
func (s *Scheduler) RunManualCheck(ctx context.Context) (bool, error) {
	return s.tick(ctx, time.Now(), false)
}

func (s *Scheduler) tick(ctx context.Context, now time.Time, quietHours bool) (bool, error) {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	hour := now.In(s.location).Hour()
	if quietHours && !WithinHours(hour, s.startHour, s.endHour) {
		s.logger.Debug("outside notification hours, skipping",
			slog.Int("hour", hour), slog.Int("start", s.startHour), slog.Int("end", s.endHour))
		s.metrics.RecordReminderPoll("quiet_hours")
		return false, nil
	}

	due, err := s.counter.DueCount(ctx)
	if err != nil {
		s.metrics.RecordReminderPoll("error")
		return false, fmt.Errorf("failed to count due items: %w", err)
	}

	last := s.settings.LastReminderAt(ctx)
	if !ShouldFire(due, last, now, s.cooldown) {
		if due > 0 {
			s.metrics.RecordReminderPoll("cooldown")
		} else {
			s.metrics.RecordReminderPoll("nothing_due")
		}
		return false, nil
	}

	if err := s.notifier.SendReminder(ctx, due); err != nil {
		s.metrics.RecordReminderPoll("failed")
		return false, fmt.Errorf("failed to send reminder: %w", err)
	}
	s.metrics.RecordReminderPoll("sent")
	s.logger.Info("reminder sent", slog.Int("due", due))

	if err := s.settings.SetLastReminderAt(ctx, now); err != nil {
		s.logger.Warn("failed to persist reminder time", slog.Any("error", err))
	}
	return true, nil
}
