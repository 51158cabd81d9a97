package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/example/wordbot/internal/bot"
	"github.com/example/wordbot/internal/database"
	"github.com/example/wordbot/internal/learning"
	"github.com/example/wordbot/internal/metrics"
	"github.com/example/wordbot/internal/reminder"
	"github.com/example/wordbot/internal/review"
	"github.com/example/wordbot/internal/settings"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot and the reminder poll",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.config()
			if err != nil {
				return err
			}
			if err := cfg.ValidateBot(); err != nil {
				return err
			}
			logger := ctx.logger(cfg)

			if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
				return fmt.Errorf("create data dir: %w", err)
			}
			lock := flock.New(cfg.LockPath())
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !ok {
				return fmt.Errorf("another wordbot is already running on %s", cfg.DataDir)
			}
			defer func() {
				if err := lock.Unlock(); err != nil {
					logger.Warn("failed to release lock", slog.Any("error", err))
				}
			}()

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			db, err := ctx.openDB(runCtx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			m := metrics.New()
			svc := learning.NewService(database.NewWordRepository(db), database.NewLearningRepository(db), logger)
			store := settings.New(database.NewSettingsRepository(db), logger)
			session := review.NewSession(svc, store, review.Options{
				Timeout: cfg.CollaboratorTimeout,
				Logger:  logger,
				Metrics: m,
			})

			api, err := bot.Connect(cfg.BotToken)
			if err != nil {
				return err
			}
			logger.Info("authorized on telegram", slog.String("account", api.Self.UserName))
			b := bot.New(api, bot.Options{
				ChatID:   cfg.ChatID,
				Session:  session,
				Learning: svc,
				Settings: store,
				Logger:   logger,
			})

			if cfg.EnableScheduler {
				rem := reminder.New(svc, b, store, reminder.Options{
					StartHour: cfg.NotificationStartHour,
					EndHour:   cfg.NotificationEndHour,
					Cooldown:  cfg.ReminderCooldown,
					Logger:    logger,
					Metrics:   m,
				})
				store.OnChange(rem.SettingChanged)
				if err := rem.Start(runCtx); err != nil {
					return err
				}
				defer rem.Stop()
				b.SetReminder(rem)
			}

			if cfg.MetricsAddr != "" {
				srv := startMetricsServer(cfg.MetricsAddr, m, logger)
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					if err := srv.Shutdown(shutdownCtx); err != nil {
						logger.Warn("metrics server shutdown", slog.Any("error", err))
					}
				}()
			}

			logger.Info("wordbot started", slog.String("data_dir", cfg.DataDir), slog.Bool("scheduler", cfg.EnableScheduler))
			err = b.Start(runCtx)
			if errors.Is(err, context.Canceled) {
				logger.Info("wordbot stopped")
				return nil
			}
			return err
		},
	}
}

func startMetricsServer(addr string, m *metrics.Metrics, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", slog.Any("error", err))
		}
	}()
	logger.Info("serving metrics", slog.String("addr", addr))
	return srv
}
