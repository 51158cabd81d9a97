package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/example/wordbot/internal/config"
	"github.com/example/wordbot/internal/database"
	"github.com/example/wordbot/internal/logging"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// commandContext carries the flags shared by every subcommand
type commandContext struct {
	envFile string
	dataDir string
}

func (c *commandContext) config() (*config.Config, error) {
	cfg, err := config.Load(c.envFile)
	if err != nil {
		return nil, err
	}
	if c.dataDir != "" {
		cfg.DataDir = c.dataDir
	}
	return cfg, nil
}

func (c *commandContext) logger(cfg *config.Config) *slog.Logger {
	return logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: os.Stderr})
}

func (c *commandContext) openDB(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	return database.Connect(ctx, cfg.DatabaseOptions())
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "wordbot",
		Short:         "Spaced repetition vocabulary bot",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&ctx.envFile, "env", ".env", "Path to a .env file")
	rootCmd.PersistentFlags().StringVar(&ctx.dataDir, "data-dir", "", "Override DATA_DIR")

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newImportCommand(ctx))
	rootCmd.AddCommand(newStatsCommand(ctx))
	rootCmd.AddCommand(newDueCommand(ctx))

	return rootCmd
}
