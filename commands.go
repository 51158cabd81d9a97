package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/wordbot/internal/database"
	"github.com/example/wordbot/internal/excel"
	"github.com/example/wordbot/internal/learning"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	importCfg := excel.DefaultImportConfig()

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Seed the word list from an .xlsx or .csv file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.config()
			if err != nil {
				return err
			}
			db, err := ctx.openDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			importCfg.FilePath = args[0]
			result, err := excel.ImportWords(cmd.Context(), database.NewWordRepository(db), importCfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Processed", "Created", "Skipped", "Errors"},
				[][]string{{
					strconv.Itoa(result.TotalProcessed),
					strconv.Itoa(result.Created),
					strconv.Itoa(result.Skipped),
					strconv.Itoa(len(result.Errors)),
				}},
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight},
			))
			for _, msg := range result.Errors {
				fmt.Fprintln(out, msg)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&importCfg.SheetName, "sheet", "", "Sheet to import (first sheet by default)")
	cmd.Flags().IntVar(&importCfg.StartRow, "start-row", importCfg.StartRow, "First data row, 1-based")
	cmd.Flags().StringVar(&importCfg.Source, "source", "", "Source recorded for rows without one")
	return cmd
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show word list and learning progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeDB, err := ctx.learningService(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			stats, err := svc.DashboardStats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Metric", "Value"},
				[][]string{
					{"Words in list", strconv.Itoa(stats.TotalMaster)},
					{"Learning", strconv.Itoa(stats.TotalLearning)},
					{"Mastered", strconv.Itoa(stats.Mastered)},
					{"Due now", strconv.Itoa(stats.DueToday)},
				},
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	}
}

func newDueCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "due",
		Short: "List the words due for review",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeDB, err := ctx.learningService(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			items, err := svc.LoadDueItems(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No words are due.")
				return nil
			}

			rows := make([][]string, 0, len(items))
			for _, it := range items {
				rows = append(rows, []string{
					strconv.FormatInt(it.ID, 10),
					it.Text,
					it.Due.Local().Format(time.DateTime),
					strconv.FormatFloat(it.Stability, 'f', 1, 64),
					strconv.FormatFloat(it.Difficulty, 'f', 1, 64),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Word", "Due", "Stability", "Difficulty"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}
}

func (c *commandContext) learningService(cmd *cobra.Command) (*learning.Service, func(), error) {
	cfg, err := c.config()
	if err != nil {
		return nil, nil, err
	}
	db, err := c.openDB(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, err
	}
	svc := learning.NewService(database.NewWordRepository(db), database.NewLearningRepository(db), c.logger(cfg))
	return svc, func() { db.Close() }, nil
}
