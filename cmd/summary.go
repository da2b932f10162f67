package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/github-traffic/internal/config"
	"github.com/naka-gawa/github-traffic/internal/storage"
	"github.com/naka-gawa/github-traffic/internal/usecase"
)

func newSummaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarizes the traffic log and outputs as JSON",
		Long:  `Reads every row of the traffic log and prints totals, mean, median and max of each counter in JSON format.`,
		Args:  cobra.NoArgs,
		RunE:  runSummary,
	}
	cmd.Flags().StringP("file", "f", "", "Traffic log file (default $"+config.EnvLogFile+" or "+storage.DefaultPath+")")
	return cmd
}

func runSummary(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd, cmd.ErrOrStderr())
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store := storage.NewCSVLog(cfg.LogFile)
	records, err := store.ReadAll()
	if err != nil {
		return err
	}
	summary, err := usecase.NewSummarizer(logger).Summarize(records)
	if err != nil {
		return fmt.Errorf("failed to summarize %s: %w", store.Path(), err)
	}

	jsonData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary to JSON: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
	return nil
}
