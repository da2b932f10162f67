// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/naka-gawa/github-traffic/internal/config"
	"github.com/naka-gawa/github-traffic/internal/domain"
	"github.com/naka-gawa/github-traffic/internal/gateway"
	"github.com/naka-gawa/github-traffic/internal/storage"
	"github.com/naka-gawa/github-traffic/internal/usecase"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "github-traffic",
		Short: "Appends today's GitHub traffic (views and clones) to a CSV log.",
		Long: `github-traffic fetches the view and clone traffic of a GitHub repository
and appends one row per run to a CSV log, writing the header on first use.

The repository and token are read from GITHUB_REPOSITORY and GITHUB_TOKEN
(a .env file in the working directory is loaded if present).`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRecord,
	}
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	cmd.Flags().StringP("repo", "r", "", "Repository as owner/name (default $"+config.EnvRepository+")")
	cmd.Flags().StringP("file", "f", "", "Traffic log file (default $"+config.EnvLogFile+" or "+storage.DefaultPath+")")
	cmd.Flags().String("api-url", "", "GitHub API root (default $"+config.EnvAPIURL+" or "+gateway.DefaultBaseURL+")")
	cmd.AddCommand(newSummaryCmd())
	return cmd
}

// Execute builds the command tree and runs it.
// This is called by main.main().
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger builds the stderr logger; --verbose lowers the level to debug.
func newLogger(cmd *cobra.Command, w io.Writer) *log.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// loadConfig resolves the environment and applies flag overrides.
// An empty flag value keeps the environment or default setting.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(config.DefaultEnvFile)
	if err != nil {
		return nil, err
	}
	override(cmd, "repo", &cfg.Repository)
	override(cmd, "file", &cfg.LogFile)
	override(cmd, "api-url", &cfg.APIURL)
	return cfg, nil
}

func override(cmd *cobra.Command, name string, dst *string) {
	if f := cmd.Flags().Lookup(name); f != nil && f.Value.String() != "" {
		*dst = f.Value.String()
	}
}

func runRecord(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd, cmd.ErrOrStderr())
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Token == "" {
		logger.Debug("No token set; the API will reject the request", "env", config.EnvToken)
	}

	githubGateway, err := gateway.NewGitHubGateway(cfg.Token, cfg.APIURL, logger)
	if err != nil {
		return fmt.Errorf("failed to create GitHub gateway: %w", err)
	}
	store := storage.NewCSVLog(cfg.LogFile)
	recorder := usecase.NewRecorder(githubGateway, store, logger)

	rec, err := recorder.Record(cmd.Context(), cfg.Repository)
	if err != nil {
		return err
	}
	logger.Info("Traffic recorded",
		"repo", cfg.Repository,
		"file", store.Path(),
		"date", rec.Date.Format(domain.DateLayout),
		"views", rec.Views,
		"clones", rec.Clones,
	)
	return nil
}
