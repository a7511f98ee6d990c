package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-retriage/internal/config"
	"github.com/spec-kit/ticket-retriage/internal/observability"
)

var (
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd is the offline companion to the API server.
var rootCmd = &cobra.Command{
	Use:   "retriage",
	Short: "Offline tooling for the ticket re-triage service",
	Long: `Offline tooling for the ticket re-triage service.

Available subcommands:
  label          - Label the sample dataset in rate-limited batches
  build-examples - Select the demo examples shown by the portal
  issue-token    - Issue an operator token for the admin API`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger, err = observability.NewCLILogger(cfg.Logger)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.AddCommand(labelCmd)
	rootCmd.AddCommand(buildExamplesCmd)
	rootCmd.AddCommand(issueTokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
