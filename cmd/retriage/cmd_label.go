package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-retriage/internal/labeler"
	"github.com/spec-kit/ticket-retriage/internal/triage"
)

var (
	labelBatchSize int
	labelCallCap   int
)

// labelCmd labels the sample dataset in batches
var labelCmd = &cobra.Command{
	Use:   "label",
	Short: "Label the sample dataset with the model",
	Long: `Label every dataset row that has no prediction yet.

Rows are sent in batches, one model call per batch, spaced by
LABELER_SECONDS_BETWEEN_CALLS. The run stops at the daily call cap;
run it again the next day to resume. Each batch is appended to the
JSONL log and merged into predictions.csv.`,
	RunE: runLabel,
}

func init() {
	labelCmd.Flags().IntVar(&labelBatchSize, "batch-size", 0, "Rows per model call (default LABELER_BATCH_SIZE)")
	labelCmd.Flags().IntVar(&labelCallCap, "cap", -1, "Maximum model calls this run, 0 for no cap (default LABELER_DAILY_CALL_CAP)")
}

func runLabel(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	generator, err := triage.NewGeminiGenerator(ctx, cfg.Model, logger)
	if err != nil {
		if errors.Is(err, triage.ErrModelDisabled) {
			return errors.New("missing GEMINI_API_KEY")
		}
		return err
	}

	opts := labeler.OptionsFromConfig(cfg.Data, cfg.Labeler)
	if labelBatchSize > 0 {
		opts.BatchSize = labelBatchSize
	}
	if labelCallCap >= 0 {
		opts.DailyCallCap = labelCallCap
	}

	summary, err := labeler.New(generator, opts, logger).Run(ctx)
	if errors.Is(err, labeler.ErrNothingToLabel) {
		fmt.Fprintln(cmd.OutOrStdout(), "predictions.csv already contains all ids")
		return nil
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("labeling interrupted", zap.Int("labeled", summary.Labeled))
		}
		return err
	}

	if summary.Labeled == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no new predictions generated")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "saved predictions to %s (rows: %d)\n", opts.PredictionsCSV, summary.Rows)
	if summary.CapReached {
		fmt.Fprintf(cmd.OutOrStdout(), "reached daily call cap (%d); resume tomorrow\n", opts.DailyCallCap)
	}
	return nil
}
