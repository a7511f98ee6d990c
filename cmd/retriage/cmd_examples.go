package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/ticket-retriage/internal/examples"
)

var (
	examplesCount int
	examplesSeed  uint64
)

// buildExamplesCmd writes demo_examples.csv
var buildExamplesCmd = &cobra.Command{
	Use:   "build-examples",
	Short: "Select the demo examples shown by the portal",
	Long: `Join the sample dataset with predictions.csv and pick a fixed set of
real requests with resident priorities as balanced as the data allows
and as many categories as possible. The selection is deterministic for
a given seed.`,
	RunE: runBuildExamples,
}

func init() {
	buildExamplesCmd.Flags().IntVarP(&examplesCount, "count", "n", 0, "Number of examples (default DEMO_EXAMPLE_COUNT)")
	buildExamplesCmd.Flags().Uint64Var(&examplesSeed, "seed", 0, "Selection seed (default DEMO_EXAMPLE_SEED)")
}

func runBuildExamples(cmd *cobra.Command, args []string) error {
	opts := examples.BuildOptions{
		SamplePath:      cfg.Data.DatasetPath,
		PredictionsPath: cfg.Data.PredictionsCSV,
		OutPath:         cfg.Data.ExamplesPath,
		Count:           cfg.Data.ExampleCount,
		Seed:            cfg.Data.ExampleSeed,
	}
	if examplesCount > 0 {
		opts.Count = examplesCount
	}
	if cmd.Flags().Changed("seed") {
		opts.Seed = examplesSeed
	}

	picked, err := examples.Build(opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "saved %d examples to %s\n", len(picked), opts.OutPath)
	return nil
}
