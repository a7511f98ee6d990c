package examples

import (
	"errors"
	"fmt"

	"github.com/spec-kit/ticket-retriage/internal/dataset"
	"github.com/spec-kit/ticket-retriage/internal/domain"
)

// ErrTooFewRows is returned when fewer joined rows exist than examples requested.
var ErrTooFewRows = errors.New("not enough labeled rows")

// BuildOptions locates the build inputs and output.
type BuildOptions struct {
	SamplePath      string
	PredictionsPath string
	OutPath         string
	Count           int
	Seed            uint64
}

// Build joins the sample with its predictions, selects the example set and
// writes it to OutPath.
func Build(opts BuildOptions) ([]domain.DemoExample, error) {
	samples, err := dataset.LoadServiceRequests(opts.SamplePath)
	if err != nil {
		return nil, fmt.Errorf("load sample: %w", err)
	}
	preds, err := dataset.LoadPredictions(opts.PredictionsPath)
	if err != nil {
		return nil, fmt.Errorf("load predictions: %w", err)
	}

	joined := JoinPredictions(samples, preds)
	if len(joined) < opts.Count {
		return nil, fmt.Errorf("%w: need at least %d joined rows, found %d; regenerate predictions first",
			ErrTooFewRows, opts.Count, len(joined))
	}

	picked := BuildExampleSet(joined, opts.Count, opts.Seed)
	if err := dataset.SaveDemoExamples(opts.OutPath, picked); err != nil {
		return nil, fmt.Errorf("save examples: %w", err)
	}
	return picked, nil
}
