// Package labeler runs the offline batch job that labels the sample dataset
// and produces predictions.csv, the source of the portal's label sets.
package labeler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/spec-kit/ticket-retriage/internal/config"
	"github.com/spec-kit/ticket-retriage/internal/dataset"
	"github.com/spec-kit/ticket-retriage/internal/domain"
	"github.com/spec-kit/ticket-retriage/internal/triage"
)

// ErrNothingToLabel is returned by Run when every dataset id already has a prediction.
var ErrNothingToLabel = errors.New("predictions already contain all ids")

// Options configures a labeling run.
type Options struct {
	DatasetPath    string
	PredictionsCSV string
	PredictionsLog string
	BatchSize      int
	Interval       time.Duration
	DailyCallCap   int
}

// OptionsFromConfig maps service configuration onto run options.
func OptionsFromConfig(data config.DataConfig, cfg config.LabelerConfig) Options {
	return Options{
		DatasetPath:    data.DatasetPath,
		PredictionsCSV: data.PredictionsCSV,
		PredictionsLog: data.PredictionsJSON,
		BatchSize:      cfg.BatchSize,
		Interval:       cfg.CallInterval(),
		DailyCallCap:   cfg.DailyCallCap,
	}
}

// Summary reports what a run did.
type Summary struct {
	Pending    int
	Calls      int
	Labeled    int
	Missing    int
	Fallbacks  int
	CapReached bool
	Rows       int
}

// Labeler labels dataset rows in batches, one model call per batch.
type Labeler struct {
	generator triage.Generator
	opts      Options
	limiter   *rate.Limiter
	logger    *zap.Logger
}

// New constructs a labeler.
func New(generator triage.Generator, opts Options, logger *zap.Logger) *Labeler {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	limit := rate.Inf
	if opts.Interval > 0 {
		limit = rate.Every(opts.Interval)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Labeler{
		generator: generator,
		opts:      opts,
		limiter:   rate.NewLimiter(limit, 1),
		logger:    logger,
	}
}

// Run labels every dataset row without a prediction, stopping at the daily
// call cap. Finished batches are merged into the predictions CSV even when a
// later batch fails, so the next run resumes where this one stopped.
func (l *Labeler) Run(ctx context.Context) (Summary, error) {
	requests, err := dataset.LoadServiceRequests(l.opts.DatasetPath)
	if err != nil {
		return Summary{}, fmt.Errorf("load dataset: %w", err)
	}
	labels := dataset.LabelsFromRequests(requests)
	if labels.Empty() {
		return Summary{}, dataset.ErrNoLabels
	}

	done := dataset.ReadDoneIDs(l.opts.PredictionsCSV)
	todo := make([]domain.ServiceRequest, 0, len(requests))
	for _, r := range requests {
		if _, ok := done[r.ID]; !ok {
			todo = append(todo, r)
		}
	}

	summary := Summary{Pending: len(todo)}
	if len(todo) == 0 {
		return summary, ErrNothingToLabel
	}

	system := triage.BuildSystemInstruction(labels)
	schema := triage.ResponseSchema(labels)
	batches := chunk(todo, l.opts.BatchSize)
	l.logger.Info("labeling started",
		zap.Int("pending", len(todo)),
		zap.Int("batches", len(batches)),
		zap.Int("daily_call_cap", l.opts.DailyCallCap))

	var fresh []domain.LabeledRequest
	var runErr error
	for i, batch := range batches {
		if l.opts.DailyCallCap > 0 && summary.Calls >= l.opts.DailyCallCap {
			summary.CapReached = true
			l.logger.Warn("daily call cap reached; resume tomorrow", zap.Int("cap", l.opts.DailyCallCap))
			break
		}
		if err := l.limiter.Wait(ctx); err != nil {
			runErr = err
			break
		}

		records, missing, fallbacks, err := l.labelBatch(ctx, batch, labels, system, schema)
		summary.Calls++
		if err != nil {
			runErr = fmt.Errorf("batch %d: %w", i+1, err)
			break
		}
		if err := dataset.AppendJSONL(l.opts.PredictionsLog, records); err != nil {
			runErr = fmt.Errorf("append predictions log: %w", err)
			break
		}
		fresh = append(fresh, records...)
		summary.Labeled += len(records)
		summary.Missing += missing
		summary.Fallbacks += fallbacks
		l.logger.Info("batch labeled",
			zap.Int("batch", i+1),
			zap.Int("records", len(records)),
			zap.Int("missing", missing),
			zap.Int("fallbacks", fallbacks))
	}

	if len(fresh) > 0 {
		rows, err := dataset.MergePredictions(l.opts.PredictionsCSV, fresh)
		if err != nil {
			return summary, errors.Join(runErr, fmt.Errorf("merge predictions: %w", err))
		}
		summary.Rows = rows
		l.logger.Info("predictions saved", zap.String("path", l.opts.PredictionsCSV), zap.Int("rows", rows))
	}
	return summary, runErr
}

func (l *Labeler) labelBatch(ctx context.Context, batch []domain.ServiceRequest, labels domain.LabelSet, system string, schema *genai.Schema) ([]domain.LabeledRequest, int, int, error) {
	items := make([]triage.BatchItem, 0, len(batch))
	byID := make(map[int]domain.ServiceRequest, len(batch))
	for _, r := range batch {
		items = append(items, triage.NewBatchItem(r))
		byID[r.ID] = r
	}
	contents, err := triage.BuildUserContents(items)
	if err != nil {
		return nil, 0, 0, err
	}

	text, err := l.generator.Generate(ctx, system, contents, schema)
	if err != nil {
		return nil, 0, 0, err
	}
	parsed, err := triage.ParseBatchResponse(text)
	if err != nil {
		return nil, 0, 0, err
	}

	records := make([]domain.LabeledRequest, 0, len(parsed.Results))
	fallbacks := 0
	for _, labeled := range parsed.Results {
		req, ok := byID[labeled.ID]
		if !ok {
			l.logger.Warn("model returned unknown id", zap.Int("id", labeled.ID))
			continue
		}
		delete(byID, labeled.ID)

		result := triage.Reconcile(domain.Ticket{
			ID:       req.ID,
			Priority: req.Priority,
			Category: req.Category,
			Comment:  req.Comment,
		}, labeled, labels)
		fallbacks += len(result.Fallbacks)
		records = append(records, domain.LabeledRequest{
			ID:               req.ID,
			Priority:         result.Priority,
			ServiceCategory:  result.Category,
			SuggestedActions: result.ResidentMessage,
		})
	}
	return records, len(byID), fallbacks, nil
}

func chunk(rows []domain.ServiceRequest, size int) [][]domain.ServiceRequest {
	var out [][]domain.ServiceRequest
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		out = append(out, rows[start:end])
	}
	return out
}
