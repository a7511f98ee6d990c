package service

import (
	"errors"
	"io/fs"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-retriage/internal/config"
	"github.com/spec-kit/ticket-retriage/internal/dataset"
	"github.com/spec-kit/ticket-retriage/internal/domain"
)

// Catalog holds the deploy-time label sets and demo examples.
type Catalog struct {
	mu       sync.RWMutex
	labels   domain.LabelSet
	examples []domain.DemoExample
	byID     map[int]domain.DemoExample

	predictionsPath string
	examplesPath    string
	logger          *zap.Logger
}

// NewCatalog builds a catalog reading from the configured artifact paths.
func NewCatalog(cfg config.DataConfig, logger *zap.Logger) *Catalog {
	return &Catalog{
		predictionsPath: cfg.PredictionsCSV,
		examplesPath:    cfg.ExamplesPath,
		logger:          logger,
		byID:            map[int]domain.DemoExample{},
	}
}

// NewStaticCatalog builds a catalog over fixed data.
func NewStaticCatalog(labels domain.LabelSet, examples []domain.DemoExample) *Catalog {
	c := &Catalog{logger: zap.NewNop()}
	c.set(labels, examples)
	return c
}

// Reload rereads the artifacts. On failure the previous contents are kept.
func (c *Catalog) Reload() error {
	examples, err := dataset.LoadDemoExamples(c.examplesPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn("demo examples unreadable; example mode disabled",
				zap.String("path", c.examplesPath), zap.Error(err))
		} else {
			c.logger.Warn("demo examples missing; example mode disabled", zap.String("path", c.examplesPath))
		}
		examples = nil
	}

	labels, err := dataset.LoadLabelSet(c.predictionsPath, examples)
	if err != nil {
		return err
	}

	c.set(labels, examples)
	c.logger.Info("catalog loaded",
		zap.Int("priorities", len(labels.Priorities)),
		zap.Int("categories", len(labels.Categories)),
		zap.Int("examples", len(examples)))
	return nil
}

func (c *Catalog) set(labels domain.LabelSet, examples []domain.DemoExample) {
	byID := make(map[int]domain.DemoExample, len(examples))
	for _, e := range examples {
		byID[e.ID] = e
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.labels = labels
	c.examples = examples
	c.byID = byID
}

// Labels returns the allowed label sets.
func (c *Catalog) Labels() domain.LabelSet {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.labels
}

// Examples returns the demo examples in file order.
func (c *Catalog) Examples() []domain.DemoExample {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.DemoExample(nil), c.examples...)
}

// Example looks up one demo example.
func (c *Catalog) Example(id int) (domain.DemoExample, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.byID[id]
	return e, ok
}
