package dataset

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spec-kit/ticket-retriage/internal/domain"
)

// Demo example column names.
const (
	ColResidentPriority = "resident_selected_priority"
	ColResidentCategory = "resident_selected_category"
	ColExampleComment   = "comment"
	ColAIPriority       = "ai_priority"
	ColAICategory       = "ai_service_category"
	ColSuggestedActions = "suggested_actions"
)

var exampleHeader = []string{
	ColID, ColResidentPriority, ColResidentCategory, ColExampleComment,
	ColAIPriority, ColAICategory, ColSuggestedActions,
}

// ErrNoLabels is returned when neither predictions nor examples yield a label set.
var ErrNoLabels = errors.New("missing label metadata: provide predictions.csv or demo_examples.csv")

// LoadDemoExamples reads demo_examples.csv. Duplicate ids keep the last row,
// at the position of the last.
func LoadDemoExamples(path string) ([]domain.DemoExample, error) {
	t, err := readTable(path, exampleHeader...)
	if err != nil {
		return nil, err
	}

	all := make([]domain.DemoExample, 0, len(t.rows))
	last := make(map[int]int, len(t.rows))
	for _, row := range t.rows {
		id, ok := t.id(row)
		if !ok {
			continue
		}
		last[id] = len(all)
		all = append(all, domain.DemoExample{
			ID:               id,
			ResidentPriority: t.get(row, ColResidentPriority),
			ResidentCategory: t.get(row, ColResidentCategory),
			Comment:          t.get(row, ColExampleComment),
			AIPriority:       t.get(row, ColAIPriority),
			AICategory:       t.get(row, ColAICategory),
			SuggestedActions: t.get(row, ColSuggestedActions),
		})
	}

	out := make([]domain.DemoExample, 0, len(last))
	for i, ex := range all {
		if last[ex.ID] == i {
			out = append(out, ex)
		}
	}
	return out, nil
}

// SaveDemoExamples writes demo_examples.csv.
func SaveDemoExamples(path string, examples []domain.DemoExample) error {
	rows := make([][]string, 0, len(examples))
	for _, e := range examples {
		rows = append(rows, []string{
			strconv.Itoa(e.ID), e.ResidentPriority, e.ResidentCategory, e.Comment,
			e.AIPriority, e.AICategory, e.SuggestedActions,
		})
	}
	if err := EnsureDir(path); err != nil {
		return err
	}
	return writeCSV(path, exampleHeader, rows)
}

// LabelsFromExamples derives the label set from the resident side of the examples.
func LabelsFromExamples(examples []domain.DemoExample) domain.LabelSet {
	priorities := make([]string, 0, len(examples))
	categories := make([]string, 0, len(examples))
	for _, e := range examples {
		priorities = append(priorities, e.ResidentPriority)
		categories = append(categories, e.ResidentCategory)
	}
	return domain.NewLabelSet(priorities, categories)
}

// LoadLabelSet prefers the labels in predictions.csv and falls back to the
// resident labels of the demo examples.
func LoadLabelSet(predictionsPath string, examples []domain.DemoExample) (domain.LabelSet, error) {
	labels, err := LabelsFromPredictions(predictionsPath)
	if err == nil && !labels.Empty() {
		return labels, nil
	}
	if len(examples) > 0 {
		if labels := LabelsFromExamples(examples); !labels.Empty() {
			return labels, nil
		}
	}
	if err != nil {
		return domain.LabelSet{}, fmt.Errorf("%w: %v", ErrNoLabels, err)
	}
	return domain.LabelSet{}, ErrNoLabels
}
