package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spec-kit/ticket-retriage/internal/domain"
)

// Prediction column names, matching the model's response fields.
const (
	ColPredPriority = "Priority"
	ColPredCategory = "Service_Category"
	ColPredActions  = "Suggested_Actions"
)

var predictionHeader = []string{ColID, ColPredPriority, ColPredCategory, ColPredActions}

// LoadPredictions reads predictions.csv. Rows with an unparseable id are dropped.
func LoadPredictions(path string) ([]domain.LabeledRequest, error) {
	t, err := readTable(path, ColID, ColPredPriority, ColPredCategory, ColPredActions)
	if err != nil {
		return nil, err
	}
	out := make([]domain.LabeledRequest, 0, len(t.rows))
	for _, row := range t.rows {
		id, ok := t.id(row)
		if !ok {
			continue
		}
		out = append(out, domain.LabeledRequest{
			ID:               id,
			Priority:         t.get(row, ColPredPriority),
			ServiceCategory:  t.get(row, ColPredCategory),
			SuggestedActions: t.get(row, ColPredActions),
		})
	}
	return out, nil
}

// ReadDoneIDs returns the ids already present in predictions.csv. A missing or
// unreadable file means nothing is done yet.
func ReadDoneIDs(path string) map[int]struct{} {
	done := make(map[int]struct{})
	t, err := readTable(path, ColID)
	if err != nil {
		return done
	}
	for _, row := range t.rows {
		if id, ok := t.id(row); ok {
			done[id] = struct{}{}
		}
	}
	return done
}

// AppendJSONL appends one JSON object per record to path.
func AppendJSONL(path string, records []domain.LabeledRequest) error {
	if err := EnsureDir(path); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			f.Close()
			return err
		}
	}
	return f.Close()
}

// MergePredictions writes existing rows followed by fresh ones to path,
// keeping the first occurrence of each id. It returns the row count written.
func MergePredictions(path string, fresh []domain.LabeledRequest) (int, error) {
	var existing []domain.LabeledRequest
	if _, err := os.Stat(path); err == nil {
		existing, err = LoadPredictions(path)
		if err != nil {
			return 0, fmt.Errorf("load existing predictions: %w", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return 0, err
	}

	seen := make(map[int]struct{}, len(existing)+len(fresh))
	rows := make([][]string, 0, len(existing)+len(fresh))
	for _, batch := range [][]domain.LabeledRequest{existing, fresh} {
		for _, p := range batch {
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			rows = append(rows, []string{strconv.Itoa(p.ID), p.Priority, p.ServiceCategory, p.SuggestedActions})
		}
	}

	if err := EnsureDir(path); err != nil {
		return 0, err
	}
	if err := writeCSV(path, predictionHeader, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// LabelsFromPredictions derives the label set from predictions.csv.
func LabelsFromPredictions(path string) (domain.LabelSet, error) {
	t, err := readTable(path, ColPredPriority, ColPredCategory)
	if err != nil {
		return domain.LabelSet{}, err
	}
	return domain.NewLabelSet(t.column(ColPredPriority), t.column(ColPredCategory)), nil
}

// EnsureDir creates the parent directory of path.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
