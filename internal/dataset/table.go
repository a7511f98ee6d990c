// Package dataset reads and writes the CSV and JSONL artifacts shared by the
// batch labeler and the demo portal.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

// ErrMissingColumns is wrapped when a CSV lacks required headers.
var ErrMissingColumns = errors.New("missing columns")

type table struct {
	index map[string]int
	rows  [][]string
}

func readTable(path string, required ...string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseTable(f, path, required...)
}

func parseTable(r io.Reader, name string, required ...string) (*table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", name, err)
	}
	t := &table{index: make(map[string]int, len(header))}
	for i, col := range header {
		t.index[strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))] = i
	}

	var missing []string
	for _, col := range required {
		if _, ok := t.index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%s: %w: %s", name, ErrMissingColumns, strings.Join(missing, ", "))
	}

	t.rows, err = reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return t, nil
}

// get returns the trimmed cell, or "" when the column or cell is absent.
func (t *table) get(row []string, col string) string {
	i, ok := t.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// id parses the id column the way a lenient numeric coercion would: "12" and
// "12.0" are both 12, anything else is rejected.
func (t *table) id(row []string) (int, bool) {
	raw := t.get(row, "id")
	if raw == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

func (t *table) column(col string) []string {
	out := make([]string, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, t.get(row, col))
	}
	return out
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
