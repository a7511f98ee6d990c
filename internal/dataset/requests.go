package dataset

import (
	"github.com/spec-kit/ticket-retriage/internal/domain"
)

// Dataset column names.
const (
	ColID        = "id"
	ColPriority  = "Priority"
	ColCategory  = "Service Category"
	ColComment   = "Service Comments"
	ColStartedAt = "SR start date/time"
)

// LoadServiceRequests reads the processed service request sample.
func LoadServiceRequests(path string) ([]domain.ServiceRequest, error) {
	t, err := readTable(path, ColID, ColPriority, ColCategory, ColComment)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ServiceRequest, 0, len(t.rows))
	for _, row := range t.rows {
		id, ok := t.id(row)
		if !ok {
			continue
		}
		out = append(out, domain.ServiceRequest{
			ID:        id,
			Priority:  t.get(row, ColPriority),
			Category:  t.get(row, ColCategory),
			Comment:   t.get(row, ColComment),
			StartedAt: t.get(row, ColStartedAt),
		})
	}
	return out, nil
}

// LabelsFromRequests derives the allowed label sets from the dataset itself.
func LabelsFromRequests(reqs []domain.ServiceRequest) domain.LabelSet {
	priorities := make([]string, 0, len(reqs))
	categories := make([]string, 0, len(reqs))
	for _, r := range reqs {
		priorities = append(priorities, r.Priority)
		categories = append(categories, r.Category)
	}
	return domain.NewLabelSet(priorities, categories)
}
