package examples

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-retriage/internal/domain"
)

func rowsFor(counts map[string]int, categories ...string) []domain.DemoExample {
	var rows []domain.DemoExample
	id := 1
	for _, p := range []string{"01-Emergency", "02-Urgent", "03-Routine"} {
		for i := 0; i < counts[p]; i++ {
			rows = append(rows, domain.DemoExample{
				ID:               id,
				ResidentPriority: p,
				ResidentCategory: categories[i%len(categories)],
				Comment:          fmt.Sprintf("comment %d", id),
			})
			id++
		}
	}
	return rows
}

func TestPriorityTargetsRedistributesDeficit(t *testing.T) {
	rows := rowsFor(map[string]int{"01-Emergency": 2, "02-Urgent": 10, "03-Routine": 10}, "X")

	targets := priorityTargets(rows, 12)

	assert.Equal(t, map[string]int{"01-Emergency": 2, "02-Urgent": 5, "03-Routine": 5}, targets)
}

func TestPriorityTargetsRemainderGoesToFirstPriorities(t *testing.T) {
	rows := rowsFor(map[string]int{"01-Emergency": 10, "02-Urgent": 10, "03-Routine": 10}, "X")

	targets := priorityTargets(rows, 11)

	assert.Equal(t, map[string]int{"01-Emergency": 4, "02-Urgent": 4, "03-Routine": 3}, targets)
}

func TestBuildExampleSetBalancesPriorities(t *testing.T) {
	rows := rowsFor(map[string]int{"01-Emergency": 3, "02-Urgent": 20, "03-Routine": 40}, "Plumbing", "Electrical", "Appliance", "Pest")

	picked := BuildExampleSet(rows, 30, 42)
	require.Len(t, picked, 30)

	perPriority := map[string]int{}
	ids := map[int]struct{}{}
	for _, ex := range picked {
		perPriority[ex.ResidentPriority]++
		ids[ex.ID] = struct{}{}
	}
	assert.Len(t, ids, 30, "no row is picked twice")
	assert.Equal(t, 3, perPriority["01-Emergency"])
	assert.Equal(t, 14, perPriority["02-Urgent"])
	assert.Equal(t, 13, perPriority["03-Routine"])
}

func TestBuildExampleSetPrefersUnseenCategories(t *testing.T) {
	var rows []domain.DemoExample
	for i := 1; i <= 10; i++ {
		rows = append(rows, domain.DemoExample{ID: i, ResidentPriority: "03-Routine", ResidentCategory: "Plumbing"})
	}
	rows = append(rows,
		domain.DemoExample{ID: 11, ResidentPriority: "03-Routine", ResidentCategory: "Electrical"},
		domain.DemoExample{ID: 12, ResidentPriority: "03-Routine", ResidentCategory: "Pest"},
	)

	picked := BuildExampleSet(rows, 3, 7)

	categories := map[string]int{}
	for _, ex := range picked {
		categories[ex.ResidentCategory]++
	}
	assert.Equal(t, map[string]int{"Plumbing": 1, "Electrical": 1, "Pest": 1}, categories)
}

func TestBuildExampleSetDeterministic(t *testing.T) {
	rows := rowsFor(map[string]int{"01-Emergency": 5, "02-Urgent": 8, "03-Routine": 12}, "A", "B", "C")

	first := BuildExampleSet(rows, 10, 42)
	second := BuildExampleSet(rows, 10, 42)
	assert.Equal(t, first, second)

	assert.Len(t, BuildExampleSet(rows, 100, 42), len(rows))
	assert.Nil(t, BuildExampleSet(nil, 10, 42))
}

func TestJoinPredictions(t *testing.T) {
	samples := []domain.ServiceRequest{
		{ID: 1, Priority: "03-Routine", Category: "Plumbing", Comment: "drip"},
		{ID: 2, Priority: "02-Urgent", Category: "Electrical", Comment: "no power"},
		{ID: 1, Priority: "01-Emergency", Category: "Plumbing", Comment: "duplicate"},
		{ID: 3, Priority: "03-Routine", Category: "Pest", Comment: "ants"},
	}
	preds := []domain.LabeledRequest{
		{ID: 1, Priority: "03-Routine", ServiceCategory: "Plumbing", SuggestedActions: "old"},
		{ID: 3, Priority: "03-Routine", ServiceCategory: "Pest", SuggestedActions: "ants msg"},
		{ID: 1, Priority: "02-Urgent", ServiceCategory: "Plumbing", SuggestedActions: "new"},
	}

	joined := JoinPredictions(samples, preds)

	require.Len(t, joined, 2)
	assert.Equal(t, "drip", joined[0].Comment)
	assert.Equal(t, "02-Urgent", joined[0].AIPriority)
	assert.Equal(t, "new", joined[0].SuggestedActions)
	assert.Equal(t, 3, joined[1].ID)
}
