// Package examples curates the fixed set of real requests offered by the portal's example mode.
package examples

import (
	"math/rand/v2"
	"sort"

	"github.com/spec-kit/ticket-retriage/internal/domain"
)

// JoinPredictions pairs dataset rows with their model predictions by id.
// Later predictions for an id replace earlier ones; repeated dataset ids keep the first row.
func JoinPredictions(samples []domain.ServiceRequest, preds []domain.LabeledRequest) []domain.DemoExample {
	byID := make(map[int]domain.LabeledRequest, len(preds))
	for _, p := range preds {
		byID[p.ID] = p
	}

	seen := make(map[int]struct{}, len(samples))
	out := make([]domain.DemoExample, 0, len(samples))
	for _, s := range samples {
		p, ok := byID[s.ID]
		if !ok {
			continue
		}
		if _, dup := seen[s.ID]; dup {
			continue
		}
		seen[s.ID] = struct{}{}
		out = append(out, domain.DemoExample{
			ID:               s.ID,
			ResidentPriority: s.Priority,
			ResidentCategory: s.Category,
			Comment:          s.Comment,
			AIPriority:       p.Priority,
			AICategory:       p.ServiceCategory,
			SuggestedActions: p.SuggestedActions,
		})
	}
	return out
}

// BuildExampleSet picks n rows with resident priorities as balanced as the data
// allows, then maximises category diversity inside each priority quota. The
// result is deterministic for a given seed.
func BuildExampleSet(rows []domain.DemoExample, n int, seed uint64) []domain.DemoExample {
	if len(rows) == 0 || n <= 0 {
		return nil
	}
	n = min(n, len(rows))

	pool := append([]domain.DemoExample(nil), rows...)
	shuffle(pool, seed)

	targets := priorityTargets(pool, n)
	priorities := make([]string, 0, len(targets))
	for p := range targets {
		priorities = append(priorities, p)
	}
	sort.Strings(priorities)

	picker := newPicker(pool)
	remaining := make(map[string]int, len(targets))
	total := 0
	for p, q := range targets {
		remaining[p] = q
		total += q
	}

	for total > 0 {
		progressed := false
		for _, p := range priorities {
			if remaining[p] <= 0 {
				continue
			}
			idx := picker.best(p)
			if idx < 0 {
				total -= remaining[p]
				remaining[p] = 0
				continue
			}
			picker.take(idx)
			remaining[p]--
			total--
			progressed = true
		}
		if !progressed {
			break
		}
	}

	picked := picker.picked()
	if len(picked) < n {
		picked = append(picked, picker.topUp(n-len(picked))...)
	}

	shuffle(picked, seed)
	return picked[:min(n, len(picked))]
}

// priorityTargets splits n across priorities as evenly as possible, caps each
// quota by availability and hands the shortfall to priorities with spare rows.
func priorityTargets(rows []domain.DemoExample, n int) map[string]int {
	counts := make(map[string]int)
	for _, r := range rows {
		counts[r.ResidentPriority]++
	}
	if len(counts) == 0 {
		return map[string]int{}
	}
	priorities := make([]string, 0, len(counts))
	for p := range counts {
		priorities = append(priorities, p)
	}
	sort.Strings(priorities)

	n = min(n, len(rows))
	base, remainder := n/len(priorities), n%len(priorities)

	targets := make(map[string]int, len(priorities))
	deficit := 0
	for i, p := range priorities {
		t := base
		if i < remainder {
			t++
		}
		if t > counts[p] {
			deficit += t - counts[p]
			t = counts[p]
		}
		targets[p] = t
	}

	for deficit > 0 {
		order := append([]string(nil), priorities...)
		sort.SliceStable(order, func(i, j int) bool {
			if targets[order[i]] != targets[order[j]] {
				return targets[order[i]] < targets[order[j]]
			}
			return order[i] < order[j]
		})
		progressed := false
		for _, p := range order {
			if counts[p]-targets[p] <= 0 {
				continue
			}
			targets[p]++
			deficit--
			progressed = true
			if deficit == 0 {
				break
			}
		}
		if !progressed {
			break
		}
	}
	return targets
}

type picker struct {
	rows       []domain.DemoExample
	selected   []bool
	order      []int
	global     map[string]int
	byPriority map[string]map[string]int
}

func newPicker(rows []domain.DemoExample) *picker {
	return &picker{
		rows:       rows,
		selected:   make([]bool, len(rows)),
		global:     make(map[string]int),
		byPriority: make(map[string]map[string]int),
	}
}

// best returns the unselected row of priority p that ranks first by: unseen
// category, then fewest picks of that category overall, then fewest within p,
// then shuffled position. It returns -1 when p has no rows left.
func (pk *picker) best(p string) int {
	bestIdx := -1
	var bestKey [3]int
	for i, r := range pk.rows {
		if pk.selected[i] || r.ResidentPriority != p {
			continue
		}
		global := pk.global[r.ResidentCategory]
		unseen := 1
		if global == 0 {
			unseen = 0
		}
		key := [3]int{unseen, global, pk.byPriority[p][r.ResidentCategory]}
		if bestIdx < 0 || less(key, bestKey) {
			bestIdx, bestKey = i, key
		}
	}
	return bestIdx
}

func (pk *picker) take(i int) {
	r := pk.rows[i]
	pk.selected[i] = true
	pk.order = append(pk.order, i)
	pk.global[r.ResidentCategory]++
	if pk.byPriority[r.ResidentPriority] == nil {
		pk.byPriority[r.ResidentPriority] = make(map[string]int)
	}
	pk.byPriority[r.ResidentPriority][r.ResidentCategory]++
}

func (pk *picker) picked() []domain.DemoExample {
	out := make([]domain.DemoExample, 0, len(pk.order))
	for _, i := range pk.order {
		out = append(out, pk.rows[i])
	}
	return out
}

// topUp returns up to need unselected rows, least-picked categories first.
func (pk *picker) topUp(need int) []domain.DemoExample {
	idx := make([]int, 0, len(pk.rows))
	for i := range pk.rows {
		if !pk.selected[i] {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return pk.global[pk.rows[idx[a]].ResidentCategory] < pk.global[pk.rows[idx[b]].ResidentCategory]
	})
	out := make([]domain.DemoExample, 0, need)
	for _, i := range idx[:min(need, len(idx))] {
		out = append(out, pk.rows[i])
	}
	return out
}

func less(a, b [3]int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func shuffle(rows []domain.DemoExample, seed uint64) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	rng.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
}
