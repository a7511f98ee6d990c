package domain

import (
	"slices"
	"strings"
)

// PreferredDefaultPriority is preselected in the portal when it exists in the label set.
const PreferredDefaultPriority = "03-Routine"

// LabelSet holds the closed priority and category vocabularies.
type LabelSet struct {
	Priorities []string
	Categories []string
}

// NewLabelSet builds a LabelSet with blanks dropped, duplicates removed and entries sorted.
func NewLabelSet(priorities, categories []string) LabelSet {
	return LabelSet{
		Priorities: SortedUnique(priorities),
		Categories: SortedUnique(categories),
	}
}

// Empty reports whether either vocabulary is empty.
func (l LabelSet) Empty() bool {
	return len(l.Priorities) == 0 || len(l.Categories) == 0
}

// HasPriority reports whether p is an allowed priority.
func (l LabelSet) HasPriority(p string) bool {
	_, found := slices.BinarySearch(l.Priorities, p)
	return found
}

// HasCategory reports whether c is an allowed category.
func (l LabelSet) HasCategory(c string) bool {
	_, found := slices.BinarySearch(l.Categories, c)
	return found
}

// DefaultPriority returns the priority the portal preselects.
func (l LabelSet) DefaultPriority() string {
	if l.HasPriority(PreferredDefaultPriority) {
		return PreferredDefaultPriority
	}
	if len(l.Priorities) == 0 {
		return ""
	}
	return l.Priorities[0]
}

// SortedUnique trims values, drops blanks and returns the sorted distinct remainder.
func SortedUnique(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
