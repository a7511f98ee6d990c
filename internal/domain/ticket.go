package domain

import (
	"strings"
	"time"
)

// MaxCommentWords caps the resident comment length accepted by the portal.
const MaxCommentWords = 100

// Ticket is a resident-submitted maintenance request.
type Ticket struct {
	ID          int
	Priority    string
	Category    string
	Comment     string
	SubmittedAt time.Time
}

// WordCount returns the number of whitespace separated words in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// Normalized returns a copy with surrounding whitespace trimmed from every label and the comment.
func (t Ticket) Normalized() Ticket {
	t.Priority = strings.TrimSpace(t.Priority)
	t.Category = strings.TrimSpace(t.Category)
	t.Comment = strings.TrimSpace(t.Comment)
	return t
}
