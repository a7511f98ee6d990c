package dto

import (
	"time"

	"github.com/spec-kit/ticket-retriage/internal/domain"
)

// RetriageRequest payload for a typed ticket.
type RetriageRequest struct {
	Priority string `json:"priority"`
	Category string `json:"category"`
	Comment  string `json:"comment"`
}

// TicketView is the resident's side of a comparison.
type TicketView struct {
	ID        int    `json:"id"`
	Priority  string `json:"priority"`
	Category  string `json:"category"`
	Comment   string `json:"comment"`
	WordCount int    `json:"word_count"`
}

// RetriageResponse pairs the resident's labels with the model's.
type RetriageResponse struct {
	RequestID   string              `json:"request_id"`
	Model       string              `json:"model,omitempty"`
	Resident    TicketView          `json:"resident"`
	Result      domain.TriageResult `json:"result"`
	Changed     ChangedFields       `json:"changed"`
	ElapsedMS   int64               `json:"elapsed_ms"`
	GeneratedAt time.Time           `json:"generated_at"`
}

// ChangedFields flags which labels the model disagreed on.
type ChangedFields struct {
	Priority bool `json:"priority"`
	Category bool `json:"category"`
}

// LabelsResponse lists the allowed vocabularies.
type LabelsResponse struct {
	Priorities      []string `json:"priorities"`
	Categories      []string `json:"categories"`
	DefaultPriority string   `json:"default_priority"`
	MaxCommentWords int      `json:"max_comment_words"`
	ModelEnabled    bool     `json:"model_enabled"`
}

// ExampleSummary describes a demo example without its precomputed answer.
type ExampleSummary struct {
	ID       int    `json:"id"`
	Priority string `json:"priority"`
	Category string `json:"category"`
	Comment  string `json:"comment"`
}

// NewTicketView builds the resident view of a ticket.
func NewTicketView(t domain.Ticket) TicketView {
	return TicketView{
		ID:        t.ID,
		Priority:  t.Priority,
		Category:  t.Category,
		Comment:   t.Comment,
		WordCount: domain.WordCount(t.Comment),
	}
}

// NewRetriageResponse builds the comparison for a ticket and its result.
func NewRetriageResponse(requestID, model string, t domain.Ticket, result domain.TriageResult, elapsed time.Duration, at time.Time) RetriageResponse {
	return RetriageResponse{
		RequestID: requestID,
		Model:     model,
		Resident:  NewTicketView(t),
		Result:    result,
		Changed: ChangedFields{
			Priority: result.Priority != t.Priority,
			Category: result.Category != t.Category,
		},
		ElapsedMS:   elapsed.Milliseconds(),
		GeneratedAt: at.UTC(),
	}
}

// NewExampleSummary builds the listing entry for a demo example.
func NewExampleSummary(e domain.DemoExample) ExampleSummary {
	return ExampleSummary{
		ID:       e.ID,
		Priority: e.ResidentPriority,
		Category: e.ResidentCategory,
		Comment:  e.Comment,
	}
}
