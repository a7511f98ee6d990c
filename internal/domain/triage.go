package domain

// TriageSource identifies where a re-triage result came from.
type TriageSource string

const (
	TriageSourceModel   TriageSource = "model"
	TriageSourceCache   TriageSource = "cache"
	TriageSourceExample TriageSource = "example"
)

// TriageField names a field of a re-triage result that may fall back.
type TriageField string

const (
	FieldPriority TriageField = "priority"
	FieldCategory TriageField = "category"
	FieldMessage  TriageField = "message"
)

// LabeledRequest is one item of the model's structured response.
type LabeledRequest struct {
	ID               int    `json:"id"`
	Priority         string `json:"Priority"`
	ServiceCategory  string `json:"Service_Category"`
	SuggestedActions string `json:"Suggested_Actions"`
}

// BatchResponse is the model's structured response envelope.
type BatchResponse struct {
	Results []LabeledRequest `json:"results"`
}

// TriageResult is the re-derived priority, category and resident message for a ticket.
type TriageResult struct {
	TicketID        int           `json:"ticket_id"`
	Priority        string        `json:"ai_priority"`
	Category        string        `json:"ai_category"`
	ResidentMessage string        `json:"resident_message"`
	Source          TriageSource  `json:"source"`
	Fallbacks       []TriageField `json:"fallbacks,omitempty"`
	Warnings        []string      `json:"warnings,omitempty"`
}

// FellBack reports whether field was replaced during reconciliation.
func (r TriageResult) FellBack(field TriageField) bool {
	for _, f := range r.Fallbacks {
		if f == field {
			return true
		}
	}
	return false
}
