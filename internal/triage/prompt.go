package triage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/ticket-retriage/internal/domain"
)

// PortalItem is the prompt payload for a ticket typed into the portal.
type PortalItem struct {
	ID               int    `json:"id"`
	Timestamp        string `json:"ts"`
	ResidentPriority string `json:"resident_selected_priority"`
	ResidentCategory string `json:"resident_selected_category"`
	Comment          string `json:"comment"`
}

// BatchItem is the prompt payload for a dataset row sent by the labeler.
type BatchItem struct {
	ID        int    `json:"id"`
	Timestamp string `json:"ts"`
	Comment   string `json:"comment"`
}

// ProhibitedWords may not appear in a resident message.
var ProhibitedWords = []string{
	"inspect", "repair", "replace", "investigate", "fix",
	"diagnose", "troubleshoot", "assess", "evaluate",
}

const systemInstructionTemplate = `You are an automated property management assistant. Your task is to analyze resident-submitted maintenance requests, classify them, and provide a legally safe, minimal-risk suggested action for the resident while they wait.

Return ONLY valid JSON matching the provided schema. Do not include markdown formatting or extra text.

### OUTPUT REQUIREMENTS ###
- Return exactly ONE result object per input item.
- Preserve the same id from the input item in each output object.
- Priority MUST be exactly one of: %s
- Service_Category MUST be exactly one of: %s
- Suggested_Actions must follow the rules below.

### SUGGESTED_ACTIONS RULES (resident-facing) ###
- Audience: Address the resident directly (use "you/your").
- Length: Exactly ONE sentence, strictly UNDER %d words.
- Tone: Warm, friendly, comforting, and reassuring. Acknowledge their inconvenience gently.
- Content: Very general, minimal legal risk. Focus only on immediate safety, isolating the issue, and waiting.
- Prohibited: Do NOT include repair steps, diagnostics, tools, parts, or chemicals.
- Prohibited words: do NOT use %s.
- Escalation: If immediate danger is implied (gas smell, sparks, major flooding, smoke), advise evacuating and contacting emergency services or the property emergency line.
`

// BuildSystemInstruction renders the assistant instruction with the allowed labels inlined.
func BuildSystemInstruction(labels domain.LabelSet) string {
	quoted := make([]string, len(ProhibitedWords))
	for i, w := range ProhibitedWords {
		quoted[i] = fmt.Sprintf("%q", w)
	}
	return fmt.Sprintf(systemInstructionTemplate,
		quoteList(labels.Priorities),
		quoteList(labels.Categories),
		MaxMessageWords,
		strings.Join(quoted, ", "),
	)
}

// BuildUserContents renders the item list the model should label.
func BuildUserContents(items any) (string, error) {
	payload, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode input items: %w", err)
	}
	return "Label these requests.\n\nINPUT_ITEMS_JSON:\n" + string(payload) + "\n", nil
}

// NewPortalItem maps a portal ticket onto its prompt payload.
func NewPortalItem(ticket domain.Ticket) PortalItem {
	return PortalItem{
		ID:               ticket.ID,
		Timestamp:        ticket.SubmittedAt.Format(time.RFC3339),
		ResidentPriority: ticket.Priority,
		ResidentCategory: ticket.Category,
		Comment:          strings.TrimSpace(ticket.Comment),
	}
}

// NewBatchItem maps a dataset row onto its prompt payload.
func NewBatchItem(req domain.ServiceRequest) BatchItem {
	return BatchItem{ID: req.ID, Timestamp: req.StartedAt, Comment: req.Comment}
}

func quoteList(values []string) string {
	raw, _ := json.Marshal(values)
	return string(raw)
}
