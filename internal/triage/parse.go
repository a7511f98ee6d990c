package triage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/spec-kit/ticket-retriage/internal/domain"
)

// DefaultResidentMessage replaces an empty model message.
const DefaultResidentMessage = "Thank you for letting us know, we're sorry for the inconvenience and our maintenance team will be in touch with you soon."

// ErrNoResults is returned when the model response holds no result objects.
var ErrNoResults = errors.New("model response contained no results")

// ParseBatchResponse decodes the model's JSON text, repairing it once when it is malformed.
func ParseBatchResponse(text string) (domain.BatchResponse, error) {
	var out domain.BatchResponse
	text = stripCodeFence(text)

	err := json.Unmarshal([]byte(text), &out)
	if err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(text)
		if repairErr != nil {
			return domain.BatchResponse{}, fmt.Errorf("decode model response: %w", err)
		}
		out = domain.BatchResponse{}
		if err := json.Unmarshal([]byte(repaired), &out); err != nil {
			return domain.BatchResponse{}, fmt.Errorf("decode repaired model response: %w", err)
		}
	}
	if len(out.Results) == 0 {
		return domain.BatchResponse{}, ErrNoResults
	}
	return out, nil
}

// Reconcile turns one labeled item into a result for ticket. Labels outside the
// allowed sets fall back to the resident's own choice; an empty message falls
// back to DefaultResidentMessage.
func Reconcile(ticket domain.Ticket, labeled domain.LabeledRequest, labels domain.LabelSet) domain.TriageResult {
	result := domain.TriageResult{
		TicketID:        ticket.ID,
		Priority:        strings.TrimSpace(labeled.Priority),
		Category:        strings.TrimSpace(labeled.ServiceCategory),
		ResidentMessage: strings.TrimSpace(labeled.SuggestedActions),
		Source:          domain.TriageSourceModel,
	}

	if !labels.HasPriority(result.Priority) {
		result.Priority = ticket.Priority
		result.Fallbacks = append(result.Fallbacks, domain.FieldPriority)
	}
	if !labels.HasCategory(result.Category) {
		result.Category = ticket.Category
		result.Fallbacks = append(result.Fallbacks, domain.FieldCategory)
	}
	if result.ResidentMessage == "" {
		result.ResidentMessage = DefaultResidentMessage
		result.Fallbacks = append(result.Fallbacks, domain.FieldMessage)
	} else {
		result.Warnings = MessageWarnings(result.ResidentMessage)
	}
	return result
}

// MessageWarnings lists the resident message rules that msg breaks.
func MessageWarnings(msg string) []string {
	var warnings []string
	if n := domain.WordCount(msg); n >= MaxMessageWords {
		warnings = append(warnings, fmt.Sprintf("message has %d words, limit is under %d", n, MaxMessageWords))
	}
	if n := len([]rune(msg)); n > MaxMessageChars {
		warnings = append(warnings, fmt.Sprintf("message has %d characters, limit is %d", n, MaxMessageChars))
	}
	seen := make(map[string]bool, len(ProhibitedWords))
	for _, word := range strings.FieldsFunc(strings.ToLower(msg), func(r rune) bool {
		return !(r >= 'a' && r <= 'z')
	}) {
		for _, banned := range ProhibitedWords {
			if !seen[banned] && isFormOf(word, banned) {
				seen[banned] = true
				warnings = append(warnings, fmt.Sprintf("message uses prohibited word %q", banned))
			}
		}
	}
	return warnings
}

// isFormOf reports whether word is banned or an inflection of it. A trailing
// "e" may drop before a vowel suffix, as in "diagnosing" or "evaluation".
func isFormOf(word, banned string) bool {
	if word == banned || (strings.HasPrefix(word, banned) && isInflection(word[len(banned):])) {
		return true
	}
	stem, ok := strings.CutSuffix(banned, "e")
	if !ok || !strings.HasPrefix(word, stem) {
		return false
	}
	switch word[len(stem):] {
	case "ing", "ion", "ions", "ed":
		return true
	}
	return false
}

func isInflection(suffix string) bool {
	switch suffix {
	case "s", "es", "ed", "d", "ing", "ion", "ment":
		return true
	}
	return false
}

func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
