package triage

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/spec-kit/ticket-retriage/internal/domain"
)

var testLabels = domain.NewLabelSet(
	[]string{"01-Emergency", "02-Urgent", "03-Routine"},
	[]string{"Appliance", "Electrical", "Plumbing"},
)

func TestBuildSystemInstructionInlinesLabels(t *testing.T) {
	out := BuildSystemInstruction(testLabels)

	assert.Contains(t, out, `Priority MUST be exactly one of: ["01-Emergency","02-Urgent","03-Routine"]`)
	assert.Contains(t, out, `Service_Category MUST be exactly one of: ["Appliance","Electrical","Plumbing"]`)
	assert.Contains(t, out, "strictly UNDER 30 words")
	assert.Contains(t, out, `"troubleshoot"`)
}

func TestBuildUserContentsPortalItem(t *testing.T) {
	ticket := domain.Ticket{
		ID:          1,
		Priority:    "03-Routine",
		Category:    "Plumbing",
		Comment:     "  Kitchen sink drips  ",
		SubmittedAt: time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC),
	}

	out, err := BuildUserContents([]PortalItem{NewPortalItem(ticket)})
	require.NoError(t, err)

	assert.Contains(t, out, "INPUT_ITEMS_JSON:\n")
	assert.Contains(t, out, `"resident_selected_priority":"03-Routine"`)
	assert.Contains(t, out, `"ts":"2026-03-04T09:30:00Z"`)
	assert.Contains(t, out, `"comment":"Kitchen sink drips"`)
}

func TestResponseSchemaInjectsEnums(t *testing.T) {
	schema := ResponseSchema(testLabels)

	require.Equal(t, genai.TypeObject, schema.Type)
	results := schema.Properties["results"]
	require.NotNil(t, results)
	require.Equal(t, genai.TypeArray, results.Type)

	item := results.Items
	assert.Equal(t, testLabels.Priorities, item.Properties["Priority"].Enum)
	assert.Equal(t, testLabels.Categories, item.Properties["Service_Category"].Enum)
	require.NotNil(t, item.Properties["Suggested_Actions"].MaxLength)
	assert.Equal(t, int64(140), *item.Properties["Suggested_Actions"].MaxLength)
	assert.ElementsMatch(t, []string{"id", "Priority", "Service_Category", "Suggested_Actions"}, item.Required)

	item.Properties["Priority"].Enum[0] = "mutated"
	assert.Equal(t, "01-Emergency", testLabels.Priorities[0])
}

func TestParseBatchResponse(t *testing.T) {
	raw, err := json.Marshal(domain.BatchResponse{Results: []domain.LabeledRequest{{
		ID: 1, Priority: "02-Urgent", ServiceCategory: "Plumbing", SuggestedActions: "Please turn off the valve under your sink.",
	}}})
	require.NoError(t, err)

	out, err := ParseBatchResponse(string(raw))
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "Plumbing", out.Results[0].ServiceCategory)
}

func TestParseBatchResponseRepairsMalformedJSON(t *testing.T) {
	text := "```json\n{\"results\": [{\"id\": 1, \"Priority\": \"03-Routine\", \"Service_Category\": \"Appliance\", \"Suggested_Actions\": \"Hang tight.\",}]}\n```"

	out, err := ParseBatchResponse(text)
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "Appliance", out.Results[0].ServiceCategory)
}

func TestParseBatchResponseEmpty(t *testing.T) {
	_, err := ParseBatchResponse(`{"results": []}`)
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestReconcileKeepsAllowedLabels(t *testing.T) {
	ticket := domain.Ticket{ID: 7, Priority: "03-Routine", Category: "Appliance"}
	labeled := domain.LabeledRequest{ID: 1, Priority: "01-Emergency", ServiceCategory: "Electrical", SuggestedActions: "Please stay clear of the outlet."}

	result := Reconcile(ticket, labeled, testLabels)

	assert.Equal(t, 7, result.TicketID)
	assert.Equal(t, "01-Emergency", result.Priority)
	assert.Equal(t, "Electrical", result.Category)
	assert.Equal(t, domain.TriageSourceModel, result.Source)
	assert.Empty(t, result.Fallbacks)
	assert.Empty(t, result.Warnings)
}

func TestReconcileFallsBackPerField(t *testing.T) {
	ticket := domain.Ticket{ID: 7, Priority: "03-Routine", Category: "Appliance"}
	labeled := domain.LabeledRequest{Priority: "P1", ServiceCategory: "Electrical", SuggestedActions: "  "}

	result := Reconcile(ticket, labeled, testLabels)

	assert.Equal(t, "03-Routine", result.Priority)
	assert.Equal(t, "Electrical", result.Category)
	assert.Equal(t, DefaultResidentMessage, result.ResidentMessage)
	assert.True(t, result.FellBack(domain.FieldPriority))
	assert.False(t, result.FellBack(domain.FieldCategory))
	assert.True(t, result.FellBack(domain.FieldMessage))
}

func TestMessageWarnings(t *testing.T) {
	assert.Empty(t, MessageWarnings("We're sorry about the leak, please keep the area dry while you wait."))
	assert.Empty(t, MessageWarnings("Please stay comfortable, a prefix like fixture is fine."))

	warnings := MessageWarnings("Our team will repair and inspect it soon.")
	assert.Len(t, warnings, 2)

	warnings = MessageWarnings("We replaced nothing yet.")
	assert.Len(t, warnings, 1)

	for msg, banned := range map[string]string{
		"We are investigating the leak, please keep the area dry.": "investigate",
		"Someone will be evaluating your unit shortly.":            "evaluate",
		"Our team is diagnosing the problem now.":                  "diagnose",
		"An evaluation is scheduled, please stay clear.":           "evaluate",
		"The outlet was diagnosed yesterday.":                      "diagnose",
	} {
		assert.Equal(t, []string{`message uses prohibited word "` + banned + `"`}, MessageWarnings(msg), msg)
	}

	warnings = MessageWarnings("We will fix it and fix it again.")
	assert.Equal(t, []string{`message uses prohibited word "fix"`}, warnings)
}
