package triage

import (
	"google.golang.org/genai"

	"github.com/spec-kit/ticket-retriage/internal/domain"
)

const (
	// MaxMessageChars bounds Suggested_Actions in the response schema.
	MaxMessageChars = 140
	// MaxMessageWords is the word limit the instruction asks the model to stay under.
	MaxMessageWords = 30
)

// ResponseSchema returns the structured output contract with the label enums injected.
func ResponseSchema(labels domain.LabelSet) *genai.Schema {
	item := &genai.Schema{
		Type:  genai.TypeObject,
		Title: "LabeledRequest",
		Properties: map[string]*genai.Schema{
			"id": {Type: genai.TypeInteger},
			"Priority": {
				Type:        genai.TypeString,
				Description: "One of the allowed Priority labels.",
				Enum:        append([]string(nil), labels.Priorities...),
			},
			"Service_Category": {
				Type:        genai.TypeString,
				Description: "One of the allowed Service Category labels.",
				Enum:        append([]string(nil), labels.Categories...),
			},
			"Suggested_Actions": {
				Type:        genai.TypeString,
				Description: "One sentence, <30 words, very general, no repair steps.",
				MaxLength:   genai.Ptr[int64](MaxMessageChars),
			},
		},
		Required:         []string{"id", "Priority", "Service_Category", "Suggested_Actions"},
		PropertyOrdering: []string{"id", "Priority", "Service_Category", "Suggested_Actions"},
	}

	return &genai.Schema{
		Type:  genai.TypeObject,
		Title: "BatchResponse",
		Properties: map[string]*genai.Schema{
			"results": {Type: genai.TypeArray, Items: item},
		},
		Required: []string{"results"},
	}
}
