package events

import (
	"time"

	"github.com/spec-kit/ticket-retriage/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTriageCompleted EventType = "triage_completed"
	EventTriageFailed    EventType = "triage_failed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RequestID string      `json:"request_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TriageCompletedPayload payload.
type TriageCompletedPayload struct {
	Model            string              `json:"model"`
	ResidentPriority string              `json:"resident_priority"`
	ResidentCategory string              `json:"resident_category"`
	Result           domain.TriageResult `json:"result"`
	Latency          time.Duration       `json:"latency"`
}

// TriageFailedPayload payload.
type TriageFailedPayload struct {
	Model            string        `json:"model"`
	ResidentPriority string        `json:"resident_priority"`
	ResidentCategory string        `json:"resident_category"`
	ErrorCode        string        `json:"error_code"`
	Error            string        `json:"error"`
	Latency          time.Duration `json:"latency"`
}
