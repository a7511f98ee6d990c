package dto

import (
	"time"

	"github.com/spec-kit/ticket-retriage/internal/domain"
	"github.com/spec-kit/ticket-retriage/internal/observability"
)

// ReloadResponse reports the catalog after a reload.
type ReloadResponse struct {
	Priorities int `json:"priorities"`
	Categories int `json:"categories"`
	Examples   int `json:"examples"`
}

// AuditEntryResponse is one audit row.
type AuditEntryResponse struct {
	ID               string    `json:"id"`
	RequestID        string    `json:"request_id"`
	Source           string    `json:"source"`
	Model            string    `json:"model,omitempty"`
	ResidentPriority string    `json:"resident_priority"`
	ResidentCategory string    `json:"resident_category"`
	AIPriority       string    `json:"ai_priority,omitempty"`
	AICategory       string    `json:"ai_category,omitempty"`
	Fallbacks        []string  `json:"fallbacks,omitempty"`
	LatencyMS        int64     `json:"latency_ms"`
	Error            *string   `json:"error,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// StatsResponse exposes the in-memory counters.
type StatsResponse struct {
	Metrics observability.MetricsSnapshot `json:"metrics"`
}

// NewAuditEntryResponse maps a domain entry.
func NewAuditEntryResponse(e domain.AuditEntry) AuditEntryResponse {
	return AuditEntryResponse{
		ID:               e.ID,
		RequestID:        e.RequestID,
		Source:           string(e.Source),
		Model:            e.Model,
		ResidentPriority: e.ResidentPriority,
		ResidentCategory: e.ResidentCategory,
		AIPriority:       e.AIPriority,
		AICategory:       e.AICategory,
		Fallbacks:        e.Fallbacks,
		LatencyMS:        e.LatencyMS,
		Error:            e.Error,
		CreatedAt:        e.CreatedAt,
	}
}
