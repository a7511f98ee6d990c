package domain

import "time"

// AuditEntry records the outcome of one re-triage call. The comment text is never stored.
type AuditEntry struct {
	ID               string
	RequestID        string
	Source           TriageSource
	Model            string
	ResidentPriority string
	ResidentCategory string
	AIPriority       string
	AICategory       string
	Fallbacks        []string
	LatencyMS        int64
	Error            *string
	CreatedAt        time.Time
}
