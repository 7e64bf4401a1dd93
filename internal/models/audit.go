package models

import "time"

// AuditRecord is durable evidence that a governance evaluation occurred.
type AuditRecord struct {
	AuditID              string    `json:"audit_id"`
	Timestamp            time.Time `json:"timestamp"`
	ActionReviewed        string    `json:"action_reviewed"`
	Assessment           AssessmentVerdict `json:"assessment"`
	RelevantPrincipleIDs []string  `json:"relevant_principle_ids"`
	SSeriesTriggered     bool      `json:"s_series_triggered"`
}
