package models

import "time"

// EventType names an assessment event on the events topic.
type EventType string

const (
	EventProjection EventType = "projection.completed"
	EventRisk       EventType = "risk.evaluated"
)

// AssessmentEvent is the envelope published for every projection or risk
// evaluation. Payload is a *ProjectionResult or *RiskAssessment.
type AssessmentEvent struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	UserID     int64       `json:"user_id,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}
