package domain

import (
	"github.com/google/uuid"
)

// ScoringRule maps an event type to an integer score delta. Rules are
// managed externally and read-only to the engine; the delta may be
// negative and no floor or ceiling is enforced on the resulting score.
type ScoringRule struct {
	ID          uuid.UUID `json:"id"`
	EventType   EventType `json:"event_type"`
	Score       int       `json:"score"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
}
