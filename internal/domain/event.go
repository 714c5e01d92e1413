package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies the kind of behavioral signal applied to a contact.
// Scoring rules are keyed by event type, so operator-defined custom kinds
// are carried through as-is; ParseEventType reports whether a kind is one
// of the canonical ones the gateway itself emits.
type EventType string

// Canonical event type values emitted by the ingestion gateway.
const (
	EventTypeEmailOpen  EventType = "email_open"
	EventTypeEmailClick EventType = "email_click"
	EventTypeFormSubmit EventType = "form_submit"
	EventTypePageVisit  EventType = "page_visit"
)

// ParseEventType normalizes a raw event type string. The boolean reports
// whether the kind is canonical; unknown kinds are still returned verbatim
// because scoring rules may be configured for them externally.
func ParseEventType(raw string) (EventType, bool) {
	et := EventType(raw)
	switch et {
	case EventTypeEmailOpen, EventTypeEmailClick, EventTypeFormSubmit, EventTypePageVisit:
		return et, true
	default:
		return et, false
	}
}

// String returns the wire representation of the event type.
func (e EventType) String() string {
	return string(e)
}

// ActivityEvent is one append-only, human-readable record of a scoring
// event applied to a contact. Rows are immutable once created.
type ActivityEvent struct {
	ID        uuid.UUID `json:"id"`
	ContactID uuid.UUID `json:"contact_id"`
	Type      EventType `json:"type"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewActivityEvent creates an ActivityEvent for the given contact.
func NewActivityEvent(contactID uuid.UUID, eventType EventType, content string) *ActivityEvent {
	return &ActivityEvent{
		ID:        uuid.New(),
		ContactID: contactID,
		Type:      eventType,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}
