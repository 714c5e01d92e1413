package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Audit event names written by the engine. Pure no-ops are never audited.
const (
	AuditAutomationExecuted = "automation_executed"
	AuditWebhookRejected    = "webhook_rejected"
	AuditWebhookContact     = "webhook_contact_intake"
)

// System actor identities for calls not originating from a user session.
const (
	ActorSystemWebhook  = "system:webhook"
	ActorSystemTracking = "system:tracking"
)

// AuditEntry is one append-only record of a security- or automation-
// relevant outcome. The actor is always supplied explicitly by the caller;
// the audit log has no ambient identity lookup. Payloads are stored as
// given, without redaction.
type AuditEntry struct {
	ID        uuid.UUID       `json:"id"`
	Event     string          `json:"event"`
	Payload   json.RawMessage `json:"payload"`
	Actor     string          `json:"actor"`
	CreatedAt time.Time       `json:"created_at"`
}
