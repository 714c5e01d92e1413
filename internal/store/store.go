package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/leadpulse/pulse-api/internal/domain"
)

// DBTX abstracts the database access layer. It is implemented by both
// *sql.DB and *sql.Tx, allowing store code to run against a connection or
// a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ContactStore persists contacts. Creation belongs to the resolver; score
// mutation belongs exclusively to the scoring engine via AddToLeadScore.
type ContactStore interface {
	// Create saves a new contact.
	Create(ctx context.Context, contact *domain.Contact) error

	// GetByID retrieves a contact by its unique ID.
	// Returns ErrContactNotFound if the contact does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Contact, error)

	// GetLatestByEmail retrieves the most recently created contact with an
	// exact, case-sensitive email match.
	// Returns ErrContactNotFound if no contact has that email.
	GetLatestByEmail(ctx context.Context, email string) (*domain.Contact, error)

	// AddToLeadScore atomically adds delta to the contact's lead score in a
	// single statement and returns the resulting score. Concurrent deltas
	// must never be lost; this is the only mutation path for lead_score.
	// Returns ErrContactNotFound if the contact does not exist.
	AddToLeadScore(ctx context.Context, id uuid.UUID, delta int) (int, error)
}

// ScoringRuleStore reads externally-managed scoring rules.
type ScoringRuleStore interface {
	// GetByEventType looks up the rule for an event type.
	// Returns ErrRuleNotFound when no rule is configured, which callers
	// treat as a silent no-op rather than a fault.
	GetByEventType(ctx context.Context, eventType domain.EventType) (*domain.ScoringRule, error)
}

// WorkflowStore reads externally-managed automation workflows and tracks
// edge-mode fired markers.
type WorkflowStore interface {
	// ListActive returns all workflows in the Active status with their
	// configs already decoded.
	ListActive(ctx context.Context) ([]*domain.AutomationWorkflow, error)

	// MarkFired records that a workflow fired for a contact. Marking the
	// same pair twice is not an error.
	MarkFired(ctx context.Context, workflowID, contactID uuid.UUID) error

	// HasFired reports whether a workflow has previously fired for a contact.
	HasFired(ctx context.Context, workflowID, contactID uuid.UUID) (bool, error)
}

// ActivityStore appends immutable activity events.
type ActivityStore interface {
	// Append persists one activity event. Rows are never updated or deleted.
	Append(ctx context.Context, event *domain.ActivityEvent) error
}

// AuditStore appends immutable audit entries.
type AuditStore interface {
	// Append persists one audit entry. Rows are never updated or deleted.
	Append(ctx context.Context, entry *domain.AuditEntry) error
}

// DealStore persists deals created from webhook payloads.
type DealStore interface {
	// Create saves a new deal. Deals are never deduplicated.
	Create(ctx context.Context, deal *domain.Deal) error
}
