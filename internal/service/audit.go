package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/leadpulse/pulse-api/internal/domain"
	"github.com/leadpulse/pulse-api/internal/store"
)

// AuditService appends immutable audit entries with a server-generated
// timestamp. The actor is always supplied explicitly by the caller; this
// service has no ambient identity lookup and applies no redaction.
type AuditService struct {
	entries store.AuditStore
	clock   clockwork.Clock
	logger  *slog.Logger
}

// NewAuditService creates an AuditService.
// If clock is nil, the real clock is used. If logger is nil, the default
// logger is used.
func NewAuditService(entries store.AuditStore, clock clockwork.Clock, logger *slog.Logger) *AuditService {
	if entries == nil {
		panic("entries store cannot be nil")
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &AuditService{
		entries: entries,
		clock:   clock,
		logger:  logger.With(slog.String("component", "audit_service")),
	}
}

// Record appends one audit entry for the named event. The payload is
// serialized and stored as given.
func (s *AuditService) Record(ctx context.Context, event string, payload any, actor string) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to serialize audit payload: %w", err)
	}

	entry := &domain.AuditEntry{
		ID:        uuid.New(),
		Event:     event,
		Payload:   raw,
		Actor:     actor,
		CreatedAt: s.clock.Now().UTC(),
	}

	if err := s.entries.Append(ctx, entry); err != nil {
		return err
	}

	s.logger.Debug("audit entry recorded",
		slog.String("event", event),
		slog.String("actor", actor))
	return nil
}
