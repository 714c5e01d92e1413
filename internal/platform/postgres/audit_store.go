package postgres

import (
	"context"
	"log/slog"

	"github.com/leadpulse/pulse-api/internal/domain"
	"github.com/leadpulse/pulse-api/internal/platform/logger"
	"github.com/leadpulse/pulse-api/internal/store"
)

// PostgresAuditStore implements the store.AuditStore interface using a
// PostgreSQL database as the storage backend. Audit entries are
// append-only and stored without redaction.
type PostgresAuditStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAuditStore creates a new PostgreSQL implementation of the
// AuditStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresAuditStore(db store.DBTX, logger *slog.Logger) *PostgresAuditStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAuditStore{
		db:     db,
		logger: logger.With(slog.String("component", "audit_store")),
	}
}

// Ensure PostgresAuditStore implements store.AuditStore interface
var _ store.AuditStore = (*PostgresAuditStore)(nil)

// Append implements store.AuditStore.Append
func (s *PostgresAuditStore) Append(ctx context.Context, entry *domain.AuditEntry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO audit_entries (id, event, payload, actor, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.Event,
		[]byte(entry.Payload),
		entry.Actor,
		entry.CreatedAt,
	)

	if err != nil {
		log.Error("failed to append audit entry",
			slog.String("error", err.Error()),
			slog.String("event", entry.Event),
			slog.String("actor", entry.Actor))
		return err
	}

	return nil
}
