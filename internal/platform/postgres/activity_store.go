package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leadpulse/pulse-api/internal/domain"
	"github.com/leadpulse/pulse-api/internal/platform/logger"
	"github.com/leadpulse/pulse-api/internal/store"
)

// PostgresActivityStore implements the store.ActivityStore interface
// using a PostgreSQL database as the storage backend. Activity events are
// append-only; there is no update or delete path.
type PostgresActivityStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresActivityStore creates a new PostgreSQL implementation of the
// ActivityStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresActivityStore(db store.DBTX, logger *slog.Logger) *PostgresActivityStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresActivityStore{
		db:     db,
		logger: logger.With(slog.String("component", "activity_store")),
	}
}

// Ensure PostgresActivityStore implements store.ActivityStore interface
var _ store.ActivityStore = (*PostgresActivityStore)(nil)

// Append implements store.ActivityStore.Append
// Returns store.ErrInvalidEntity wrapped when the contact does not exist
// (foreign key violation).
func (s *PostgresActivityStore) Append(ctx context.Context, event *domain.ActivityEvent) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO activity_events (id, contact_id, type, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		event.ID,
		event.ContactID,
		event.Type.String(),
		event.Content,
		event.CreatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("foreign key violation during activity append",
				slog.String("error", err.Error()),
				slog.String("contact_id", event.ContactID.String()))
			return fmt.Errorf("%w: contact with ID %s not found",
				store.ErrInvalidEntity, event.ContactID)
		}

		log.Error("failed to append activity event",
			slog.String("error", err.Error()),
			slog.String("contact_id", event.ContactID.String()),
			slog.String("type", event.Type.String()))
		return err
	}

	return nil
}
