package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leadpulse/pulse-api/internal/domain"
	"github.com/leadpulse/pulse-api/internal/platform/logger"
	"github.com/leadpulse/pulse-api/internal/store"
)

// PostgresDealStore implements the store.DealStore interface using a
// PostgreSQL database as the storage backend.
type PostgresDealStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDealStore creates a new PostgreSQL implementation of the
// DealStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresDealStore(db store.DBTX, logger *slog.Logger) *PostgresDealStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresDealStore{
		db:     db,
		logger: logger.With(slog.String("component", "deal_store")),
	}
}

// Ensure PostgresDealStore implements store.DealStore interface
var _ store.DealStore = (*PostgresDealStore)(nil)

// Create implements store.DealStore.Create
// Deals are never deduplicated: every call inserts a new row.
// Returns store.ErrInvalidEntity wrapped when the contact does not exist.
func (s *PostgresDealStore) Create(ctx context.Context, deal *domain.Deal) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := deal.Validate(); err != nil {
		log.Warn("deal validation failed during create",
			slog.String("error", err.Error()),
			slog.String("deal_id", deal.ID.String()))
		return err
	}

	query := `
		INSERT INTO deals (id, contact_id, title, stage, value, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		deal.ID,
		deal.ContactID,
		deal.Title,
		deal.Stage,
		deal.Value,
		deal.CreatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("foreign key violation during deal creation",
				slog.String("error", err.Error()),
				slog.String("contact_id", deal.ContactID.String()))
			return fmt.Errorf("%w: contact with ID %s not found",
				store.ErrInvalidEntity, deal.ContactID)
		}

		log.Error("failed to create deal",
			slog.String("error", err.Error()),
			slog.String("deal_id", deal.ID.String()))
		return err
	}

	log.Info("deal created",
		slog.String("deal_id", deal.ID.String()),
		slog.String("contact_id", deal.ContactID.String()),
		slog.String("stage", string(deal.Stage)))
	return nil
}
