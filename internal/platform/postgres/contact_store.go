package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/leadpulse/pulse-api/internal/domain"
	"github.com/leadpulse/pulse-api/internal/platform/logger"
	"github.com/leadpulse/pulse-api/internal/store"
)

// PostgresContactStore implements the store.ContactStore interface
// using a PostgreSQL database as the storage backend.
type PostgresContactStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresContactStore creates a new PostgreSQL implementation of the
// ContactStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresContactStore(db store.DBTX, logger *slog.Logger) *PostgresContactStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresContactStore{
		db:     db,
		logger: logger.With(slog.String("component", "contact_store")),
	}
}

// Ensure PostgresContactStore implements store.ContactStore interface
var _ store.ContactStore = (*PostgresContactStore)(nil)

// Create implements store.ContactStore.Create
// It saves a new contact to the database, handling domain validation.
func (s *PostgresContactStore) Create(ctx context.Context, contact *domain.Contact) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := contact.Validate(); err != nil {
		log.Warn("contact validation failed during create",
			slog.String("error", err.Error()),
			slog.String("contact_id", contact.ID.String()))
		return err
	}

	query := `
		INSERT INTO contacts (id, email, name, phone, company, source, tags,
			utm_source, utm_medium, utm_campaign, lead_score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		contact.ID,
		contact.Email,
		contact.Name,
		contact.Phone,
		contact.Company,
		contact.Source,
		contact.Tags,
		contact.UTMSource,
		contact.UTMMedium,
		contact.UTMCampaign,
		contact.LeadScore,
		contact.CreatedAt,
	)

	if err != nil {
		log.Error("failed to create contact",
			slog.String("error", err.Error()),
			slog.String("contact_id", contact.ID.String()))
		return err
	}

	log.Info("contact created",
		slog.String("contact_id", contact.ID.String()),
		slog.String("source", contact.Source))
	return nil
}

// GetByID implements store.ContactStore.GetByID
// Returns store.ErrContactNotFound if the contact does not exist.
func (s *PostgresContactStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contact, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, email, name, phone, company, source, tags,
			utm_source, utm_medium, utm_campaign, lead_score, created_at
		FROM contacts
		WHERE id = $1
	`

	contact, err := s.scanContact(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("contact not found", slog.String("contact_id", id.String()))
			return nil, store.ErrContactNotFound
		}
		log.Error("failed to get contact by ID",
			slog.String("error", err.Error()),
			slog.String("contact_id", id.String()))
		return nil, err
	}

	return contact, nil
}

// GetLatestByEmail implements store.ContactStore.GetLatestByEmail
// The match is exact and case-sensitive; when several contacts share an
// email, the most recently created one wins.
// Returns store.ErrContactNotFound if no contact has that email.
func (s *PostgresContactStore) GetLatestByEmail(ctx context.Context, email string) (*domain.Contact, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, email, name, phone, company, source, tags,
			utm_source, utm_medium, utm_campaign, lead_score, created_at
		FROM contacts
		WHERE email = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	contact, err := s.scanContact(s.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("no contact with email", slog.String("email", email))
			return nil, store.ErrContactNotFound
		}
		log.Error("failed to get contact by email",
			slog.String("error", err.Error()))
		return nil, err
	}

	return contact, nil
}

// AddToLeadScore implements store.ContactStore.AddToLeadScore
// The delta is applied in a single UPDATE statement so concurrent calls
// never lose updates; there is no read-then-write anywhere on this path.
// Returns store.ErrContactNotFound if the contact does not exist.
func (s *PostgresContactStore) AddToLeadScore(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE contacts
		SET lead_score = lead_score + $1
		WHERE id = $2
		RETURNING lead_score
	`

	var newScore int
	err := s.db.QueryRowContext(ctx, query, delta, id).Scan(&newScore)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("contact not found for score update",
				slog.String("contact_id", id.String()))
			return 0, store.ErrContactNotFound
		}
		log.Error("failed to update lead score",
			slog.String("error", err.Error()),
			slog.String("contact_id", id.String()),
			slog.Int("delta", delta))
		return 0, err
	}

	log.Debug("lead score updated",
		slog.String("contact_id", id.String()),
		slog.Int("delta", delta),
		slog.Int("lead_score", newScore))
	return newScore, nil
}

// rowScanner abstracts *sql.Row for the shared contact scan.
type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresContactStore) scanContact(row rowScanner) (*domain.Contact, error) {
	var contact domain.Contact
	err := row.Scan(
		&contact.ID,
		&contact.Email,
		&contact.Name,
		&contact.Phone,
		&contact.Company,
		&contact.Source,
		&contact.Tags,
		&contact.UTMSource,
		&contact.UTMMedium,
		&contact.UTMCampaign,
		&contact.LeadScore,
		&contact.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &contact, nil
}
