package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/leadpulse/pulse-api/internal/domain"
	"github.com/leadpulse/pulse-api/internal/platform/logger"
	"github.com/leadpulse/pulse-api/internal/store"
)

// PostgresScoringRuleStore implements the store.ScoringRuleStore interface
// using a PostgreSQL database as the storage backend. Rules are managed
// externally; this store only reads.
type PostgresScoringRuleStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresScoringRuleStore creates a new PostgreSQL implementation of
// the ScoringRuleStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresScoringRuleStore(db store.DBTX, logger *slog.Logger) *PostgresScoringRuleStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresScoringRuleStore{
		db:     db,
		logger: logger.With(slog.String("component", "scoring_rule_store")),
	}
}

// Ensure PostgresScoringRuleStore implements store.ScoringRuleStore interface
var _ store.ScoringRuleStore = (*PostgresScoringRuleStore)(nil)

// GetByEventType implements store.ScoringRuleStore.GetByEventType
// Returns store.ErrRuleNotFound when no rule is configured for the event
// type; callers treat that as a silent no-op, not a fault.
func (s *PostgresScoringRuleStore) GetByEventType(
	ctx context.Context,
	eventType domain.EventType,
) (*domain.ScoringRule, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, event_type, score, name, description
		FROM scoring_rules
		WHERE event_type = $1
	`

	var rule domain.ScoringRule
	var ruleEventType string

	err := s.db.QueryRowContext(ctx, query, eventType.String()).Scan(
		&rule.ID,
		&ruleEventType,
		&rule.Score,
		&rule.Name,
		&rule.Description,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("no scoring rule for event type",
				slog.String("event_type", eventType.String()))
			return nil, store.ErrRuleNotFound
		}
		log.Error("failed to get scoring rule",
			slog.String("error", err.Error()),
			slog.String("event_type", eventType.String()))
		return nil, err
	}

	rule.EventType = domain.EventType(ruleEventType)

	return &rule, nil
}
