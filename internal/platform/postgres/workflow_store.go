package postgres

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/leadpulse/pulse-api/internal/domain"
	"github.com/leadpulse/pulse-api/internal/platform/logger"
	"github.com/leadpulse/pulse-api/internal/store"
)

// PostgresWorkflowStore implements the store.WorkflowStore interface
// using a PostgreSQL database as the storage backend. Workflows are
// managed externally; this store reads them and tracks the edge-mode
// fired markers.
type PostgresWorkflowStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresWorkflowStore creates a new PostgreSQL implementation of the
// WorkflowStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresWorkflowStore(db store.DBTX, logger *slog.Logger) *PostgresWorkflowStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresWorkflowStore{
		db:     db,
		logger: logger.With(slog.String("component", "workflow_store")),
	}
}

// Ensure PostgresWorkflowStore implements store.WorkflowStore interface
var _ store.WorkflowStore = (*PostgresWorkflowStore)(nil)

// ListActive implements store.WorkflowStore.ListActive
// Each workflow's raw JSON config is decoded exactly once here; malformed
// configs decode to the typed defaults rather than failing the load.
func (s *PostgresWorkflowStore) ListActive(ctx context.Context) ([]*domain.AutomationWorkflow, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, name, trigger_type, status, config, created_at
		FROM automation_workflows
		WHERE status = $1
		ORDER BY created_at
	`

	rows, err := s.db.QueryContext(ctx, query, domain.WorkflowStatusActive)
	if err != nil {
		log.Error("failed to query active workflows",
			slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var workflows []*domain.AutomationWorkflow
	for rows.Next() {
		var wf domain.AutomationWorkflow
		var triggerType, status string
		var rawConfig []byte

		err := rows.Scan(
			&wf.ID,
			&wf.Name,
			&triggerType,
			&status,
			&rawConfig,
			&wf.CreatedAt,
		)
		if err != nil {
			log.Error("failed to scan workflow row",
				slog.String("error", err.Error()))
			return nil, err
		}

		wf.TriggerType = domain.ParseTriggerType(triggerType)
		wf.Status = domain.WorkflowStatus(status)
		wf.Action, wf.Email = domain.DecodeWorkflowConfig(rawConfig)

		workflows = append(workflows, &wf)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning workflow rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	if workflows == nil {
		workflows = []*domain.AutomationWorkflow{}
	}

	log.Debug("loaded active workflows", slog.Int("count", len(workflows)))
	return workflows, nil
}

// MarkFired implements store.WorkflowStore.MarkFired
// The insert is idempotent: marking an already-marked pair is a no-op.
func (s *PostgresWorkflowStore) MarkFired(ctx context.Context, workflowID, contactID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO workflow_fires (workflow_id, contact_id, fired_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (workflow_id, contact_id) DO NOTHING
	`

	if _, err := s.db.ExecContext(ctx, query, workflowID, contactID); err != nil {
		log.Error("failed to mark workflow fired",
			slog.String("error", err.Error()),
			slog.String("workflow_id", workflowID.String()),
			slog.String("contact_id", contactID.String()))
		return err
	}

	return nil
}

// HasFired implements store.WorkflowStore.HasFired
func (s *PostgresWorkflowStore) HasFired(ctx context.Context, workflowID, contactID uuid.UUID) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM workflow_fires
			WHERE workflow_id = $1 AND contact_id = $2
		)
	`

	var fired bool
	if err := s.db.QueryRowContext(ctx, query, workflowID, contactID).Scan(&fired); err != nil {
		log.Error("failed to check workflow fired marker",
			slog.String("error", err.Error()),
			slog.String("workflow_id", workflowID.String()),
			slog.String("contact_id", contactID.String()))
		return false, err
	}

	return fired, nil
}
