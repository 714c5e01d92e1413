package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/leadpulse/pulse-api/internal/domain"
	"github.com/leadpulse/pulse-api/internal/platform/logger"
	"github.com/leadpulse/pulse-api/internal/platform/metrics"
	"github.com/leadpulse/pulse-api/internal/store"
)

// EmailDeliverer is the external email delivery collaborator contract.
// The engine depends only on this signature and has no knowledge of the
// transport protocol or its retries; the transport layer audits its own
// attempts independently.
type EmailDeliverer interface {
	Deliver(recipient, subject, htmlBody string) bool
}

// ActionDispatcher hands a fired workflow's action over for execution.
// The synchronous dispatcher executes inline on the request path; the
// task package provides a bounded-queue alternative.
type ActionDispatcher interface {
	Dispatch(ctx context.Context, workflow *domain.AutomationWorkflow, contact *domain.Contact, actor string) error
}

// Default email content substituted when a workflow's config leaves the
// subject or body empty.
const (
	defaultCreatedSubject = "Welcome!"
	defaultCreatedBody    = "<p>Thanks for getting in touch. We'll follow up shortly.</p>"
	defaultScoreSubject   = "Thanks for your engagement"
	defaultScoreBody      = "<p>Your recent activity caught our attention. Expect to hear from us soon.</p>"
)

// ActionExecutor performs a workflow's configured action. send_email is
// the only action kind today.
type ActionExecutor struct {
	deliverer EmailDeliverer
	audit     *AuditService
	logger    *slog.Logger
}

// NewActionExecutor creates an ActionExecutor.
// If logger is nil, the default logger is used.
func NewActionExecutor(deliverer EmailDeliverer, audit *AuditService, logger *slog.Logger) *ActionExecutor {
	if deliverer == nil {
		panic("deliverer cannot be nil")
	}
	if audit == nil {
		panic("audit service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ActionExecutor{
		deliverer: deliverer,
		audit:     audit,
		logger:    logger.With(slog.String("component", "action_executor")),
	}
}

// Execute runs the workflow's action for the given contact.
//
// A contact without an email address is a silent no-op: nothing is sent
// and no audit entry is written. When delivery is attempted, an
// automation_executed audit entry is always recorded regardless of the
// delivery boolean; automation bookkeeping is decoupled from transport
// success.
func (e *ActionExecutor) Execute(
	ctx context.Context,
	workflow *domain.AutomationWorkflow,
	contact *domain.Contact,
	actor string,
) error {
	log := logger.FromContextOrDefault(ctx, e.logger)

	switch workflow.Action {
	case domain.ActionSendEmail:
		if contact.Email == "" {
			log.Debug("contact has no email, skipping action",
				slog.String("workflow_id", workflow.ID.String()),
				slog.String("contact_id", contact.ID.String()))
			return nil
		}

		subject, body := emailContent(workflow)
		delivered := e.deliverer.Deliver(contact.Email, subject, body)

		outcome := "success"
		if !delivered {
			outcome = "failure"
		}
		metrics.EmailsHandedOff.WithLabelValues(outcome).Inc()
		metrics.AutomationsFired.WithLabelValues(string(workflow.TriggerType)).Inc()

		log.Info("automation action executed",
			slog.String("workflow_id", workflow.ID.String()),
			slog.String("contact_id", contact.ID.String()),
			slog.Bool("delivered", delivered))

		payload := struct {
			WorkflowID uuid.UUID `json:"workflow_id"`
			ContactID  uuid.UUID `json:"contact_id"`
			Action     string    `json:"action"`
			Delivered  bool      `json:"delivered"`
		}{
			WorkflowID: workflow.ID,
			ContactID:  contact.ID,
			Action:     string(domain.ActionSendEmail),
			Delivered:  delivered,
		}

		return e.audit.Record(ctx, domain.AuditAutomationExecuted, payload, actor)

	default:
		// Unknown action kinds are a "not configured" state, not an error.
		log.Debug("unknown action kind, skipping",
			slog.String("workflow_id", workflow.ID.String()),
			slog.String("action", string(workflow.Action)))
		return nil
	}
}

// emailContent resolves the subject and body for a send_email action,
// substituting trigger-specific defaults for empty config values.
func emailContent(workflow *domain.AutomationWorkflow) (string, string) {
	subject := workflow.Email.Subject
	body := workflow.Email.Body

	if workflow.TriggerType == domain.TriggerContactCreated {
		if subject == "" {
			subject = defaultCreatedSubject
		}
		if body == "" {
			body = defaultCreatedBody
		}
		return subject, body
	}

	if subject == "" {
		subject = defaultScoreSubject
	}
	if body == "" {
		body = defaultScoreBody
	}
	return subject, body
}

// SyncDispatcher executes actions inline on the caller's stack. This is
// the default wiring and preserves the synchronous behavior of the
// original request path: a slow delivery call blocks the response.
type SyncDispatcher struct {
	executor *ActionExecutor
}

// NewSyncDispatcher creates a SyncDispatcher.
func NewSyncDispatcher(executor *ActionExecutor) *SyncDispatcher {
	if executor == nil {
		panic("executor cannot be nil")
	}
	return &SyncDispatcher{executor: executor}
}

// Ensure SyncDispatcher implements ActionDispatcher
var _ ActionDispatcher = (*SyncDispatcher)(nil)

// Dispatch implements ActionDispatcher by executing the action inline.
func (d *SyncDispatcher) Dispatch(
	ctx context.Context,
	workflow *domain.AutomationWorkflow,
	contact *domain.Contact,
	actor string,
) error {
	return d.executor.Execute(ctx, workflow, contact, actor)
}

// TriggerEvaluator re-checks all active workflows against the current
// contact state or an explicit domain event.
type TriggerEvaluator struct {
	contacts   store.ContactStore
	workflows  store.WorkflowStore
	dispatcher ActionDispatcher
	firingMode domain.FiringMode
	logger     *slog.Logger
}

// NewTriggerEvaluator creates a TriggerEvaluator.
// If logger is nil, the default logger is used.
func NewTriggerEvaluator(
	contacts store.ContactStore,
	workflows store.WorkflowStore,
	dispatcher ActionDispatcher,
	firingMode domain.FiringMode,
	logger *slog.Logger,
) *TriggerEvaluator {
	if contacts == nil {
		panic("contacts store cannot be nil")
	}
	if workflows == nil {
		panic("workflows store cannot be nil")
	}
	if dispatcher == nil {
		panic("dispatcher cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TriggerEvaluator{
		contacts:   contacts,
		workflows:  workflows,
		dispatcher: dispatcher,
		firingMode: firingMode,
		logger:     logger.With(slog.String("component", "trigger_evaluator")),
	}
}

// Ensure TriggerEvaluator implements WorkflowEvaluator
var _ WorkflowEvaluator = (*TriggerEvaluator)(nil)

// Evaluate loads the contact snapshot and all active workflows, fires the
// ones whose trigger matches, and isolates per-workflow action failures so
// one failing workflow never prevents evaluation of the rest.
//
// score_achieved workflows fire when the contact's current lead score
// meets the configured threshold on a lead_score_changed call. In level
// mode (the default) this re-fires on every qualifying call; edge mode
// fires once per workflow/contact pair using a persisted marker.
// contact_created workflows fire only when the incoming trigger literally
// equals contact_created. Unmatched trigger types are skipped; that is not
// an error.
func (e *TriggerEvaluator) Evaluate(
	ctx context.Context,
	contactID uuid.UUID,
	trigger domain.TriggerType,
	actor string,
) error {
	log := logger.FromContextOrDefault(ctx, e.logger)

	contact, err := e.contacts.GetByID(ctx, contactID)
	if err != nil {
		if errors.Is(err, store.ErrContactNotFound) {
			log.Debug("contact not found, skipping evaluation",
				slog.String("contact_id", contactID.String()))
			return nil
		}
		return err
	}

	workflows, err := e.workflows.ListActive(ctx)
	if err != nil {
		return err
	}

	for _, workflow := range workflows {
		fire, err := e.shouldFire(ctx, workflow, contact, trigger)
		if err != nil {
			return err
		}
		if !fire {
			continue
		}

		if err := e.dispatcher.Dispatch(ctx, workflow, contact, actor); err != nil {
			// Failures are isolated per workflow: log and keep going.
			log.Error("workflow action failed",
				slog.String("error", err.Error()),
				slog.String("workflow_id", workflow.ID.String()),
				slog.String("contact_id", contact.ID.String()))
			continue
		}

		if e.firingMode == domain.FiringModeEdge && workflow.TriggerType == domain.TriggerScoreAchieved {
			if err := e.workflows.MarkFired(ctx, workflow.ID, contact.ID); err != nil {
				return err
			}
		}
	}

	return nil
}

// shouldFire decides whether one workflow fires for the incoming trigger.
func (e *TriggerEvaluator) shouldFire(
	ctx context.Context,
	workflow *domain.AutomationWorkflow,
	contact *domain.Contact,
	trigger domain.TriggerType,
) (bool, error) {
	switch workflow.TriggerType {
	case domain.TriggerScoreAchieved:
		if trigger != domain.TriggerLeadScoreChanged {
			return false, nil
		}
		if contact.LeadScore < workflow.Email.MinScore {
			return false, nil
		}
		if e.firingMode == domain.FiringModeEdge {
			fired, err := e.workflows.HasFired(ctx, workflow.ID, contact.ID)
			if err != nil {
				return false, err
			}
			return !fired, nil
		}
		return true, nil

	case domain.TriggerContactCreated:
		return trigger == domain.TriggerContactCreated, nil

	default:
		// Unknown or non-firing trigger types never match.
		return false, nil
	}
}
