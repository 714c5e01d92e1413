package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/leadpulse/pulse-api/internal/domain"
	"github.com/leadpulse/pulse-api/internal/platform/logger"
	"github.com/leadpulse/pulse-api/internal/platform/metrics"
	"github.com/leadpulse/pulse-api/internal/store"
)

// WorkflowEvaluator re-checks active workflows against current contact
// state after a domain event. Implemented by TriggerEvaluator; split out
// so the scoring service can be tested in isolation.
type WorkflowEvaluator interface {
	Evaluate(ctx context.Context, contactID uuid.UUID, trigger domain.TriggerType, actor string) error
}

// ScoringService applies rule-driven score deltas to contacts. It is the
// only path that mutates lead_score, and it does so through the store's
// single-statement atomic increment.
type ScoringService struct {
	contacts  store.ContactStore
	rules     store.ScoringRuleStore
	activity  store.ActivityStore
	evaluator WorkflowEvaluator
	logger    *slog.Logger
}

// NewScoringService creates a ScoringService.
// If logger is nil, the default logger is used.
func NewScoringService(
	contacts store.ContactStore,
	rules store.ScoringRuleStore,
	activity store.ActivityStore,
	evaluator WorkflowEvaluator,
	logger *slog.Logger,
) *ScoringService {
	if contacts == nil {
		panic("contacts store cannot be nil")
	}
	if rules == nil {
		panic("rules store cannot be nil")
	}
	if activity == nil {
		panic("activity store cannot be nil")
	}
	if evaluator == nil {
		panic("evaluator cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ScoringService{
		contacts:  contacts,
		rules:     rules,
		activity:  activity,
		evaluator: evaluator,
		logger:    logger.With(slog.String("component", "scoring_service")),
	}
}

// UpdateScore applies the configured delta for eventType to the contact,
// appends an activity event, and invokes workflow evaluation with the
// lead_score_changed trigger.
//
// An event type with no configured rule is a silent no-op: no score
// change, no activity event, no audit entry, no trigger evaluation. The
// same applies to a contact that does not exist. Storage failures are
// fatal for the current call; there are no retries here.
func (s *ScoringService) UpdateScore(
	ctx context.Context,
	contactID uuid.UUID,
	eventType domain.EventType,
	detail string,
	actor string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rule, err := s.rules.GetByEventType(ctx, eventType)
	if err != nil {
		if errors.Is(err, store.ErrRuleNotFound) {
			metrics.ScoringEventsSkipped.Inc()
			log.Debug("no scoring rule configured, skipping event",
				slog.String("event_type", eventType.String()),
				slog.String("contact_id", contactID.String()))
			return nil
		}
		return err
	}

	newScore, err := s.contacts.AddToLeadScore(ctx, contactID, rule.Score)
	if err != nil {
		if errors.Is(err, store.ErrContactNotFound) {
			log.Debug("contact not found, skipping scoring event",
				slog.String("contact_id", contactID.String()),
				slog.String("event_type", eventType.String()))
			return nil
		}
		return err
	}

	content := fmt.Sprintf("%s (%+d)", eventType, rule.Score)
	if detail != "" {
		content = fmt.Sprintf("%s: %s", content, detail)
	}

	event := domain.NewActivityEvent(contactID, eventType, content)
	if err := s.activity.Append(ctx, event); err != nil {
		return err
	}

	metrics.ScoringEventsApplied.WithLabelValues(metricEventLabel(eventType)).Inc()
	log.Info("scoring event applied",
		slog.String("contact_id", contactID.String()),
		slog.String("event_type", eventType.String()),
		slog.Int("delta", rule.Score),
		slog.Int("lead_score", newScore))

	return s.evaluator.Evaluate(ctx, contactID, domain.TriggerLeadScoreChanged, actor)
}

// metricEventLabel keeps metric cardinality bounded: canonical event kinds
// are labeled as themselves, operator-defined ones collapse to "custom".
func metricEventLabel(eventType domain.EventType) string {
	if _, known := domain.ParseEventType(eventType.String()); known {
		return eventType.String()
	}
	return "custom"
}
