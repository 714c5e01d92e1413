// Package metrics defines the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ingestion metrics
var (
	// SignalsIngested tracks inbound signals by entry point (pixel, click, webhook)
	SignalsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_signals_ingested_total",
			Help: "Inbound signals by gateway entry point",
		},
		[]string{"entry_point"},
	)

	// WebhookRejections tracks webhook calls rejected by the shared-secret check
	WebhookRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pulse_webhook_rejections_total",
			Help: "Webhook calls rejected with 403 by the token check",
		},
	)
)

// Scoring and automation metrics
var (
	// ScoringEventsApplied tracks scoring events that matched a rule and mutated a score
	ScoringEventsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_scoring_events_applied_total",
			Help: "Scoring events that matched a rule, by event type",
		},
		[]string{"event_type"},
	)

	// ScoringEventsSkipped tracks events with no configured rule (silent no-ops)
	ScoringEventsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pulse_scoring_events_skipped_total",
			Help: "Scoring events dropped because no rule is configured",
		},
	)

	// AutomationsFired tracks workflow actions executed, by trigger type
	AutomationsFired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_automations_fired_total",
			Help: "Workflow actions executed, by trigger type",
		},
		[]string{"trigger_type"},
	)

	// EmailsHandedOff tracks emails handed to the delivery collaborator, by reported outcome
	EmailsHandedOff = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_emails_handed_off_total",
			Help: "Emails handed to the delivery collaborator, by reported outcome",
		},
		[]string{"outcome"},
	)
)
