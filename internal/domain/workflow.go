package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TriggerType classifies the domain event that causes a workflow to be
// re-evaluated. The set is closed; anything else parses to TriggerUnknown
// and is handled by a single default no-op branch.
type TriggerType string

// Possible trigger type values
const (
	TriggerScoreAchieved    TriggerType = "score_achieved"
	TriggerContactCreated   TriggerType = "contact_created"
	TriggerLeadScoreChanged TriggerType = "lead_score_changed"
	TriggerUnknown          TriggerType = "unknown"
)

// ParseTriggerType maps a raw string onto the closed trigger type set.
func ParseTriggerType(raw string) TriggerType {
	switch TriggerType(raw) {
	case TriggerScoreAchieved:
		return TriggerScoreAchieved
	case TriggerContactCreated:
		return TriggerContactCreated
	case TriggerLeadScoreChanged:
		return TriggerLeadScoreChanged
	default:
		return TriggerUnknown
	}
}

// WorkflowStatus represents the activation state of a workflow.
// There are exactly two states; Paused is reversible by external
// configuration change and is never evaluated.
type WorkflowStatus string

// Possible workflow status values
const (
	WorkflowStatusActive WorkflowStatus = "active"
	WorkflowStatusPaused WorkflowStatus = "paused"
)

// ActionKind identifies the action a workflow performs when it fires.
type ActionKind string

// Possible action kind values. send_email is the only kind today; the
// discriminated config decoding leaves room for more.
const (
	ActionSendEmail ActionKind = "send_email"
)

// FiringMode selects how score_achieved workflows fire.
type FiringMode string

// Possible firing mode values. Level mode re-fires on every qualifying
// evaluation and matches the historically observed behavior; edge mode
// fires once per workflow/contact pair using a persisted marker.
const (
	FiringModeLevel FiringMode = "level"
	FiringModeEdge  FiringMode = "edge"
)

// ParseFiringMode validates a raw firing mode string.
func ParseFiringMode(raw string) (FiringMode, error) {
	switch FiringMode(raw) {
	case FiringModeLevel:
		return FiringModeLevel, nil
	case FiringModeEdge:
		return FiringModeEdge, nil
	default:
		return "", ErrInvalidFiringMode
	}
}

// DefaultMinScore is the score threshold used when a workflow's config is
// missing or malformed.
const DefaultMinScore = 100

// SendEmailConfig holds the decoded parameters of a send_email action.
// Subject and Body may be empty; the executor substitutes trigger-specific
// defaults at send time.
type SendEmailConfig struct {
	MinScore int
	Subject  string
	Body     string
}

// AutomationWorkflow is a configured trigger + condition + action tuple.
// Workflows are managed externally and read-only to the engine; the raw
// JSON config is decoded exactly once at load.
type AutomationWorkflow struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	TriggerType TriggerType    `json:"trigger_type"`
	Status      WorkflowStatus `json:"status"`
	Action      ActionKind     `json:"action"`
	Email       SendEmailConfig
	CreatedAt   time.Time `json:"created_at"`
}

// IsActive reports whether the workflow should be evaluated at all.
func (w *AutomationWorkflow) IsActive() bool {
	return w.Status == WorkflowStatusActive
}

// workflowConfigWire is the stored JSON shape of a workflow config.
type workflowConfigWire struct {
	Action       string `json:"action"`
	MinScore     *int   `json:"min_score"`
	EmailSubject string `json:"email_subject"`
	EmailBody    string `json:"email_body"`
}

// DecodeWorkflowConfig decodes a raw JSON workflow config into its typed
// action kind and parameters. A missing or malformed config yields an
// effectively-empty send_email config falling back to DefaultMinScore;
// decode failures are an expected "not configured" state, not an error.
func DecodeWorkflowConfig(raw []byte) (ActionKind, SendEmailConfig) {
	cfg := SendEmailConfig{MinScore: DefaultMinScore}

	var wire workflowConfigWire
	if len(raw) == 0 || json.Unmarshal(raw, &wire) != nil {
		return ActionSendEmail, cfg
	}

	kind := ActionKind(wire.Action)
	if kind == "" {
		kind = ActionSendEmail
	}

	if wire.MinScore != nil {
		cfg.MinScore = *wire.MinScore
	}
	cfg.Subject = wire.EmailSubject
	cfg.Body = wire.EmailBody

	return kind, cfg
}
