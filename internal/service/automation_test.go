package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/leadpulse/pulse-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoreWorkflow(minScore int) *domain.AutomationWorkflow {
	return &domain.AutomationWorkflow{
		ID:          uuid.New(),
		Name:        "hot lead alert",
		TriggerType: domain.TriggerScoreAchieved,
		Status:      domain.WorkflowStatusActive,
		Action:      domain.ActionSendEmail,
		Email:       domain.SendEmailConfig{MinScore: minScore},
		CreatedAt:   time.Now().UTC(),
	}
}

func createdWorkflow() *domain.AutomationWorkflow {
	return &domain.AutomationWorkflow{
		ID:          uuid.New(),
		Name:        "welcome email",
		TriggerType: domain.TriggerContactCreated,
		Status:      domain.WorkflowStatusActive,
		Action:      domain.ActionSendEmail,
		Email:       domain.SendEmailConfig{MinScore: domain.DefaultMinScore},
		CreatedAt:   time.Now().UTC(),
	}
}

func contactWithScore(t *testing.T, contacts *fakeContactStore, email string, score int) *domain.Contact {
	t.Helper()
	contact := newTestContact(t, contacts, email)
	if score != 0 {
		_, err := contacts.AddToLeadScore(context.Background(), contact.ID, score)
		require.NoError(t, err)
	}
	contact.LeadScore = score
	return contact
}

func TestEvaluateScoreAchievedIsLevelTriggered(t *testing.T) {
	contacts := newFakeContactStore()
	workflow := scoreWorkflow(100)
	workflows := newFakeWorkflowStore(workflow)
	dispatcher := newFakeDispatcher()
	evaluator := NewTriggerEvaluator(contacts, workflows, dispatcher, domain.FiringModeLevel, nil)

	contact := contactWithScore(t, contacts, "a@b.com", 120)

	// Level mode re-fires on every qualifying evaluation.
	for i := 0; i < 3; i++ {
		require.NoError(t, evaluator.Evaluate(context.Background(), contact.ID, domain.TriggerLeadScoreChanged, domain.ActorSystemTracking))
	}

	assert.Len(t, dispatcher.dispatched(), 3)
}

func TestEvaluateScoreAchievedThreshold(t *testing.T) {
	tests := []struct {
		name     string
		minScore int
		score    int
		fires    bool
	}{
		{name: "below threshold", minScore: 100, score: 95, fires: false},
		{name: "exactly at threshold", minScore: 100, score: 100, fires: true},
		{name: "above threshold", minScore: 100, score: 150, fires: true},
		{name: "negative score never qualifies", minScore: 100, score: -10, fires: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contacts := newFakeContactStore()
			workflows := newFakeWorkflowStore(scoreWorkflow(tt.minScore))
			dispatcher := newFakeDispatcher()
			evaluator := NewTriggerEvaluator(contacts, workflows, dispatcher, domain.FiringModeLevel, nil)

			contact := contactWithScore(t, contacts, "a@b.com", tt.score)

			require.NoError(t, evaluator.Evaluate(context.Background(), contact.ID, domain.TriggerLeadScoreChanged, domain.ActorSystemTracking))

			if tt.fires {
				assert.Len(t, dispatcher.dispatched(), 1)
			} else {
				assert.Empty(t, dispatcher.dispatched())
			}
		})
	}
}

func TestEvaluateEdgeModeFiresOncePerContact(t *testing.T) {
	contacts := newFakeContactStore()
	workflow := scoreWorkflow(100)
	workflows := newFakeWorkflowStore(workflow)
	dispatcher := newFakeDispatcher()
	evaluator := NewTriggerEvaluator(contacts, workflows, dispatcher, domain.FiringModeEdge, nil)

	contact := contactWithScore(t, contacts, "a@b.com", 120)

	for i := 0; i < 3; i++ {
		require.NoError(t, evaluator.Evaluate(context.Background(), contact.ID, domain.TriggerLeadScoreChanged, domain.ActorSystemTracking))
	}

	assert.Len(t, dispatcher.dispatched(), 1)

	// A different contact still gets its own firing.
	other := contactWithScore(t, contacts, "c@d.com", 200)
	require.NoError(t, evaluator.Evaluate(context.Background(), other.ID, domain.TriggerLeadScoreChanged, domain.ActorSystemTracking))
	assert.Len(t, dispatcher.dispatched(), 2)
}

func TestEvaluateContactCreatedFiresOnlyOnCreationTrigger(t *testing.T) {
	contacts := newFakeContactStore()
	welcome := createdWorkflow()
	workflows := newFakeWorkflowStore(welcome)
	dispatcher := newFakeDispatcher()
	evaluator := NewTriggerEvaluator(contacts, workflows, dispatcher, domain.FiringModeLevel, nil)

	contact := contactWithScore(t, contacts, "a@b.com", 500)

	// A score change never fires a contact_created workflow, no matter
	// how high the score is.
	require.NoError(t, evaluator.Evaluate(context.Background(), contact.ID, domain.TriggerLeadScoreChanged, domain.ActorSystemWebhook))
	assert.Empty(t, dispatcher.dispatched())

	require.NoError(t, evaluator.Evaluate(context.Background(), contact.ID, domain.TriggerContactCreated, domain.ActorSystemWebhook))
	assert.Len(t, dispatcher.dispatched(), 1)
}

func TestEvaluatePausedWorkflowNeverFires(t *testing.T) {
	contacts := newFakeContactStore()
	paused := scoreWorkflow(10)
	paused.Status = domain.WorkflowStatusPaused
	pausedWelcome := createdWorkflow()
	pausedWelcome.Status = domain.WorkflowStatusPaused
	workflows := newFakeWorkflowStore(paused, pausedWelcome)
	dispatcher := newFakeDispatcher()
	evaluator := NewTriggerEvaluator(contacts, workflows, dispatcher, domain.FiringModeLevel, nil)

	contact := contactWithScore(t, contacts, "a@b.com", 1000)

	require.NoError(t, evaluator.Evaluate(context.Background(), contact.ID, domain.TriggerLeadScoreChanged, domain.ActorSystemTracking))
	require.NoError(t, evaluator.Evaluate(context.Background(), contact.ID, domain.TriggerContactCreated, domain.ActorSystemTracking))

	assert.Empty(t, dispatcher.dispatched())
}

func TestEvaluateWorkflowFailuresAreIsolated(t *testing.T) {
	contacts := newFakeContactStore()
	failing := scoreWorkflow(50)
	healthy := scoreWorkflow(50)
	workflows := newFakeWorkflowStore(failing, healthy)
	dispatcher := newFakeDispatcher()
	dispatcher.failFor[failing.ID] = errors.New("no email configured")
	evaluator := NewTriggerEvaluator(contacts, workflows, dispatcher, domain.FiringModeLevel, nil)

	contact := contactWithScore(t, contacts, "a@b.com", 80)

	require.NoError(t, evaluator.Evaluate(context.Background(), contact.ID, domain.TriggerLeadScoreChanged, domain.ActorSystemTracking))

	dispatched := dispatcher.dispatched()
	require.Len(t, dispatched, 1)
	assert.Equal(t, healthy.ID, dispatched[0])
}

func TestEvaluateUnknownContactIsSilentNoOp(t *testing.T) {
	contacts := newFakeContactStore()
	workflows := newFakeWorkflowStore(scoreWorkflow(0))
	dispatcher := newFakeDispatcher()
	evaluator := NewTriggerEvaluator(contacts, workflows, dispatcher, domain.FiringModeLevel, nil)

	require.NoError(t, evaluator.Evaluate(context.Background(), uuid.New(), domain.TriggerLeadScoreChanged, domain.ActorSystemTracking))
	assert.Empty(t, dispatcher.dispatched())
}

func newTestExecutor(deliverer *fakeDeliverer, audit *fakeAuditStore) *ActionExecutor {
	auditSvc := NewAuditService(audit, clockwork.NewFakeClock(), nil)
	return NewActionExecutor(deliverer, auditSvc, nil)
}

func TestExecuteSendsEmailAndAudits(t *testing.T) {
	deliverer := &fakeDeliverer{result: true}
	audit := &fakeAuditStore{}
	executor := newTestExecutor(deliverer, audit)

	workflow := scoreWorkflow(100)
	workflow.Email.Subject = "You hit 100"
	workflow.Email.Body = "<p>Congrats</p>"
	contact := &domain.Contact{ID: uuid.New(), Email: "a@b.com", Source: "test"}

	require.NoError(t, executor.Execute(context.Background(), workflow, contact, domain.ActorSystemTracking))

	deliveries := deliverer.all()
	require.Len(t, deliveries, 1)
	assert.Equal(t, "a@b.com", deliveries[0].recipient)
	assert.Equal(t, "You hit 100", deliveries[0].subject)
	assert.Equal(t, "<p>Congrats</p>", deliveries[0].body)

	entries := audit.all()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditAutomationExecuted, entries[0].Event)
	assert.Equal(t, domain.ActorSystemTracking, entries[0].Actor)

	var payload struct {
		WorkflowID uuid.UUID `json:"workflow_id"`
		ContactID  uuid.UUID `json:"contact_id"`
		Action     string    `json:"action"`
		Delivered  bool      `json:"delivered"`
	}
	require.NoError(t, json.Unmarshal(entries[0].Payload, &payload))
	assert.Equal(t, workflow.ID, payload.WorkflowID)
	assert.Equal(t, contact.ID, payload.ContactID)
	assert.Equal(t, "send_email", payload.Action)
	assert.True(t, payload.Delivered)
}

func TestExecuteAuditsEvenWhenDeliveryFails(t *testing.T) {
	deliverer := &fakeDeliverer{result: false}
	audit := &fakeAuditStore{}
	executor := newTestExecutor(deliverer, audit)

	workflow := scoreWorkflow(100)
	contact := &domain.Contact{ID: uuid.New(), Email: "a@b.com", Source: "test"}

	require.NoError(t, executor.Execute(context.Background(), workflow, contact, domain.ActorSystemTracking))

	entries := audit.all()
	require.Len(t, entries, 1)

	var payload struct {
		Delivered bool `json:"delivered"`
	}
	require.NoError(t, json.Unmarshal(entries[0].Payload, &payload))
	assert.False(t, payload.Delivered)
}

func TestExecuteMissingEmailIsSilentNoOp(t *testing.T) {
	deliverer := &fakeDeliverer{result: true}
	audit := &fakeAuditStore{}
	executor := newTestExecutor(deliverer, audit)

	workflow := scoreWorkflow(100)
	contact := &domain.Contact{ID: uuid.New(), Source: "test"}

	require.NoError(t, executor.Execute(context.Background(), workflow, contact, domain.ActorSystemTracking))

	assert.Empty(t, deliverer.all())
	assert.Empty(t, audit.all())
}

func TestExecuteSubstitutesTriggerSpecificDefaults(t *testing.T) {
	tests := []struct {
		name        string
		workflow    *domain.AutomationWorkflow
		wantSubject string
	}{
		{name: "contact created defaults", workflow: createdWorkflow(), wantSubject: defaultCreatedSubject},
		{name: "score achieved defaults", workflow: scoreWorkflow(100), wantSubject: defaultScoreSubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deliverer := &fakeDeliverer{result: true}
			executor := newTestExecutor(deliverer, &fakeAuditStore{})
			contact := &domain.Contact{ID: uuid.New(), Email: "a@b.com", Source: "test"}

			require.NoError(t, executor.Execute(context.Background(), tt.workflow, contact, domain.ActorSystemWebhook))

			deliveries := deliverer.all()
			require.Len(t, deliveries, 1)
			assert.Equal(t, tt.wantSubject, deliveries[0].subject)
			assert.NotEmpty(t, deliveries[0].body)
		})
	}
}

func TestSyncDispatcherExecutesInline(t *testing.T) {
	deliverer := &fakeDeliverer{result: true}
	audit := &fakeAuditStore{}
	dispatcher := NewSyncDispatcher(newTestExecutor(deliverer, audit))

	workflow := scoreWorkflow(100)
	contact := &domain.Contact{ID: uuid.New(), Email: "a@b.com", Source: "test"}

	require.NoError(t, dispatcher.Dispatch(context.Background(), workflow, contact, domain.ActorSystemTracking))
	assert.Len(t, deliverer.all(), 1)
	assert.Len(t, audit.all(), 1)
}

func TestAuditServiceUsesInjectedClock(t *testing.T) {
	at := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(at)
	auditStore := &fakeAuditStore{}
	svc := NewAuditService(auditStore, clock, nil)

	require.NoError(t, svc.Record(context.Background(), "webhook_contact_intake", map[string]string{"contact_id": "x"}, domain.ActorSystemWebhook))

	entries := auditStore.all()
	require.Len(t, entries, 1)
	assert.Equal(t, at, entries[0].CreatedAt)
	assert.Equal(t, domain.ActorSystemWebhook, entries[0].Actor)
}
