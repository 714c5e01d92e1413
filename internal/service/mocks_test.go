package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/leadpulse/pulse-api/internal/domain"
	"github.com/leadpulse/pulse-api/internal/store"
)

// fakeContactStore is an in-memory ContactStore. The mutex makes
// AddToLeadScore atomic the same way the single-statement UPDATE is.
type fakeContactStore struct {
	mu        sync.Mutex
	contacts  map[uuid.UUID]*domain.Contact
	order     []uuid.UUID
	createErr error
	scoreErr  error
}

func newFakeContactStore() *fakeContactStore {
	return &fakeContactStore{contacts: make(map[uuid.UUID]*domain.Contact)}
}

func (f *fakeContactStore) Create(_ context.Context, contact *domain.Contact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	copied := *contact
	f.contacts[contact.ID] = &copied
	f.order = append(f.order, contact.ID)
	return nil
}

func (f *fakeContactStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	contact, ok := f.contacts[id]
	if !ok {
		return nil, store.ErrContactNotFound
	}
	copied := *contact
	return &copied, nil
}

func (f *fakeContactStore) GetLatestByEmail(_ context.Context, email string) (*domain.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	// Scan in reverse insertion order: most recently created wins.
	for i := len(f.order) - 1; i >= 0; i-- {
		contact := f.contacts[f.order[i]]
		if contact.Email == email {
			copied := *contact
			return &copied, nil
		}
	}
	return nil, store.ErrContactNotFound
}

func (f *fakeContactStore) AddToLeadScore(_ context.Context, id uuid.UUID, delta int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.scoreErr != nil {
		return 0, f.scoreErr
	}
	contact, ok := f.contacts[id]
	if !ok {
		return 0, store.ErrContactNotFound
	}
	contact.LeadScore += delta
	return contact.LeadScore, nil
}

func (f *fakeContactStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.contacts)
}

// fakeRuleStore serves scoring rules from a map keyed by event type.
type fakeRuleStore struct {
	rules map[domain.EventType]*domain.ScoringRule
	err   error
}

func newFakeRuleStore(rules ...*domain.ScoringRule) *fakeRuleStore {
	byType := make(map[domain.EventType]*domain.ScoringRule, len(rules))
	for _, rule := range rules {
		byType[rule.EventType] = rule
	}
	return &fakeRuleStore{rules: byType}
}

func (f *fakeRuleStore) GetByEventType(_ context.Context, eventType domain.EventType) (*domain.ScoringRule, error) {
	if f.err != nil {
		return nil, f.err
	}
	rule, ok := f.rules[eventType]
	if !ok {
		return nil, store.ErrRuleNotFound
	}
	return rule, nil
}

// fakeActivityStore collects appended events.
type fakeActivityStore struct {
	mu     sync.Mutex
	events []*domain.ActivityEvent
	err    error
}

func (f *fakeActivityStore) Append(_ context.Context, event *domain.ActivityEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeActivityStore) all() []*domain.ActivityEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*domain.ActivityEvent(nil), f.events...)
}

// fakeAuditStore collects appended entries.
type fakeAuditStore struct {
	mu      sync.Mutex
	entries []*domain.AuditEntry
	err     error
}

func (f *fakeAuditStore) Append(_ context.Context, entry *domain.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAuditStore) all() []*domain.AuditEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*domain.AuditEntry(nil), f.entries...)
}

// fakeWorkflowStore serves a fixed workflow list and tracks fired markers.
type fakeWorkflowStore struct {
	mu        sync.Mutex
	workflows []*domain.AutomationWorkflow
	fired     map[string]bool
	listErr   error
}

func newFakeWorkflowStore(workflows ...*domain.AutomationWorkflow) *fakeWorkflowStore {
	return &fakeWorkflowStore{workflows: workflows, fired: make(map[string]bool)}
}

func (f *fakeWorkflowStore) ListActive(_ context.Context) ([]*domain.AutomationWorkflow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var active []*domain.AutomationWorkflow
	for _, wf := range f.workflows {
		if wf.IsActive() {
			active = append(active, wf)
		}
	}
	return active, nil
}

func (f *fakeWorkflowStore) MarkFired(_ context.Context, workflowID, contactID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fired[workflowID.String()+"/"+contactID.String()] = true
	return nil
}

func (f *fakeWorkflowStore) HasFired(_ context.Context, workflowID, contactID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fired[workflowID.String()+"/"+contactID.String()], nil
}

// evaluation records one WorkflowEvaluator.Evaluate call.
type evaluation struct {
	contactID uuid.UUID
	trigger   domain.TriggerType
	actor     string
}

// fakeEvaluator records Evaluate calls.
type fakeEvaluator struct {
	mu    sync.Mutex
	calls []evaluation
	err   error
}

func (f *fakeEvaluator) Evaluate(_ context.Context, contactID uuid.UUID, trigger domain.TriggerType, actor string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, evaluation{contactID: contactID, trigger: trigger, actor: actor})
	return nil
}

func (f *fakeEvaluator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// delivery records one Deliver call.
type delivery struct {
	recipient string
	subject   string
	body      string
}

// fakeDeliverer records hand-offs and reports a configurable outcome.
type fakeDeliverer struct {
	mu     sync.Mutex
	calls  []delivery
	result bool
}

func (f *fakeDeliverer) Deliver(recipient, subject, htmlBody string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, delivery{recipient: recipient, subject: subject, body: htmlBody})
	return f.result
}

func (f *fakeDeliverer) all() []delivery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]delivery(nil), f.calls...)
}

// fakeDispatcher records dispatches and can fail for selected workflows.
type fakeDispatcher struct {
	mu      sync.Mutex
	calls   []uuid.UUID
	failFor map[uuid.UUID]error
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{failFor: make(map[uuid.UUID]error)}
}

func (f *fakeDispatcher) Dispatch(
	_ context.Context,
	workflow *domain.AutomationWorkflow,
	_ *domain.Contact,
	_ string,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[workflow.ID]; ok {
		return err
	}
	f.calls = append(f.calls, workflow.ID)
	return nil
}

func (f *fakeDispatcher) dispatched() []uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uuid.UUID(nil), f.calls...)
}
