package api

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/leadpulse/pulse-api/internal/domain"
)

type scoreCall struct {
	contactID uuid.UUID
	eventType domain.EventType
	detail    string
	actor     string
}

type fakeScoreUpdater struct {
	mu    sync.Mutex
	calls []scoreCall
	err   error
}

func (f *fakeScoreUpdater) UpdateScore(_ context.Context, contactID uuid.UUID, eventType domain.EventType, detail, actor string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, scoreCall{contactID: contactID, eventType: eventType, detail: detail, actor: actor})
	return nil
}

type fakeResolver struct {
	contactID uuid.UUID
	created   bool
	err       error

	params []domain.ContactParams
}

func (f *fakeResolver) Resolve(_ context.Context, params domain.ContactParams) (uuid.UUID, bool, error) {
	if f.err != nil {
		return uuid.Nil, false, f.err
	}
	f.params = append(f.params, params)
	return f.contactID, f.created, nil
}

type evaluation struct {
	contactID uuid.UUID
	trigger   domain.TriggerType
	actor     string
}

type fakeEvaluator struct {
	evaluations []evaluation
	err         error
}

func (f *fakeEvaluator) Evaluate(_ context.Context, contactID uuid.UUID, trigger domain.TriggerType, actor string) error {
	if f.err != nil {
		return f.err
	}
	f.evaluations = append(f.evaluations, evaluation{contactID: contactID, trigger: trigger, actor: actor})
	return nil
}

type fakeDealStore struct {
	deals []*domain.Deal
	err   error
}

func (f *fakeDealStore) Create(_ context.Context, deal *domain.Deal) error {
	if f.err != nil {
		return f.err
	}
	f.deals = append(f.deals, deal)
	return nil
}

type auditCall struct {
	event   string
	payload any
	actor   string
}

type fakeAuditor struct {
	calls []auditCall
	err   error
}

func (f *fakeAuditor) Record(_ context.Context, event string, payload any, actor string) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, auditCall{event: event, payload: payload, actor: actor})
	return nil
}
