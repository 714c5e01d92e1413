package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/leadpulse/pulse-api/internal/domain"
	"github.com/leadpulse/pulse-api/internal/platform/logger"
	"github.com/leadpulse/pulse-api/internal/store"
)

// ContactResolver maps an inbound identity to an existing or newly created
// contact. Deduplication is by exact, case-sensitive email match against
// the most recently created contact; it is a policy here, not a storage
// constraint.
type ContactResolver struct {
	contacts store.ContactStore
	logger   *slog.Logger
}

// NewContactResolver creates a ContactResolver.
// If logger is nil, the default logger is used.
func NewContactResolver(contacts store.ContactStore, logger *slog.Logger) *ContactResolver {
	if contacts == nil {
		panic("contacts store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ContactResolver{
		contacts: contacts,
		logger:   logger.With(slog.String("component", "contact_resolver")),
	}
}

// Resolve returns the contact ID for the given params, creating a new
// contact when no email is supplied or no existing contact matches it.
// At most one contact is created per call. The created flag is the sole
// signal feeding the contact_created trigger downstream.
func (r *ContactResolver) Resolve(ctx context.Context, params domain.ContactParams) (uuid.UUID, bool, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	if params.Email != "" {
		existing, err := r.contacts.GetLatestByEmail(ctx, params.Email)
		if err == nil {
			log.Debug("resolved existing contact",
				slog.String("contact_id", existing.ID.String()))
			return existing.ID, false, nil
		}
		if !errors.Is(err, store.ErrContactNotFound) {
			return uuid.Nil, false, err
		}
	}

	contact, err := domain.NewContact(params)
	if err != nil {
		return uuid.Nil, false, err
	}

	if err := r.contacts.Create(ctx, contact); err != nil {
		return uuid.Nil, false, err
	}

	log.Info("created new contact",
		slog.String("contact_id", contact.ID.String()),
		slog.String("source", contact.Source))
	return contact.ID, true, nil
}
