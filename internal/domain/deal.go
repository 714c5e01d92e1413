package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// DealStage represents the pipeline stage of a deal
type DealStage string

// Possible deal stage values. The engine only ever creates deals in the
// New stage; later transitions are managed externally.
const (
	DealStageNew       DealStage = "new"
	DealStageQualified DealStage = "qualified"
	DealStageWon       DealStage = "won"
	DealStageLost      DealStage = "lost"
)

// Common validation errors for Deal
var (
	ErrEmptyDealID        = errors.New("deal ID cannot be empty")
	ErrEmptyDealContactID = errors.New("deal contact ID cannot be empty")
)

// Deal represents a sales opportunity attached to a contact. Deals created
// through the webhook gateway are never deduplicated: every payload that
// carries a deal field creates a new row.
type Deal struct {
	ID        uuid.UUID `json:"id"`
	ContactID uuid.UUID `json:"contact_id"`
	Title     string    `json:"title"`
	Stage     DealStage `json:"stage"`
	Value     float64   `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// NewDeal creates a new Deal in the New stage for the given contact.
// Title and value are both optional; a payload may carry either one alone.
// Returns an error if validation fails.
func NewDeal(contactID uuid.UUID, title string, value float64) (*Deal, error) {
	deal := &Deal{
		ID:        uuid.New(),
		ContactID: contactID,
		Title:     title,
		Stage:     DealStageNew,
		Value:     value,
		CreatedAt: time.Now().UTC(),
	}

	if err := deal.Validate(); err != nil {
		return nil, err
	}

	return deal, nil
}

// Validate checks if the Deal has valid data.
func (d *Deal) Validate() error {
	if d.ID == uuid.Nil {
		return ErrEmptyDealID
	}

	if d.ContactID == uuid.Nil {
		return ErrEmptyDealContactID
	}

	return nil
}
