package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Contact
var (
	ErrEmptyContactID     = errors.New("contact ID cannot be empty")
	ErrEmptyContactSource = errors.New("contact source cannot be empty")
)

// Contact represents a lead or prospect record, primarily identified by
// email. Email is optional and deliberately not unique: deduplication is a
// resolver policy, not a storage constraint.
type Contact struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email,omitempty"`
	Name        string    `json:"name,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Company     string    `json:"company,omitempty"`
	Source      string    `json:"source"`
	Tags        string    `json:"tags,omitempty"`
	UTMSource   string    `json:"utm_source,omitempty"`
	UTMMedium   string    `json:"utm_medium,omitempty"`
	UTMCampaign string    `json:"utm_campaign,omitempty"`
	LeadScore   int       `json:"lead_score"`
	CreatedAt   time.Time `json:"created_at"`
}

// ContactParams carries the caller-supplied fields for a new contact.
// Zero values are stored as-is; only Source receives a default upstream.
type ContactParams struct {
	Email       string
	Name        string
	Phone       string
	Company     string
	Source      string
	Tags        string
	UTMSource   string
	UTMMedium   string
	UTMCampaign string
}

// NewContact creates a new Contact from the given params with a fresh ID,
// a zero lead score, and the creation timestamp.
// Returns an error if validation fails.
func NewContact(params ContactParams) (*Contact, error) {
	contact := &Contact{
		ID:          uuid.New(),
		Email:       params.Email,
		Name:        params.Name,
		Phone:       params.Phone,
		Company:     params.Company,
		Source:      params.Source,
		Tags:        params.Tags,
		UTMSource:   params.UTMSource,
		UTMMedium:   params.UTMMedium,
		UTMCampaign: params.UTMCampaign,
		LeadScore:   0,
		CreatedAt:   time.Now().UTC(),
	}

	if err := contact.Validate(); err != nil {
		return nil, err
	}

	return contact, nil
}

// Validate checks if the Contact has valid data.
// Returns an error if any field fails validation.
func (c *Contact) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyContactID
	}

	if c.Source == "" {
		return ErrEmptyContactSource
	}

	return nil
}
