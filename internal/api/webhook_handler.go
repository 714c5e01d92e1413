package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/leadpulse/pulse-api/internal/api/shared"
	"github.com/leadpulse/pulse-api/internal/domain"
	"github.com/leadpulse/pulse-api/internal/platform/logger"
	"github.com/leadpulse/pulse-api/internal/platform/metrics"
	"github.com/leadpulse/pulse-api/internal/store"
)

// ContactResolver maps an inbound identity to a contact. Implemented by
// service.ContactResolver.
type ContactResolver interface {
	Resolve(ctx context.Context, params domain.ContactParams) (uuid.UUID, bool, error)
}

// TriggerEvaluator re-checks workflows after a domain event. Implemented
// by service.TriggerEvaluator.
type TriggerEvaluator interface {
	Evaluate(ctx context.Context, contactID uuid.UUID, trigger domain.TriggerType, actor string) error
}

// Auditor records non-silent outcomes. Implemented by service.AuditService.
type Auditor interface {
	Record(ctx context.Context, event string, payload any, actor string) error
}

// webhookTokenHeader is the custom header carrying the shared secret when
// it is not passed as a query parameter.
const webhookTokenHeader = "X-Webhook-Token"

// webhookEvent is one sub-event in an inbound payload, fed individually
// into the scoring engine.
type webhookEvent struct {
	Type   string `json:"type"`
	Detail string `json:"detail"`
}

// webhookPayload is the normalized inbound payload after alias resolution.
type webhookPayload struct {
	Name        string
	Email       string
	Phone       string
	Company     string
	Source      string
	Tags        string
	UTMSource   string
	UTMMedium   string
	UTMCampaign string
	DealTitle   string
	DealValue   float64
	HasDeal     bool
	Events      []webhookEvent
}

// webhookResponse is the success response body.
type webhookResponse struct {
	OK        bool      `json:"ok"`
	ContactID uuid.UUID `json:"contact_id"`
}

// WebhookHandler serves the authenticated inbound webhook entry point.
type WebhookHandler struct {
	secret    string
	resolver  ContactResolver
	scoring   ScoreUpdater
	evaluator TriggerEvaluator
	deals     store.DealStore
	audit     Auditor
	logger    *slog.Logger
}

// NewWebhookHandler creates a WebhookHandler. An empty secret means every
// call is rejected until one is provisioned.
// If logger is nil, the default logger is used.
func NewWebhookHandler(
	secret string,
	resolver ContactResolver,
	scoring ScoreUpdater,
	evaluator TriggerEvaluator,
	deals store.DealStore,
	audit Auditor,
	logger *slog.Logger,
) *WebhookHandler {
	if resolver == nil {
		panic("resolver cannot be nil")
	}
	if scoring == nil {
		panic("scoring service cannot be nil")
	}
	if evaluator == nil {
		panic("evaluator cannot be nil")
	}
	if deals == nil {
		panic("deals store cannot be nil")
	}
	if audit == nil {
		panic("audit service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &WebhookHandler{
		secret:    secret,
		resolver:  resolver,
		scoring:   scoring,
		evaluator: evaluator,
		deals:     deals,
		audit:     audit,
		logger:    logger.With(slog.String("component", "webhook_handler")),
	}
}

// Handle handles POST /hooks/inbound requests.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContextOrDefault(ctx, h.logger)

	if !h.authorize(r) {
		metrics.WebhookRejections.Inc()

		rejection := struct {
			RemoteAddr string `json:"remote_addr"`
			Path       string `json:"path"`
		}{RemoteAddr: r.RemoteAddr, Path: r.URL.Path}

		// Best-effort: the rejection response does not depend on the audit write.
		if err := h.audit.Record(ctx, domain.AuditWebhookRejected, rejection, domain.ActorSystemWebhook); err != nil {
			log.Error("failed to audit webhook rejection", slog.String("error", err.Error()))
		}

		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	metrics.SignalsIngested.WithLabelValues("webhook").Inc()

	payload, err := parseWebhookPayload(r)
	if err != nil {
		log.Debug("malformed webhook payload", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid payload")
		return
	}

	contactID, created, err := h.resolver.Resolve(ctx, domain.ContactParams{
		Email:       payload.Email,
		Name:        payload.Name,
		Phone:       payload.Phone,
		Company:     payload.Company,
		Source:      payload.Source,
		Tags:        payload.Tags,
		UTMSource:   payload.UTMSource,
		UTMMedium:   payload.UTMMedium,
		UTMCampaign: payload.UTMCampaign,
	})
	if err != nil {
		log.Error("failed to resolve webhook contact", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to process webhook")
		return
	}

	intake := struct {
		ContactID uuid.UUID `json:"contact_id"`
		Created   bool      `json:"created"`
		Source    string    `json:"source"`
	}{ContactID: contactID, Created: created, Source: payload.Source}

	if err := h.audit.Record(ctx, domain.AuditWebhookContact, intake, domain.ActorSystemWebhook); err != nil {
		log.Error("failed to audit webhook intake", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to process webhook")
		return
	}

	if payload.HasDeal {
		deal, err := domain.NewDeal(contactID, payload.DealTitle, payload.DealValue)
		if err == nil {
			err = h.deals.Create(ctx, deal)
		}
		if err != nil {
			log.Error("failed to create webhook deal",
				slog.String("error", err.Error()),
				slog.String("contact_id", contactID.String()))
			shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to process webhook")
			return
		}
	}

	if created {
		if err := h.evaluator.Evaluate(ctx, contactID, domain.TriggerContactCreated, domain.ActorSystemWebhook); err != nil {
			log.Error("failed to evaluate contact_created workflows",
				slog.String("error", err.Error()),
				slog.String("contact_id", contactID.String()))
			shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to process webhook")
			return
		}
	}

	for _, event := range payload.Events {
		if event.Type == "" {
			continue
		}
		eventType, _ := domain.ParseEventType(event.Type)
		if err := h.scoring.UpdateScore(ctx, contactID, eventType, event.Detail, domain.ActorSystemWebhook); err != nil {
			log.Error("failed to score webhook event",
				slog.String("error", err.Error()),
				slog.String("contact_id", contactID.String()),
				slog.String("event_type", event.Type))
			shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to process webhook")
			return
		}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, webhookResponse{OK: true, ContactID: contactID})
}

// authorize compares the shared secret against the token in the query
// string or the custom header using a constant-time comparison. A missing
// secret configuration rejects every call.
func (h *WebhookHandler) authorize(r *http.Request) bool {
	if h.secret == "" {
		return false
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		token = r.Header.Get(webhookTokenHeader)
	}

	return subtle.ConstantTimeCompare([]byte(token), []byte(h.secret)) == 1
}

// webhookJSON is the JSON wire shape of an inbound payload, including the
// field aliases recognized for name and phone.
type webhookJSON struct {
	Name        string         `json:"name"`
	FullName    string         `json:"full_name"`
	Email       string         `json:"email"`
	Phone       string         `json:"phone"`
	Tel         string         `json:"tel"`
	Company     string         `json:"company"`
	Source      string         `json:"source"`
	Tags        string         `json:"tags"`
	UTMSource   string         `json:"utm_source"`
	UTMMedium   string         `json:"utm_medium"`
	UTMCampaign string         `json:"utm_campaign"`
	DealTitle   string         `json:"deal_title"`
	DealValue   json.Number    `json:"deal_value"`
	Events      []webhookEvent `json:"events"`
}

// parseWebhookPayload decodes a form-encoded or JSON body and normalizes
// the aliased fields. Source defaults to "webhook" when absent.
func parseWebhookPayload(r *http.Request) (*webhookPayload, error) {
	var payload webhookPayload

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body webhookJSON
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return nil, err
		}

		payload = webhookPayload{
			Name:        firstNonEmpty(body.Name, body.FullName),
			Email:       body.Email,
			Phone:       firstNonEmpty(body.Phone, body.Tel),
			Company:     body.Company,
			Source:      body.Source,
			Tags:        body.Tags,
			UTMSource:   body.UTMSource,
			UTMMedium:   body.UTMMedium,
			UTMCampaign: body.UTMCampaign,
			DealTitle:   body.DealTitle,
			Events:      body.Events,
		}
		if body.DealValue != "" {
			value, err := body.DealValue.Float64()
			if err != nil {
				return nil, err
			}
			payload.DealValue = value
		}
		// Either deal field alone is enough to open a deal.
		payload.HasDeal = body.DealTitle != "" || body.DealValue != ""
	} else {
		if err := r.ParseForm(); err != nil {
			return nil, err
		}

		payload = webhookPayload{
			Name:        firstNonEmpty(r.PostForm.Get("name"), r.PostForm.Get("full_name")),
			Email:       r.PostForm.Get("email"),
			Phone:       firstNonEmpty(r.PostForm.Get("phone"), r.PostForm.Get("tel")),
			Company:     r.PostForm.Get("company"),
			Source:      r.PostForm.Get("source"),
			Tags:        r.PostForm.Get("tags"),
			UTMSource:   r.PostForm.Get("utm_source"),
			UTMMedium:   r.PostForm.Get("utm_medium"),
			UTMCampaign: r.PostForm.Get("utm_campaign"),
			DealTitle:   r.PostForm.Get("deal_title"),
		}
		if raw := r.PostForm.Get("deal_value"); raw != "" {
			value, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, err
			}
			payload.DealValue = value
			payload.HasDeal = true
		}
		if payload.DealTitle != "" {
			payload.HasDeal = true
		}
		// Form bodies carry sub-events as repeated bare event types.
		for _, eventType := range r.PostForm["events"] {
			payload.Events = append(payload.Events, webhookEvent{Type: eventType})
		}
	}

	if payload.Source == "" {
		payload.Source = "webhook"
	}

	return &payload, nil
}

// firstNonEmpty returns the first non-empty string.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
