package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/leadpulse/pulse-api/internal/domain"
	"github.com/leadpulse/pulse-api/internal/platform/logger"
	"github.com/leadpulse/pulse-api/internal/platform/metrics"
)

// ScoreUpdater applies a scoring event to a contact. Implemented by
// service.ScoringService.
type ScoreUpdater interface {
	UpdateScore(ctx context.Context, contactID uuid.UUID, eventType domain.EventType, detail, actor string) error
}

// trackingPixel is the fixed 1x1 transparent GIF returned by the open
// tracker regardless of processing outcome.
var trackingPixel = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

// TrackHandler serves the tracking pixel and click redirect entry points.
type TrackHandler struct {
	scoring ScoreUpdater
	logger  *slog.Logger
}

// NewTrackHandler creates a TrackHandler.
// If logger is nil, the default logger is used.
func NewTrackHandler(scoring ScoreUpdater, logger *slog.Logger) *TrackHandler {
	if scoring == nil {
		panic("scoring service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TrackHandler{
		scoring: scoring,
		logger:  logger.With(slog.String("component", "track_handler")),
	}
}

// Open handles GET /t/open.gif requests. The response is always the fixed
// 1x1 transparent GIF with an image content type, regardless of the
// processing outcome; an invalid or missing contact identifier is a
// silent no-op.
func (h *TrackHandler) Open(w http.ResponseWriter, r *http.Request) {
	metrics.SignalsIngested.WithLabelValues("pixel").Inc()
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	if contactID, err := uuid.Parse(r.URL.Query().Get("cid")); err == nil && contactID != uuid.Nil {
		if err := h.scoring.UpdateScore(
			r.Context(),
			contactID,
			domain.EventTypeEmailOpen,
			"tracking pixel",
			domain.ActorSystemTracking,
		); err != nil {
			// Best-effort: the caller gets the pixel no matter what.
			log.Error("failed to score pixel open",
				slog.String("error", err.Error()),
				slog.String("contact_id", contactID.String()))
		}
	}

	w.Header().Set("Content-Type", "image/gif")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(trackingPixel); err != nil {
		log.Error("failed to write tracking pixel", slog.String("error", err.Error()))
	}
}

// Click handles GET /t/click requests. Scoring runs first; the response
// is a 302 redirect to the target URL when present, otherwise a plain
// 200 "OK".
func (h *TrackHandler) Click(w http.ResponseWriter, r *http.Request) {
	metrics.SignalsIngested.WithLabelValues("click").Inc()
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	target := r.URL.Query().Get("url")

	if contactID, err := uuid.Parse(r.URL.Query().Get("cid")); err == nil && contactID != uuid.Nil {
		if err := h.scoring.UpdateScore(
			r.Context(),
			contactID,
			domain.EventTypeEmailClick,
			target,
			domain.ActorSystemTracking,
		); err != nil {
			log.Error("failed to score click",
				slog.String("error", err.Error()),
				slog.String("contact_id", contactID.String()))
		}
	}

	if target != "" {
		http.Redirect(w, r, target, http.StatusFound)
		return
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		log.Error("failed to write click response", slog.String("error", err.Error()))
	}
}
