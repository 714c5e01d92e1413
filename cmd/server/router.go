package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leadpulse/pulse-api/internal/api"
	apiMiddleware "github.com/leadpulse/pulse-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	trackHandler := api.NewTrackHandler(app.scoring, app.logger)
	webhookHandler := api.NewWebhookHandler(
		app.config.Webhook.Secret,
		app.resolver,
		app.scoring,
		app.evaluator,
		app.dealStore,
		app.auditService,
		app.logger,
	)

	// Ingestion entry points
	r.Get("/t/open.gif", trackHandler.Open)
	r.Get("/t/click", trackHandler.Click)
	r.Post("/hooks/inbound", webhookHandler.Handle)

	// Operational endpoints
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
