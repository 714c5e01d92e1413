// Package email provides the in-process stand-ins for the external email
// delivery collaborator. The engine depends only on the Deliver signature;
// the real transport (SMTP or an HTTP provider) lives outside this module
// and audits its own attempts.
package email

import (
	"log/slog"
)

// LogDeliverer is a delivery collaborator that records the hand-off in the
// application log and reports success. It is the default wiring for
// environments without a transport configured.
type LogDeliverer struct {
	logger *slog.Logger
}

// NewLogDeliverer creates a LogDeliverer.
// If logger is nil, the default logger is used.
func NewLogDeliverer(logger *slog.Logger) *LogDeliverer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogDeliverer{
		logger: logger.With(slog.String("component", "email_deliverer")),
	}
}

// Deliver logs the outbound email and reports success.
func (d *LogDeliverer) Deliver(recipient, subject, htmlBody string) bool {
	d.logger.Info("email handed off",
		slog.String("recipient", recipient),
		slog.String("subject", subject),
		slog.Int("body_bytes", len(htmlBody)))
	return true
}
