package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"
	"github.com/leadpulse/pulse-api/internal/config"
	"github.com/leadpulse/pulse-api/internal/domain"
	"github.com/leadpulse/pulse-api/internal/platform/email"
	"github.com/leadpulse/pulse-api/internal/platform/postgres"
	"github.com/leadpulse/pulse-api/internal/service"
	"github.com/leadpulse/pulse-api/internal/store"
	"github.com/leadpulse/pulse-api/internal/task"
)

// application holds the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	contactStore  store.ContactStore
	ruleStore     store.ScoringRuleStore
	workflowStore store.WorkflowStore
	activityStore store.ActivityStore
	auditStore    store.AuditStore
	dealStore     store.DealStore

	// Services
	auditService *service.AuditService
	executor     *service.ActionExecutor
	dispatcher   service.ActionDispatcher
	evaluator    *service.TriggerEvaluator
	scoring      *service.ScoringService
	resolver     *service.ContactResolver

	// Set only when async actions are enabled; needs Stop on shutdown.
	asyncDispatcher *task.Dispatcher
}

// newApplication creates an application instance with all dependencies
// wired. It accepts core dependencies that must be established first.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	app.contactStore = postgres.NewPostgresContactStore(db, logger)
	app.ruleStore = postgres.NewPostgresScoringRuleStore(db, logger)
	app.workflowStore = postgres.NewPostgresWorkflowStore(db, logger)
	app.activityStore = postgres.NewPostgresActivityStore(db, logger)
	app.auditStore = postgres.NewPostgresAuditStore(db, logger)
	app.dealStore = postgres.NewPostgresDealStore(db, logger)

	app.auditService = service.NewAuditService(app.auditStore, clockwork.NewRealClock(), logger)

	deliverer := email.NewLogDeliverer(logger)
	app.executor = service.NewActionExecutor(deliverer, app.auditService, logger)

	app.dispatcher = service.NewSyncDispatcher(app.executor)
	if cfg.Automation.Async {
		async := task.NewDispatcher(app.dispatcher, task.DispatcherConfig{
			WorkerCount: cfg.Task.WorkerCount,
			QueueSize:   cfg.Task.QueueSize,
		}, logger)
		async.Start()
		app.asyncDispatcher = async
		app.dispatcher = async
		logger.Info("async action dispatcher started",
			"worker_count", cfg.Task.WorkerCount,
			"queue_size", cfg.Task.QueueSize)
	}

	firingMode, err := domain.ParseFiringMode(cfg.Automation.FiringMode)
	if err != nil {
		return nil, fmt.Errorf("invalid firing mode %q: %w", cfg.Automation.FiringMode, err)
	}

	app.evaluator = service.NewTriggerEvaluator(
		app.contactStore,
		app.workflowStore,
		app.dispatcher,
		firingMode,
		logger,
	)

	app.scoring = service.NewScoringService(
		app.contactStore,
		app.ruleStore,
		app.activityStore,
		app.evaluator,
		logger,
	)

	app.resolver = service.NewContactResolver(app.contactStore, logger)

	logger.Info("application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.asyncDispatcher != nil {
		app.asyncDispatcher.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
