package task

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/leadpulse/pulse-api/internal/domain"
	"github.com/leadpulse/pulse-api/internal/service"
)

// ErrQueueFull is returned by Dispatch when the bounded queue cannot
// accept another action. Callers treat this as a failed workflow action.
var ErrQueueFull = errors.New("action queue is full")

// ErrDispatcherStopped is returned by Dispatch after Stop has been called.
var ErrDispatcherStopped = errors.New("action dispatcher is stopped")

// DispatcherConfig holds configuration for the async dispatcher.
type DispatcherConfig struct {
	// WorkerCount determines how many concurrent workers execute actions.
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory action queue.
	QueueSize int
}

// DefaultDispatcherConfig returns a DispatcherConfig with reasonable defaults.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		WorkerCount: 2,
		QueueSize:   100,
	}
}

// job carries one fired workflow action through the queue.
type job struct {
	workflow *domain.AutomationWorkflow
	contact  *domain.Contact
	actor    string
}

// Dispatcher executes workflow actions on a bounded worker pool instead
// of the request goroutine. The queue is in-memory only: actions queued
// at shutdown are drained, but a crash loses them.
type Dispatcher struct {
	delegate   service.ActionDispatcher
	jobs       chan job
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     DispatcherConfig
	logger     *slog.Logger

	mu      sync.Mutex
	stopped bool
}

// Ensure Dispatcher implements ActionDispatcher
var _ service.ActionDispatcher = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher that hands accepted jobs to delegate.
// If logger is nil, the default logger is used.
func NewDispatcher(delegate service.ActionDispatcher, config DispatcherConfig, logger *slog.Logger) *Dispatcher {
	if delegate == nil {
		panic("delegate dispatcher cannot be nil")
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultDispatcherConfig().WorkerCount
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultDispatcherConfig().QueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Dispatcher{
		delegate:   delegate,
		jobs:       make(chan job, config.QueueSize),
		ctx:        ctx,
		cancelFunc: cancel,
		config:     config,
		logger:     logger.With(slog.String("component", "task_dispatcher")),
	}
}

// Start launches the worker goroutines.
func (d *Dispatcher) Start() {
	for i := 0; i < d.config.WorkerCount; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
}

// Stop drains the queue and waits for in-flight actions to finish.
// It is safe to call once; later Dispatch calls fail with
// ErrDispatcherStopped instead of panicking on the closed queue.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.jobs)
	d.mu.Unlock()

	d.wg.Wait()
	d.cancelFunc()
}

// Dispatch implements service.ActionDispatcher by enqueueing the action.
// It returns immediately: execution outcome is logged by the worker, not
// reported to the caller. Returns ErrQueueFull when the queue is at
// capacity and ErrDispatcherStopped after Stop.
func (d *Dispatcher) Dispatch(_ context.Context, workflow *domain.AutomationWorkflow, contact *domain.Contact, actor string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return ErrDispatcherStopped
	}

	select {
	case d.jobs <- job{workflow: workflow, contact: contact, actor: actor}:
		return nil
	default:
		return ErrQueueFull
	}
}

// worker executes queued actions until the queue is closed and drained.
func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()

	d.logger.Debug("starting action worker", slog.Int("worker_id", id))

	for j := range d.jobs {
		// Detached from the originating request: the action outlives it.
		if err := d.delegate.Dispatch(d.ctx, j.workflow, j.contact, j.actor); err != nil {
			d.logger.Error("async workflow action failed",
				slog.String("error", err.Error()),
				slog.String("workflow_id", j.workflow.ID.String()),
				slog.String("contact_id", j.contact.ID.String()),
				slog.Int("worker_id", id))
		}
	}

	d.logger.Debug("action worker stopped", slog.Int("worker_id", id))
}
