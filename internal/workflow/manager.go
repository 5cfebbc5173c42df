package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"inkcast/internal/config"
	"inkcast/internal/logging"
	"inkcast/internal/publish"
	"inkcast/internal/queue"
	"inkcast/internal/render"
	"inkcast/internal/stage"
	"inkcast/internal/translator"
)

// pipelineStage binds a queue status to the handler that advances it.
type pipelineStage struct {
	name       string
	processing queue.Status
	done       queue.Status
	handler    stage.Handler
}

// Manager coordinates queue processing through the registered stages.
type Manager struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger

	stages map[queue.Status]pipelineStage
	// Statuses a stage picks up, in pipeline order.
	readyOrder []queue.Status

	heartbeat *HeartbeatMonitor
	lastScan  time.Time

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastErr error
}

// NewManager constructs a manager with the standard stage handlers.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger) (*Manager, error) {
	translate, err := translator.NewHandler(cfg, store, logger)
	if err != nil {
		return nil, err
	}
	return NewManagerWithHandlers(cfg, store, logger,
		translate,
		render.NewHandler(cfg, store, logger),
		publish.NewHandler(cfg, store, logger),
	), nil
}

// NewManagerWithHandlers constructs a manager with injected stage handlers
// (used in tests).
func NewManagerWithHandlers(cfg *config.Config, store *queue.Store, logger *slog.Logger, translate, renderer, publisher stage.Handler) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Manager{
		cfg:    cfg,
		store:  store,
		logger: logger.With(logging.String(logging.FieldComponent, "workflow")),
		stages: make(map[queue.Status]pipelineStage),
		heartbeat: NewHeartbeatMonitor(
			store,
			logger,
			time.Duration(cfg.Workflow.HeartbeatInterval)*time.Second,
			time.Duration(cfg.Workflow.HeartbeatTimeout)*time.Second,
		),
	}
	m.register("translate", queue.StatusPending, queue.StatusTranslating, queue.StatusTranslated, translate)
	m.register("render", queue.StatusTranslated, queue.StatusRendering, queue.StatusRendered, renderer)
	m.register("publish", queue.StatusRendered, queue.StatusPublishing, queue.StatusCompleted, publisher)
	return m
}

func (m *Manager) register(name string, ready, processing, done queue.Status, handler stage.Handler) {
	if handler == nil {
		return
	}
	m.stages[ready] = pipelineStage{name: name, processing: processing, done: done, handler: handler}
	m.readyOrder = append(m.readyOrder, ready)
}

// Start begins background processing.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return errors.New("workflow already running")
	}
	if len(m.readyOrder) == 0 {
		return errors.New("workflow stages not configured")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	go m.runLoop(runCtx)
	return nil
}

// Stop terminates background processing and waits for completion.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// Running reports whether the processing loop is active.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// LastError returns the most recent processing error, if any.
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) runLoop(ctx context.Context) {
	defer m.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := m.heartbeat.ReclaimStale(ctx); err != nil {
			m.logger.Warn("reclaim stale processing failed; stuck items may remain",
				logging.Error(err),
				logging.String(logging.FieldEventType, "heartbeat_reclaim_failed"),
			)
		}

		if m.shouldScanInbox() {
			if _, err := m.ScanInbox(ctx); err != nil {
				m.setLastError(err)
				m.logger.Error("inbox scan failed", logging.Error(err))
			}
		}

		processed, err := m.ProcessNext(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			m.setLastError(err)
			m.waitOrShutdown(ctx, time.Duration(m.cfg.Workflow.ErrorRetryInterval)*time.Second)
			continue
		}
		if !processed {
			m.waitOrShutdown(ctx, time.Duration(m.cfg.Workflow.QueuePollInterval)*time.Second)
		}
	}
}

func (m *Manager) shouldScanInbox() bool {
	interval := time.Duration(m.cfg.Workflow.InboxScanInterval) * time.Second
	if time.Since(m.lastScan) < interval {
		return false
	}
	m.lastScan = time.Now()
	return true
}

func (m *Manager) waitOrShutdown(ctx context.Context, wait time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(wait):
	}
}
