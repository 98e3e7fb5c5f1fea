package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/teemow/msmeetings/internal/events"
	"github.com/teemow/msmeetings/internal/instrumentation"
)

// ServerContext holds what MCP tool handlers share: the events component,
// instrumentation and the server lifetime.
type ServerContext struct {
	ctx         context.Context
	cancel      context.CancelFunc
	events      *events.Component
	logger      *slog.Logger
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	mu          sync.RWMutex
	shutdown    bool
}

// NewServerContext creates a server context around an events component.
func NewServerContext(ctx context.Context, component *events.Component, logger *slog.Logger) (*ServerContext, error) {
	if component == nil {
		return nil, errors.New("events component is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	return &ServerContext{
		ctx:    shutdownCtx,
		cancel: cancel,
		events: component,
		logger: logger,
	}, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Events returns the events component
func (sc *ServerContext) Events() *events.Component {
	return sc.events
}

// Logger returns the server logger
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// Metrics returns the tool metrics, or nil when instrumentation is disabled.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetMetrics sets the tool metrics
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// AuditLogger returns the audit logger, or nil when audit logging is off.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// SetAuditLogger sets the audit logger
func (sc *ServerContext) SetAuditLogger(al *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = al
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
