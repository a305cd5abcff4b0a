package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"voicecal/internal/calendar"
	"voicecal/internal/config"
	"voicecal/internal/dispatch"
	"voicecal/internal/google"
	"voicecal/internal/instrumentation"
)

// ServerContext holds the shared state behind the MCP server: the config,
// the authenticator, the dispatch pool bounding outbound API calls, and a
// lazily created Calendar client.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	cfg     *config.Config
	auth    google.TokenProvider
	pool    *dispatch.Pool
	metrics *instrumentation.Metrics
	logger  *slog.Logger

	calendarClient calendar.API
	mu             sync.RWMutex
	shutdown       bool
}

// NewServerContext creates a new server context. The Calendar client is not
// created here: it is lazily initialized on first use so the server can start
// before the user has authorized.
func NewServerContext(ctx context.Context, cfg *config.Config, auth google.TokenProvider, metrics *instrumentation.Metrics, logger *slog.Logger) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)

	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ServerContext{
		ctx:     shutdownCtx,
		cancel:  cancel,
		cfg:     cfg,
		auth:    auth,
		pool:    dispatch.New(cfg.DispatchWorkers),
		metrics: metrics,
		logger:  logger,
	}
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Config returns the loaded configuration
func (sc *ServerContext) Config() *config.Config {
	return sc.cfg
}

// Pool returns the dispatch pool bounding outbound API calls
func (sc *ServerContext) Pool() *dispatch.Pool {
	return sc.pool
}

// Metrics returns the metrics recorder
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// Logger returns the server logger
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// CalendarClient returns the Calendar client, creating and caching it on
// first use. Creation runs the full credential flow if no valid token is
// persisted, so the first call may block on user authorization.
func (sc *ServerContext) CalendarClient(ctx context.Context) (calendar.API, error) {
	sc.mu.RLock()
	client := sc.calendarClient
	sc.mu.RUnlock()
	if client != nil {
		return client, nil
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.calendarClient != nil {
		return sc.calendarClient, nil
	}
	if sc.shutdown {
		return nil, fmt.Errorf("server is shutting down")
	}

	client, err := calendar.NewClient(ctx, sc.cfg.CalendarID, sc.auth)
	if err != nil {
		return nil, err
	}

	sc.calendarClient = client
	return client, nil
}

// SetCalendarClient sets the Calendar client. Used by tests to inject a
// fake implementation.
func (sc *ServerContext) SetCalendarClient(client calendar.API) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.calendarClient = client
}

// Shutdown cancels the server context and marks it as shut down
func (sc *ServerContext) Shutdown() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.shutdown {
		return
	}
	sc.shutdown = true
	sc.cancel()
}

// IsShutdown reports whether Shutdown has been called
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}
