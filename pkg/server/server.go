package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// tracerName names the tracer used for tick and receive spans.
const tracerName = "github.com/vango-dev/rcanvas/pkg/server"

// Server accepts renderer connections and runs one Painter per connection.
type Server struct {
	// Connection management
	connections *ConnectionManager

	// Painter factory, one call per connection
	factory func() Painter

	// Optional HTTP handlers
	assets         http.Handler
	metricsHandler http.Handler
	middlewares    []func(http.Handler) http.Handler

	// Configuration
	config *ServerConfig

	// WebSocket upgrader
	upgrader websocket.Upgrader

	// Observability
	collector *MetricsCollector
	observer  Observer
	tracer    trace.Tracer

	// Lifetime of connection loops
	baseCtx context.Context
	cancel  context.CancelFunc

	// HTTP server
	httpServer *http.Server
	mu         sync.Mutex

	// Logger
	logger *slog.Logger
}

// New creates a new Server with the given configuration and painter factory.
func New(config *ServerConfig, factory func() Painter) *Server {
	if config == nil {
		config = DefaultServerConfig()
	} else {
		// Fill in defaults for any unset fields
		config = config.Clone()
		defaults := DefaultServerConfig()
		if config.Address == "" {
			config.Address = defaults.Address
		}
		if config.WebSocketPath == "" {
			config.WebSocketPath = defaults.WebSocketPath
		}
		if config.MetricsPath == "" {
			config.MetricsPath = defaults.MetricsPath
		}
		if config.ReadBufferSize == 0 {
			config.ReadBufferSize = defaults.ReadBufferSize
		}
		if config.WriteBufferSize == 0 {
			config.WriteBufferSize = defaults.WriteBufferSize
		}
		if config.CheckOrigin == nil {
			config.CheckOrigin = defaults.CheckOrigin
		}
		if config.ShutdownTimeout == 0 {
			config.ShutdownTimeout = defaults.ShutdownTimeout
		}
	}
	config.SessionConfig = config.SessionConfig.withDefaults()

	tp := config.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	logger := slog.Default().With("component", "server")
	ctx, cancel := context.WithCancel(context.Background())
	collector := NewMetricsCollector()

	return &Server{
		connections: NewConnectionManager(config.MaxSessions, logger),
		factory:     factory,
		config:      config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		collector: collector,
		observer:  collector,
		tracer:    tp.Tracer(tracerName),
		baseCtx:   ctx,
		cancel:    cancel,
		logger:    logger,
	}
}

// SetAssets sets the handler for everything that is not the WebSocket or
// metrics endpoint, typically the static asset responder.
func (s *Server) SetAssets(h http.Handler) {
	s.assets = h
}

// SetMetricsHandler mounts h at ServerConfig.MetricsPath.
func (s *Server) SetMetricsHandler(h http.Handler) {
	s.metricsHandler = h
}

// Use appends HTTP middleware applied to every route, including the
// WebSocket upgrade. Call it before Handler or Run.
func (s *Server) Use(middlewares ...func(http.Handler) http.Handler) {
	s.middlewares = append(s.middlewares, middlewares...)
}

// AddObserver adds an observer alongside the built-in metrics collector.
// Call it before the server starts accepting connections.
func (s *Server) AddObserver(o Observer) {
	s.observer = MultiObserver(s.observer, o)
}

// Handler returns the HTTP handler serving the WebSocket endpoint, the
// optional metrics endpoint and the assets.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if len(s.middlewares) > 0 {
		r.Use(s.middlewares...)
	}

	r.Get(s.config.WebSocketPath, s.HandleWebSocket)
	if s.metricsHandler != nil {
		r.Handle(s.config.MetricsPath, s.metricsHandler)
	}
	if s.assets != nil {
		r.Handle("/*", s.assets)
	}
	return r
}

// HandleWebSocket upgrades the request and starts a connection loop.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.factory == nil {
		s.logger.Error("cannot accept connection", "error", ErrNoPainter)
		http.Error(w, "no painter", http.StatusInternalServerError)
		return
	}
	if err := s.connections.Reserve(); err != nil {
		s.logger.Warn("rejecting connection", "error", err)
		http.Error(w, "too many sessions", http.StatusServiceUnavailable)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written an HTTP error.
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := NewConnection(ws, s.factory(), ConnectionOptions{
		Config:   s.config.SessionConfig,
		Logger:   s.logger,
		Observer: s.observer,
		Tracer:   s.tracer,
	})
	if err := s.connections.Add(c); err != nil {
		s.logger.Warn("rejecting connection", "error", err)
		c.Close()
		return
	}

	go c.Run(s.baseCtx)
}

// Run starts the HTTP server and blocks until it fails or the process
// receives SIGINT or SIGTERM.
func (s *Server) Run() error {
	s.mu.Lock()
	s.httpServer = &http.Server{
		Addr:    s.config.Address,
		Handler: s.Handler(),
	}
	srv := s.httpServer
	s.mu.Unlock()

	// Set up graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	// Error channel for ListenAndServe
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("server starting", "address", s.config.Address, "websocket_path", s.config.WebSocketPath)
		errCh <- srv.ListenAndServe()
	}()

	// Wait for shutdown signal or error
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil

	case <-shutdown:
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown closes every connection and gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	// Create timeout context
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	// Stop connection loops first
	s.cancel()
	if err := s.connections.Shutdown(ctx); err != nil {
		s.logger.Warn("connection shutdown incomplete", "error", err)
	}

	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()

	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// Connections returns the connection manager.
func (s *Server) Connections() *ConnectionManager {
	return s.connections
}

// Config returns the server configuration.
func (s *Server) Config() *ServerConfig {
	return s.config
}

// Logger returns the server logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}

// SetLogger sets the server logger.
func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
}
