package server

import (
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// SessionConfig holds configuration for individual canvas connections.
type SessionConfig struct {
	// Timing

	// KeepAliveInterval is the minimum time between frames. When nothing was
	// sent for longer than this, an idle tick sends a keep-alive.
	// Default: 15 seconds.
	KeepAliveInterval time.Duration

	// ReadTimeout is the maximum time to wait for a message from the client.
	// The renderer only talks when the user does, so 0 disables the deadline.
	// Default: 0.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait when sending a frame.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// DefaultFramesPerSecond is used when a painter reports a non-positive
	// frame rate.
	// Default: 10.
	DefaultFramesPerSecond int

	// Limits

	// MaxMessageSize is the maximum size of an incoming WebSocket message.
	// Default: 64KB.
	MaxMessageSize int64

	// MaxInboundQueue is the number of inbound frames buffered between the
	// read goroutine and the session loop.
	// Default: 256.
	MaxInboundQueue int
}

// DefaultSessionConfig returns a SessionConfig with sensible defaults.
func DefaultSessionConfig() *SessionConfig {
	return &SessionConfig{
		KeepAliveInterval:      15 * time.Second,
		ReadTimeout:            0,
		WriteTimeout:           10 * time.Second,
		DefaultFramesPerSecond: 10,
		MaxMessageSize:         64 * 1024, // 64KB
		MaxInboundQueue:        256,
	}
}

// Clone returns a copy of the SessionConfig.
func (c *SessionConfig) Clone() *SessionConfig {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// withDefaults fills unset fields from DefaultSessionConfig.
func (c *SessionConfig) withDefaults() *SessionConfig {
	defaults := DefaultSessionConfig()
	if c == nil {
		return defaults
	}
	out := c.Clone()
	if out.KeepAliveInterval <= 0 {
		out.KeepAliveInterval = defaults.KeepAliveInterval
	}
	if out.DefaultFramesPerSecond <= 0 {
		out.DefaultFramesPerSecond = defaults.DefaultFramesPerSecond
	}
	if out.MaxInboundQueue <= 0 {
		out.MaxInboundQueue = defaults.MaxInboundQueue
	}
	if out.MaxMessageSize <= 0 {
		out.MaxMessageSize = defaults.MaxMessageSize
	}
	return out
}

// ServerConfig holds configuration for the HTTP/WebSocket server.
type ServerConfig struct {
	// Address is the address to listen on (e.g., ":8080" or "localhost:3000").
	// Default: ":8080".
	Address string

	// WebSocketPath is the path the renderer connects to.
	// Default: "/websocket".
	WebSocketPath string

	// MetricsPath is where the metrics handler is mounted when one is set.
	// Default: "/metrics".
	MetricsPath string

	// WebSocket buffer sizes

	// ReadBufferSize is the WebSocket read buffer size.
	// Default: 4096.
	ReadBufferSize int

	// WriteBufferSize is the WebSocket write buffer size.
	// Default: 4096.
	WriteBufferSize int

	// CheckOrigin is called to validate the request origin.
	// Default: SameOriginCheck.
	CheckOrigin func(r *http.Request) bool

	// SessionConfig is the configuration for individual connections.
	// Default: DefaultSessionConfig().
	SessionConfig *SessionConfig

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	// Default: 30 seconds.
	ShutdownTimeout time.Duration

	// MaxSessions is the maximum number of concurrent connections.
	// 0 means no limit.
	MaxSessions int

	// TracerProvider supplies the tracer for tick and receive spans.
	// Default: the global OpenTelemetry provider.
	TracerProvider trace.TracerProvider
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Address:         ":8080",
		WebSocketPath:   "/websocket",
		MetricsPath:     "/metrics",
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     SameOriginCheck,
		SessionConfig:   DefaultSessionConfig(),
		ShutdownTimeout: 30 * time.Second,
		MaxSessions:     0,
	}
}

// SameOriginCheck validates that the WebSocket request origin matches the host.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// No Origin header (e.g., same-origin request or curl)
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	host := r.Host
	if host == "" {
		return false
	}

	return originURL.Host == host
}

// Clone returns a copy of the ServerConfig.
func (c *ServerConfig) Clone() *ServerConfig {
	if c == nil {
		return nil
	}
	clone := *c
	if c.SessionConfig != nil {
		clone.SessionConfig = c.SessionConfig.Clone()
	}
	return &clone
}

// WithAddress sets the server address and returns the config for chaining.
func (c *ServerConfig) WithAddress(addr string) *ServerConfig {
	c.Address = addr
	return c
}

// WithWebSocketPath sets the WebSocket path and returns the config for chaining.
func (c *ServerConfig) WithWebSocketPath(path string) *ServerConfig {
	c.WebSocketPath = path
	return c
}

// WithSessionConfig sets the session configuration and returns the config for chaining.
func (c *ServerConfig) WithSessionConfig(sc *SessionConfig) *ServerConfig {
	c.SessionConfig = sc
	return c
}

// WithMaxSessions sets the maximum sessions and returns the config for chaining.
func (c *ServerConfig) WithMaxSessions(max int) *ServerConfig {
	c.MaxSessions = max
	return c
}

// WithTracerProvider sets the tracer provider and returns the config for chaining.
func (c *ServerConfig) WithTracerProvider(tp trace.TracerProvider) *ServerConfig {
	c.TracerProvider = tp
	return c
}
