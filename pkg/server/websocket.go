package server

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/rcanvas/pkg/protocol"
)

// frameConn is the part of *websocket.Conn a Connection uses.
type frameConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	Close() error
}

// ConnectionState is the lifecycle state of a Connection.
type ConnectionState int32

const (
	StateConnecting ConnectionState = iota
	StateActive
	StateClosing
	StateClosed
)

// String returns the state name.
func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Connection drives one canvas over one WebSocket. A single goroutine, Run,
// owns the painter and the session: it runs ticks, flushes the queue and
// dispatches inbound frames, so those never overlap. A second goroutine only
// reads raw frames and hands them to Run.
type Connection struct {
	session    *Session
	painter    Painter
	dispatcher *dispatcher
	conn       frameConn
	config     *SessionConfig
	logger     *slog.Logger
	observer   Observer
	tracer     trace.Tracer

	state     atomic.Int32
	inbound   chan string
	done      chan struct{}
	closeOnce sync.Once
	writeMu   sync.Mutex // Protects conn writes

	// now is the clock used for keep-alive timing. time.Now carries a
	// monotonic reading, so wall-clock changes do not affect it.
	now      func() time.Time
	lastSend time.Time

	onClose func(*Connection)
}

// ConnectionOptions are the optional collaborators of a Connection.
type ConnectionOptions struct {
	Config   *SessionConfig
	Logger   *slog.Logger
	Observer Observer
	Tracer   trace.Tracer
}

// NewConnection wraps a WebSocket connection for painter.
func NewConnection(conn *websocket.Conn, painter Painter, opts ConnectionOptions) *Connection {
	return newConnection(conn, painter, opts)
}

func newConnection(conn frameConn, painter Painter, opts ConnectionOptions) *Connection {
	config := opts.Config.withDefaults()
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	observer := opts.Observer
	if observer == nil {
		observer = NopObserver{}
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(tracerName)
	}

	session := NewSession(logger)
	c := &Connection{
		session:    session,
		painter:    painter,
		dispatcher: newDispatcher(session, painter, observer),
		conn:       conn,
		config:     config,
		logger:     session.Logger(),
		observer:   observer,
		tracer:     tracer,
		inbound:    make(chan string, config.MaxInboundQueue),
		done:       make(chan struct{}),
		now:        time.Now,
	}
	c.state.Store(int32(StateConnecting))
	return c
}

// Session returns the connection's session.
func (c *Connection) Session() *Session {
	return c.session
}

// ID returns the session identifier.
func (c *Connection) ID() uint64 {
	return c.session.ID()
}

// State returns the current connection state.
func (c *Connection) State() ConnectionState {
	return ConnectionState(c.state.Load())
}

// IsActive reports whether frames can be sent.
func (c *Connection) IsActive() bool {
	return c.State() == StateActive
}

// Done is closed when the connection closes.
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// Run activates the connection and runs its loop until the context is
// cancelled or the connection closes. It closes the connection on return.
func (c *Connection) Run(ctx context.Context) {
	defer c.Close()

	go c.readLoop()

	if !c.activate() {
		return
	}

	timer := time.NewTimer(c.frameInterval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-c.done:
			return

		case frame := <-c.inbound:
			c.receive(ctx, frame)

		case <-timer.C:
			// A late tick after close does nothing and is not rescheduled.
			if !c.IsActive() {
				return
			}
			c.tick(ctx)
			timer.Reset(c.frameInterval())
		}
	}
}

// activate moves Connecting to Active, runs the painter's Setup and sends
// what it queued.
func (c *Connection) activate() bool {
	if !c.state.CompareAndSwap(int32(StateConnecting), int32(StateActive)) {
		return false
	}
	c.lastSend = c.now()
	c.observer.ConnectionOpened()
	c.logger.Info("connection active")

	safeCall(c.session, c.logger, c.observer, "Setup", func() { c.painter.Setup(c.session) })
	c.flush()
	return true
}

func (c *Connection) frameInterval() time.Duration {
	fps := 0
	safeCall(c.session, c.logger, c.observer, "FramesPerSecond", func() { fps = c.painter.FramesPerSecond() })
	return FrameInterval(fps, c.config.DefaultFramesPerSecond)
}

// tick runs one update and flush cycle.
func (c *Connection) tick(ctx context.Context) {
	start := time.Now()
	_, span := c.tracer.Start(ctx, "rcanvas.tick",
		trace.WithAttributes(attribute.Int64("session.id", int64(c.session.ID()))))
	defer span.End()

	safeCall(c.session, c.logger, c.observer, "Update", func() { c.painter.Update(c.session) })
	commands, ok := c.flush()
	span.SetAttributes(attribute.Int("rcanvas.commands", commands))
	if !ok {
		span.SetStatus(codes.Error, "send failed")
	}

	c.observer.TickCompleted(time.Since(start))
}

// receive dispatches one inbound frame.
func (c *Connection) receive(ctx context.Context, frame string) {
	_, span := c.tracer.Start(ctx, "rcanvas.receive",
		trace.WithAttributes(attribute.Int64("session.id", int64(c.session.ID()))))
	defer span.End()

	handled := c.dispatcher.dispatch(frame)
	span.SetAttributes(attribute.Int("rcanvas.events_handled", handled))
}

// flush sends every pending command as one frame. With nothing pending it
// sends a keep-alive if nothing has been sent for longer than
// KeepAliveInterval. It returns the number of commands sent and false if a
// send failed.
func (c *Connection) flush() (int, bool) {
	if !c.IsActive() {
		return 0, true
	}

	commands := c.session.drain()
	if len(commands) > 0 {
		frame := protocol.JoinFrame(commands)
		if !c.send(frame) {
			return 0, false
		}
		c.observer.FrameSent(len(commands), len(frame))
		return len(commands), true
	}

	if c.now().Sub(c.lastSend) > c.config.KeepAliveInterval {
		if !c.send(protocol.KeepAlive) {
			return 0, false
		}
		c.observer.KeepAliveSent()
		c.logger.Debug("keep-alive sent")
	}
	return 0, true
}

// send writes one text frame. Sending on a connection that is not active is
// a silent no-op; a write error closes the connection.
func (c *Connection) send(frame string) bool {
	if !c.IsActive() {
		return false
	}

	c.writeMu.Lock()
	if c.config.WriteTimeout > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	}
	err := c.conn.WriteMessage(websocket.TextMessage, []byte(frame))
	c.writeMu.Unlock()

	if err != nil {
		if c.IsActive() {
			c.logger.Error("write error", "error", NewSessionError(c.session.ID(), "send", err))
			c.observer.WriteFailed()
		}
		c.Close()
		return false
	}
	c.lastSend = c.now()
	return true
}

// readLoop reads raw frames and queues them for Run. It owns no session
// state.
func (c *Connection) readLoop() {
	defer c.Close()

	c.conn.SetReadLimit(c.config.MaxMessageSize)

	for {
		if c.config.ReadTimeout > 0 {
			c.conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
		}

		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) && c.IsActive() {
				c.logger.Error("read error", "error", err)
			}
			return
		}

		select {
		case c.inbound <- string(msg):
		case <-c.done:
			return
		default:
			c.logger.Warn("dropping inbound frame", "error", ErrInboundQueueFull, "bytes", len(msg))
			c.observer.EventRejected("frame", rejectReason(ErrInboundQueueFull))
		}
	}
}

// Close closes the connection. It is idempotent and safe to call from any
// goroutine.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		wasActive := c.State() == StateActive
		c.state.Store(int32(StateClosing))
		close(c.done)

		c.writeMu.Lock()
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		_ = c.conn.Close()
		c.writeMu.Unlock()

		c.state.Store(int32(StateClosed))
		if wasActive {
			c.observer.ConnectionClosed()
		}
		c.logger.Info("connection closed")

		if c.onClose != nil {
			c.onClose(c)
		}
	})
}
