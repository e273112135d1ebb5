package server

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/vango-dev/rcanvas/pkg/geom"
	"github.com/vango-dev/rcanvas/pkg/protocol"
	"github.com/vango-dev/rcanvas/pkg/resource"
)

// sessionCounter hands out session identifiers. It is the only state shared
// between sessions.
var sessionCounter atomic.Uint64

// Session is the per-connection canvas state: the queue of commands waiting
// for the next flush, the registry of identified resources, and the sizes
// last reported by the client.
//
// Painters mutate a Session from their callbacks. Nothing here performs
// network I/O; the connection's loop decides when queued commands are sent.
type Session struct {
	id     uint64
	logger *slog.Logger

	mu         sync.Mutex
	pending    []string
	resources  map[string]resource.Resource
	canvasSize *geom.Size
	windowSize *geom.Size
}

// NewSession creates a session with the next identifier. A nil logger uses
// slog.Default().
func NewSession(logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	id := sessionCounter.Add(1)
	return &Session{
		id:        id,
		logger:    logger.With("session_id", id),
		resources: make(map[string]resource.Resource),
	}
}

// ID returns the session identifier.
func (s *Session) ID() uint64 {
	return s.id
}

// Logger returns the session-scoped logger.
func (s *Session) Logger() *slog.Logger {
	return s.logger
}

// Render encodes each operation and appends it to the pending queue.
// Operations that reference a resource which is not ready yet are still
// queued, with a warning. Operations that cannot be encoded are logged and
// skipped.
func (s *Session) Render(ops ...protocol.Op) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, op := range ops {
		cmd, err := protocol.Encode(op)
		if err != nil {
			s.logger.Error("cannot encode operation", "op", op.OpName(), "error", err)
			continue
		}
		s.checkReferencesLocked(op)
		s.pending = append(s.pending, cmd.String())
	}
}

func (s *Session) checkReferencesLocked(op protocol.Op) {
	for _, id := range protocol.References(op) {
		r, ok := s.resources[id]
		switch {
		case !ok:
			s.logger.Warn("operation references unknown resource",
				"op", op.OpName(), "resource_id", id)
		case !r.IsReady():
			s.logger.Warn("operation references resource that is not ready",
				"op", op.OpName(), "resource_id", id, "state", r.State().String())
		}
	}
}

// Setup registers each resource, queues its creation command, and moves it
// to TransmissionQueued. Setting up the same resource twice queues a second
// creation command.
func (s *Session) Setup(resources ...resource.Resource) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range resources {
		op := r.SetupOp()
		cmd, err := protocol.Encode(op)
		if err != nil {
			s.logger.Error("cannot encode setup", "resource_id", r.ID(), "error", err)
			continue
		}
		s.resources[r.ID()] = r
		s.checkReferencesLocked(op)
		s.pending = append(s.pending, cmd.String())
		r.Advance(resource.TransmissionQueued, s.logger)
	}
}

// SetSize asks the client to resize the canvas. The last-known canvas size
// only changes when the client reports the new size back.
func (s *Session) SetSize(size geom.Size) {
	s.Render(protocol.CanvasSetSize{Size: size})
}

// DisplayStatistics shows or hides the renderer's statistics overlay.
func (s *Session) DisplayStatistics(enabled bool) {
	s.Render(protocol.DisplayStatistics{Enabled: enabled})
}

// CanvasSize returns the canvas size last reported by the client.
func (s *Session) CanvasSize() (geom.Size, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.canvasSize == nil {
		return geom.Size{}, false
	}
	return *s.canvasSize, true
}

// WindowSize returns the browser window size last reported by the client.
func (s *Session) WindowSize() (geom.Size, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.windowSize == nil {
		return geom.Size{}, false
	}
	return *s.windowSize, true
}

// Resource looks up a registered resource by identifier.
func (s *Session) Resource(id string) (resource.Resource, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.resources[id]
	return r, ok
}

// Resources returns the number of registered resources.
func (s *Session) Resources() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.resources)
}

// Pending returns the number of commands waiting for the next flush.
func (s *Session) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// drain removes and returns every pending command.
func (s *Session) drain() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	cmds := s.pending
	s.pending = nil
	return cmds
}

func (s *Session) setCanvasSize(size geom.Size) {
	s.mu.Lock()
	s.canvasSize = &size
	s.mu.Unlock()
}

func (s *Session) setWindowSize(size geom.Size) {
	s.mu.Lock()
	s.windowSize = &size
	s.mu.Unlock()
}
