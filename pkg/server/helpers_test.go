package server

import (
	"bytes"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/rcanvas/pkg/geom"
	"github.com/vango-dev/rcanvas/pkg/protocol"
)

// fakeConn is an in-memory frameConn. Frames queued with deliver are
// returned by ReadMessage; frames written by the connection are recorded.
type fakeConn struct {
	mu       sync.Mutex
	written  []string
	writeErr error

	reads     chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		reads:  make(chan []byte, 16),
		closed: make(chan struct{}),
	}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case msg := <-f.reads:
		return websocket.TextMessage, msg, nil
	case <-f.closed:
		return 0, nil, &websocket.CloseError{Code: websocket.CloseNormalClosure}
	}
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	select {
	case <-f.closed:
		return errors.New("fake: write on closed connection")
	default:
	}
	f.written = append(f.written, string(data))
	return nil
}

func (f *fakeConn) WriteControl(int, []byte, time.Time) error { return nil }
func (f *fakeConn) SetReadDeadline(time.Time) error           { return nil }
func (f *fakeConn) SetWriteDeadline(time.Time) error          { return nil }
func (f *fakeConn) SetReadLimit(int64)                        {}

func (f *fakeConn) Close() error {
	f.closeOnce.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeConn) deliver(frame string) {
	f.reads <- []byte(frame)
}

func (f *fakeConn) frames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.written...)
}

func (f *fakeConn) setWriteErr(err error) {
	f.mu.Lock()
	f.writeErr = err
	f.mu.Unlock()
}

// recordingPainter records every callback. Fields are only read after the
// connection loop has stopped, or from dispatcher tests that run on the test
// goroutine.
type recordingPainter struct {
	PainterBase

	fps      int
	setup    func(*Session)
	update   func(*Session)
	onClick  func(geom.Point)
	updates  int
	clicks   []geom.Point
	downs    []geom.Point
	ups      []geom.Point
	moves    []geom.Point
	winUps   []geom.Point
	keys     []string
	mods     []protocol.KeyModifiers
	canvas   []geom.Size
	windows  []geom.Size
	tickTime []time.Time
}

func (p *recordingPainter) FramesPerSecond() int { return p.fps }

func (p *recordingPainter) Setup(s *Session) {
	if p.setup != nil {
		p.setup(s)
	}
}

func (p *recordingPainter) Update(s *Session) {
	p.updates++
	p.tickTime = append(p.tickTime, time.Now())
	if p.update != nil {
		p.update(s)
	}
}

func (p *recordingPainter) OnClick(l geom.Point) {
	if p.onClick != nil {
		p.onClick(l)
	}
	p.clicks = append(p.clicks, l)
}

func (p *recordingPainter) OnMouseDown(l geom.Point)     { p.downs = append(p.downs, l) }
func (p *recordingPainter) OnMouseUp(l geom.Point)       { p.ups = append(p.ups, l) }
func (p *recordingPainter) OnMouseMove(l geom.Point)     { p.moves = append(p.moves, l) }
func (p *recordingPainter) OnWindowMouseUp(l geom.Point) { p.winUps = append(p.winUps, l) }
func (p *recordingPainter) OnCanvasResize(s geom.Size)   { p.canvas = append(p.canvas, s) }
func (p *recordingPainter) OnWindowResize(s geom.Size)   { p.windows = append(p.windows, s) }

func (p *recordingPainter) OnKeyDown(key, code string, mods protocol.KeyModifiers) {
	p.keys = append(p.keys, "down:"+key+":"+code)
	p.mods = append(p.mods, mods)
}

func (p *recordingPainter) OnKeyUp(key, code string, mods protocol.KeyModifiers) {
	p.keys = append(p.keys, "up:"+key+":"+code)
	p.mods = append(p.mods, mods)
}

// bufferLogger returns a logger writing text records into a buffer.
func bufferLogger() (*slog.Logger, *syncBuffer) {
	buf := &syncBuffer{}
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// waitFor polls cond until it returns true or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}
