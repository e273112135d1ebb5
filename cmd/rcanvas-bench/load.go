package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/rcanvas/pkg/geom"
	"github.com/vango-dev/rcanvas/pkg/protocol"
	"github.com/vango-dev/rcanvas/pkg/server"
)

// echoPainter draws a fixed field of rectangles on every tick and writes
// each key it receives back as text on the next tick.
type echoPainter struct {
	server.PainterBase

	fps    int
	shapes []protocol.Op
	keys   []string
}

func newEchoPainter(fps, shapes int) *echoPainter {
	p := &echoPainter{fps: fps, shapes: make([]protocol.Op, 0, shapes)}
	for i := 0; i < shapes; i++ {
		p.shapes = append(p.shapes, protocol.FillRect{Rect: geom.NewRect((i%20)*32, (i/20)*32, 30, 30)})
	}
	return p
}

func (p *echoPainter) FramesPerSecond() int { return p.fps }

func (p *echoPainter) OnKeyDown(key, _ string, _ protocol.KeyModifiers) {
	p.keys = append(p.keys, key)
}

func (p *echoPainter) Update(s *server.Session) {
	s.Render(p.shapes...)
	for _, key := range p.keys {
		s.Render(protocol.FillText{Text: key, At: geom.Pt(0, 0)})
	}
	p.keys = p.keys[:0]
}

// keyEvent encodes the inbound event a renderer sends for a key press.
func keyEvent(key string) string {
	return protocol.EncodeEvent(protocol.KeyEvent{Kind: protocol.KeyDown, Key: key, Code: "KeyA"})
}

// echoCommand is the outbound command that carries key back.
func echoCommand(key string) string {
	return protocol.MustEncode(protocol.FillText{Text: key, At: geom.Pt(0, 0)})
}

func runClient(
	ctx context.Context,
	wsURL string,
	clientID int,
	cfg benchConfig,
	counters *benchCounters,
	errCounts *benchErrors,
	samples chan<- time.Duration,
) error {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		errCounts.dialFailures.Add(1)
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	period := time.Duration(float64(time.Second) / cfg.RPS)
	var seq uint64

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		seq++
		token := makeToken(clientID, seq, cfg.PayloadBytes)

		start := time.Now()

		event := keyEvent(token)
		if err := conn.WriteMessage(websocket.TextMessage, []byte(event)); err != nil {
			errCounts.eventWriteFailures.Add(1)
			return fmt.Errorf("event write: %w", err)
		}

		counters.eventsSent.Add(1)
		counters.eventBytes.Add(uint64(len(event)))

		if cfg.EventTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(cfg.EventTimeout))
		}
		eventCtx, cancel := context.WithTimeout(ctx, cfg.EventTimeout)
		found, err := waitForEcho(eventCtx, conn, echoCommand(token), counters)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || isTimeout(err) {
				errCounts.echoMissing.Add(1)
				return fmt.Errorf("echo not observed in frames")
			}
			errCounts.readFailures.Add(1)
			return fmt.Errorf("wait for echo: %w", err)
		}
		if !found {
			errCounts.echoMissing.Add(1)
			return fmt.Errorf("echo not observed in frames")
		}

		rtt := time.Since(start)
		counters.eventsComplete.Add(1)
		samples <- rtt

		elapsed := time.Since(start)
		if sleep := period - elapsed; sleep > 0 {
			timer := time.NewTimer(sleep)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil
			case <-timer.C:
			}
		}
	}
}

func waitForEcho(
	ctx context.Context,
	conn *websocket.Conn,
	want string,
	counters *benchCounters,
) (bool, error) {
	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		default:
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			return false, err
		}

		frame := string(msg)
		if frame == protocol.KeepAlive {
			counters.keepAlives.Add(1)
			continue
		}

		counters.frames.Add(1)
		counters.frameBytes.Add(uint64(len(msg)))

		found := false
		for _, cmd := range strings.Split(frame, protocol.CommandSeparator) {
			counters.ops.add(protocol.SplitCommand(cmd)[0])
			counters.commands.Add(1)
			if cmd == want {
				found = true
			}
		}
		if found {
			return true, nil
		}
	}
}

func makeToken(clientID int, seq uint64, payloadBytes int) string {
	if payloadBytes <= 0 {
		return ""
	}
	seed := (uint64(clientID) << 32) ^ seq
	base := strings.ToLower(strconv.FormatUint(seed, 36))
	if len(base) >= payloadBytes {
		return base[len(base)-payloadBytes:]
	}
	pad := strings.Repeat("x", payloadBytes-len(base))
	return base + pad
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

// opCounts counts outbound commands by name.
type opCounts struct {
	mu     sync.Mutex
	counts map[string]uint64
}

func (o *opCounts) add(name string) {
	o.mu.Lock()
	if o.counts == nil {
		o.counts = make(map[string]uint64)
	}
	o.counts[name]++
	o.mu.Unlock()
}

func (o *opCounts) snapshot() map[string]uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make(map[string]uint64, len(o.counts))
	for name, n := range o.counts {
		out[name] = n
	}
	return out
}
