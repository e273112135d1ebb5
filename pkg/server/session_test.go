package server

import (
	"strings"
	"sync"
	"testing"

	"github.com/vango-dev/rcanvas/pkg/geom"
	"github.com/vango-dev/rcanvas/pkg/protocol"
	"github.com/vango-dev/rcanvas/pkg/resource"
)

func TestSessionRenderQueuesInOrder(t *testing.T) {
	s := NewSession(nil)
	s.Render(protocol.BeginPath{}, protocol.MoveTo{To: geom.Pt(10, 20)})
	s.Render(protocol.LineTo{To: geom.Pt(30, 40)}, protocol.Stroke{})

	if got := s.Pending(); got != 4 {
		t.Fatalf("Pending=%d, want 4", got)
	}
	got := protocol.JoinFrame(s.drain())
	want := "beginPath||moveTo|10|20||lineTo|30|40||stroke"
	if got != want {
		t.Fatalf("frame=%q, want %q", got, want)
	}
	if s.Pending() != 0 {
		t.Fatalf("Pending after drain=%d, want 0", s.Pending())
	}
}

func TestSessionRenderSkipsUnencodable(t *testing.T) {
	logger, buf := bufferLogger()
	s := NewSession(logger)
	s.Render(protocol.DrawImage{ID: "x", Mode: protocol.ImageMode(99)}, protocol.Fill{})

	cmds := s.drain()
	if len(cmds) != 1 || cmds[0] != "fill" {
		t.Fatalf("queue=%v, want [fill]", cmds)
	}
	if !strings.Contains(buf.String(), "cannot encode operation") {
		t.Fatalf("missing encode error log: %s", buf.String())
	}
}

func TestSessionSetupQueuesCreationAndAdvances(t *testing.T) {
	s := NewSession(nil)
	img := resource.NewImage("images/a.png")
	snd := resource.NewAudio("audio/a.mp3", true)

	s.Setup(img, snd)

	if img.State() != resource.TransmissionQueued || snd.State() != resource.TransmissionQueued {
		t.Fatalf("states=%v,%v, want transmissionQueued", img.State(), snd.State())
	}
	if r, ok := s.Resource(img.ID()); !ok || r != img {
		t.Fatalf("Resource(%q)=%v,%v", img.ID(), r, ok)
	}
	if s.Resources() != 2 {
		t.Fatalf("Resources=%d, want 2", s.Resources())
	}

	cmds := s.drain()
	want := []string{
		"createImage|" + img.ID() + "|images/a.png",
		"createAudio|" + snd.ID() + "|audio/a.mp3|true",
	}
	if len(cmds) != len(want) {
		t.Fatalf("queue=%v, want %v", cmds, want)
	}
	for i := range want {
		if cmds[i] != want[i] {
			t.Errorf("cmd[%d]=%q, want %q", i, cmds[i], want[i])
		}
	}
}

func TestSessionWarnsOnNotReadyReference(t *testing.T) {
	logger, buf := bufferLogger()
	s := NewSession(logger)
	img := resource.NewImage("a.png")
	s.Setup(img)
	s.drain()

	s.Render(img.DrawAt(geom.Pt(0, 0)))
	if s.Pending() != 1 {
		t.Fatalf("not-ready draw was not queued")
	}
	if !strings.Contains(buf.String(), "not ready") {
		t.Fatalf("missing not-ready warning: %s", buf.String())
	}

	s.Render(protocol.FillStyleGradient{GradientID: "missing"})
	if !strings.Contains(buf.String(), "unknown resource") {
		t.Fatalf("missing unknown-resource warning: %s", buf.String())
	}
}

func TestSessionSetSizeDoesNotChangeKnownSize(t *testing.T) {
	s := NewSession(nil)
	if _, ok := s.CanvasSize(); ok {
		t.Fatal("canvas size known before any report")
	}

	s.SetSize(geom.Size{Width: 320, Height: 200})
	if _, ok := s.CanvasSize(); ok {
		t.Fatal("SetSize changed the last-known size")
	}
	if cmds := s.drain(); len(cmds) != 1 || cmds[0] != "canvasSetSize|320|200" {
		t.Fatalf("queue=%v, want [canvasSetSize|320|200]", cmds)
	}

	s.setCanvasSize(geom.Size{Width: 320, Height: 200})
	if got, ok := s.CanvasSize(); !ok || got.Width != 320 {
		t.Fatalf("CanvasSize=%v,%v", got, ok)
	}
	if _, ok := s.WindowSize(); ok {
		t.Fatal("window size known before any report")
	}
}

func TestSessionIDsUniqueUnderConcurrency(t *testing.T) {
	const n = 200
	ids := make(chan uint64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- NewSession(nil).ID()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[uint64]bool, n)
	for id := range ids {
		if id == 0 || seen[id] {
			t.Fatalf("duplicate or zero id %d", id)
		}
		seen[id] = true
	}
}

func TestSessionDisplayStatistics(t *testing.T) {
	s := NewSession(nil)
	s.DisplayStatistics(true)
	s.DisplayStatistics(false)

	got := protocol.JoinFrame(s.drain())
	if want := "displayStatistics|true||displayStatistics|false"; got != want {
		t.Fatalf("frame=%q, want %q", got, want)
	}
}
