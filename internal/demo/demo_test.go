package demo

import (
	"testing"

	"github.com/vango-dev/rcanvas/pkg/geom"
	"github.com/vango-dev/rcanvas/pkg/protocol"
	"github.com/vango-dev/rcanvas/pkg/server"
)

func TestLookup(t *testing.T) {
	for _, name := range Names() {
		f, ok := Lookup(name)
		if !ok || f == nil {
			t.Fatalf("Lookup(%q) failed", name)
		}
		if f() == nil {
			t.Fatalf("factory %q returned nil", name)
		}
	}
	if _, ok := Lookup(DefaultName); !ok {
		t.Fatalf("default painter %q is not registered", DefaultName)
	}
	if _, ok := Lookup("nope"); ok {
		t.Fatal("Lookup(nope) succeeded")
	}
}

func TestBounceStaysInArena(t *testing.T) {
	b := NewBounce()
	b.OnCanvasResize(geom.Size{Width: 100, Height: 80})

	for i := 0; i < 500; i++ {
		b.step()
		if b.Position.X < b.Radius || b.Position.X > 100-b.Radius ||
			b.Position.Y < b.Radius || b.Position.Y > 80-b.Radius {
			t.Fatalf("tick %d: ball escaped to %v", i, b.Position)
		}
	}
}

func TestBounceReflects(t *testing.T) {
	b := NewBounce()
	b.OnCanvasResize(geom.Size{Width: 100, Height: 100})
	b.Position = geom.Pt(75, 50)
	b.Velocity = geom.Pt(10, 0)

	b.step()
	if b.Velocity.X != -10 || b.Position.X != 80 {
		t.Fatalf("position=%v velocity=%v, want x=80 vx=-10", b.Position, b.Velocity)
	}
}

func TestBounceUpdateRenders(t *testing.T) {
	b := NewBounce()
	s := server.NewSession(nil)

	b.Setup(s)
	b.Update(s)
	if s.Pending() != 5 {
		t.Fatalf("Pending=%d, want 5", s.Pending())
	}

	b.OnClick(geom.Pt(0, 0))
	if b.color != 1 {
		t.Fatalf("color=%d, want 1", b.color)
	}
}

func TestSketchCollectsSegmentsWhileDragging(t *testing.T) {
	p := NewSketch()

	p.OnMouseMove(geom.Pt(1, 1))
	if len(p.pending) != 0 {
		t.Fatal("segment recorded without a pressed button")
	}

	p.OnMouseDown(geom.Pt(0, 0))
	p.OnMouseMove(geom.Pt(5, 5))
	p.OnMouseMove(geom.Pt(10, 5))
	p.OnWindowMouseUp(geom.Pt(10, 5))
	p.OnMouseMove(geom.Pt(20, 20))

	want := []segment{
		{from: geom.Pt(0, 0), to: geom.Pt(5, 5)},
		{from: geom.Pt(5, 5), to: geom.Pt(10, 5)},
	}
	if len(p.pending) != len(want) {
		t.Fatalf("pending=%v, want %v", p.pending, want)
	}
	for i := range want {
		if p.pending[i] != want[i] {
			t.Errorf("segment %d=%v, want %v", i, p.pending[i], want[i])
		}
	}

	s := server.NewSession(nil)
	p.Update(s)
	// strokeStyle, lineWidth, beginPath, 2x(moveTo, lineTo), stroke
	if s.Pending() != 8 {
		t.Fatalf("Pending=%d, want 8", s.Pending())
	}
	if len(p.pending) != 0 {
		t.Fatal("segments not consumed by Update")
	}
}

func TestSketchKeyClears(t *testing.T) {
	p := NewSketch()
	p.OnMouseDown(geom.Pt(0, 0))
	p.OnMouseMove(geom.Pt(3, 3))
	p.OnKeyDown("Escape", "Escape", protocol.KeyModifiers{})

	s := server.NewSession(nil)
	p.Update(s)
	if s.Pending() != 1 {
		t.Fatalf("Pending=%d, want only clearRect", s.Pending())
	}
}

func TestSketchSetupRegistersHint(t *testing.T) {
	p := NewSketch()
	s := server.NewSession(nil)
	p.Setup(s)

	if s.Resources() != 1 {
		t.Fatalf("Resources=%d, want 1", s.Resources())
	}
	if s.Pending() != 1 {
		t.Fatalf("Pending=%d, want createTextMetric only", s.Pending())
	}
}

func TestSpiralRedrawsOnlyWhenDirty(t *testing.T) {
	p := NewSpiral()
	s := server.NewSession(nil)
	p.Setup(s)

	p.Update(s)
	// clearRect, then the turtle path: beginPath and moveTo, the width
	// change, four color changes, one lineTo per segment and a stroke.
	want := 1 + 2 + 4 + 4*4 + spiralSegments + 1
	if got := s.Pending(); got != want {
		t.Fatalf("Pending=%d, want %d", got, want)
	}
	if n := len(p.turtle().Ops()); n != want-1 {
		t.Fatalf("turtle ops=%d, want %d", n, want-1)
	}

	p.Update(s)
	if got := s.Pending(); got != want {
		t.Fatalf("clean tick queued more commands: Pending=%d", got)
	}

	p.OnClick(geom.Pt(1, 1))
	p.Update(s)
	if got := s.Pending(); got != 2*want {
		t.Fatalf("Pending=%d after click, want %d", got, 2*want)
	}
}
