package demo

import (
	"math"

	"github.com/vango-dev/rcanvas/pkg/geom"
	"github.com/vango-dev/rcanvas/pkg/protocol"
	"github.com/vango-dev/rcanvas/pkg/server"
)

var bounceColors = []string{"#e4572e", "#29335c", "#f3a712", "#a8c686", "#669bbc"}

// defaultArena is used until the renderer reports the canvas size.
var defaultArena = geom.Size{Width: 640, Height: 480}

// Bounce moves a ball across the canvas, reflecting it off the edges.
type Bounce struct {
	server.PainterBase

	Radius   int
	Position geom.Point
	Velocity geom.Point

	arena geom.Size
	color int
}

// NewBounce returns a ball near the top-left corner.
func NewBounce() *Bounce {
	return &Bounce{
		Radius:   20,
		Position: geom.Pt(40, 40),
		Velocity: geom.Pt(7, 5),
		arena:    defaultArena,
	}
}

func (b *Bounce) FramesPerSecond() int { return 30 }

func (b *Bounce) Setup(s *server.Session) {
	if size, ok := s.CanvasSize(); ok {
		b.arena = size
	}
}

func (b *Bounce) Update(s *server.Session) {
	b.step()
	s.Render(
		protocol.ClearRect{Rect: geom.Rect{Size: b.arena}},
		protocol.FillStyleColor{Color: bounceColors[b.color]},
		protocol.BeginPath{},
		protocol.Arc{Center: b.Position, Radius: b.Radius, EndAngle: 2 * math.Pi},
		protocol.Fill{},
	)
}

// step advances the ball one tick and keeps it inside the arena.
func (b *Bounce) step() {
	b.Position = b.Position.Add(b.Velocity)

	maxX := b.arena.Width - b.Radius
	maxY := b.arena.Height - b.Radius
	if b.Position.X < b.Radius || b.Position.X > maxX {
		b.Velocity.X = -b.Velocity.X
		b.Position.X = clamp(b.Position.X, b.Radius, maxX)
	}
	if b.Position.Y < b.Radius || b.Position.Y > maxY {
		b.Velocity.Y = -b.Velocity.Y
		b.Position.Y = clamp(b.Position.Y, b.Radius, maxY)
	}
}

func (b *Bounce) OnClick(geom.Point) {
	b.color = (b.color + 1) % len(bounceColors)
}

func (b *Bounce) OnCanvasResize(size geom.Size) {
	b.arena = size
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return max(lo, min(v, hi))
}
