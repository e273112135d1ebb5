package demo

import (
	"github.com/vango-dev/rcanvas/pkg/geom"
	"github.com/vango-dev/rcanvas/pkg/protocol"
	"github.com/vango-dev/rcanvas/pkg/server"
	"github.com/vango-dev/rcanvas/pkg/turtle"
)

// spiralTurns are the headings a click cycles through.
var spiralTurns = []float64{90, 89, 91, 121, 144}

const spiralSegments = 120

// Spiral draws a turtle-graphics spiral from the center of the canvas. The
// drawing only changes on a click or a resize, so most ticks send nothing.
type Spiral struct {
	server.PainterBase

	size  geom.Size
	turn  int
	dirty bool
}

// NewSpiral returns a spiral painter that draws on its first tick.
func NewSpiral() *Spiral {
	return &Spiral{size: defaultArena, dirty: true}
}

func (p *Spiral) FramesPerSecond() int { return 10 }

func (p *Spiral) Setup(s *server.Session) {
	if size, ok := s.CanvasSize(); ok {
		p.size = size
	}
}

func (p *Spiral) Update(s *server.Session) {
	if !p.dirty {
		return
	}
	p.dirty = false
	s.Render(protocol.ClearRect{Rect: geom.Rect{Size: p.size}})
	s.Render(p.turtle().Ops()...)
}

func (p *Spiral) turtle() *turtle.Turtle {
	t := turtle.New(p.size)
	t.PenWidth(2)
	step := max(min(p.size.Width, p.size.Height)/(2*spiralSegments), 1)
	for i := 1; i <= spiralSegments; i++ {
		if i%30 == 1 {
			t.PenColor(bounceColors[(i/30)%len(bounceColors)])
		}
		t.Forward(i * step)
		t.Right(spiralTurns[p.turn])
	}
	return t
}

func (p *Spiral) OnClick(geom.Point) {
	p.turn = (p.turn + 1) % len(spiralTurns)
	p.dirty = true
}

func (p *Spiral) OnCanvasResize(size geom.Size) {
	p.size = size
	p.dirty = true
}
