package demo

import (
	"github.com/vango-dev/rcanvas/pkg/geom"
	"github.com/vango-dev/rcanvas/pkg/protocol"
	"github.com/vango-dev/rcanvas/pkg/resource"
	"github.com/vango-dev/rcanvas/pkg/server"
)

const sketchHint = "Drag to draw, press any key to clear"

// Sketch draws line segments while the mouse button is held. Input
// callbacks only collect segments; Update renders them.
type Sketch struct {
	server.PainterBase

	drawing bool
	last    geom.Point
	pending []segment
	clear   bool

	hint     *resource.TextMetric
	measured bool
	hintDone bool
	size     geom.Size
}

type segment struct{ from, to geom.Point }

// NewSketch returns an empty sketch pad.
func NewSketch() *Sketch {
	return &Sketch{size: defaultArena}
}

func (p *Sketch) FramesPerSecond() int { return 20 }

func (p *Sketch) Setup(s *server.Session) {
	p.hint = resource.NewTextMetric(sketchHint)
	p.hint.SetFont("16px sans-serif")
	s.Setup(p.hint)
}

func (p *Sketch) Update(s *server.Session) {
	if p.clear {
		s.Render(protocol.ClearRect{Rect: geom.Rect{Size: p.size}})
		p.clear = false
		p.hintDone = false
	}
	if !p.measured && p.hint != nil && p.hint.IsReady() {
		s.Render(p.hint.Measure()...)
		p.measured = true
	}
	if !p.hintDone && p.hint != nil {
		if m, ok := p.hint.CurrentMetrics(); ok {
			x := (p.size.Width - int(m.Width)) / 2
			s.Render(
				protocol.Font{Font: "16px sans-serif"},
				protocol.FillStyleColor{Color: "#888888"},
				protocol.FillText{Text: sketchHint, At: geom.Pt(max(x, 0), 24)},
			)
			p.hintDone = true
		}
	}
	if len(p.pending) == 0 {
		return
	}

	ops := []protocol.Op{
		protocol.StrokeStyleColor{Color: "#222222"},
		protocol.LineWidth{Width: 3},
		protocol.BeginPath{},
	}
	for _, seg := range p.pending {
		ops = append(ops, protocol.MoveTo{To: seg.from}, protocol.LineTo{To: seg.to})
	}
	ops = append(ops, protocol.Stroke{})
	s.Render(ops...)
	p.pending = p.pending[:0]
}

func (p *Sketch) OnMouseDown(l geom.Point) {
	p.drawing = true
	p.last = l
}

func (p *Sketch) OnMouseMove(l geom.Point) {
	if !p.drawing {
		return
	}
	p.pending = append(p.pending, segment{from: p.last, to: l})
	p.last = l
}

func (p *Sketch) OnMouseUp(geom.Point)       { p.drawing = false }
func (p *Sketch) OnWindowMouseUp(geom.Point) { p.drawing = false }

func (p *Sketch) OnKeyDown(string, string, protocol.KeyModifiers) {
	p.clear = true
	p.pending = p.pending[:0]
}

func (p *Sketch) OnCanvasResize(size geom.Size) {
	p.size = size
	p.hintDone = false
}
