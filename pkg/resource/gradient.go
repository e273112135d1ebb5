package resource

import (
	"github.com/vango-dev/rcanvas/pkg/geom"
	"github.com/vango-dev/rcanvas/pkg/protocol"
)

// Gradient is a linear or radial gradient. Gradient coordinates are global
// to the canvas, not relative to the shape being filled.
//
// Color stops are transmitted with the creation command, so all stops must
// be added before the gradient is set up.
type Gradient struct {
	Lifecycle

	radial  bool
	start   geom.Point
	end     geom.Point
	radius1 float64
	radius2 float64
	stops   []protocol.ColorStop
}

// NewLinearGradient creates a gradient along the line from start to end.
func NewLinearGradient(start, end geom.Point) *Gradient {
	return &Gradient{Lifecycle: newLifecycle(), start: start, end: end}
}

// NewRadialGradient creates a gradient between two circles.
func NewRadialGradient(center1 geom.Point, radius1 float64, center2 geom.Point, radius2 float64) *Gradient {
	return &Gradient{
		Lifecycle: newLifecycle(),
		radial:    true,
		start:     center1,
		end:       center2,
		radius1:   radius1,
		radius2:   radius2,
	}
}

// Kind returns LinearGradientResource or RadialGradientResource.
func (g *Gradient) Kind() protocol.ResourceKind {
	if g.radial {
		return protocol.RadialGradientResource
	}
	return protocol.LinearGradientResource
}

func (*Gradient) resource() {}

// AddColorStop appends a stop at position in [0, 1]. It fails once the
// gradient has been set up.
func (g *Gradient) AddColorStop(position float64, color string) error {
	if g.state != PendingTransmission {
		return ErrAlreadySetup
	}
	g.stops = append(g.stops, protocol.ColorStop{Position: position, Color: color})
	return nil
}

// ColorStops returns a copy of the stops added so far.
func (g *Gradient) ColorStops() []protocol.ColorStop {
	return append([]protocol.ColorStop(nil), g.stops...)
}

func (g *Gradient) SetupOp() protocol.Op {
	stops := g.ColorStops()
	if g.radial {
		return protocol.CreateRadialGradient{
			ID:      g.id,
			Center1: g.start,
			Radius1: g.radius1,
			Center2: g.end,
			Radius2: g.radius2,
			Stops:   stops,
		}
	}
	return protocol.CreateLinearGradient{ID: g.id, Start: g.start, End: g.end, Stops: stops}
}

// FillStyle fills subsequent shapes with the gradient.
func (g *Gradient) FillStyle() protocol.FillStyleGradient {
	return protocol.FillStyleGradient{GradientID: g.id}
}

// StrokeStyle strokes subsequent shapes with the gradient.
func (g *Gradient) StrokeStyle() protocol.StrokeStyleGradient {
	return protocol.StrokeStyleGradient{GradientID: g.id}
}
