package turtle

import (
	"math"

	"github.com/vango-dev/rcanvas/pkg/geom"
	"github.com/vango-dev/rcanvas/pkg/protocol"
)

type actionKind int

const (
	actForward actionKind = iota
	actBackward
	actLeft
	actRight
	actPenUp
	actPenDown
	actPenColor
	actPenWidth
	actPush
	actPop
	actHome
)

type action struct {
	kind    actionKind
	steps   int
	degrees float64
	color   string
	width   int
}

// Turtle records movement and pen actions. Ops replays them into drawing
// operations, so a Turtle can be rendered any number of times.
type Turtle struct {
	center  geom.DoublePoint
	actions []action
}

// New returns a turtle for a canvas of the given size.
func New(canvas geom.Size) *Turtle {
	return &Turtle{
		center: geom.DoublePoint{X: float64(canvas.Width) / 2, Y: float64(canvas.Height) / 2},
	}
}

// Forward moves along the current heading.
func (t *Turtle) Forward(steps int) {
	t.actions = append(t.actions, action{kind: actForward, steps: steps})
}

func (t *Turtle) Backward(steps int) {
	t.actions = append(t.actions, action{kind: actBackward, steps: steps})
}

// Left turns counter-clockwise.
func (t *Turtle) Left(degrees float64) {
	t.actions = append(t.actions, action{kind: actLeft, degrees: degrees})
}

// Right turns clockwise.
func (t *Turtle) Right(degrees float64) {
	t.actions = append(t.actions, action{kind: actRight, degrees: degrees})
}

func (t *Turtle) PenUp()   { t.actions = append(t.actions, action{kind: actPenUp}) }
func (t *Turtle) PenDown() { t.actions = append(t.actions, action{kind: actPenDown}) }

// PenColor sets the stroke color for the following lines.
func (t *Turtle) PenColor(color string) {
	t.actions = append(t.actions, action{kind: actPenColor, color: color})
}

// PenWidth sets the line width for the following lines.
func (t *Turtle) PenWidth(width int) {
	t.actions = append(t.actions, action{kind: actPenWidth, width: width})
}

// Push saves position, heading, color and width. Pop restores the most
// recent saved state and is ignored when nothing was pushed.
func (t *Turtle) Push() { t.actions = append(t.actions, action{kind: actPush}) }
func (t *Turtle) Pop()  { t.actions = append(t.actions, action{kind: actPop}) }

// Home returns to the center, drawing if the pen is down, and points up.
func (t *Turtle) Home() { t.actions = append(t.actions, action{kind: actHome}) }

// Len returns the number of recorded actions.
func (t *Turtle) Len() int { return len(t.actions) }

// Ops compiles the recorded actions. The result always opens with a path at
// the center and ends with a stroke; every color or width change strokes the
// current path and opens a new one at the turtle's position.
func (t *Turtle) Ops() []protocol.Op {
	c := compiler{center: t.center, penDown: true}
	c.openPath()
	for _, a := range t.actions {
		c.apply(a)
	}
	c.closePath()
	return c.ops
}

type savedState struct {
	location geom.DoublePoint
	heading  float64
	color    *string
	width    *int
}

type compiler struct {
	center geom.DoublePoint
	ops    []protocol.Op

	location geom.DoublePoint
	heading  float64
	color    *string
	width    *int
	penDown  bool
	pathOpen bool
	stack    []savedState
}

func (c *compiler) apply(a action) {
	switch a.kind {
	case actForward:
		c.travel(c.next(a.steps, c.heading))
	case actBackward:
		c.travel(c.next(a.steps, c.heading+180))
	case actLeft:
		c.heading -= a.degrees
	case actRight:
		c.heading += a.degrees
	case actPenUp:
		c.penDown = false
	case actPenDown:
		c.penDown = true
	case actPenColor:
		c.setColor(a.color)
	case actPenWidth:
		c.setWidth(a.width)
	case actPush:
		c.stack = append(c.stack, savedState{location: c.location, heading: c.heading, color: c.color, width: c.width})
	case actPop:
		if len(c.stack) == 0 {
			return
		}
		s := c.stack[len(c.stack)-1]
		c.stack = c.stack[:len(c.stack)-1]
		c.location = s.location
		c.moveTo(c.location)
		c.heading = s.heading
		if s.color != nil {
			c.setColor(*s.color)
		}
		if s.width != nil {
			c.setWidth(*s.width)
		}
	case actHome:
		c.travel(geom.DoublePoint{})
		c.heading = 0
	}
}

// next returns the location steps away along heading.
func (c *compiler) next(steps int, heading float64) geom.DoublePoint {
	radians := (90 - heading) * math.Pi / 180
	return geom.DoublePoint{
		X: c.location.X + float64(steps)*math.Cos(radians),
		Y: c.location.Y + float64(steps)*math.Sin(radians),
	}
}

func (c *compiler) travel(to geom.DoublePoint) {
	c.location = to
	if c.penDown {
		c.ops = append(c.ops, protocol.LineTo{To: c.canvasPoint(to)})
	} else {
		c.moveTo(to)
	}
}

func (c *compiler) moveTo(to geom.DoublePoint) {
	c.ops = append(c.ops, protocol.MoveTo{To: c.canvasPoint(to)})
}

// canvasPoint maps turtle space, centered with Y up, to canvas pixels.
func (c *compiler) canvasPoint(p geom.DoublePoint) geom.Point {
	return geom.Pt(int(math.Round(c.center.X+p.X)), int(math.Round(c.center.Y-p.Y)))
}

func (c *compiler) openPath() {
	if c.pathOpen {
		return
	}
	c.ops = append(c.ops, protocol.BeginPath{})
	c.pathOpen = true
	c.moveTo(c.location)
}

func (c *compiler) closePath() {
	if !c.pathOpen {
		return
	}
	c.ops = append(c.ops, protocol.Stroke{})
	c.pathOpen = false
}

func (c *compiler) setColor(color string) {
	c.closePath()
	c.color = &color
	c.ops = append(c.ops, protocol.StrokeStyleColor{Color: color})
	c.openPath()
}

func (c *compiler) setWidth(width int) {
	c.closePath()
	c.width = &width
	c.ops = append(c.ops, protocol.LineWidth{Width: width})
	c.openPath()
}
