package protocol

import (
	"strconv"

	"github.com/vango-dev/rcanvas/pkg/geom"
)

// Parse decodes an outbound command back into its typed operation.
// The renderer is the real consumer of these commands; Parse exists so the
// catalogue can be checked end to end and so frames can be inspected.
func Parse(c Command) (Op, error) {
	if len(c) == 0 {
		return nil, &DecodeError{Err: ErrEmptyCommand}
	}
	name := c.Name()
	r := newArgReader(name, blankToEmpty(c.Args()))

	var op Op
	switch name {
	case OpBeginPath:
		op = BeginPath{}
	case OpClosePath:
		op = ClosePath{}
	case OpMoveTo:
		op = MoveTo{To: r.point()}
	case OpLineTo:
		op = LineTo{To: r.point()}
	case OpArc:
		op = Arc{Center: r.point(), Radius: r.int(), StartAngle: r.float(), EndAngle: r.float(), AntiClockwise: r.bool()}
	case OpArcTo:
		op = ArcTo{Control1: r.point(), Control2: r.point(), Radius: r.int()}
	case OpQuadraticCurveTo:
		op = QuadraticCurveTo{Control: r.point(), End: r.point()}
	case OpBezierCurveTo:
		op = BezierCurveTo{Control1: r.point(), Control2: r.point(), End: r.point()}
	case OpEllipse:
		op = Ellipse{
			Center: r.point(), RadiusX: r.int(), RadiusY: r.int(),
			Rotation: r.float(), StartAngle: r.float(), EndAngle: r.float(),
			AntiClockwise: r.bool(),
		}
	case OpRect:
		op = Rect{Rect: r.rect()}
	case OpFill:
		op = Fill{}
	case OpStroke:
		op = Stroke{}
	case OpClip:
		op = Clip{Rule: WindingRule(r.str())}

	case OpFillRect:
		op = FillRect{Rect: r.rect()}
	case OpStrokeRect:
		op = StrokeRect{Rect: r.rect()}
	case OpClearRect:
		op = ClearRect{Rect: r.rect()}
	case OpFillText:
		op = FillText{Text: r.str(), At: r.point()}
	case OpStrokeText:
		op = StrokeText{Text: r.str(), At: r.point()}

	case OpFillStyleSolidColor:
		op = FillStyleColor{Color: r.rest()}
	case OpStrokeStyleSolidColor:
		op = StrokeStyleColor{Color: r.rest()}
	case OpFillStyleGradient:
		op = FillStyleGradient{GradientID: r.str()}
	case OpStrokeStyleGradient:
		op = StrokeStyleGradient{GradientID: r.str()}
	case OpFillStylePattern:
		op = FillStylePattern{PatternID: r.str()}
	case OpLineWidth:
		op = LineWidth{Width: r.int()}
	case OpGlobalAlpha:
		op = GlobalAlpha{Alpha: r.float()}
	case OpCursorStyle:
		op = CursorStyle{Cursor: Cursor(r.str())}
	case OpFont:
		op = Font{Font: r.rest()}
	case OpTextAlign:
		op = TextAlign{Align: Alignment(r.str())}
	case OpTextBaseline:
		op = TextBaseline{Baseline: Baseline(r.str())}
	case OpSave:
		op = Save{}
	case OpRestore:
		op = Restore{}

	case OpSetTransform:
		op = SetTransform{Matrix: r.matrix()}
	case OpTransform:
		op = Transform{Matrix: r.matrix()}

	case OpCreateImage:
		op = CreateImage{ID: r.str(), URL: r.rest()}
	case OpDrawImage:
		op = r.drawImage()
	case OpCreateAudio:
		op = CreateAudio{ID: r.str(), URL: r.str(), Loop: r.bool()}
	case OpSetAudioMode:
		op = SetAudioMode{ID: r.str(), Mode: AudioMode(r.str())}
	case OpCreateLinearGradient:
		op = CreateLinearGradient{ID: r.str(), Start: r.point(), End: r.point(), Stops: r.stops()}
	case OpCreateRadialGradient:
		op = CreateRadialGradient{
			ID:      r.str(),
			Center1: r.point(), Radius1: r.float(),
			Center2: r.point(), Radius2: r.float(),
			Stops: r.stops(),
		}
	case OpCreatePattern:
		op = CreatePattern{ID: r.str(), ImageID: r.str(), Repetition: Repetition(r.str())}
	case OpCreateTextMetric:
		op = CreateTextMetric{ID: r.str()}
	case OpTextMetric:
		op = TextMetric{ID: r.str(), Text: r.rest()}

	case OpCanvasSetSize:
		op = CanvasSetSize{Size: geom.Size{Width: r.int(), Height: r.int()}}
	case OpDisplayStatistics:
		op = DisplayStatistics{Enabled: r.bool()}

	default:
		return nil, &DecodeError{Name: name, Err: ErrUnknownOperation}
	}

	if err := r.done(); err != nil {
		return nil, err
	}
	return op, nil
}

// ParseString splits and parses one encoded command.
func ParseString(s string) (Op, error) {
	return Parse(SplitCommand(s))
}

func (r *argReader) point() geom.Point {
	return geom.Point{X: r.int(), Y: r.int()}
}

func (r *argReader) rect() geom.Rect {
	return geom.NewRect(r.int(), r.int(), r.int(), r.int())
}

func (r *argReader) matrix() geom.Matrix {
	var m geom.Matrix
	for i := range m {
		m[i] = r.float()
	}
	return m
}

func (r *argReader) stops() []ColorStop {
	n := r.int()
	if r.err != nil {
		return nil
	}
	if n < 0 || len(r.args)-r.pos != 2*n {
		r.err = argCountError(r.name, len(r.args), strconv.Itoa(r.pos+2*max(n, 0)))
		return nil
	}
	stops := make([]ColorStop, n)
	for i := range stops {
		stops[i] = ColorStop{Position: r.float(), Color: r.str()}
	}
	return stops
}

// drawImage picks the argument shape from the argument count, the way the
// renderer does.
func (r *argReader) drawImage() DrawImage {
	d := DrawImage{ID: r.str()}
	switch len(r.args) {
	case 3:
		d.Mode = DrawAtPoint
		d.At = r.point()
	case 5:
		d.Mode = DrawInRect
		d.Dest = r.rect()
	case 9:
		d.Mode = DrawSourceInRect
		d.Source = r.rect()
		d.Dest = r.rect()
	default:
		if r.err == nil {
			r.err = argCountError(r.name, len(r.args), "3, 5 or 9")
		}
	}
	return d
}

// blankToEmpty undoes the single-space placeholder Command.String writes for
// empty arguments. A lone space argument therefore parses as "".
func blankToEmpty(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if a != " " {
			out[i] = a
		}
	}
	return out
}
