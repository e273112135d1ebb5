package protocol

import (
	"errors"
	"fmt"

	"github.com/vango-dev/rcanvas/pkg/geom"
)

// ErrUnsupportedOp is returned by Encode for a value outside the catalogue
// or with an invalid mode.
var ErrUnsupportedOp = errors.New("protocol: unsupported operation")

// Encode converts an operation into its command tokens.
func Encode(op Op) (Command, error) {
	switch o := op.(type) {
	case PathOp:
		return encodePath(o)
	case ShapeOp:
		return encodeShape(o)
	case StyleOp:
		return encodeStyle(o)
	case TransformOp:
		return encodeTransform(o)
	case ResourceOp:
		return encodeResource(o)
	case CanvasOp:
		return encodeCanvas(o)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedOp, op)
	}
}

// MustEncode is Encode for operations known to be valid; it panics on error.
func MustEncode(op Op) string {
	cmd, err := Encode(op)
	if err != nil {
		panic(err)
	}
	return cmd.String()
}

func cmd(name string, args ...string) Command {
	c := make(Command, 0, len(args)+1)
	c = append(c, name)
	return append(c, args...)
}

func pointArgs(p geom.Point) []string {
	return []string{formatInt(p.X), formatInt(p.Y)}
}

func rectArgs(r geom.Rect) []string {
	return []string{
		formatInt(r.TopLeft.X), formatInt(r.TopLeft.Y),
		formatInt(r.Size.Width), formatInt(r.Size.Height),
	}
}

func matrixArgs(m geom.Matrix) []string {
	out := make([]string, len(m))
	for i, v := range m {
		out[i] = formatFloat(v)
	}
	return out
}

func stopArgs(stops []ColorStop) []string {
	out := make([]string, 0, 1+2*len(stops))
	out = append(out, formatInt(len(stops)))
	for _, s := range stops {
		out = append(out, formatFloat(s.Position), sanitizeToken(s.Color))
	}
	return out
}

func encodePath(op PathOp) (Command, error) {
	switch o := op.(type) {
	case BeginPath:
		return cmd(OpBeginPath), nil
	case ClosePath:
		return cmd(OpClosePath), nil
	case MoveTo:
		return cmd(OpMoveTo, pointArgs(o.To)...), nil
	case LineTo:
		return cmd(OpLineTo, pointArgs(o.To)...), nil
	case Arc:
		return cmd(OpArc,
			formatInt(o.Center.X), formatInt(o.Center.Y), formatInt(o.Radius),
			formatFloat(o.StartAngle), formatFloat(o.EndAngle), formatBool(o.AntiClockwise)), nil
	case ArcTo:
		args := append(pointArgs(o.Control1), pointArgs(o.Control2)...)
		return cmd(OpArcTo, append(args, formatInt(o.Radius))...), nil
	case QuadraticCurveTo:
		return cmd(OpQuadraticCurveTo, append(pointArgs(o.Control), pointArgs(o.End)...)...), nil
	case BezierCurveTo:
		args := append(pointArgs(o.Control1), pointArgs(o.Control2)...)
		return cmd(OpBezierCurveTo, append(args, pointArgs(o.End)...)...), nil
	case Ellipse:
		return cmd(OpEllipse,
			formatInt(o.Center.X), formatInt(o.Center.Y),
			formatInt(o.RadiusX), formatInt(o.RadiusY),
			formatFloat(o.Rotation), formatFloat(o.StartAngle), formatFloat(o.EndAngle),
			formatBool(o.AntiClockwise)), nil
	case Rect:
		return cmd(OpRect, rectArgs(o.Rect)...), nil
	case Fill:
		return cmd(OpFill), nil
	case Stroke:
		return cmd(OpStroke), nil
	case Clip:
		rule := o.Rule
		if rule == "" {
			rule = NonZero
		}
		return cmd(OpClip, string(rule)), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedOp, op)
	}
}

func encodeShape(op ShapeOp) (Command, error) {
	switch o := op.(type) {
	case FillRect:
		return cmd(OpFillRect, rectArgs(o.Rect)...), nil
	case StrokeRect:
		return cmd(OpStrokeRect, rectArgs(o.Rect)...), nil
	case ClearRect:
		return cmd(OpClearRect, rectArgs(o.Rect)...), nil
	case FillText:
		return cmd(OpFillText, append([]string{sanitizeToken(o.Text)}, pointArgs(o.At)...)...), nil
	case StrokeText:
		return cmd(OpStrokeText, append([]string{sanitizeToken(o.Text)}, pointArgs(o.At)...)...), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedOp, op)
	}
}

func encodeStyle(op StyleOp) (Command, error) {
	switch o := op.(type) {
	case FillStyleColor:
		return cmd(OpFillStyleSolidColor, o.Color), nil
	case StrokeStyleColor:
		return cmd(OpStrokeStyleSolidColor, o.Color), nil
	case FillStyleGradient:
		return cmd(OpFillStyleGradient, o.GradientID), nil
	case StrokeStyleGradient:
		return cmd(OpStrokeStyleGradient, o.GradientID), nil
	case FillStylePattern:
		return cmd(OpFillStylePattern, o.PatternID), nil
	case LineWidth:
		return cmd(OpLineWidth, formatInt(o.Width)), nil
	case GlobalAlpha:
		return cmd(OpGlobalAlpha, formatFloat(o.Alpha)), nil
	case CursorStyle:
		return cmd(OpCursorStyle, string(o.Cursor)), nil
	case Font:
		return cmd(OpFont, o.Font), nil
	case TextAlign:
		return cmd(OpTextAlign, string(o.Align)), nil
	case TextBaseline:
		return cmd(OpTextBaseline, string(o.Baseline)), nil
	case Save:
		return cmd(OpSave), nil
	case Restore:
		return cmd(OpRestore), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedOp, op)
	}
}

func encodeTransform(op TransformOp) (Command, error) {
	switch o := op.(type) {
	case SetTransform:
		return cmd(OpSetTransform, matrixArgs(o.Matrix)...), nil
	case Transform:
		return cmd(OpTransform, matrixArgs(o.Matrix)...), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedOp, op)
	}
}

func encodeResource(op ResourceOp) (Command, error) {
	switch o := op.(type) {
	case CreateImage:
		return cmd(OpCreateImage, o.ID, o.URL), nil
	case DrawImage:
		switch o.Mode {
		case DrawAtPoint:
			return cmd(OpDrawImage, append([]string{o.ID}, pointArgs(o.At)...)...), nil
		case DrawInRect:
			return cmd(OpDrawImage, append([]string{o.ID}, rectArgs(o.Dest)...)...), nil
		case DrawSourceInRect:
			args := append([]string{o.ID}, rectArgs(o.Source)...)
			return cmd(OpDrawImage, append(args, rectArgs(o.Dest)...)...), nil
		default:
			return nil, fmt.Errorf("%w: drawImage mode %d", ErrUnsupportedOp, o.Mode)
		}
	case CreateAudio:
		return cmd(OpCreateAudio, o.ID, sanitizeToken(o.URL), formatBool(o.Loop)), nil
	case SetAudioMode:
		return cmd(OpSetAudioMode, o.ID, string(o.Mode)), nil
	case CreateLinearGradient:
		args := []string{o.ID}
		args = append(args, pointArgs(o.Start)...)
		args = append(args, pointArgs(o.End)...)
		return cmd(OpCreateLinearGradient, append(args, stopArgs(o.Stops)...)...), nil
	case CreateRadialGradient:
		args := []string{o.ID}
		args = append(args, pointArgs(o.Center1)...)
		args = append(args, formatFloat(o.Radius1))
		args = append(args, pointArgs(o.Center2)...)
		args = append(args, formatFloat(o.Radius2))
		return cmd(OpCreateRadialGradient, append(args, stopArgs(o.Stops)...)...), nil
	case CreatePattern:
		rep := o.Repetition
		if rep == "" {
			rep = Repeated
		}
		return cmd(OpCreatePattern, o.ID, o.ImageID, string(rep)), nil
	case CreateTextMetric:
		return cmd(OpCreateTextMetric, o.ID), nil
	case TextMetric:
		return cmd(OpTextMetric, o.ID, o.Text), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedOp, op)
	}
}

func encodeCanvas(op CanvasOp) (Command, error) {
	switch o := op.(type) {
	case CanvasSetSize:
		return cmd(OpCanvasSetSize, formatInt(o.Size.Width), formatInt(o.Size.Height)), nil
	case DisplayStatistics:
		return cmd(OpDisplayStatistics, formatBool(o.Enabled)), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedOp, op)
	}
}
