package protocol

import "github.com/vango-dev/rcanvas/pkg/geom"

// Op is any outbound operation. The set of implementations is closed: every
// Op also belongs to exactly one category interface below.
type Op interface {
	OpName() string
	op()
}

// PathOp builds or consumes the current path.
type PathOp interface {
	Op
	pathOp()
}

// ShapeOp draws directly without touching the current path.
type ShapeOp interface {
	Op
	shapeOp()
}

// StyleOp changes drawing state.
type StyleOp interface {
	Op
	styleOp()
}

// TransformOp changes the current transform.
type TransformOp interface {
	Op
	transformOp()
}

// ResourceOp creates or uses an identified resource.
type ResourceOp interface {
	Op
	resourceOp()
}

// CanvasOp changes the canvas element itself.
type CanvasOp interface {
	Op
	canvasOp()
}

// Operation names.
const (
	OpBeginPath        = "beginPath"
	OpClosePath        = "closePath"
	OpMoveTo           = "moveTo"
	OpLineTo           = "lineTo"
	OpArc              = "arc"
	OpArcTo            = "arcTo"
	OpQuadraticCurveTo = "quadraticCurveTo"
	OpBezierCurveTo    = "bezierCurveTo"
	OpEllipse          = "ellipse"
	OpRect             = "rect"
	OpFill             = "fill"
	OpStroke           = "stroke"
	OpClip             = "clip"

	OpFillRect   = "fillRect"
	OpStrokeRect = "strokeRect"
	OpClearRect  = "clearRect"
	OpFillText   = "fillText"
	OpStrokeText = "strokeText"

	OpFillStyleSolidColor   = "fillStyleSolidColor"
	OpFillStyleGradient     = "fillStyleGradient"
	OpFillStylePattern      = "fillStylePattern"
	OpStrokeStyleSolidColor = "strokeStyleSolidColor"
	OpStrokeStyleGradient   = "strokeStyleGradient"
	OpLineWidth             = "lineWidth"
	OpGlobalAlpha           = "globalAlpha"
	OpCursorStyle           = "cursorStyle"
	OpFont                  = "font"
	OpTextAlign             = "textAlign"
	OpTextBaseline          = "textBaseline"
	OpSave                  = "save"
	OpRestore               = "restore"

	OpSetTransform = "setTransform"
	OpTransform    = "transform"

	OpCreateImage          = "createImage"
	OpDrawImage            = "drawImage"
	OpCreateAudio          = "createAudio"
	OpSetAudioMode         = "setAudioMode"
	OpCreateLinearGradient = "createLinearGradient"
	OpCreateRadialGradient = "createRadialGradient"
	OpCreatePattern        = "createPattern"
	OpCreateTextMetric     = "createTextMetric"
	OpTextMetric           = "textMetric"

	OpCanvasSetSize     = "canvasSetSize"
	OpDisplayStatistics = "displayStatistics"
)

// =============================================================================
// Enumerations
// =============================================================================

// WindingRule selects the fill rule used by Clip.
type WindingRule string

const (
	NonZero WindingRule = "nonzero"
	EvenOdd WindingRule = "evenodd"
)

// Alignment is the horizontal text alignment.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
	AlignStart  Alignment = "start"
	AlignEnd    Alignment = "end"
)

// Baseline is the vertical text baseline.
type Baseline string

const (
	BaselineTop         Baseline = "top"
	BaselineHanging     Baseline = "hanging"
	BaselineMiddle      Baseline = "middle"
	BaselineAlphabetic  Baseline = "alphabetic"
	BaselineIdeographic Baseline = "ideographic"
	BaselineBottom      Baseline = "bottom"
)

// Cursor is a CSS cursor keyword.
type Cursor string

const (
	CursorInitial     Cursor = "initial"
	CursorAuto        Cursor = "auto"
	CursorDefault     Cursor = "default"
	CursorNone        Cursor = "none"
	CursorProgress    Cursor = "progress"
	CursorWait        Cursor = "wait"
	CursorPointer     Cursor = "pointer"
	CursorCrosshair   Cursor = "crosshair"
	CursorHelp        Cursor = "help"
	CursorContextMenu Cursor = "context-menu"
	CursorAlias       Cursor = "alias"
	CursorText        Cursor = "text"
	CursorVertical    Cursor = "vertical-text"
	CursorCell        Cursor = "cell"
	CursorNotAllowed  Cursor = "not-allowed"
	CursorNoDrop      Cursor = "no-drop"
	CursorAllScroll   Cursor = "all-scroll"
	CursorMove        Cursor = "move"
	CursorCopy        Cursor = "copy"
	CursorResizeN     Cursor = "n-resize"
	CursorResizeNE    Cursor = "ne-resize"
	CursorResizeE     Cursor = "e-resize"
	CursorResizeSE    Cursor = "se-resize"
	CursorResizeS     Cursor = "s-resize"
	CursorResizeSW    Cursor = "sw-resize"
	CursorResizeW     Cursor = "w-resize"
	CursorResizeNW    Cursor = "nw-resize"
	CursorResizeRow   Cursor = "row-resize"
	CursorResizeCol   Cursor = "col-resize"
	CursorZoomIn      Cursor = "zoom-in"
	CursorZoomOut     Cursor = "zoom-out"
)

// AudioMode is the playback state requested by SetAudioMode.
type AudioMode string

const (
	AudioPlay  AudioMode = "play"
	AudioPause AudioMode = "pause"
)

// Repetition controls how a pattern tiles.
type Repetition string

const (
	Repeated    Repetition = "repeated"
	RepeatedX   Repetition = "repeatedX"
	RepeatedY   Repetition = "repeatedY"
	NotRepeated Repetition = "notRepeated"
)

// ImageMode selects which drawImage argument shape is used.
type ImageMode uint8

const (
	// DrawAtPoint draws the image at its natural size.
	DrawAtPoint ImageMode = iota
	// DrawInRect scales the image into Dest.
	DrawInRect
	// DrawSourceInRect copies Source from the image into Dest.
	DrawSourceInRect
)

// ColorStop is one stop of a gradient.
type ColorStop struct {
	Position float64
	Color    string
}

// =============================================================================
// Path operations
// =============================================================================

type BeginPath struct{}
type ClosePath struct{}

type MoveTo struct{ To geom.Point }
type LineTo struct{ To geom.Point }

type Arc struct {
	Center        geom.Point
	Radius        int
	StartAngle    float64
	EndAngle      float64
	AntiClockwise bool
}

type ArcTo struct {
	Control1 geom.Point
	Control2 geom.Point
	Radius   int
}

type QuadraticCurveTo struct {
	Control geom.Point
	End     geom.Point
}

type BezierCurveTo struct {
	Control1 geom.Point
	Control2 geom.Point
	End      geom.Point
}

type Ellipse struct {
	Center        geom.Point
	RadiusX       int
	RadiusY       int
	Rotation      float64
	StartAngle    float64
	EndAngle      float64
	AntiClockwise bool
}

// Rect adds a rectangle to the current path.
type Rect struct{ Rect geom.Rect }

type Fill struct{}
type Stroke struct{}

type Clip struct{ Rule WindingRule }

func (BeginPath) OpName() string        { return OpBeginPath }
func (ClosePath) OpName() string        { return OpClosePath }
func (MoveTo) OpName() string           { return OpMoveTo }
func (LineTo) OpName() string           { return OpLineTo }
func (Arc) OpName() string              { return OpArc }
func (ArcTo) OpName() string            { return OpArcTo }
func (QuadraticCurveTo) OpName() string { return OpQuadraticCurveTo }
func (BezierCurveTo) OpName() string    { return OpBezierCurveTo }
func (Ellipse) OpName() string          { return OpEllipse }
func (Rect) OpName() string             { return OpRect }
func (Fill) OpName() string             { return OpFill }
func (Stroke) OpName() string           { return OpStroke }
func (Clip) OpName() string             { return OpClip }

func (BeginPath) op()        {}
func (ClosePath) op()        {}
func (MoveTo) op()           {}
func (LineTo) op()           {}
func (Arc) op()              {}
func (ArcTo) op()            {}
func (QuadraticCurveTo) op() {}
func (BezierCurveTo) op()    {}
func (Ellipse) op()          {}
func (Rect) op()             {}
func (Fill) op()             {}
func (Stroke) op()           {}
func (Clip) op()             {}

func (BeginPath) pathOp()        {}
func (ClosePath) pathOp()        {}
func (MoveTo) pathOp()           {}
func (LineTo) pathOp()           {}
func (Arc) pathOp()              {}
func (ArcTo) pathOp()            {}
func (QuadraticCurveTo) pathOp() {}
func (BezierCurveTo) pathOp()    {}
func (Ellipse) pathOp()          {}
func (Rect) pathOp()             {}
func (Fill) pathOp()             {}
func (Stroke) pathOp()           {}
func (Clip) pathOp()             {}

// =============================================================================
// Shape operations
// =============================================================================

type FillRect struct{ Rect geom.Rect }
type StrokeRect struct{ Rect geom.Rect }
type ClearRect struct{ Rect geom.Rect }

// FillText draws text at a location. Separator characters in Text are
// substituted on the wire.
type FillText struct {
	Text string
	At   geom.Point
}

// StrokeText outlines text at a location.
type StrokeText struct {
	Text string
	At   geom.Point
}

func (FillRect) OpName() string   { return OpFillRect }
func (StrokeRect) OpName() string { return OpStrokeRect }
func (ClearRect) OpName() string  { return OpClearRect }
func (FillText) OpName() string   { return OpFillText }
func (StrokeText) OpName() string { return OpStrokeText }

func (FillRect) op()   {}
func (StrokeRect) op() {}
func (ClearRect) op()  {}
func (FillText) op()   {}
func (StrokeText) op() {}

func (FillRect) shapeOp()   {}
func (StrokeRect) shapeOp() {}
func (ClearRect) shapeOp()  {}
func (FillText) shapeOp()   {}
func (StrokeText) shapeOp() {}

// =============================================================================
// Style operations
// =============================================================================

type FillStyleColor struct{ Color string }
type StrokeStyleColor struct{ Color string }

// FillStyleGradient fills with a previously created gradient.
type FillStyleGradient struct{ GradientID string }

// StrokeStyleGradient strokes with a previously created gradient.
type StrokeStyleGradient struct{ GradientID string }

// FillStylePattern fills with a previously created pattern.
type FillStylePattern struct{ PatternID string }

type LineWidth struct{ Width int }
type GlobalAlpha struct{ Alpha float64 }
type CursorStyle struct{ Cursor Cursor }
type Font struct{ Font string }
type TextAlign struct{ Align Alignment }
type TextBaseline struct{ Baseline Baseline }
type Save struct{}
type Restore struct{}

func (FillStyleColor) OpName() string      { return OpFillStyleSolidColor }
func (StrokeStyleColor) OpName() string    { return OpStrokeStyleSolidColor }
func (FillStyleGradient) OpName() string   { return OpFillStyleGradient }
func (StrokeStyleGradient) OpName() string { return OpStrokeStyleGradient }
func (FillStylePattern) OpName() string    { return OpFillStylePattern }
func (LineWidth) OpName() string           { return OpLineWidth }
func (GlobalAlpha) OpName() string         { return OpGlobalAlpha }
func (CursorStyle) OpName() string         { return OpCursorStyle }
func (Font) OpName() string                { return OpFont }
func (TextAlign) OpName() string           { return OpTextAlign }
func (TextBaseline) OpName() string        { return OpTextBaseline }
func (Save) OpName() string                { return OpSave }
func (Restore) OpName() string             { return OpRestore }

func (FillStyleColor) op()      {}
func (StrokeStyleColor) op()    {}
func (FillStyleGradient) op()   {}
func (StrokeStyleGradient) op() {}
func (FillStylePattern) op()    {}
func (LineWidth) op()           {}
func (GlobalAlpha) op()         {}
func (CursorStyle) op()         {}
func (Font) op()                {}
func (TextAlign) op()           {}
func (TextBaseline) op()        {}
func (Save) op()                {}
func (Restore) op()             {}

func (FillStyleColor) styleOp()      {}
func (StrokeStyleColor) styleOp()    {}
func (FillStyleGradient) styleOp()   {}
func (StrokeStyleGradient) styleOp() {}
func (FillStylePattern) styleOp()    {}
func (LineWidth) styleOp()           {}
func (GlobalAlpha) styleOp()         {}
func (CursorStyle) styleOp()         {}
func (Font) styleOp()                {}
func (TextAlign) styleOp()           {}
func (TextBaseline) styleOp()        {}
func (Save) styleOp()                {}
func (Restore) styleOp()             {}

// =============================================================================
// Transform operations
// =============================================================================

// SetTransform replaces the current transform.
type SetTransform struct{ Matrix geom.Matrix }

// Transform multiplies the current transform.
type Transform struct{ Matrix geom.Matrix }

func (SetTransform) OpName() string { return OpSetTransform }
func (Transform) OpName() string    { return OpTransform }

func (SetTransform) op() {}
func (Transform) op()    {}

func (SetTransform) transformOp() {}
func (Transform) transformOp()    {}

// =============================================================================
// Resource operations
// =============================================================================

type CreateImage struct {
	ID  string
	URL string
}

// DrawImage draws a ready image. Mode selects whether At, Dest, or
// Source and Dest are transmitted.
type DrawImage struct {
	ID     string
	Mode   ImageMode
	At     geom.Point
	Dest   geom.Rect
	Source geom.Rect
}

type CreateAudio struct {
	ID   string
	URL  string
	Loop bool
}

type SetAudioMode struct {
	ID   string
	Mode AudioMode
}

type CreateLinearGradient struct {
	ID    string
	Start geom.Point
	End   geom.Point
	Stops []ColorStop
}

type CreateRadialGradient struct {
	ID      string
	Center1 geom.Point
	Radius1 float64
	Center2 geom.Point
	Radius2 float64
	Stops   []ColorStop
}

type CreatePattern struct {
	ID         string
	ImageID    string
	Repetition Repetition
}

type CreateTextMetric struct{ ID string }

// TextMetric asks the renderer to measure Text with the current font,
// alignment and baseline.
type TextMetric struct {
	ID   string
	Text string
}

func (CreateImage) OpName() string          { return OpCreateImage }
func (DrawImage) OpName() string            { return OpDrawImage }
func (CreateAudio) OpName() string          { return OpCreateAudio }
func (SetAudioMode) OpName() string         { return OpSetAudioMode }
func (CreateLinearGradient) OpName() string { return OpCreateLinearGradient }
func (CreateRadialGradient) OpName() string { return OpCreateRadialGradient }
func (CreatePattern) OpName() string        { return OpCreatePattern }
func (CreateTextMetric) OpName() string     { return OpCreateTextMetric }
func (TextMetric) OpName() string           { return OpTextMetric }

func (CreateImage) op()          {}
func (DrawImage) op()            {}
func (CreateAudio) op()          {}
func (SetAudioMode) op()         {}
func (CreateLinearGradient) op() {}
func (CreateRadialGradient) op() {}
func (CreatePattern) op()        {}
func (CreateTextMetric) op()     {}
func (TextMetric) op()           {}

func (CreateImage) resourceOp()          {}
func (DrawImage) resourceOp()            {}
func (CreateAudio) resourceOp()          {}
func (SetAudioMode) resourceOp()         {}
func (CreateLinearGradient) resourceOp() {}
func (CreateRadialGradient) resourceOp() {}
func (CreatePattern) resourceOp()        {}
func (CreateTextMetric) resourceOp()     {}
func (TextMetric) resourceOp()           {}

// =============================================================================
// Canvas operations
// =============================================================================

// CanvasSetSize asks the renderer to resize the canvas element.
type CanvasSetSize struct{ Size geom.Size }

func (CanvasSetSize) OpName() string { return OpCanvasSetSize }
func (CanvasSetSize) op()            {}
func (CanvasSetSize) canvasOp()      {}

// DisplayStatistics shows or hides the renderer's statistics overlay.
type DisplayStatistics struct{ Enabled bool }

func (DisplayStatistics) OpName() string { return OpDisplayStatistics }
func (DisplayStatistics) op()            {}
func (DisplayStatistics) canvasOp()      {}

// References returns the identifiers of resources op uses without creating
// them. Creation operations return nil.
func References(op Op) []string {
	switch o := op.(type) {
	case DrawImage:
		return []string{o.ID}
	case SetAudioMode:
		return []string{o.ID}
	case FillStyleGradient:
		return []string{o.GradientID}
	case StrokeStyleGradient:
		return []string{o.GradientID}
	case FillStylePattern:
		return []string{o.PatternID}
	case TextMetric:
		return []string{o.ID}
	case CreatePattern:
		return []string{o.ImageID}
	default:
		return nil
	}
}
