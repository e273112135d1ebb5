package protocol

import "github.com/vango-dev/rcanvas/pkg/geom"

// Event is a decoded inbound event.
type Event interface {
	EventName() string
	event()
}

// PointerKind identifies the pointer event.
type PointerKind uint8

const (
	Click PointerKind = iota
	MouseDown
	MouseUp
	MouseMove
	WindowMouseUp
)

var pointerNames = [...]string{
	Click:         "onClick",
	MouseDown:     "onMouseDown",
	MouseUp:       "onMouseUp",
	MouseMove:     "onMouseMove",
	WindowMouseUp: "onWindowMouseUp",
}

// String returns the wire name of the event.
func (k PointerKind) String() string {
	if int(k) < len(pointerNames) {
		return pointerNames[k]
	}
	return "onPointer?"
}

// PointerEvent is a click or mouse event in canvas coordinates.
type PointerEvent struct {
	Kind     PointerKind
	Location geom.Point
}

// KeyKind distinguishes key presses from releases.
type KeyKind uint8

const (
	KeyDown KeyKind = iota
	KeyUp
)

// String returns the wire name of the event.
func (k KeyKind) String() string {
	if k == KeyUp {
		return "onKeyUp"
	}
	return "onKeyDown"
}

// KeyModifiers records which modifier keys were held.
type KeyModifiers struct {
	Ctrl  bool
	Shift bool
	Alt   bool
	Meta  bool
}

// KeyEvent is a keyboard event. Key is the produced value, Code the
// physical key.
type KeyEvent struct {
	Kind      KeyKind
	Key       string
	Code      string
	Modifiers KeyModifiers
}

// ResizeTarget says what was resized.
type ResizeTarget uint8

const (
	CanvasResize ResizeTarget = iota
	WindowResize
)

// String returns the wire name of the event.
func (t ResizeTarget) String() string {
	if t == WindowResize {
		return "onWindowResize"
	}
	return "onCanvasResize"
}

// ResizeEvent reports the client's canvas or window size.
type ResizeEvent struct {
	Target ResizeTarget
	Size   geom.Size
}

// ResourceKind identifies the type of an identified resource.
type ResourceKind uint8

const (
	ImageResource ResourceKind = iota
	AudioResource
	LinearGradientResource
	RadialGradientResource
	PatternResource
	TextMetricResource
)

var resourceKindNames = [...]string{
	ImageResource:          "Image",
	AudioResource:          "Audio",
	LinearGradientResource: "LinearGradient",
	RadialGradientResource: "RadialGradient",
	PatternResource:        "Pattern",
	TextMetricResource:     "TextMetric",
}

// String returns the kind as it appears in event names.
func (k ResourceKind) String() string {
	if int(k) < len(resourceKindNames) {
		return resourceKindNames[k]
	}
	return "Unknown"
}

// ResourceStatus is the acknowledgement carried by a resource event.
type ResourceStatus uint8

const (
	StatusProcessed ResourceStatus = iota
	StatusLoaded
	StatusError
)

var resourceStatusNames = [...]string{
	StatusProcessed: "Processed",
	StatusLoaded:    "Loaded",
	StatusError:     "Error",
}

// String returns the status as it appears in event names.
func (s ResourceStatus) String() string {
	if int(s) < len(resourceStatusNames) {
		return resourceStatusNames[s]
	}
	return "Unknown"
}

// ResourceEvent acknowledges progress on an identified resource.
type ResourceEvent struct {
	Kind   ResourceKind
	Status ResourceStatus
	ID     string
}

// TextMetrics are the measurements reported for a text-metric resource, in the
// order they appear on the wire.
type TextMetrics struct {
	Width                    float64
	ActualBoundingBoxLeft    float64
	ActualBoundingBoxRight   float64
	FontBoundingBoxAscent    float64
	FontBoundingBoxDescent   float64
	ActualBoundingBoxAscent  float64
	ActualBoundingBoxDescent float64
	EmHeightAscent           float64
	EmHeightDescent          float64
	HangingBaseline          float64
	AlphabeticBaseline       float64
	IdeographicBaseline      float64
}

// TextMetricFields is the number of numeric fields in onTextMetricReady.
const TextMetricFields = 12

func (m *TextMetrics) fields() [TextMetricFields]*float64 {
	return [TextMetricFields]*float64{
		&m.Width,
		&m.ActualBoundingBoxLeft, &m.ActualBoundingBoxRight,
		&m.FontBoundingBoxAscent, &m.FontBoundingBoxDescent,
		&m.ActualBoundingBoxAscent, &m.ActualBoundingBoxDescent,
		&m.EmHeightAscent, &m.EmHeightDescent,
		&m.HangingBaseline, &m.AlphabeticBaseline, &m.IdeographicBaseline,
	}
}

// TextMetricReadyEvent delivers measurements for a text-metric resource.
type TextMetricReadyEvent struct {
	ID      string
	Metrics TextMetrics
}

func (e PointerEvent) EventName() string         { return e.Kind.String() }
func (e KeyEvent) EventName() string             { return e.Kind.String() }
func (e ResizeEvent) EventName() string          { return e.Target.String() }
func (e ResourceEvent) EventName() string        { return ResourceEventName(e.Kind, e.Status) }
func (e TextMetricReadyEvent) EventName() string { return EventTextMetricReady }

func (PointerEvent) event()         {}
func (KeyEvent) event()             {}
func (ResizeEvent) event()          {}
func (ResourceEvent) event()        {}
func (TextMetricReadyEvent) event() {}

// EventTextMetricReady is the name of the measurement delivery event.
const EventTextMetricReady = "onTextMetricReady"

// ResourceEventName builds the wire name for a resource acknowledgement,
// for example onImageLoaded.
func ResourceEventName(kind ResourceKind, status ResourceStatus) string {
	return "on" + kind.String() + status.String()
}

// =============================================================================
// Decoding
// =============================================================================

type eventDecoder func(r *argReader) Event

var eventDecoders = buildEventDecoders()

func buildEventDecoders() map[string]eventDecoder {
	m := make(map[string]eventDecoder, 32)

	for i := range pointerNames {
		kind := PointerKind(i)
		m[kind.String()] = func(r *argReader) Event {
			return PointerEvent{Kind: kind, Location: r.point()}
		}
	}

	for _, kind := range []KeyKind{KeyDown, KeyUp} {
		m[kind.String()] = func(r *argReader) Event {
			return KeyEvent{
				Kind: kind,
				Key:  r.str(),
				Code: r.str(),
				Modifiers: KeyModifiers{
					Ctrl: r.bool(), Shift: r.bool(), Alt: r.bool(), Meta: r.bool(),
				},
			}
		}
	}

	for _, target := range []ResizeTarget{CanvasResize, WindowResize} {
		m[target.String()] = func(r *argReader) Event {
			return ResizeEvent{Target: target, Size: geom.Size{Width: r.int(), Height: r.int()}}
		}
	}

	for k := range resourceKindNames {
		for s := range resourceStatusNames {
			kind, status := ResourceKind(k), ResourceStatus(s)
			m[ResourceEventName(kind, status)] = func(r *argReader) Event {
				return ResourceEvent{Kind: kind, Status: status, ID: r.str()}
			}
		}
	}

	m[EventTextMetricReady] = func(r *argReader) Event {
		e := TextMetricReadyEvent{ID: r.str()}
		for _, f := range e.Metrics.fields() {
			*f = r.lenientFloat()
		}
		return e
	}

	return m
}

// IsKnownEvent reports whether name is in the inbound catalogue.
func IsKnownEvent(name string) bool {
	_, ok := eventDecoders[name]
	return ok
}

// DecodeEvent decodes one raw event. Unknown names return ErrUnknownEvent;
// a wrong argument count or unparseable argument returns ErrArgumentCount
// or ErrInvalidArgument. Integer fields accept floating-point text and
// truncate it.
func DecodeEvent(raw RawEvent) (Event, error) {
	dec, ok := eventDecoders[raw.Name]
	if !ok {
		return nil, &DecodeError{Name: raw.Name, Err: ErrUnknownEvent}
	}
	r := newArgReader(raw.Name, raw.Args)
	ev := dec(r)
	if err := r.done(); err != nil {
		return nil, err
	}
	return ev, nil
}

// EncodeEvent renders an event in wire form. The renderer produces these in
// production; the server uses it in tests and tooling.
func EncodeEvent(ev Event) string {
	var args []string
	switch e := ev.(type) {
	case PointerEvent:
		args = pointArgs(e.Location)
	case KeyEvent:
		args = []string{
			sanitizeToken(e.Key), sanitizeToken(e.Code),
			formatBool(e.Modifiers.Ctrl), formatBool(e.Modifiers.Shift),
			formatBool(e.Modifiers.Alt), formatBool(e.Modifiers.Meta),
		}
	case ResizeEvent:
		args = []string{formatInt(e.Size.Width), formatInt(e.Size.Height)}
	case ResourceEvent:
		args = []string{e.ID}
	case TextMetricReadyEvent:
		args = append(args, e.ID)
		for _, f := range e.Metrics.fields() {
			args = append(args, formatFloat(*f))
		}
	}
	return Command(append([]string{ev.EventName()}, args...)).String()
}

// DecodeFrame splits a frame and decodes every event in order. Failures are
// returned alongside the successfully decoded events; one bad event never
// hides the others.
func DecodeFrame(frame string) ([]Event, []error) {
	raws := SplitFrame(frame)
	events := make([]Event, 0, len(raws))
	var errs []error
	for _, raw := range raws {
		ev, err := DecodeEvent(raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		events = append(events, ev)
	}
	return events, errs
}
