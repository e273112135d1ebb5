package resource

import (
	"github.com/vango-dev/rcanvas/pkg/geom"
	"github.com/vango-dev/rcanvas/pkg/protocol"
)

// Metrics are the measurements of a piece of text as reported by the
// renderer.
type Metrics protocol.TextMetrics

// ActualBoundingBox returns the tight box around the rendered glyphs when the
// text is drawn at the given location.
func (m Metrics) ActualBoundingBox(at geom.Point) geom.Rect {
	return m.box(at, m.ActualBoundingBoxAscent, m.ActualBoundingBoxDescent)
}

// FontBoundingBox is like ActualBoundingBox but uses the font's ascent and
// descent, so its height does not depend on which characters were measured.
func (m Metrics) FontBoundingBox(at geom.Point) geom.Rect {
	return m.box(at, m.FontBoundingBoxAscent, m.FontBoundingBoxDescent)
}

func (m Metrics) box(at geom.Point, ascent, descent float64) geom.Rect {
	left := float64(at.X) - m.ActualBoundingBoxLeft
	top := float64(at.Y) - ascent
	right := float64(at.X) + m.ActualBoundingBoxRight
	bottom := float64(at.Y) + descent
	return geom.NewRect(int(left), int(top), int(right-left), int(bottom-top))
}

// TextMetric is a resource that asks the renderer to measure text. Rendering
// it has no visible effect; the result arrives later through ReceiveMetrics.
//
// Changing the text or any of the font settings clears the current metrics
// and keeps the last known ones available through MostRecentMetrics until a
// new measurement arrives.
type TextMetric struct {
	Lifecycle

	text     string
	font     string
	align    protocol.Alignment
	baseline protocol.Baseline

	current  *Metrics
	previous *Metrics
}

// NewTextMetric creates a text-metric resource for text.
func NewTextMetric(text string) *TextMetric {
	return &TextMetric{Lifecycle: newLifecycle(), text: text}
}

func (*TextMetric) Kind() protocol.ResourceKind { return protocol.TextMetricResource }
func (*TextMetric) resource()                   {}

func (t *TextMetric) SetupOp() protocol.Op {
	return protocol.CreateTextMetric{ID: t.id}
}

// Text returns the text being measured.
func (t *TextMetric) Text() string { return t.text }

// SetText changes the text to measure.
func (t *TextMetric) SetText(text string) {
	t.push()
	t.text = text
}

// SetFont sets the CSS font used for measuring. Empty means the canvas'
// current font.
func (t *TextMetric) SetFont(font string) {
	t.push()
	t.font = font
}

// SetAlignment sets the alignment used for measuring.
func (t *TextMetric) SetAlignment(align protocol.Alignment) {
	t.push()
	t.align = align
}

// SetBaseline sets the baseline used for measuring.
func (t *TextMetric) SetBaseline(baseline protocol.Baseline) {
	t.push()
	t.baseline = baseline
}

// push retires the current metrics. Previous metrics are only replaced by
// a real measurement, so several changes in a row keep the last one.
func (t *TextMetric) push() {
	if t.current != nil {
		t.previous = t.current
	}
	t.current = nil
}

// Measure returns the operations that request a measurement: any font
// settings followed by the textMetric command itself.
func (t *TextMetric) Measure() []protocol.Op {
	ops := make([]protocol.Op, 0, 4)
	if t.font != "" {
		ops = append(ops, protocol.Font{Font: t.font})
	}
	if t.align != "" {
		ops = append(ops, protocol.TextAlign{Align: t.align})
	}
	if t.baseline != "" {
		ops = append(ops, protocol.TextBaseline{Baseline: t.baseline})
	}
	return append(ops, protocol.TextMetric{ID: t.id, Text: t.text})
}

// ReceiveMetrics records a measurement reported by the renderer.
func (t *TextMetric) ReceiveMetrics(m protocol.TextMetrics) {
	metrics := Metrics(m)
	t.current = &metrics
}

// CurrentMetrics returns the measurement for the current settings, if one
// has arrived.
func (t *TextMetric) CurrentMetrics() (Metrics, bool) {
	if t.current == nil {
		return Metrics{}, false
	}
	return *t.current, true
}

// MostRecentMetrics returns the current measurement, or the previous one if
// the current settings have not been measured yet.
func (t *TextMetric) MostRecentMetrics() (Metrics, bool) {
	if t.current != nil {
		return *t.current, true
	}
	if t.previous != nil {
		return *t.previous, true
	}
	return Metrics{}, false
}
