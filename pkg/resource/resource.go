package resource

import (
	"log/slog"

	"github.com/vango-dev/rcanvas/pkg/geom"
	"github.com/vango-dev/rcanvas/pkg/protocol"
)

// Resource is any object the renderer must construct asynchronously before
// it can be referenced. The implementations are Image, Audio, Gradient,
// Pattern and TextMetric.
type Resource interface {
	ID() string
	Kind() protocol.ResourceKind
	State() State
	IsReady() bool
	IsResourceError() bool
	Advance(next State, logger *slog.Logger) bool

	// SetupOp returns the creation command for the resource.
	SetupOp() protocol.Op

	resource()
}

// =============================================================================
// Image
// =============================================================================

// Image is a bitmap loaded by the renderer from URL.
type Image struct {
	Lifecycle
	URL string
}

// NewImage creates an image loaded from url.
func NewImage(url string) *Image {
	return &Image{Lifecycle: newLifecycle(), URL: url}
}

func (*Image) Kind() protocol.ResourceKind { return protocol.ImageResource }
func (*Image) resource()                   {}

func (i *Image) SetupOp() protocol.Op {
	return protocol.CreateImage{ID: i.id, URL: i.URL}
}

// DrawAt draws the image at its natural size with its top-left corner at p.
func (i *Image) DrawAt(p geom.Point) protocol.DrawImage {
	return protocol.DrawImage{ID: i.id, Mode: protocol.DrawAtPoint, At: p}
}

// DrawIn scales the image into dest.
func (i *Image) DrawIn(dest geom.Rect) protocol.DrawImage {
	return protocol.DrawImage{ID: i.id, Mode: protocol.DrawInRect, Dest: dest}
}

// DrawPart copies source from the image into dest.
func (i *Image) DrawPart(source, dest geom.Rect) protocol.DrawImage {
	return protocol.DrawImage{ID: i.id, Mode: protocol.DrawSourceInRect, Source: source, Dest: dest}
}

// =============================================================================
// Audio
// =============================================================================

// Audio is a sound loaded by the renderer from URL.
type Audio struct {
	Lifecycle
	URL  string
	Loop bool
}

// NewAudio creates an audio clip loaded from url.
func NewAudio(url string, loop bool) *Audio {
	return &Audio{Lifecycle: newLifecycle(), URL: url, Loop: loop}
}

func (*Audio) Kind() protocol.ResourceKind { return protocol.AudioResource }
func (*Audio) resource()                   {}

func (a *Audio) SetupOp() protocol.Op {
	return protocol.CreateAudio{ID: a.id, URL: a.URL, Loop: a.Loop}
}

// Play starts or resumes playback.
func (a *Audio) Play() protocol.SetAudioMode {
	return protocol.SetAudioMode{ID: a.id, Mode: protocol.AudioPlay}
}

// Pause pauses playback.
func (a *Audio) Pause() protocol.SetAudioMode {
	return protocol.SetAudioMode{ID: a.id, Mode: protocol.AudioPause}
}

// =============================================================================
// Pattern
// =============================================================================

// Pattern tiles an image. The image should be ready before the pattern is
// set up.
type Pattern struct {
	Lifecycle
	Image      *Image
	Repetition protocol.Repetition
}

// NewPattern creates a pattern from img. An empty repetition means
// protocol.Repeated.
func NewPattern(img *Image, repetition protocol.Repetition) *Pattern {
	if repetition == "" {
		repetition = protocol.Repeated
	}
	return &Pattern{Lifecycle: newLifecycle(), Image: img, Repetition: repetition}
}

func (*Pattern) Kind() protocol.ResourceKind { return protocol.PatternResource }
func (*Pattern) resource()                   {}

func (p *Pattern) SetupOp() protocol.Op {
	return protocol.CreatePattern{ID: p.id, ImageID: p.Image.ID(), Repetition: p.Repetition}
}

// FillStyle fills subsequent shapes with the pattern.
func (p *Pattern) FillStyle() protocol.FillStylePattern {
	return protocol.FillStylePattern{PatternID: p.id}
}
