package server

import (
	"time"

	"github.com/vango-dev/rcanvas/pkg/geom"
	"github.com/vango-dev/rcanvas/pkg/protocol"
)

// Painter is the application side of a canvas connection. The server creates
// one Painter per connection and calls it only from that connection's loop,
// so implementations need no locking of their own.
type Painter interface {
	// Setup is called once when the connection becomes active.
	Setup(s *Session)

	// Update is called on every tick.
	Update(s *Session)

	OnClick(location geom.Point)
	OnMouseDown(location geom.Point)
	OnMouseUp(location geom.Point)
	OnMouseMove(location geom.Point)

	// OnWindowMouseUp is called when the mouse is released anywhere in the
	// browser window, including outside the canvas.
	OnWindowMouseUp(location geom.Point)

	OnKeyDown(key, code string, mods protocol.KeyModifiers)
	OnKeyUp(key, code string, mods protocol.KeyModifiers)

	OnCanvasResize(size geom.Size)
	OnWindowResize(size geom.Size)

	// FramesPerSecond is queried before every tick. Values are clamped to
	// [1, 60]; non-positive values select the configured default.
	FramesPerSecond() int
}

// PainterBase implements every Painter method as a no-op at the default
// frame rate. Embed it and override what you need.
type PainterBase struct{}

func (PainterBase) Setup(*Session)                                  {}
func (PainterBase) Update(*Session)                                 {}
func (PainterBase) OnClick(geom.Point)                              {}
func (PainterBase) OnMouseDown(geom.Point)                          {}
func (PainterBase) OnMouseUp(geom.Point)                            {}
func (PainterBase) OnMouseMove(geom.Point)                          {}
func (PainterBase) OnWindowMouseUp(geom.Point)                      {}
func (PainterBase) OnKeyDown(string, string, protocol.KeyModifiers) {}
func (PainterBase) OnKeyUp(string, string, protocol.KeyModifiers)   {}
func (PainterBase) OnCanvasResize(geom.Size)                        {}
func (PainterBase) OnWindowResize(geom.Size)                        {}
func (PainterBase) FramesPerSecond() int                            { return 0 }

// MaxFramesPerSecond is the highest supported frame rate.
const MaxFramesPerSecond = 60

// FrameInterval converts a frame rate to the delay between ticks. Rates
// above MaxFramesPerSecond are clamped; non-positive rates use fallback.
func FrameInterval(fps, fallback int) time.Duration {
	if fps <= 0 {
		fps = fallback
	}
	if fps <= 0 {
		fps = 1
	}
	if fps > MaxFramesPerSecond {
		fps = MaxFramesPerSecond
	}
	return time.Second / time.Duration(fps)
}
