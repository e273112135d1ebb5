package server

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/vango-dev/rcanvas/pkg/protocol"
	"github.com/vango-dev/rcanvas/pkg/resource"
)

// dispatcher decodes inbound frames and routes each event to the session,
// the resource registry or the painter. A bad event is reported and
// skipped; it never stops the rest of the frame.
type dispatcher struct {
	session  *Session
	painter  Painter
	logger   *slog.Logger
	observer Observer
}

func newDispatcher(session *Session, painter Painter, observer Observer) *dispatcher {
	if observer == nil {
		observer = NopObserver{}
	}
	return &dispatcher{
		session:  session,
		painter:  painter,
		logger:   session.Logger(),
		observer: observer,
	}
}

// dispatch handles every event in frame in order and returns how many were
// handled successfully.
func (d *dispatcher) dispatch(frame string) int {
	handled := 0
	for _, raw := range protocol.SplitFrame(frame) {
		ev, err := protocol.DecodeEvent(raw)
		if err == nil {
			err = d.route(ev)
		}
		if err != nil {
			d.logger.Warn("dropping inbound event", "event", raw.Name, "error", err)
			d.observer.EventRejected(raw.Name, rejectReason(err))
			continue
		}
		d.observer.EventHandled(raw.Name)
		handled++
	}
	return handled
}

func (d *dispatcher) route(ev protocol.Event) error {
	switch e := ev.(type) {
	case protocol.PointerEvent:
		d.routePointer(e)
	case protocol.KeyEvent:
		if e.Kind == protocol.KeyUp {
			d.call("OnKeyUp", func() { d.painter.OnKeyUp(e.Key, e.Code, e.Modifiers) })
		} else {
			d.call("OnKeyDown", func() { d.painter.OnKeyDown(e.Key, e.Code, e.Modifiers) })
		}
	case protocol.ResizeEvent:
		if e.Target == protocol.WindowResize {
			d.session.setWindowSize(e.Size)
			d.call("OnWindowResize", func() { d.painter.OnWindowResize(e.Size) })
		} else {
			d.session.setCanvasSize(e.Size)
			d.call("OnCanvasResize", func() { d.painter.OnCanvasResize(e.Size) })
		}
	case protocol.ResourceEvent:
		return d.acknowledge(e)
	case protocol.TextMetricReadyEvent:
		r, err := d.lookup(e.ID, protocol.TextMetricResource)
		if err != nil {
			return err
		}
		r.(*resource.TextMetric).ReceiveMetrics(e.Metrics)
	default:
		return fmt.Errorf("%w: %T", protocol.ErrUnknownEvent, ev)
	}
	return nil
}

func (d *dispatcher) routePointer(e protocol.PointerEvent) {
	switch e.Kind {
	case protocol.Click:
		d.call("OnClick", func() { d.painter.OnClick(e.Location) })
	case protocol.MouseDown:
		d.call("OnMouseDown", func() { d.painter.OnMouseDown(e.Location) })
	case protocol.MouseUp:
		d.call("OnMouseUp", func() { d.painter.OnMouseUp(e.Location) })
	case protocol.MouseMove:
		d.call("OnMouseMove", func() { d.painter.OnMouseMove(e.Location) })
	case protocol.WindowMouseUp:
		d.call("OnWindowMouseUp", func() { d.painter.OnWindowMouseUp(e.Location) })
	}
}

// acknowledge applies a resource acknowledgement to the lifecycle.
func (d *dispatcher) acknowledge(e protocol.ResourceEvent) error {
	r, err := d.lookup(e.ID, e.Kind)
	if err != nil {
		return err
	}

	var next resource.State
	switch e.Status {
	case protocol.StatusProcessed:
		next = resource.ProcessedByClient
	case protocol.StatusLoaded:
		next = resource.Ready
	default:
		next = resource.ResourceError
		d.logger.Warn("client failed to construct resource",
			"resource_id", e.ID, "kind", e.Kind.String())
	}

	if !r.Advance(next, d.logger) {
		d.observer.LifecycleRegressed(e.Kind.String())
	}
	return nil
}

func (d *dispatcher) lookup(id string, kind protocol.ResourceKind) (resource.Resource, error) {
	r, ok := d.session.Resource(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownResource, id)
	}
	if r.Kind() != kind {
		return nil, fmt.Errorf("%w: %q is %s, event is for %s", ErrResourceKindMismatch, id, r.Kind(), kind)
	}
	return r, nil
}

// call runs a painter callback, recovering from panics so a bad handler
// cannot take down the connection.
func (d *dispatcher) call(name string, fn func()) {
	safeCall(d.session, d.logger, d.observer, name, fn)
}

func safeCall(s *Session, logger *slog.Logger, observer Observer, name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			perr := &CallbackPanic{
				SessionID: s.ID(),
				Callback:  name,
				Panic:     r,
				Stack:     debug.Stack(),
			}
			logger.Error("painter panic",
				"callback", name,
				"error", perr,
				"stack", string(perr.Stack))
			observer.CallbackPanicked(name)
		}
	}()
	fn()
}

// rejectReason maps an error to a bounded label for metrics.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, protocol.ErrUnknownEvent):
		return "unknown_event"
	case errors.Is(err, protocol.ErrArgumentCount):
		return "argument_count"
	case errors.Is(err, protocol.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrUnknownResource):
		return "unknown_resource"
	case errors.Is(err, ErrResourceKindMismatch):
		return "kind_mismatch"
	case errors.Is(err, ErrInboundQueueFull):
		return "queue_full"
	default:
		return "other"
	}
}
