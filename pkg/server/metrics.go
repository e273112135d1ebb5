package server

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Observer receives the observability events of every connection. Methods
// are called from connection goroutines and must be safe for concurrent use.
type Observer interface {
	ConnectionOpened()
	ConnectionClosed()

	// FrameSent is called for every command frame with its command count
	// and encoded size.
	FrameSent(commands, bytes int)
	KeepAliveSent()

	EventHandled(name string)
	EventRejected(name, reason string)

	// LifecycleRegressed is called when an acknowledgement moved a resource
	// backwards.
	LifecycleRegressed(kind string)

	CallbackPanicked(callback string)
	WriteFailed()
	TickCompleted(d time.Duration)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) ConnectionOpened()            {}
func (NopObserver) ConnectionClosed()            {}
func (NopObserver) FrameSent(int, int)           {}
func (NopObserver) KeepAliveSent()               {}
func (NopObserver) EventHandled(string)          {}
func (NopObserver) EventRejected(string, string) {}
func (NopObserver) LifecycleRegressed(string)    {}
func (NopObserver) CallbackPanicked(string)      {}
func (NopObserver) WriteFailed()                 {}
func (NopObserver) TickCompleted(time.Duration)  {}

// MultiObserver fans events out to several observers.
func MultiObserver(observers ...Observer) Observer {
	list := make(multiObserver, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			list = append(list, o)
		}
	}
	return list
}

type multiObserver []Observer

func (m multiObserver) ConnectionOpened() {
	for _, o := range m {
		o.ConnectionOpened()
	}
}

func (m multiObserver) ConnectionClosed() {
	for _, o := range m {
		o.ConnectionClosed()
	}
}

func (m multiObserver) FrameSent(commands, bytes int) {
	for _, o := range m {
		o.FrameSent(commands, bytes)
	}
}

func (m multiObserver) KeepAliveSent() {
	for _, o := range m {
		o.KeepAliveSent()
	}
}

func (m multiObserver) EventHandled(name string) {
	for _, o := range m {
		o.EventHandled(name)
	}
}

func (m multiObserver) EventRejected(name, reason string) {
	for _, o := range m {
		o.EventRejected(name, reason)
	}
}

func (m multiObserver) LifecycleRegressed(kind string) {
	for _, o := range m {
		o.LifecycleRegressed(kind)
	}
}

func (m multiObserver) CallbackPanicked(callback string) {
	for _, o := range m {
		o.CallbackPanicked(callback)
	}
}

func (m multiObserver) WriteFailed() {
	for _, o := range m {
		o.WriteFailed()
	}
}

func (m multiObserver) TickCompleted(d time.Duration) {
	for _, o := range m {
		o.TickCompleted(d)
	}
}

// ServerMetrics is a snapshot of server-wide counters.
type ServerMetrics struct {
	// Connections
	ActiveSessions int64
	TotalSessions  int64
	SessionCloses  int64
	PeakSessions   int64

	// Frames
	FramesSent     int64
	CommandsSent   int64
	BytesSent      int64
	KeepAlivesSent int64

	// Events
	EventsHandled  int64
	EventsRejected int64

	// Errors
	LifecycleRegressions int64
	CallbackPanics       int64
	WriteErrors          int64

	// Tick latency (microseconds)
	TickLatencyP50 int64
	TickLatencyP99 int64

	CollectedAt time.Time
}

// Metrics returns a snapshot of the server's built-in counters.
func (s *Server) Metrics() *ServerMetrics {
	stats := s.connections.Stats()
	m := s.collector.Snapshot()
	m.ActiveSessions = int64(stats.Active)
	m.TotalSessions = int64(stats.TotalCreated)
	m.SessionCloses = int64(stats.TotalClosed)
	m.PeakSessions = int64(stats.Peak)
	return m
}

// maxLatencySamples bounds the tick latency window.
const maxLatencySamples = 1000

// MetricsCollector is the built-in Observer. It keeps atomic counters and a
// bounded window of tick latencies.
type MetricsCollector struct {
	framesSent           atomic.Int64
	commandsSent         atomic.Int64
	bytesSent            atomic.Int64
	keepAlivesSent       atomic.Int64
	eventsHandled        atomic.Int64
	eventsRejected       atomic.Int64
	lifecycleRegressions atomic.Int64
	callbackPanics       atomic.Int64
	writeErrors          atomic.Int64

	latencyMu sync.Mutex
	latencies []int64
}

// NewMetricsCollector creates a new MetricsCollector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		latencies: make([]int64, 0, maxLatencySamples),
	}
}

func (m *MetricsCollector) ConnectionOpened() {}
func (m *MetricsCollector) ConnectionClosed() {}

func (m *MetricsCollector) FrameSent(commands, bytes int) {
	m.framesSent.Add(1)
	m.commandsSent.Add(int64(commands))
	m.bytesSent.Add(int64(bytes))
}

func (m *MetricsCollector) KeepAliveSent() {
	m.keepAlivesSent.Add(1)
}

func (m *MetricsCollector) EventHandled(string) {
	m.eventsHandled.Add(1)
}

func (m *MetricsCollector) EventRejected(string, string) {
	m.eventsRejected.Add(1)
}

func (m *MetricsCollector) LifecycleRegressed(string) {
	m.lifecycleRegressions.Add(1)
}

func (m *MetricsCollector) CallbackPanicked(string) {
	m.callbackPanics.Add(1)
}

func (m *MetricsCollector) WriteFailed() {
	m.writeErrors.Add(1)
}

// TickCompleted records tick latency.
func (m *MetricsCollector) TickCompleted(d time.Duration) {
	m.latencyMu.Lock()
	defer m.latencyMu.Unlock()

	// Keep last maxLatencySamples samples
	if len(m.latencies) >= maxLatencySamples {
		m.latencies = m.latencies[1:]
	}
	m.latencies = append(m.latencies, d.Microseconds())
}

// Snapshot returns the collected counters. Connection counts are filled in
// by Server.Metrics.
func (m *MetricsCollector) Snapshot() *ServerMetrics {
	out := &ServerMetrics{
		FramesSent:           m.framesSent.Load(),
		CommandsSent:         m.commandsSent.Load(),
		BytesSent:            m.bytesSent.Load(),
		KeepAlivesSent:       m.keepAlivesSent.Load(),
		EventsHandled:        m.eventsHandled.Load(),
		EventsRejected:       m.eventsRejected.Load(),
		LifecycleRegressions: m.lifecycleRegressions.Load(),
		CallbackPanics:       m.callbackPanics.Load(),
		WriteErrors:          m.writeErrors.Load(),
		CollectedAt:          time.Now(),
	}
	out.TickLatencyP50, out.TickLatencyP99 = m.percentiles()
	return out
}

func (m *MetricsCollector) percentiles() (p50, p99 int64) {
	m.latencyMu.Lock()
	sorted := append([]int64(nil), m.latencies...)
	m.latencyMu.Unlock()

	if len(sorted) == 0 {
		return 0, 0
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	p50 = sorted[len(sorted)*50/100]
	idx := len(sorted) * 99 / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return p50, sorted[idx]
}
