package middleware

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/rcanvas/pkg/protocol"
	"github.com/vango-dev/rcanvas/pkg/server"
)

// MetricsConfig configures the Prometheus observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "rcanvas").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for tick duration.
	// Default: buckets from 0.5ms to 250ms.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus observer.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// defaultMetricsConfig returns the default metrics configuration.
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "rcanvas",
		Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		Registry:  prometheus.DefaultRegisterer,
	}
}

// PrometheusObserver exports connection events as Prometheus metrics. It
// implements server.Observer; attach it with Server.AddObserver.
type PrometheusObserver struct {
	activeSessions   prometheus.Gauge
	sessionsTotal    prometheus.Counter
	framesSent       prometheus.Counter
	commandsSent     prometheus.Counter
	bytesSent        prometheus.Counter
	keepAlivesSent   prometheus.Counter
	eventsTotal      *prometheus.CounterVec
	eventsRejected   *prometheus.CounterVec
	regressionsTotal *prometheus.CounterVec
	panicsTotal      *prometheus.CounterVec
	wsErrors         *prometheus.CounterVec
	tickDuration     prometheus.Histogram
}

var _ server.Observer = (*PrometheusObserver)(nil)

// Prometheus creates an observer and registers its metrics.
//
// Metrics collected:
//   - rcanvas_active_sessions: Gauge of open connections
//   - rcanvas_sessions_total: Counter of connections opened
//   - rcanvas_frames_sent_total: Counter of command frames sent
//   - rcanvas_commands_sent_total: Counter of commands sent
//   - rcanvas_bytes_sent_total: Counter of command frame bytes
//   - rcanvas_keepalives_sent_total: Counter of keep-alive frames
//   - rcanvas_events_total: Counter of handled events by name
//   - rcanvas_events_rejected_total: Counter of dropped events by name and reason
//   - rcanvas_lifecycle_regressions_total: Counter of backwards acknowledgements by kind
//   - rcanvas_callback_panics_total: Counter of painter panics by callback
//   - rcanvas_websocket_errors_total: Counter of WebSocket errors by type
//   - rcanvas_tick_duration_seconds: Histogram of update and flush time
//
// Example:
//
//	reg := prometheus.NewRegistry()
//	srv.AddObserver(middleware.Prometheus(middleware.WithRegistry(reg)))
//	srv.SetMetricsHandler(middleware.Handler(reg))
//
// Registering twice with the same registry panics, as with promauto.
func Prometheus(opts ...MetricsOption) *PrometheusObserver {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}
	counterVec := func(name, help string, labels ...string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		}, labels)
	}

	return &PrometheusObserver{
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_sessions",
			Help:        "Number of open canvas connections",
			ConstLabels: config.ConstLabels,
		}),
		sessionsTotal:    counter("sessions_total", "Total number of canvas connections opened"),
		framesSent:       counter("frames_sent_total", "Total number of command frames sent"),
		commandsSent:     counter("commands_sent_total", "Total number of drawing commands sent"),
		bytesSent:        counter("bytes_sent_total", "Total size of command frames sent in bytes"),
		keepAlivesSent:   counter("keepalives_sent_total", "Total number of keep-alive frames sent"),
		eventsTotal:      counterVec("events_total", "Total number of inbound events handled", "event"),
		eventsRejected:   counterVec("events_rejected_total", "Total number of inbound events dropped", "event", "reason"),
		regressionsTotal: counterVec("lifecycle_regressions_total", "Total number of acknowledgements that moved a resource backwards", "kind"),
		panicsTotal:      counterVec("callback_panics_total", "Total number of recovered painter panics", "callback"),
		wsErrors:         counterVec("websocket_errors_total", "Total WebSocket errors by type", "type"),
		tickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "tick_duration_seconds",
			Help:        "Time spent in one update and flush cycle",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),
	}
}

func (p *PrometheusObserver) ConnectionOpened() {
	p.activeSessions.Inc()
	p.sessionsTotal.Inc()
}

func (p *PrometheusObserver) ConnectionClosed() {
	p.activeSessions.Dec()
}

func (p *PrometheusObserver) FrameSent(commands, bytes int) {
	p.framesSent.Inc()
	p.commandsSent.Add(float64(commands))
	p.bytesSent.Add(float64(bytes))
}

func (p *PrometheusObserver) KeepAliveSent() {
	p.keepAlivesSent.Inc()
}

func (p *PrometheusObserver) EventHandled(name string) {
	p.eventsTotal.WithLabelValues(eventLabel(name)).Inc()
}

func (p *PrometheusObserver) EventRejected(name, reason string) {
	p.eventsRejected.WithLabelValues(eventLabel(name), reason).Inc()
}

func (p *PrometheusObserver) LifecycleRegressed(kind string) {
	p.regressionsTotal.WithLabelValues(kind).Inc()
}

func (p *PrometheusObserver) CallbackPanicked(callback string) {
	p.panicsTotal.WithLabelValues(callback).Inc()
}

func (p *PrometheusObserver) WriteFailed() {
	p.wsErrors.WithLabelValues("write").Inc()
}

func (p *PrometheusObserver) TickCompleted(d time.Duration) {
	p.tickDuration.Observe(d.Seconds())
}

// eventLabel bounds label cardinality: names come from the client, so
// anything outside the event catalogue is reported as "unknown".
func eventLabel(name string) string {
	if name == "frame" || protocol.IsKnownEvent(name) {
		return name
	}
	return "unknown"
}

// Handler serves the metrics gathered by g in the Prometheus text format.
// A nil gatherer selects prometheus.DefaultGatherer.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
