package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// recordingProvider hands out a tracer that keeps every span it starts.
type recordingProvider struct {
	noop.TracerProvider
	tracer *recordingTracer
}

func newRecordingProvider() *recordingProvider {
	return &recordingProvider{tracer: &recordingTracer{}}
}

func (p *recordingProvider) Tracer(string, ...trace.TracerOption) trace.Tracer {
	return p.tracer
}

type recordingTracer struct {
	noop.Tracer
	mu    sync.Mutex
	spans []*recordingSpan
}

func (t *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	s := &recordingSpan{name: name, kind: cfg.SpanKind(), attrs: cfg.Attributes()}
	t.mu.Lock()
	t.spans = append(t.spans, s)
	t.mu.Unlock()
	return trace.ContextWithSpan(ctx, s), s
}

func (t *recordingTracer) recorded() []*recordingSpan {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*recordingSpan(nil), t.spans...)
}

type recordingSpan struct {
	noop.Span
	mu     sync.Mutex
	name   string
	kind   trace.SpanKind
	attrs  []attribute.KeyValue
	status codes.Code
	ended  bool
}

func (s *recordingSpan) SetAttributes(kv ...attribute.KeyValue) {
	s.mu.Lock()
	s.attrs = append(s.attrs, kv...)
	s.mu.Unlock()
}

func (s *recordingSpan) SetStatus(code codes.Code, _ string) {
	s.mu.Lock()
	s.status = code
	s.mu.Unlock()
}

func (s *recordingSpan) End(...trace.SpanEndOption) {
	s.mu.Lock()
	s.ended = true
	s.mu.Unlock()
}

func (s *recordingSpan) attr(key string) (attribute.Value, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, kv := range s.attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestOpenTelemetryConfig(t *testing.T) {
	config := defaultOTelConfig()
	if config.TracerName != defaultTracerName {
		t.Fatalf("TracerName=%q, want %q", config.TracerName, defaultTracerName)
	}
	if config.Filter != nil || config.AttributeExtractor != nil || config.TracerProvider != nil {
		t.Fatal("expected optional hooks to be nil by default")
	}
}

func TestOpenTelemetry_RecordsRequestSpan(t *testing.T) {
	tp := newRecordingProvider()
	mw := OpenTelemetry(
		WithTracerProvider(tp),
		WithAttributeExtractor(func(*http.Request) []attribute.KeyValue {
			return []attribute.KeyValue{attribute.String("test.attr", "ok")}
		}),
	)

	var inner trace.Span
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inner = trace.SpanFromContext(r.Context())
		w.WriteHeader(http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/images/a.png", nil))

	spans := tp.tracer.recorded()
	if len(spans) != 1 {
		t.Fatalf("recorded %d spans, want 1", len(spans))
	}
	s := spans[0]
	if s.name != "GET /images/a.png" {
		t.Fatalf("span name=%q", s.name)
	}
	if s.kind != trace.SpanKindServer {
		t.Fatalf("span kind=%v, want server", s.kind)
	}
	if inner != s {
		t.Fatal("handler did not see the request span in its context")
	}
	if v, ok := s.attr("http.status_code"); !ok || v.AsInt64() != 404 {
		t.Fatalf("http.status_code=%v,%v, want 404", v, ok)
	}
	if v, ok := s.attr("test.attr"); !ok || v.AsString() != "ok" {
		t.Fatalf("test.attr=%v,%v", v, ok)
	}
	if s.status != codes.Ok || !s.ended {
		t.Fatalf("status=%v ended=%v, want Ok and ended", s.status, s.ended)
	}
}

func TestOpenTelemetry_ServerErrorSetsErrorStatus(t *testing.T) {
	tp := newRecordingProvider()
	h := OpenTelemetry(WithTracerProvider(tp))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	spans := tp.tracer.recorded()
	if len(spans) != 1 || spans[0].status != codes.Error {
		t.Fatalf("spans=%v, want one span with Error status", spans)
	}
}

func TestOpenTelemetry_FilterSkipsRequests(t *testing.T) {
	tp := newRecordingProvider()
	called := false
	h := OpenTelemetry(
		WithTracerProvider(tp),
		WithRequestFilter(func(r *http.Request) bool { return r.URL.Path != "/metrics" }),
	)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if !called {
		t.Fatal("filtered request did not reach the handler")
	}
	if n := len(tp.tracer.recorded()); n != 0 {
		t.Fatalf("recorded %d spans for a filtered request, want 0", n)
	}
}

func TestOpenTelemetry_AllowsWebSocketUpgrade(t *testing.T) {
	tp := newRecordingProvider()
	var upgrader websocket.Upgrader
	h := OpenTelemetry(WithTracerProvider(tp))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		ws.WriteMessage(websocket.TextMessage, []byte("ping"))
	}))
	ts := httptest.NewServer(h)
	defer ts.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial through middleware: %v", err)
	}
	defer ws.Close()

	_, msg, err := ws.ReadMessage()
	if err != nil || string(msg) != "ping" {
		t.Fatalf("read=%q,%v, want ping", msg, err)
	}
}
