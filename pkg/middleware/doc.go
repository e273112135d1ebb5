// Package middleware provides the production observability hooks for a
// canvas server.
//
// This package includes:
//   - A Prometheus observer for connection, frame and event metrics
//   - OpenTelemetry HTTP tracing middleware
//
// # Prometheus Metrics
//
// PrometheusObserver implements server.Observer. Attach it next to the
// server's built-in collector and mount the metrics endpoint:
//
//	reg := prometheus.NewRegistry()
//	srv.AddObserver(middleware.Prometheus(middleware.WithRegistry(reg)))
//	srv.SetMetricsHandler(middleware.Handler(reg))
//
// Event labels are limited to the inbound event catalogue, so a client
// sending arbitrary names cannot grow the label set.
//
// # OpenTelemetry Middleware
//
// OpenTelemetry wraps an http.Handler and traces every request, including
// the WebSocket handshake. Tick and receive spans are emitted by the server
// itself through ServerConfig.TracerProvider.
//
//	handler := middleware.OpenTelemetry(
//	    middleware.WithTracerName("my-canvas"),
//	)(srv.Handler())
package middleware
