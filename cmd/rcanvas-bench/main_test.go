package main

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/vango-dev/rcanvas/pkg/protocol"
	"github.com/vango-dev/rcanvas/pkg/server"
)

func TestParseConfigProfiles(t *testing.T) {
	cfg, err := parseConfig([]string{"-profile", "fast", "-clients", "3", "-fps", "20"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Profile != "fast" || cfg.Clients != 3 || cfg.FPS != 20 {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.Shapes != profiles["fast"].Shapes {
		t.Fatalf("Shapes=%d, want profile default", cfg.Shapes)
	}
	if cfg.EventTimeout < 2*time.Second {
		t.Fatalf("EventTimeout=%v, want >= 2s", cfg.EventTimeout)
	}
}

func TestParseConfigRejects(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown_profile", []string{"-profile", "turbo"}},
		{"zero_clients", []string{"-clients", "0"}},
		{"bad_duration", []string{"-duration", "soon"}},
		{"fps_too_high", []string{"-fps", "61"}},
		{"negative_shapes", []string{"-shapes", "-2"}},
		{"bad_mem_limit", []string{"-mem-limit", "12parsecs"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parseConfig(tc.args); err == nil {
				t.Fatalf("parseConfig(%v) succeeded", tc.args)
			}
		})
	}
}

func TestParseBytes(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"512", 512},
		{"1kb", 1000},
		{"2KiB", 2048},
		{"1.5MiB", 1572864},
		{"2GiB", 2 * gib},
	}
	for _, tc := range tests {
		got, err := parseBytes(tc.in)
		if err != nil || got != tc.want {
			t.Errorf("parseBytes(%q)=%d,%v, want %d", tc.in, got, err, tc.want)
		}
	}
	if _, err := parseBytes(""); err == nil {
		t.Error("parseBytes(\"\") succeeded")
	}
}

func TestPercentile(t *testing.T) {
	sorted := make([]time.Duration, 100)
	for i := range sorted {
		sorted[i] = time.Duration(i+1) * time.Millisecond
	}
	if got := percentile(sorted, 0.5); got != 50*time.Millisecond {
		t.Errorf("p50=%v, want 50ms", got)
	}
	if got := percentile(sorted, 0.99); got != 99*time.Millisecond {
		t.Errorf("p99=%v, want 99ms", got)
	}
	if got := percentile(nil, 0.5); got != 0 {
		t.Errorf("empty p50=%v, want 0", got)
	}
}

func TestMakeTokenLength(t *testing.T) {
	for _, n := range []int{1, 8, 24, 64} {
		if got := makeToken(7, 42, n); len(got) != n {
			t.Errorf("len(makeToken(.., %d))=%d", n, len(got))
		}
	}
	if makeToken(1, 1, 24) == makeToken(2, 1, 24) {
		t.Error("tokens for different clients collide")
	}
}

func TestEchoPainterRendersKeysOnce(t *testing.T) {
	p := newEchoPainter(30, 3)
	s := server.NewSession(nil)

	p.OnKeyDown("abc", "KeyA", protocol.KeyModifiers{})
	p.Update(s)
	if s.Pending() != 4 {
		t.Fatalf("Pending=%d, want 3 shapes + 1 echo", s.Pending())
	}

	s2 := server.NewSession(nil)
	p.Update(s2)
	if s2.Pending() != 3 {
		t.Fatalf("Pending=%d, echo repeated", s2.Pending())
	}
}

func TestRunAgainstInProcessServer(t *testing.T) {
	cfg, err := parseConfig([]string{
		"-profile", "fast", "-clients", "2", "-duration", "600ms", "-rps", "10", "-fps", "30",
	})
	if err != nil {
		t.Fatal(err)
	}

	srv := server.New(&server.ServerConfig{Address: "127.0.0.1:0"}, func() server.Painter {
		return newEchoPainter(cfg.FPS, cfg.Shapes)
	})
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	httpServer := &http.Server{Handler: srv.Handler()}
	go httpServer.Serve(ln)
	defer func() {
		srv.Shutdown(context.Background())
		httpServer.Shutdown(context.Background())
	}()

	report := run(cfg, "ws://"+ln.Addr().String()+srv.Config().WebSocketPath)

	if report.Errors.TotalErrors != 0 {
		t.Fatalf("errors=%+v", report.Errors)
	}
	if report.Throughput.EventsTotal == 0 {
		t.Fatal("no events completed")
	}
	if report.Protocol.Ops["fillRect"] == 0 {
		t.Fatalf("ops=%v, want fillRect frames", report.Protocol.Ops)
	}
}
