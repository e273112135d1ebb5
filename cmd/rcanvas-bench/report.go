package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/vango-dev/rcanvas/pkg/server"
)

type benchCounters struct {
	eventsSent     atomic.Uint64
	eventsComplete atomic.Uint64
	eventBytes     atomic.Uint64
	frames         atomic.Uint64
	frameBytes     atomic.Uint64
	commands       atomic.Uint64
	keepAlives     atomic.Uint64
	ops            opCounts
}

type benchErrors struct {
	dialFailures       atomic.Uint64
	eventWriteFailures atomic.Uint64
	readFailures       atomic.Uint64
	echoMissing        atomic.Uint64
	totalErrors        atomic.Uint64
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	idx := int(math.Ceil(float64(len(sorted))*p)) - 1
	idx = max(0, min(idx, len(sorted)-1))
	return sorted[idx]
}

func avgPause(after, before runtime.MemStats) time.Duration {
	gcCount := after.NumGC - before.NumGC
	if gcCount == 0 {
		return 0
	}
	return time.Duration((after.PauseTotalNs - before.PauseTotalNs) / uint64(gcCount))
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

type benchReport struct {
	Version    string         `json:"version"`
	Run        runInfo        `json:"run"`
	Workload   workloadInfo   `json:"workload"`
	LatencyMS  latencyInfo    `json:"latency_ms"`
	Throughput throughputInfo `json:"throughput"`
	GC         gcInfo         `json:"gc"`
	Protocol   protocolInfo   `json:"protocol"`
	Server     serverInfo     `json:"server"`
	Errors     errorInfo      `json:"errors"`
}

type runInfo struct {
	Timestamp string `json:"timestamp"`
	Go        string `json:"go"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	CPUCount  int    `json:"cpu_count"`
	GitCommit string `json:"git_commit,omitempty"`
}

type workloadInfo struct {
	Profile        string  `json:"profile"`
	Clients        int     `json:"clients"`
	DurationMS     int64   `json:"duration_ms"`
	RPSPerClient   float64 `json:"rps_per_client"`
	FPS            int     `json:"fps"`
	Shapes         int     `json:"shapes"`
	PayloadBytes   int     `json:"payload_bytes"`
	MaxProcs       int     `json:"max_procs"`
	MemLimitBytes  int64   `json:"mem_limit_bytes"`
	EventTimeoutMS int64   `json:"event_timeout_ms"`
}

type latencyInfo struct {
	Min float64 `json:"min"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
	Max float64 `json:"max"`
}

type throughputInfo struct {
	EventsTotal        uint64  `json:"events_total"`
	EventsPerSec       float64 `json:"events_per_sec"`
	EventsPerSecClient float64 `json:"events_per_sec_per_client"`
	FramesPerSec       float64 `json:"frames_per_sec"`
}

type gcInfo struct {
	AllocMB      float64 `json:"alloc_mb"`
	HeapLiveMB   float64 `json:"heap_live_mb"`
	NumGC        uint32  `json:"num_gc"`
	PauseTotalMS float64 `json:"pause_total_ms"`
	PauseAvgMS   float64 `json:"pause_avg_ms"`
}

type protocolInfo struct {
	EventBytesTotal  uint64            `json:"event_bytes_total"`
	FrameBytesTotal  uint64            `json:"frame_bytes_total"`
	Frames           uint64            `json:"frames_total"`
	CommandsTotal    uint64            `json:"commands_total"`
	KeepAlives       uint64            `json:"keep_alives_total"`
	AvgEventBytes    float64           `json:"avg_event_bytes"`
	AvgFrameBytes    float64           `json:"avg_frame_bytes"`
	CommandsPerFrame float64           `json:"commands_per_frame"`
	Ops              map[string]uint64 `json:"ops"`
}

// serverInfo is the server's own view of the run.
type serverInfo struct {
	PeakSessions   int64 `json:"peak_sessions"`
	FramesSent     int64 `json:"frames_sent"`
	EventsHandled  int64 `json:"events_handled"`
	EventsRejected int64 `json:"events_rejected"`
	CallbackPanics int64 `json:"callback_panics"`
	WriteErrors    int64 `json:"write_errors"`
	TickP50US      int64 `json:"tick_p50_us"`
	TickP99US      int64 `json:"tick_p99_us"`
}

type errorInfo struct {
	TotalErrors        uint64 `json:"total_errors"`
	DialFailures       uint64 `json:"dial_failures"`
	EventWriteFailures uint64 `json:"event_write_failures"`
	ReadFailures       uint64 `json:"read_failures"`
	EchoMissing        uint64 `json:"echo_missing"`
}

func serverInfoFrom(m *server.ServerMetrics) serverInfo {
	return serverInfo{
		PeakSessions:   m.PeakSessions,
		FramesSent:     m.FramesSent,
		EventsHandled:  m.EventsHandled,
		EventsRejected: m.EventsRejected,
		CallbackPanics: m.CallbackPanics,
		WriteErrors:    m.WriteErrors,
		TickP50US:      m.TickLatencyP50,
		TickP99US:      m.TickLatencyP99,
	}
}

func ratio(num, den uint64) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func buildReport(
	cfg benchConfig,
	elapsed time.Duration,
	latencies []time.Duration,
	counters *benchCounters,
	errs *benchErrors,
	before runtime.MemStats,
	after runtime.MemStats,
) benchReport {
	eventsTotal := counters.eventsComplete.Load()
	eventsSent := counters.eventsSent.Load()
	frames := counters.frames.Load()
	frameBytes := counters.frameBytes.Load()
	commands := counters.commands.Load()

	elapsedSeconds := math.Max(0.001, elapsed.Seconds())
	eventsPerSec := float64(eventsTotal) / elapsedSeconds

	latency := latencyInfo{}
	if len(latencies) > 0 {
		latency = latencyInfo{
			Min: ms(latencies[0]),
			P50: ms(percentile(latencies, 0.50)),
			P95: ms(percentile(latencies, 0.95)),
			P99: ms(percentile(latencies, 0.99)),
			Max: ms(latencies[len(latencies)-1]),
		}
	}

	pauseTotal := time.Duration(after.PauseTotalNs - before.PauseTotalNs)

	return benchReport{
		Version: "1",
		Run: runInfo{
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			Go:        runtime.Version(),
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
			CPUCount:  runtime.NumCPU(),
			GitCommit: gitCommit(),
		},
		Workload: workloadInfo{
			Profile:        cfg.Profile,
			Clients:        cfg.Clients,
			DurationMS:     cfg.Duration.Milliseconds(),
			RPSPerClient:   cfg.RPS,
			FPS:            cfg.FPS,
			Shapes:         cfg.Shapes,
			PayloadBytes:   cfg.PayloadBytes,
			MaxProcs:       cfg.MaxProcs,
			MemLimitBytes:  cfg.MemLimitBytes,
			EventTimeoutMS: cfg.EventTimeout.Milliseconds(),
		},
		LatencyMS: latency,
		Throughput: throughputInfo{
			EventsTotal:        eventsTotal,
			EventsPerSec:       eventsPerSec,
			EventsPerSecClient: eventsPerSec / float64(cfg.Clients),
			FramesPerSec:       float64(frames) / elapsedSeconds,
		},
		GC: gcInfo{
			AllocMB:      float64(after.TotalAlloc-before.TotalAlloc) / (1024 * 1024),
			HeapLiveMB:   float64(after.HeapAlloc) / (1024 * 1024),
			NumGC:        after.NumGC - before.NumGC,
			PauseTotalMS: ms(pauseTotal),
			PauseAvgMS:   ms(avgPause(after, before)),
		},
		Protocol: protocolInfo{
			EventBytesTotal:  counters.eventBytes.Load(),
			FrameBytesTotal:  frameBytes,
			Frames:           frames,
			CommandsTotal:    commands,
			KeepAlives:       counters.keepAlives.Load(),
			AvgEventBytes:    ratio(counters.eventBytes.Load(), eventsSent),
			AvgFrameBytes:    ratio(frameBytes, frames),
			CommandsPerFrame: ratio(commands, frames),
			Ops:              counters.ops.snapshot(),
		},
		Errors: errorInfo{
			TotalErrors:        errs.totalErrors.Load(),
			DialFailures:       errs.dialFailures.Load(),
			EventWriteFailures: errs.eventWriteFailures.Load(),
			ReadFailures:       errs.readFailures.Load(),
			EchoMissing:        errs.echoMissing.Load(),
		},
	}
}

func writeSummary(w io.Writer, report benchReport) {
	fmt.Fprintln(w, "=== rcanvas Load Benchmark ===")
	fmt.Fprintf(w, "Profile: %s\n", report.Workload.Profile)
	fmt.Fprintf(w, "Clients: %d\n", report.Workload.Clients)
	fmt.Fprintf(w, "Duration: %s\n", time.Duration(report.Workload.DurationMS)*time.Millisecond)
	fmt.Fprintf(w, "Target per-client rate: %.2f events/s\n", report.Workload.RPSPerClient)
	fmt.Fprintf(w, "Painter: %d fps, %d shapes/frame\n", report.Workload.FPS, report.Workload.Shapes)
	if report.Workload.MaxProcs > 0 {
		fmt.Fprintf(w, "GOMAXPROCS cap: %d\n", report.Workload.MaxProcs)
	}
	if report.Workload.MemLimitBytes > 0 {
		fmt.Fprintf(w, "GOMEMLIMIT cap: %.2f GiB\n", float64(report.Workload.MemLimitBytes)/float64(gib))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Total events: %d\n", report.Throughput.EventsTotal)
	fmt.Fprintf(w, "Throughput: %.1f events/s (%.2f per client)\n", report.Throughput.EventsPerSec, report.Throughput.EventsPerSecClient)
	fmt.Fprintf(w, "Frames: %.1f/s received\n", report.Throughput.FramesPerSec)
	fmt.Fprintf(w, "Errors: %d\n", report.Errors.TotalErrors)
	fmt.Fprintln(w)

	if report.LatencyMS.Max == 0 {
		fmt.Fprintln(w, "No latency samples recorded.")
	} else {
		fmt.Fprintln(w, "RTT (key event -> next tick -> echo received):")
		fmt.Fprintf(w, "  min: %.2f ms\n", report.LatencyMS.Min)
		fmt.Fprintf(w, "  p50: %.2f ms\n", report.LatencyMS.P50)
		fmt.Fprintf(w, "  p95: %.2f ms\n", report.LatencyMS.P95)
		fmt.Fprintf(w, "  p99: %.2f ms\n", report.LatencyMS.P99)
		fmt.Fprintf(w, "  max: %.2f ms\n", report.LatencyMS.Max)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Protocol:")
	fmt.Fprintf(w, "  event bytes: %.1f avg\n", report.Protocol.AvgEventBytes)
	fmt.Fprintf(w, "  frame bytes: %.1f avg\n", report.Protocol.AvgFrameBytes)
	fmt.Fprintf(w, "  commands/frame: %.2f\n", report.Protocol.CommandsPerFrame)
	fmt.Fprintf(w, "  keep-alives: %d\n", report.Protocol.KeepAlives)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Server:")
	fmt.Fprintf(w, "  peak sessions: %d\n", report.Server.PeakSessions)
	fmt.Fprintf(w, "  tick p50/p99:  %d/%d us\n", report.Server.TickP50US, report.Server.TickP99US)
	fmt.Fprintf(w, "  rejected:      %d events\n", report.Server.EventsRejected)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Go runtime / GC (process-wide):")
	fmt.Fprintf(w, "  alloc:     %.2f MB\n", report.GC.AllocMB)
	fmt.Fprintf(w, "  heap_live: %.2f MB\n", report.GC.HeapLiveMB)
	fmt.Fprintf(w, "  num_gc:    %d\n", report.GC.NumGC)
	fmt.Fprintf(w, "  gc_pause:  %.2f ms (total)\n", report.GC.PauseTotalMS)
	fmt.Fprintf(w, "  gc_pause:  %.2f ms (avg)\n", report.GC.PauseAvgMS)
}

func writeJSON(path string, report benchReport) error {
	var out io.Writer
	if path == "-" {
		out = os.Stdout
	} else {
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		defer file.Close()
		out = file
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func gitCommit() string {
	if val := strings.TrimSpace(os.Getenv("RCANVAS_GIT_COMMIT")); val != "" {
		return val
	}
	if val := strings.TrimSpace(os.Getenv("GIT_COMMIT")); val != "" {
		return val
	}
	out, err := exec.Command("git", "rev-parse", "HEAD").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
