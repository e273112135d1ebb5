package config

import (
	stderrors "errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/rcanvas/internal/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func noEnv(string) string { return "" }

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Port != DefaultPort {
		t.Errorf("Port = %d, want %d", cfg.Port, DefaultPort)
	}
	if cfg.Host != DefaultHost {
		t.Errorf("Host = %q, want %q", cfg.Host, DefaultHost)
	}
	if cfg.Resources.Source != SourceDir || cfg.Resources.Dir != DefaultResourceDir {
		t.Errorf("Resources = %+v", cfg.Resources)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv(EnvResourcePath, "")
	t.Setenv(EnvHost, "")
	t.Setenv(EnvPort, "")

	path := writeConfig(t, `{
  "host": "0.0.0.0",
  "port": 9000,
  "resources": {"dir": "web", "maxAge": "1h"},
  "session": {"framesPerSecond": 30, "keepAlive": "5s", "maxSessions": 4},
  "metrics": {"enabled": true},
  "log": {"level": "debug", "format": "json"}
}
`)

	cfg, err := Load(filepath.Dir(path))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Address() != "0.0.0.0:9000" {
		t.Errorf("Address() = %q", cfg.Address())
	}
	if cfg.Session.FramesPerSecond != 30 {
		t.Errorf("FramesPerSecond = %d, want 30", cfg.Session.FramesPerSecond)
	}
	// Unset fields keep their defaults.
	if cfg.WebSocketPath != "/websocket" || cfg.Metrics.Path != "/metrics" {
		t.Errorf("paths = %q, %q", cfg.WebSocketPath, cfg.Metrics.Path)
	}
	if cfg.Session.WriteTimeout != "10s" {
		t.Errorf("WriteTimeout = %q, want default", cfg.Session.WriteTimeout)
	}
	if got := cfg.ResourcePath(); got != filepath.Join(filepath.Dir(path), "web") {
		t.Errorf("ResourcePath() = %q", got)
	}
	if cfg.CacheMaxAge() != time.Hour {
		t.Errorf("CacheMaxAge() = %v", cfg.CacheMaxAge())
	}
	if level, err := cfg.LogLevel(); err != nil || level != slog.LevelDebug {
		t.Errorf("LogLevel() = %v, %v", level, err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	if err == nil {
		t.Fatal("Expected error for missing config")
	}
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Code != "E141" {
		t.Fatalf("err = %v, want E141", err)
	}
	if !stderrors.Is(err, fs.ErrNotExist) {
		t.Error("missing-file error should match fs.ErrNotExist")
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	path := writeConfig(t, `{"port": "eighty"}`)
	_, err := LoadFile(path)
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Code != "E120" {
		t.Fatalf("err = %v, want E120", err)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvResourcePath: "/srv/canvas",
		EnvHost:         "127.0.0.1",
		EnvPort:         "7070",
	}
	cfg := New()
	if err := cfg.ApplyEnv(func(k string) string { return env[k] }); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Address() != "127.0.0.1:7070" {
		t.Errorf("Address() = %q", cfg.Address())
	}
	if cfg.ResourcePath() != "/srv/canvas" {
		t.Errorf("ResourcePath() = %q", cfg.ResourcePath())
	}

	cfg = New()
	if err := cfg.ApplyEnv(noEnv); err != nil || cfg.Port != DefaultPort {
		t.Errorf("empty env changed config: %v, port %d", err, cfg.Port)
	}

	err := New().ApplyEnv(func(k string) string {
		if k == EnvPort {
			return "http"
		}
		return ""
	})
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Code != "E122" {
		t.Fatalf("bad port err = %v, want E122", err)
	}
}

func TestLoadFileAppliesEnv(t *testing.T) {
	t.Setenv(EnvPort, "6060")
	t.Setenv(EnvHost, "")
	t.Setenv(EnvResourcePath, "")

	cfg, err := LoadFile(writeConfig(t, `{"port": 9000}`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 6060 {
		t.Errorf("Port = %d, want environment override 6060", cfg.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		code   string
	}{
		{"port", func(c *Config) { c.Port = 70000 }, "E122"},
		{"fps zero", func(c *Config) { c.Session.FramesPerSecond = 0 }, "E123"},
		{"fps high", func(c *Config) { c.Session.FramesPerSecond = 61 }, "E123"},
		{"duration", func(c *Config) { c.Session.KeepAlive = "soon" }, "E124"},
		{"negative duration", func(c *Config) { c.Session.ReadTimeout = "-1s" }, "E124"},
		{"source", func(c *Config) { c.Resources.Source = "ftp" }, "E125"},
		{"s3 bucket", func(c *Config) { c.Resources.Source = SourceS3 }, "E121"},
		{"ws path", func(c *Config) { c.WebSocketPath = "ws" }, "E126"},
		{"metrics collision", func(c *Config) {
			c.Metrics.Enabled = true
			c.Metrics.Path = "/websocket"
		}, "E126"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "E121"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "E121"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := New()
			tc.mutate(cfg)
			err := cfg.Validate()
			var e *errors.Error
			if !stderrors.As(err, &e) || e.Code != tc.code {
				t.Fatalf("Validate() = %v, want %s", err, tc.code)
			}
		})
	}

	cfg := New()
	cfg.Resources.Source = SourceS3
	cfg.Resources.S3.Bucket = "canvas"
	if err := cfg.Validate(); err != nil {
		t.Errorf("s3 config invalid: %v", err)
	}
}

func TestServerConfig(t *testing.T) {
	cfg := New()
	cfg.Port = 9999
	cfg.WebSocketPath = "/ws"
	cfg.Metrics.Path = "/stats"
	cfg.Session.FramesPerSecond = 25
	cfg.Session.KeepAlive = "20s"
	cfg.Session.ReadTimeout = "1m"
	cfg.Session.MaxInboundQueue = 8
	cfg.Session.MaxSessions = 3

	sc := cfg.ServerConfig()
	if sc.Address != "localhost:9999" || sc.WebSocketPath != "/ws" || sc.MetricsPath != "/stats" {
		t.Fatalf("ServerConfig = %+v", sc)
	}
	if sc.MaxSessions != 3 {
		t.Errorf("MaxSessions = %d, want 3", sc.MaxSessions)
	}
	s := sc.SessionConfig
	if s.DefaultFramesPerSecond != 25 || s.KeepAliveInterval != 20*time.Second || s.ReadTimeout != time.Minute {
		t.Errorf("SessionConfig = %+v", s)
	}
	if s.MaxInboundQueue != 8 {
		t.Errorf("MaxInboundQueue = %d, want 8", s.MaxInboundQueue)
	}
	if s.WriteTimeout != 10*time.Second {
		t.Errorf("WriteTimeout = %v, want default 10s", s.WriteTimeout)
	}
}

func TestURL(t *testing.T) {
	cfg := New()
	if got := cfg.URL(); !strings.HasPrefix(got, "http://localhost:8080") {
		t.Errorf("URL() = %q", got)
	}
}
