package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vango-dev/rcanvas/internal/errors"
	"github.com/vango-dev/rcanvas/pkg/server"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "rcanvas.json"

	// DefaultPort is the default server port.
	DefaultPort = 8080

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultResourceDir is the default resource directory.
	DefaultResourceDir = "resources"
)

// Environment variables that override the file.
const (
	EnvResourcePath = "RCANVAS_RESOURCE_PATH"
	EnvHost         = "RCANVAS_HOST"
	EnvPort         = "RCANVAS_PORT"
)

// Resource sources.
const (
	SourceDir = "dir"
	SourceS3  = "s3"
)

// Config represents the complete rcanvas.json configuration.
type Config struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty"`

	// WebSocketPath is the path the renderer connects to.
	WebSocketPath string `json:"websocketPath,omitempty"`

	// Resources configures where the client page, script and media come from.
	Resources ResourcesConfig `json:"resources,omitempty"`

	// Session contains per-connection settings.
	Session SessionConfig `json:"session,omitempty"`

	// Metrics configures the Prometheus endpoint.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Log configures the process logger.
	Log LogConfig `json:"log,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ResourcesConfig contains static asset settings.
type ResourcesConfig struct {
	// Source is "dir" or "s3".
	Source string `json:"source,omitempty"`

	// Dir is the local resource directory, relative to the config file.
	Dir string `json:"dir,omitempty"`

	// MaxAge is the Cache-Control max-age for assets (e.g., "1h").
	MaxAge string `json:"maxAge,omitempty"`

	// S3 is used when Source is "s3".
	S3 S3Config `json:"s3,omitempty"`
}

// S3Config locates resources in a bucket.
type S3Config struct {
	Bucket       string `json:"bucket,omitempty"`
	Prefix       string `json:"prefix,omitempty"`
	Region       string `json:"region,omitempty"`
	Endpoint     string `json:"endpoint,omitempty"`
	UsePathStyle bool   `json:"usePathStyle,omitempty"`
}

// SessionConfig contains per-connection settings. Durations use Go syntax.
type SessionConfig struct {
	FramesPerSecond int    `json:"framesPerSecond,omitempty"`
	KeepAlive       string `json:"keepAlive,omitempty"`
	ReadTimeout     string `json:"readTimeout,omitempty"`
	WriteTimeout    string `json:"writeTimeout,omitempty"`
	MaxMessageSize  int64  `json:"maxMessageSize,omitempty"`
	MaxInboundQueue int    `json:"maxInboundQueue,omitempty"`
	MaxSessions     int    `json:"maxSessions,omitempty"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled,omitempty"`
	Path      string `json:"path,omitempty"`
	Namespace string `json:"namespace,omitempty"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Host:          DefaultHost,
		Port:          DefaultPort,
		WebSocketPath: "/websocket",
		Resources: ResourcesConfig{
			Source: SourceDir,
			Dir:    DefaultResourceDir,
		},
		Session: SessionConfig{
			FramesPerSecond: 10,
			KeepAlive:       "15s",
			WriteTimeout:    "10s",
		},
		Metrics: MetricsConfig{
			Path:      "/metrics",
			Namespace: "rcanvas",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for rcanvas.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path and applies
// environment overrides.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E141").
				WithDetail("No " + filepath.Base(path) + " found in " + filepath.Dir(path)).
				WithSuggestion("Create the file or run without --config to use defaults").
				Wrap(err)
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E120").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that the file is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the default configuration with environment overrides.
func Default() (*Config, error) {
	cfg := New()
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// ApplyEnv applies RCANVAS_* overrides read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvResourcePath); v != "" {
		c.Resources.Dir = v
	}
	if v := getenv(EnvHost); v != "" {
		c.Host = v
	}
	if v := getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("E122").
				WithDetail(EnvPort + "=" + v + " is not a number").
				Wrap(err)
		}
		c.Port = port
	}
	return nil
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	d := New()
	if c.Host == "" {
		c.Host = d.Host
	}
	if c.Port == 0 {
		c.Port = d.Port
	}
	if c.WebSocketPath == "" {
		c.WebSocketPath = d.WebSocketPath
	}
	if c.Resources.Source == "" {
		c.Resources.Source = d.Resources.Source
	}
	if c.Resources.Dir == "" {
		c.Resources.Dir = d.Resources.Dir
	}
	if c.Session.FramesPerSecond == 0 {
		c.Session.FramesPerSecond = d.Session.FramesPerSecond
	}
	if c.Session.KeepAlive == "" {
		c.Session.KeepAlive = d.Session.KeepAlive
	}
	if c.Session.WriteTimeout == "" {
		c.Session.WriteTimeout = d.Session.WriteTimeout
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = d.Metrics.Path
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = d.Metrics.Namespace
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return errors.New("E122").
			WithDetail("Port must be between 0 and 65535, got " + strconv.Itoa(c.Port))
	}

	if fps := c.Session.FramesPerSecond; fps < 1 || fps > server.MaxFramesPerSecond {
		return errors.New("E123").
			WithDetail("session.framesPerSecond is " + strconv.Itoa(fps))
	}

	for name, value := range map[string]string{
		"session.keepAlive":    c.Session.KeepAlive,
		"session.readTimeout":  c.Session.ReadTimeout,
		"session.writeTimeout": c.Session.WriteTimeout,
		"resources.maxAge":     c.Resources.MaxAge,
	} {
		if _, err := parseDuration(value); err != nil {
			return errors.New("E124").
				WithDetail(name + " is " + strconv.Quote(value)).
				Wrap(err)
		}
	}

	switch c.Resources.Source {
	case SourceDir:
		if c.Resources.Dir == "" {
			return errors.New("E121").WithDetail("resources.dir is empty")
		}
	case SourceS3:
		if c.Resources.S3.Bucket == "" {
			return errors.New("E121").
				WithDetail("resources.s3.bucket is required when resources.source is \"s3\"")
		}
	default:
		return errors.New("E125").
			WithDetail("resources.source is " + strconv.Quote(c.Resources.Source))
	}

	if !strings.HasPrefix(c.WebSocketPath, "/") {
		return errors.New("E126").WithDetail("websocketPath must start with \"/\"")
	}
	if c.Metrics.Enabled {
		if !strings.HasPrefix(c.Metrics.Path, "/") {
			return errors.New("E126").WithDetail("metrics.path must start with \"/\"")
		}
		if c.Metrics.Path == c.WebSocketPath {
			return errors.New("E126").WithDetail("metrics.path and websocketPath are both " + c.Metrics.Path)
		}
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return errors.New("E121").WithDetail("log.format must be \"text\" or \"json\"")
	}
	if _, err := c.LogLevel(); err != nil {
		return errors.New("E121").WithDetail("log.level: " + err.Error())
	}

	return nil
}

// Address returns the listen address.
func (c *Config) Address() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// URL returns the URL a browser opens to join a session.
func (c *Config) URL() string {
	return "http://" + c.Address() + "/"
}

// ResourcePath returns the resource directory, resolved against the
// directory of the config file when relative.
func (c *Config) ResourcePath() string {
	path := c.Resources.Dir
	if path == "" {
		path = DefaultResourceDir
	}
	if filepath.IsAbs(path) || c.configPath == "" {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// CacheMaxAge returns the parsed resources.maxAge.
func (c *Config) CacheMaxAge() time.Duration {
	d, _ := parseDuration(c.Resources.MaxAge)
	return d
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(c.Log.Level))
	return level, err
}

// SessionConfig converts the session section into a server.SessionConfig.
// Call Validate first; unparsable durations fall back to the defaults.
func (c *Config) SessionConfig() *server.SessionConfig {
	sc := server.DefaultSessionConfig()
	sc.DefaultFramesPerSecond = c.Session.FramesPerSecond
	if d, err := parseDuration(c.Session.KeepAlive); err == nil && d > 0 {
		sc.KeepAliveInterval = d
	}
	if d, err := parseDuration(c.Session.ReadTimeout); err == nil {
		sc.ReadTimeout = d
	}
	if d, err := parseDuration(c.Session.WriteTimeout); err == nil && d > 0 {
		sc.WriteTimeout = d
	}
	if c.Session.MaxMessageSize > 0 {
		sc.MaxMessageSize = c.Session.MaxMessageSize
	}
	if c.Session.MaxInboundQueue > 0 {
		sc.MaxInboundQueue = c.Session.MaxInboundQueue
	}
	return sc
}

// ServerConfig converts the configuration into a server.ServerConfig.
func (c *Config) ServerConfig() *server.ServerConfig {
	cfg := server.DefaultServerConfig().
		WithAddress(c.Address()).
		WithWebSocketPath(c.WebSocketPath).
		WithSessionConfig(c.SessionConfig()).
		WithMaxSessions(c.Session.MaxSessions)
	cfg.MetricsPath = c.Metrics.Path
	return cfg
}

// parseDuration parses a Go duration; the empty string is zero.
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, strconv.ErrRange
	}
	return d, nil
}
