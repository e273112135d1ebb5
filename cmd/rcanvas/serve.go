package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/rcanvas/internal/config"
	"github.com/vango-dev/rcanvas/internal/demo"
	"github.com/vango-dev/rcanvas/internal/errors"
	"github.com/vango-dev/rcanvas/pkg/assets"
	"github.com/vango-dev/rcanvas/pkg/middleware"
	"github.com/vango-dev/rcanvas/pkg/server"
)

type serveOptions struct {
	configPath string
	painter    string

	host      string
	port      int
	resources string
	s3Bucket  string
	s3Prefix  string
	s3Region  string
	fps       int
	metrics   bool
	trace     bool
	logLevel  string
	logFormat string
}

func serveCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a painter to browsers",
		Long: `Serve the renderer page and run a painter for every browser that connects.

Settings come from rcanvas.json (or --config) and RCANVAS_* environment
variables; flags override both.

Examples:
  rcanvas serve
  rcanvas serve --painter=sketch --port=9000
  rcanvas serve --s3-bucket=my-canvas-assets --s3-region=eu-west-1
  rcanvas serve --config=deploy/rcanvas.json --metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to rcanvas.json (default ./rcanvas.json if present)")
	cmd.Flags().StringVarP(&opts.painter, "painter", "P", demo.DefaultName, "Painter to run ("+strings.Join(demo.Names(), ", ")+")")
	cmd.Flags().StringVarP(&opts.host, "host", "H", "", "Host to bind to")
	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "Port to listen on")
	cmd.Flags().StringVarP(&opts.resources, "resources", "r", "", "Directory with the renderer page and media")
	cmd.Flags().StringVar(&opts.s3Bucket, "s3-bucket", "", "Serve resources from this S3 bucket")
	cmd.Flags().StringVar(&opts.s3Prefix, "s3-prefix", "", "Key prefix inside the S3 bucket")
	cmd.Flags().StringVar(&opts.s3Region, "s3-region", "", "Region of the S3 bucket")
	cmd.Flags().IntVar(&opts.fps, "fps", 0, "Default frames per second")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "Expose Prometheus metrics")
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "Trace HTTP requests with the global OpenTelemetry provider")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&opts.logFormat, "log-format", "", "Log format (text, json)")

	return cmd
}

func runServe(cmd *cobra.Command, opts serveOptions) error {
	factory, ok := demo.Lookup(opts.painter)
	if !ok {
		return errors.New("E143").
			WithDetail("No painter named " + opts.painter).
			WithSuggestion("Available painters: " + strings.Join(demo.Names(), ", "))
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg, opts)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	srv, err := buildServer(context.Background(), cfg, factory, opts.trace)
	if err != nil {
		return err
	}

	printBanner()
	success("Serving painter %q", opts.painter)
	info("Open %s in a browser", cfg.URL())
	if cfg.Metrics.Enabled {
		info("Metrics at http://%s%s", cfg.Address(), cfg.Metrics.Path)
	}
	fmt.Println()

	if err := srv.Run(); err != nil {
		return errors.New("E142").Wrap(err)
	}
	return nil
}

// loadConfig reads path, or rcanvas.json in the working directory when it
// exists, or falls back to defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	if _, err := os.Stat(config.ConfigFileName); err == nil {
		return config.LoadFile(config.ConfigFileName)
	}
	return config.Default()
}

// applyFlags copies explicitly set flags over the loaded configuration.
func applyFlags(cmd *cobra.Command, cfg *config.Config, opts serveOptions) {
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Host = opts.host
	}
	if flags.Changed("port") {
		cfg.Port = opts.port
	}
	if flags.Changed("resources") {
		cfg.Resources.Source = config.SourceDir
		cfg.Resources.Dir = opts.resources
	}
	if flags.Changed("s3-bucket") {
		cfg.Resources.Source = config.SourceS3
		cfg.Resources.S3.Bucket = opts.s3Bucket
	}
	if flags.Changed("s3-prefix") {
		cfg.Resources.S3.Prefix = opts.s3Prefix
	}
	if flags.Changed("s3-region") {
		cfg.Resources.S3.Region = opts.s3Region
	}
	if flags.Changed("fps") {
		cfg.Session.FramesPerSecond = opts.fps
	}
	if flags.Changed("metrics") {
		cfg.Metrics.Enabled = opts.metrics
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = opts.logFormat
	}
}

// newLogger builds the process logger from the log section.
func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, errors.New("E121").WithDetail("log.level: " + err.Error())
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(cfg.Log.Format, "json") {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(handler), nil
}

// buildServer wires the canvas server, its resources and the optional
// metrics and tracing layers.
func buildServer(ctx context.Context, cfg *config.Config, factory demo.Factory, trace bool) (*server.Server, error) {
	logger := slog.Default()

	source, err := resourceSource(cfg)
	if err != nil {
		return nil, err
	}

	srv := server.New(cfg.ServerConfig(), factory)
	srv.SetLogger(logger.With("component", "server"))
	srv.SetAssets(assets.NewResponder(source, logger.With("component", "assets")).
		WithMaxAge(cfg.CacheMaxAge()))

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		srv.AddObserver(middleware.Prometheus(
			middleware.WithRegistry(reg),
			middleware.WithNamespace(cfg.Metrics.Namespace),
		))
		srv.SetMetricsHandler(middleware.Handler(reg))
	}

	if trace {
		metricsPath := cfg.Metrics.Path
		srv.Use(middleware.OpenTelemetry(
			middleware.WithRequestFilter(func(r *http.Request) bool {
				return r.URL.Path != metricsPath
			}),
		))
	}

	logger.DebugContext(ctx, "server configured",
		"address", cfg.Address(),
		"resources", cfg.Resources.Source,
		"metrics", cfg.Metrics.Enabled,
		"trace", trace,
	)
	return srv, nil
}

// resourceSource returns the asset source named by the resources section.
func resourceSource(cfg *config.Config) (assets.Source, error) {
	if cfg.Resources.Source == config.SourceS3 {
		s3cfg := cfg.Resources.S3
		client := assets.NewS3Client(assets.S3ClientConfig{
			Region:       s3cfg.Region,
			Endpoint:     s3cfg.Endpoint,
			UsePathStyle: s3cfg.UsePathStyle,
		})
		return assets.NewS3Source(client, s3cfg.Bucket, s3cfg.Prefix), nil
	}

	dir := cfg.ResourcePath()
	fi, err := os.Stat(dir)
	if err != nil || !fi.IsDir() {
		e := errors.New("E140").
			WithDetail("No resource directory at " + dir).
			WithSuggestion("Pass --resources or set " + config.EnvResourcePath)
		if err != nil {
			e = e.Wrap(err)
		}
		return nil, e
	}
	return assets.DirSource(dir), nil
}
