// Package main implements the flatfile command line tool. It loads a schema
// file, parses one or more delimited input files against it, and writes the
// typed records out as JSON lines or re-serialized delimited text. All file
// I/O lives here; the core packages only ever see in-memory text and byte
// streams.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/c360/flatfile/metric"
	"github.com/c360/flatfile/schema"
)

// Build information constants
const (
	Version = "0.1.0"
	appName = "flatfile"
)

type cliConfig struct {
	schemaPath    string
	outSchemaPath string
	validate      bool
	streaming     bool
	showVersion   bool
	metricsAddr   string
	logLevel      string
	logJSON       bool
	inputs        []string
}

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cfg := parseFlags()

	if cfg.showVersion {
		fmt.Printf("%s %s (%s)\n", appName, Version, runtime.Version())
		return nil
	}

	logger := setupLogger(cfg)
	slog.SetDefault(logger)

	if cfg.schemaPath == "" {
		return fmt.Errorf("missing required -schema flag")
	}

	s, err := schema.Load(cfg.schemaPath)
	if err != nil {
		return err
	}
	if cfg.validate {
		logger.Info("Schema is valid", "path", cfg.schemaPath, "fields", len(s.Fields), "delimiter", s.Delimiter)
		return nil
	}

	if len(cfg.inputs) == 0 {
		return fmt.Errorf("no input files given")
	}

	var outSchema *schema.Schema
	if cfg.outSchemaPath != "" {
		outSchema, err = schema.Load(cfg.outSchemaPath)
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var registry *metric.Registry
	if cfg.metricsAddr != "" {
		registry = metric.NewRegistry()
		startMetricsServer(ctx, cfg.metricsAddr, registry, logger)
	}

	proc := &processor{
		schema:    s,
		outSchema: outSchema,
		streaming: cfg.streaming,
		registry:  registry,
		logger:    logger,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, path := range cfg.inputs {
		g.Go(func() error {
			return proc.processFile(ctx, path)
		})
	}
	return g.Wait()
}

func parseFlags() cliConfig {
	var cfg cliConfig
	flag.StringVar(&cfg.schemaPath, "schema", "", "Path to the schema file (JSON or YAML)")
	flag.StringVar(&cfg.outSchemaPath, "out-schema", "", "Re-serialize records with this schema instead of emitting JSON lines")
	flag.BoolVar(&cfg.validate, "validate", false, "Validate the schema file and exit")
	flag.BoolVar(&cfg.streaming, "stream", false, "Parse incrementally instead of buffering whole files (silently nulls bad fields)")
	flag.BoolVar(&cfg.showVersion, "version", false, "Show version information")
	flag.StringVar(&cfg.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	flag.StringVar(&cfg.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.BoolVar(&cfg.logJSON, "log-json", false, "Emit logs as JSON")
	flag.Parse()
	cfg.inputs = flag.Args()
	return cfg
}

func setupLogger(cfg cliConfig) *slog.Logger {
	var level slog.Level
	switch cfg.logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.logJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler).With("app", appName)
}

func startMetricsServer(ctx context.Context, addr string, registry *metric.Registry, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", registry.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("Metrics server listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Metrics server failed", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
}
