package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/livinlefevreloca/fakeout/internal/config"
	"github.com/livinlefevreloca/fakeout/internal/db"
	"github.com/livinlefevreloca/fakeout/internal/scheduler"
	"github.com/livinlefevreloca/fakeout/internal/sink"
	"github.com/livinlefevreloca/fakeout/internal/tracker"
	"github.com/livinlefevreloca/fakeout/internal/webserver"
)

func main() {
	// Parse command-line flags
	configFile := flag.String("config", "", "Path to configuration file (TOML)")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	slog.Info("starting fakeout",
		"config_file", *configFile,
		"streaming_pipelines", len(cfg.Streaming),
		"batch_pipelines", len(cfg.Batch))

	warnReservedOptions(cfg, logger)

	// Open the artifact store when persistence is configured
	var database *db.DB
	if cfg.Database.DSN != "" {
		slog.Info("connecting to artifact store", "driver", cfg.Database.Driver, "dsn", cfg.Database.DSN)
		database, err = db.OpenWithConfig(cfg.Database)
		if err != nil {
			slog.Error("failed to connect to artifact store", "error", err)
			os.Exit(1)
		}
		defer database.Close()
	} else {
		slog.Info("artifact persistence disabled, tracking in memory only")
	}

	// Restore artifact tracking from a previous run so retention resumes
	artifacts := tracker.New(database, logger)
	restored, err := artifacts.Load()
	if err != nil {
		slog.Error("failed to restore artifact tracking", "error", err)
		os.Exit(1)
	}
	if restored > 0 {
		slog.Info("restored tracked artifacts", "count", restored)
	}

	// Build one sink per pipeline and bind pipelines
	pipelines, err := buildPipelines(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to build pipelines", "error", err)
		os.Exit(1)
	}

	coordinator, err := scheduler.New(cfg.Coordinator, pipelines, artifacts, logger)
	if err != nil {
		slog.Error("failed to create coordinator", "error", err)
		os.Exit(1)
	}

	coordinator.Start()

	// Serve local exports when enabled
	var web *webserver.Server
	if cfg.Webserver.Enabled {
		web = webserver.NewServer(cfg.Webserver)
		if err := web.Start(); err != nil {
			slog.Error("failed to start webserver", "error", err)
			coordinator.Stop(cfg.Coordinator.ShutdownTimeout)
			os.Exit(1)
		}
		slog.Info("serving exports",
			"address", cfg.Webserver.Address,
			"port", cfg.Webserver.Port,
			"directory", cfg.Webserver.Directory)
	}

	slog.Info("fakeout is running")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("shutting down gracefully")

	if err := coordinator.Stop(cfg.Coordinator.ShutdownTimeout); err != nil {
		if errors.Is(err, scheduler.ErrShutdownTimeout) {
			slog.Warn("shutdown incomplete", "error", err)
		} else {
			slog.Error("shutdown failed", "error", err)
		}
	}

	if web != nil {
		if err := web.Stop(); err != nil {
			slog.Warn("failed to stop webserver", "error", err)
		}
	}
}

// warnReservedOptions logs a warning for accepted-but-ignored configuration
// options on every pipeline, streaming and batch alike
func warnReservedOptions(cfg *config.Config, logger *slog.Logger) {
	for _, p := range cfg.Streaming {
		if p.Randomise {
			logger.Warn("randomise is reserved and ignored, records keep insertion order", "pipeline", p.Name)
		}
	}
	for _, p := range cfg.Batch {
		if p.Randomise {
			logger.Warn("randomise is reserved and ignored, records keep insertion order", "pipeline", p.Name)
		}
	}
}

// newLogger builds the process logger from the logging config
func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
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
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// buildPipelines constructs the configured sink for every pipeline and binds
// the runtime pipeline definitions the coordinator runs
func buildPipelines(ctx context.Context, cfg *config.Config) ([]scheduler.Pipeline, error) {
	pipelines := make([]scheduler.Pipeline, 0, len(cfg.Streaming)+len(cfg.Batch))

	closeAll := func() {
		for _, p := range pipelines {
			p.Sink.Close()
		}
	}

	for _, p := range cfg.Streaming {
		s, err := sink.New(ctx, p.Connection, p.Name, sink.FiletypeJSON)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("streaming pipeline %s: %w", p.Name, err)
		}

		pipelines = append(pipelines, scheduler.Pipeline{
			Name:     p.Name,
			Kind:     scheduler.KindStreaming,
			Interval: time.Duration(p.Interval) * time.Second,
			Size:     p.Size,
			Schema:   p.DataDescription,
			Sink:     s,
			Seed:     p.Seed,
		})
	}

	for _, p := range cfg.Batch {
		s, err := sink.New(ctx, p.Connection, p.Name, p.Filetype)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("batch pipeline %s: %w", p.Name, err)
		}

		pipelines = append(pipelines, scheduler.Pipeline{
			Name:         p.Name,
			Kind:         scheduler.KindBatch,
			Interval:     time.Duration(p.Interval) * time.Second,
			Size:         p.Size,
			Schema:       p.DataDescription,
			Sink:         s,
			CleanupAfter: time.Duration(p.CleanupAfter) * time.Second,
			Seed:         p.Seed,
		})
	}

	return pipelines, nil
}
