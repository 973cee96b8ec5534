package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/livinlefevreloca/fakeout/internal/db"
	"github.com/livinlefevreloca/fakeout/internal/schema"
	"github.com/livinlefevreloca/fakeout/internal/scheduler"
	"github.com/livinlefevreloca/fakeout/internal/sink"
	"github.com/livinlefevreloca/fakeout/internal/webserver"
)

// Config represents the application configuration
type Config struct {
	Database    db.Config                   `toml:"database"`
	Coordinator scheduler.CoordinatorConfig `toml:"coordinator"`
	Webserver   webserver.Config            `toml:"webserver"`
	Logging     LoggingConfig               `toml:"logging"`
	Streaming   []StreamingPipeline         `toml:"streaming"`
	Batch       []BatchPipeline             `toml:"batch"`
}

// StreamingPipeline configures one message-bus pipeline. Interval is in
// seconds between ticks; Size is records per tick. Randomise is reserved:
// record ordering is always insertion order.
type StreamingPipeline struct {
	Name            string        `toml:"name"`
	Interval        int           `toml:"interval"`
	Size            int           `toml:"size"`
	Randomise       bool          `toml:"randomise"`
	Seed            int64         `toml:"seed"`
	Connection      sink.Config   `toml:"connection"`
	DataDescription schema.Schema `toml:"data_description"`
}

// BatchPipeline configures one storage pipeline. CleanupAfter is the
// retention window in seconds; 0 disables cleanup for this pipeline.
type BatchPipeline struct {
	Name            string        `toml:"name"`
	Interval        int           `toml:"interval"`
	Size            int           `toml:"size"`
	Randomise       bool          `toml:"randomise"`
	Seed            int64         `toml:"seed"`
	Filetype        string        `toml:"filetype"`
	CleanupAfter    int           `toml:"cleanup_after"`
	Connection      sink.Config   `toml:"connection"`
	DataDescription schema.Schema `toml:"data_description"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Database: db.Config{
			Driver:          "sqlite3",
			DSN:             "fakeout.db",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
		},
		Coordinator: scheduler.DefaultCoordinatorConfig(),
		Webserver: webserver.Config{
			Enabled: false,
			Address: "0.0.0.0",
			Port:    8080,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadFromFile loads configuration from a TOML file
func LoadFromFile(path string) (*Config, error) {
	// Start with defaults
	config := DefaultConfig()

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	// Parse TOML file
	if _, err := toml.DecodeFile(path, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()

	return config, nil
}

// applyDefaults fills per-pipeline defaults the file may omit
func (c *Config) applyDefaults() {
	for i := range c.Streaming {
		if c.Streaming[i].Size == 0 {
			c.Streaming[i].Size = 1
		}
	}
	for i := range c.Batch {
		if c.Batch[i].Size == 0 {
			c.Batch[i].Size = 1
		}
		if c.Batch[i].Filetype == "" {
			c.Batch[i].Filetype = sink.FiletypeJSON
		}
	}
}

// LoadConfig loads configuration with the following precedence:
// 1. Default values
// 2. Config file (if specified)
// 3. Command-line flags (handled by caller)
func LoadConfig(configPath string) (*Config, error) {
	// Start with defaults
	config := DefaultConfig()

	// If no config file specified, return defaults
	if configPath == "" {
		return config, nil
	}

	return LoadFromFile(configPath)
}

// Validate checks if the configuration is valid. Every error here is fatal
// at startup: no pipeline starts on an invalid configuration.
func (c *Config) Validate() error {
	// Database validation: empty DSN disables artifact persistence
	if c.Database.DSN != "" && c.Database.Driver != "sqlite3" {
		return fmt.Errorf("unsupported database driver: %s (must be sqlite3)", c.Database.Driver)
	}

	// Ceiling validation
	if len(c.Streaming) > c.Coordinator.MaxStreamingPipelines {
		return fmt.Errorf("too many streaming pipelines: %d configured, ceiling is %d",
			len(c.Streaming), c.Coordinator.MaxStreamingPipelines)
	}
	if len(c.Batch) > c.Coordinator.MaxBatchPipelines {
		return fmt.Errorf("too many batch pipelines: %d configured, ceiling is %d",
			len(c.Batch), c.Coordinator.MaxBatchPipelines)
	}

	// Pipeline names must be unique across the whole configuration; they key
	// concurrency state, artifact naming, and log correlation
	names := make(map[string]bool, len(c.Streaming)+len(c.Batch))

	for i := range c.Streaming {
		p := &c.Streaming[i]
		if err := validatePipelineCommon(p.Name, p.Interval, p.Size, p.DataDescription, names); err != nil {
			return fmt.Errorf("streaming pipeline %d: %w", i, err)
		}
		if err := p.Connection.ValidateStreaming(); err != nil {
			return fmt.Errorf("streaming pipeline %s: %w", p.Name, err)
		}
	}

	for i := range c.Batch {
		p := &c.Batch[i]
		if err := validatePipelineCommon(p.Name, p.Interval, p.Size, p.DataDescription, names); err != nil {
			return fmt.Errorf("batch pipeline %d: %w", i, err)
		}
		if err := p.Connection.ValidateBatch(); err != nil {
			return fmt.Errorf("batch pipeline %s: %w", p.Name, err)
		}
		if !sink.ValidFiletype(p.Filetype) {
			return fmt.Errorf("batch pipeline %s: unsupported filetype: %s (must be %s or %s)",
				p.Name, p.Filetype, sink.FiletypeJSON, sink.FiletypeCSV)
		}
		if p.CleanupAfter < 0 {
			return fmt.Errorf("batch pipeline %s: cleanup_after must not be negative, got %d", p.Name, p.CleanupAfter)
		}
	}

	// Webserver validation
	if c.Webserver.Enabled {
		if c.Webserver.Port <= 0 || c.Webserver.Port > 65535 {
			return fmt.Errorf("webserver port must be between 1 and 65535")
		}
		if c.Webserver.Directory == "" {
			return fmt.Errorf("webserver directory must be specified")
		}
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Logging.Format)
	}

	return nil
}

func validatePipelineCommon(name string, interval, size int, s schema.Schema, names map[string]bool) error {
	if name == "" {
		return fmt.Errorf("name must not be empty")
	}
	if names[name] {
		return fmt.Errorf("duplicate pipeline name: %s", name)
	}
	names[name] = true

	if interval <= 0 {
		return fmt.Errorf("interval must be positive, got %d", interval)
	}
	if size < 1 {
		return fmt.Errorf("size must be at least 1, got %d", size)
	}

	if err := s.Validate(); err != nil {
		return fmt.Errorf("data_description: %w", err)
	}

	return nil
}
