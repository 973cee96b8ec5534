// Package sink provides the delivery backends pipelines write to: a NATS
// message bus for streaming pipelines, and S3 or the local filesystem for
// batch pipelines. The backend is selected by configuration at startup.
package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/livinlefevreloca/fakeout/internal/synth"
)

// Service identifiers accepted in a connection config
const (
	ServiceNATS  = "nats"
	ServiceS3    = "s3"
	ServiceLocal = "local"
)

// Sink delivers batches of records to one destination. Deliver is atomic from
// the caller's perspective: either the whole batch is accepted or none of it.
// For storage sinks Deliver returns the location of the written artifact;
// message-bus sinks return an empty location. Delete is idempotent: removing
// an already-absent artifact is not an error. Both calls may block on I/O and
// must honor the context.
type Sink interface {
	Deliver(ctx context.Context, at time.Time, batch []synth.Record) (location string, err error)
	Delete(ctx context.Context, location string) error
	Close() error
}

// Config holds the connection settings for one pipeline's sink. The keys
// mirror the `connection` section of the configuration file; which keys are
// required depends on the service.
type Config struct {
	Service string `toml:"service"`

	// nats
	URL     string `toml:"url"`
	Subject string `toml:"subject"`

	// s3
	BucketName string `toml:"bucket_name"`
	FolderPath string `toml:"folder_path"`
	Region     string `toml:"region"`
	Endpoint   string `toml:"endpoint"`
	AccessKey  string `toml:"access_key"`
	SecretKey  string `toml:"secret_key"`

	// local
	Directory string `toml:"directory"`
}

// ValidateStreaming checks the config for use by a streaming pipeline
func (c Config) ValidateStreaming() error {
	switch c.Service {
	case ServiceNATS:
		if c.URL == "" {
			return fmt.Errorf("nats connection requires url")
		}
		if c.Subject == "" {
			return fmt.Errorf("nats connection requires subject")
		}
		return nil
	case "":
		return fmt.Errorf("connection service must be specified")
	default:
		return fmt.Errorf("unsupported streaming service: %s (must be %s)", c.Service, ServiceNATS)
	}
}

// ValidateBatch checks the config for use by a batch pipeline
func (c Config) ValidateBatch() error {
	switch c.Service {
	case ServiceS3:
		if c.BucketName == "" {
			return fmt.Errorf("s3 connection requires bucket_name")
		}
		return nil
	case ServiceLocal:
		if c.Directory == "" {
			return fmt.Errorf("local connection requires directory")
		}
		return nil
	case "":
		return fmt.Errorf("connection service must be specified")
	default:
		return fmt.Errorf("unsupported batch service: %s (must be %s or %s)",
			c.Service, ServiceS3, ServiceLocal)
	}
}

// New builds the sink selected by the connection config. The pipeline name
// and filetype feed artifact naming for storage sinks.
func New(ctx context.Context, cfg Config, pipeline, filetype string) (Sink, error) {
	switch cfg.Service {
	case ServiceNATS:
		return NewNATSSink(cfg)
	case ServiceS3:
		return NewS3Sink(ctx, cfg, pipeline, filetype)
	case ServiceLocal:
		return NewLocalSink(cfg, pipeline, filetype)
	default:
		return nil, fmt.Errorf("unsupported sink service: %s", cfg.Service)
	}
}

// artifactName derives the output unit name from the pipeline name and the
// tick timestamp. The timestamp is lexically sortable so listings stay in
// chronological order.
func artifactName(pipeline string, at time.Time, filetype string) string {
	return fmt.Sprintf("%s_%sZ.%s", pipeline, at.UTC().Format("20060102T150405.000000"), filetype)
}
