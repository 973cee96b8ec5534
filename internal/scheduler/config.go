package scheduler

import (
	"fmt"
	"time"
)

// CoordinatorConfig defines configuration for the coordinator loop, the
// pipeline ceilings, and the retention sweep cadence
type CoordinatorConfig struct {
	// Ceilings on concurrently configured pipelines per kind
	MaxStreamingPipelines int `toml:"max_streaming_pipelines"`
	MaxBatchPipelines     int `toml:"max_batch_pipelines"`

	// Coordinator loop iteration interval
	LoopInterval time.Duration `toml:"loop_interval"`

	// Inbox buffer size
	InboxBufferSize int `toml:"inbox_buffer_size"`

	// Timeout for sending to inbox
	InboxSendTimeout time.Duration `toml:"inbox_send_timeout"`

	// Upper bound on the retention sweep cadence. The effective cadence is
	// clamped down to the smallest enabled cleanup_after so staleness stays
	// bounded.
	SweepInterval time.Duration `toml:"sweep_interval"`

	// Maximum wait for all execution units to stop before Stop gives up
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

// DefaultCoordinatorConfig returns coordinator configuration defaults
func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		MaxStreamingPipelines: 5,
		MaxBatchPipelines:     5,
		LoopInterval:          100 * time.Millisecond,
		InboxBufferSize:       1024,
		InboxSendTimeout:      5 * time.Second,
		SweepInterval:         5 * time.Second,
		ShutdownTimeout:       10 * time.Second,
	}
}

// validateConfig validates coordinator configuration and returns error if invalid
func validateConfig(config CoordinatorConfig) error {
	if config.MaxStreamingPipelines <= 0 {
		return fmt.Errorf("MaxStreamingPipelines must be positive, got %d", config.MaxStreamingPipelines)
	}

	if config.MaxBatchPipelines <= 0 {
		return fmt.Errorf("MaxBatchPipelines must be positive, got %d", config.MaxBatchPipelines)
	}

	if config.LoopInterval <= 0 {
		return fmt.Errorf("LoopInterval must be positive, got %v", config.LoopInterval)
	}

	if config.InboxBufferSize <= 0 {
		return fmt.Errorf("InboxBufferSize must be positive, got %d", config.InboxBufferSize)
	}

	if config.InboxSendTimeout <= 0 {
		return fmt.Errorf("InboxSendTimeout must be positive, got %v", config.InboxSendTimeout)
	}

	if config.SweepInterval <= 0 {
		return fmt.Errorf("SweepInterval must be positive, got %v", config.SweepInterval)
	}

	if config.ShutdownTimeout <= 0 {
		return fmt.Errorf("ShutdownTimeout must be positive, got %v", config.ShutdownTimeout)
	}

	return nil
}
