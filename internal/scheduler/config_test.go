package scheduler

import (
	"testing"
	"time"
)

// TestDefaultCoordinatorConfig verifies the defaults, in particular the
// pipeline ceilings.
func TestDefaultCoordinatorConfig(t *testing.T) {
	config := DefaultCoordinatorConfig()

	if config.MaxStreamingPipelines != 5 {
		t.Errorf("expected streaming ceiling 5, got %d", config.MaxStreamingPipelines)
	}
	if config.MaxBatchPipelines != 5 {
		t.Errorf("expected batch ceiling 5, got %d", config.MaxBatchPipelines)
	}
	if config.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected 10s shutdown timeout, got %v", config.ShutdownTimeout)
	}

	if err := validateConfig(config); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

// TestValidateConfig_Invalid covers each per-field rule.
func TestValidateConfig_Invalid(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CoordinatorConfig)
	}{
		{"zero streaming ceiling", func(c *CoordinatorConfig) { c.MaxStreamingPipelines = 0 }},
		{"zero batch ceiling", func(c *CoordinatorConfig) { c.MaxBatchPipelines = 0 }},
		{"zero loop interval", func(c *CoordinatorConfig) { c.LoopInterval = 0 }},
		{"zero inbox buffer", func(c *CoordinatorConfig) { c.InboxBufferSize = 0 }},
		{"zero inbox timeout", func(c *CoordinatorConfig) { c.InboxSendTimeout = 0 }},
		{"zero sweep interval", func(c *CoordinatorConfig) { c.SweepInterval = 0 }},
		{"negative shutdown timeout", func(c *CoordinatorConfig) { c.ShutdownTimeout = -time.Second }},
	}

	for _, tc := range cases {
		config := DefaultCoordinatorConfig()
		tc.mutate(&config)

		if err := validateConfig(config); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}
