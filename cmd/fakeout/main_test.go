package main

import (
	"testing"

	"github.com/livinlefevreloca/fakeout/internal/config"
	"github.com/livinlefevreloca/fakeout/internal/testutil"
)

// TestWarnReservedOptions verifies that randomise is flagged on streaming and
// batch pipelines alike, and silent when unset.
func TestWarnReservedOptions(t *testing.T) {
	logger := testutil.NewTestLogger()

	cfg := config.DefaultConfig()
	cfg.Streaming = []config.StreamingPipeline{
		{Name: "events", Randomise: true},
		{Name: "quiet"},
	}
	cfg.Batch = []config.BatchPipeline{
		{Name: "orders", Randomise: true},
	}

	warnReservedOptions(cfg, logger.Logger())

	warnings := logger.GetEntriesByLevel("WARN")
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d", len(warnings))
	}

	warned := map[string]bool{}
	for _, entry := range warnings {
		if name, ok := entry.Fields["pipeline"].(string); ok {
			warned[name] = true
		}
	}
	if !warned["events"] || !warned["orders"] {
		t.Errorf("expected warnings for events and orders, got %v", warned)
	}
}

// TestNewLogger verifies handler selection does not depend on unknown levels.
func TestNewLogger(t *testing.T) {
	for _, cfg := range []config.LoggingConfig{
		{Level: "debug", Format: "text"},
		{Level: "info", Format: "json"},
		{Level: "warn", Format: "text"},
		{Level: "error", Format: "json"},
	} {
		if logger := newLogger(cfg); logger == nil {
			t.Errorf("expected a logger for %+v", cfg)
		}
	}
}
