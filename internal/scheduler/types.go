package scheduler

import (
	"time"

	"github.com/livinlefevreloca/fakeout/internal/schema"
	"github.com/livinlefevreloca/fakeout/internal/sink"
)

// PipelineKind distinguishes the two delivery cadences
type PipelineKind int

const (
	KindStreaming PipelineKind = iota
	KindBatch
)

// String returns a human-readable representation of the pipeline kind
func (k PipelineKind) String() string {
	switch k {
	case KindStreaming:
		return "streaming"
	case KindBatch:
		return "batch"
	default:
		return "unknown"
	}
}

// PipelineStatus represents the current state of a pipeline execution unit
type PipelineStatus int

const (
	PipelineIdle       PipelineStatus = iota // Waiting for the next scheduled tick
	PipelineTicking                          // Synthesizing records for the current tick
	PipelineDelivering                       // Handing the batch to the sink
	PipelineFailed                           // Last tick's delivery failed

	// Terminal state, reachable from any state on cancellation
	PipelineStopped
)

// String returns a human-readable representation of the pipeline status
func (s PipelineStatus) String() string {
	switch s {
	case PipelineIdle:
		return "idle"
	case PipelineTicking:
		return "ticking"
	case PipelineDelivering:
		return "delivering"
	case PipelineFailed:
		return "failed"
	case PipelineStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Pipeline binds one schema, one cadence, and one sink. The sink handle and
// the derived RNG stream are owned exclusively by the pipeline's execution
// unit; nothing is shared between pipelines.
type Pipeline struct {
	Name     string
	Kind     PipelineKind
	Interval time.Duration
	Size     int
	Schema   schema.Schema
	Sink     sink.Sink

	// CleanupAfter is the batch retention window; zero disables cleanup.
	// Ignored for streaming pipelines.
	CleanupAfter time.Duration

	// Seed for the pipeline's private random stream; zero picks a
	// time-based seed.
	Seed int64
}

// PipelineState is the coordinator-side view of one execution unit. Owned and
// mutated only by the coordinator loop.
type PipelineState struct {
	Name           string
	Kind           PipelineKind
	Status         PipelineStatus
	TicksDelivered int
	TicksFailed    int
	LastTickAt     time.Time
	LastError      string
	StoppedAt      time.Time
}
