package scheduler

import (
	"time"

	"github.com/livinlefevreloca/fakeout/internal/tracker"
)

// InboxMessage is the container for all messages sent to the coordinator
type InboxMessage struct {
	Type         MessageType
	Data         interface{}
	ResponseChan chan<- interface{} // Optional, for request/response pattern
}

// MessageType identifies the type of message being sent to the coordinator
type MessageType int

const (
	// From pipeline execution units
	MsgPipelineStateChange MessageType = iota // Tick progress (ticking/delivering)
	MsgTickDelivered                          // A tick's batch was fully delivered
	MsgTickFailed                             // A tick's delivery failed
	MsgPipelineStopped                        // Execution unit reached terminal state

	// From the retention sweeper
	MsgListExpired    // Request the expired-artifact snapshot
	MsgSweepCompleted // Report deletions performed this sweep

	// State queries
	MsgGetStats // Request coordinator statistics
)

// String returns a human-readable representation of the message type
func (m MessageType) String() string {
	switch m {
	case MsgPipelineStateChange:
		return "pipeline_state_change"
	case MsgTickDelivered:
		return "tick_delivered"
	case MsgTickFailed:
		return "tick_failed"
	case MsgPipelineStopped:
		return "pipeline_stopped"
	case MsgListExpired:
		return "list_expired"
	case MsgSweepCompleted:
		return "sweep_completed"
	case MsgGetStats:
		return "get_stats"
	default:
		return "unknown"
	}
}

// PipelineStateChangeMsg is sent when an execution unit changes state mid-tick
type PipelineStateChangeMsg struct {
	Pipeline  string
	NewStatus PipelineStatus
	Timestamp time.Time
}

// TickDeliveredMsg is sent after a sink accepted a whole batch. Location is
// empty for streaming deliveries.
type TickDeliveredMsg struct {
	Pipeline  string
	Kind      PipelineKind
	Records   int
	Location  string
	Timestamp time.Time
}

// TickFailedMsg is sent when a sink rejected a batch. The failure is local to
// the pipeline; its next tick proceeds on the normal schedule.
type TickFailedMsg struct {
	Pipeline  string
	Timestamp time.Time
	Error     error
}

// PipelineStoppedMsg is sent when an execution unit exits on cancellation
type PipelineStoppedMsg struct {
	Pipeline  string
	Timestamp time.Time
}

// ListExpiredMsg requests the artifacts whose retention window passed at Now
type ListExpiredMsg struct {
	Now time.Time
}

// ExpiredArtifactsResponse is the response to ListExpiredMsg
type ExpiredArtifactsResponse struct {
	Artifacts []tracker.Artifact
}

// SweepCompletedMsg reports the outcome of one retention sweep. Deleted IDs
// are removed from tracking; artifacts whose delete failed stay tracked and
// retry on the next sweep.
type SweepCompletedMsg struct {
	Deleted        []string
	DeleteFailures int
	Timestamp      time.Time
}

// GetStatsMsg requests coordinator statistics (empty payload)
type GetStatsMsg struct{}

// StatsResponse is the response to GetStatsMsg
type StatsResponse struct {
	Stats Stats
}
