// Package scheduler is the coordination core: it runs an arbitrary number of
// independently configured producer/sink pipelines concurrently, generates
// data on each pipeline's own clock, and isolates slow or failing sinks so
// one pipeline can never stall or corrupt another.
//
// Concurrency model: one goroutine per pipeline plus one for the retention
// sweeper. The coordinator loop is the single writer of all shared state (the
// pipeline state table and the artifact tracker); execution units communicate
// with it exclusively through the typed Inbox.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/livinlefevreloca/fakeout/internal/sink"
	"github.com/livinlefevreloca/fakeout/internal/tracker"
)

// ErrShutdownTimeout is returned by Stop when some execution units were still
// running when the shutdown timeout expired. The coordinator abandons them
// rather than hanging on a sink call that never returns.
var ErrShutdownTimeout = errors.New("scheduler: execution units did not stop within the shutdown timeout")

// Coordinator owns the configured pipelines, their execution units, the
// artifact tracker, and the retention sweeper
type Coordinator struct {
	config    CoordinatorConfig
	logger    *slog.Logger
	pipelines []Pipeline

	// State owned by the coordinator loop
	states  map[string]*PipelineState
	tracker *tracker.Tracker

	// Sweep counters (owned by the coordinator loop)
	sweepCount       int
	artifactsDeleted int
	deleteFailures   int

	// Retention window and sink handle per batch pipeline; read-only after New
	cleanups   map[string]time.Duration
	batchSinks map[string]sink.Sink

	sweepInterval time.Duration
	sweepEnabled  bool

	// Communication
	inbox *Inbox

	// Control
	ctx      context.Context
	cancel   context.CancelFunc
	unitWG   sync.WaitGroup
	loopWG   sync.WaitGroup
	loopStop chan struct{}
	started  bool
	stopped  bool
}

// Stats is a point-in-time snapshot of coordinator state
type Stats struct {
	Pipelines        map[string]PipelineState
	TrackedArtifacts int
	Sweeps           int
	ArtifactsDeleted int
	DeleteFailures   int
	Inbox            InboxStats
}

// New validates the configuration invariants (pipeline ceilings, unique
// names, positive cadences) and assembles a coordinator. Any error here is
// fatal: no pipeline starts.
func New(config CoordinatorConfig, pipelines []Pipeline, tr *tracker.Tracker, logger *slog.Logger) (*Coordinator, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	if tr == nil {
		return nil, fmt.Errorf("artifact tracker must not be nil")
	}

	c := &Coordinator{
		config:     config,
		logger:     logger,
		pipelines:  pipelines,
		states:     make(map[string]*PipelineState, len(pipelines)),
		tracker:    tr,
		cleanups:   make(map[string]time.Duration),
		batchSinks: make(map[string]sink.Sink),
		inbox:      NewInbox(config.InboxBufferSize, config.InboxSendTimeout, logger),
		loopStop:   make(chan struct{}),
	}

	streaming, batch := 0, 0
	c.sweepInterval = config.SweepInterval

	for i := range pipelines {
		p := &pipelines[i]

		if p.Name == "" {
			return nil, fmt.Errorf("pipeline %d: name must not be empty", i)
		}
		if _, exists := c.states[p.Name]; exists {
			return nil, fmt.Errorf("duplicate pipeline name: %s", p.Name)
		}
		if p.Interval <= 0 {
			return nil, fmt.Errorf("pipeline %s: interval must be positive, got %v", p.Name, p.Interval)
		}
		if p.Size < 1 {
			return nil, fmt.Errorf("pipeline %s: size must be at least 1, got %d", p.Name, p.Size)
		}
		if p.Sink == nil {
			return nil, fmt.Errorf("pipeline %s: sink must not be nil", p.Name)
		}

		switch p.Kind {
		case KindStreaming:
			streaming++
		case KindBatch:
			batch++
			c.batchSinks[p.Name] = p.Sink
			c.cleanups[p.Name] = p.CleanupAfter
			if p.CleanupAfter > 0 {
				c.sweepEnabled = true
				// Sweeping slower than the smallest retention window would
				// leave expired artifacts around longer than configured
				if p.CleanupAfter < c.sweepInterval {
					c.sweepInterval = p.CleanupAfter
				}
			}
		default:
			return nil, fmt.Errorf("pipeline %s: unknown kind %d", p.Name, p.Kind)
		}

		c.states[p.Name] = &PipelineState{
			Name:   p.Name,
			Kind:   p.Kind,
			Status: PipelineIdle,
		}
	}

	if streaming > config.MaxStreamingPipelines {
		return nil, fmt.Errorf("too many streaming pipelines: %d configured, ceiling is %d",
			streaming, config.MaxStreamingPipelines)
	}
	if batch > config.MaxBatchPipelines {
		return nil, fmt.Errorf("too many batch pipelines: %d configured, ceiling is %d",
			batch, config.MaxBatchPipelines)
	}

	return c, nil
}

// Start launches the coordinator loop, one execution unit per pipeline, and
// the retention sweeper when any batch pipeline has cleanup enabled. It
// returns immediately; use Stop for graceful shutdown.
func (c *Coordinator) Start() {
	if c.started {
		return
	}
	c.started = true

	c.ctx, c.cancel = context.WithCancel(context.Background())

	c.loopWG.Add(1)
	go c.run()

	for _, p := range c.pipelines {
		c.unitWG.Add(1)
		go c.runPipeline(c.ctx, p)

		c.logger.Info("started pipeline",
			"pipeline", p.Name,
			"kind", p.Kind.String(),
			"interval", p.Interval,
			"size", p.Size)
	}

	if c.sweepEnabled {
		c.unitWG.Add(1)
		go c.runSweeper(c.ctx)

		c.logger.Info("started retention sweeper", "sweep_interval", c.sweepInterval)
	}
}

// Stop broadcasts cancellation to every execution unit and waits for all of
// them to reach the stopped state, bounded by timeout (the configured
// shutdown timeout when timeout <= 0). On timeout the remaining units are
// abandoned and ErrShutdownTimeout is returned. Further calls are no-ops.
func (c *Coordinator) Stop(timeout time.Duration) error {
	if !c.started || c.stopped {
		return nil
	}
	c.stopped = true
	if timeout <= 0 {
		timeout = c.config.ShutdownTimeout
	}

	c.logger.Info("stopping coordinator", "timeout", timeout)
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.unitWG.Wait()
		close(done)
	}()

	timedOut := false
	select {
	case <-done:
	case <-time.After(timeout):
		timedOut = true
		c.logger.Warn("shutdown timeout expired, abandoning execution units still in flight")
	}

	// Stop the loop after the units so their final messages get drained
	close(c.loopStop)
	c.loopWG.Wait()

	if timedOut {
		return ErrShutdownTimeout
	}

	c.logger.Info("coordinator stopped")
	return nil
}

// Stats requests a snapshot of coordinator state through the inbox
func (c *Coordinator) Stats() (Stats, error) {
	responseChan := make(chan interface{}, 1)
	sent := c.inbox.Send(InboxMessage{
		Type:         MsgGetStats,
		Data:         GetStatsMsg{},
		ResponseChan: responseChan,
	})
	if !sent {
		return Stats{}, fmt.Errorf("coordinator inbox unavailable")
	}

	select {
	case response := <-responseChan:
		return response.(StatsResponse).Stats, nil
	case <-time.After(c.config.InboxSendTimeout):
		return Stats{}, fmt.Errorf("timed out waiting for coordinator stats")
	}
}

// run is the coordinator's main loop
func (c *Coordinator) run() {
	defer c.loopWG.Done()

	ticker := time.NewTicker(c.config.LoopInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.loopStop:
			// Final drain so stop notifications sent during shutdown are
			// reflected in the state table
			c.processInbox()
			return

		case <-ticker.C:
			c.processInbox()
			c.inbox.UpdateDepthStats()
		}
	}
}

// processInbox drains all available messages from the inbox
func (c *Coordinator) processInbox() int {
	messagesProcessed := 0

	for {
		msg, ok := c.inbox.TryReceive()
		if !ok {
			break
		}

		c.handleMessage(msg)
		messagesProcessed++
	}

	return messagesProcessed
}

// handleMessage dispatches messages to appropriate handlers
func (c *Coordinator) handleMessage(msg InboxMessage) {
	c.logger.Debug("handling message", "type", msg.Type.String())

	switch msg.Type {
	case MsgPipelineStateChange:
		c.handlePipelineStateChange(msg)
	case MsgTickDelivered:
		c.handleTickDelivered(msg)
	case MsgTickFailed:
		c.handleTickFailed(msg)
	case MsgPipelineStopped:
		c.handlePipelineStopped(msg)
	case MsgListExpired:
		c.handleListExpired(msg)
	case MsgSweepCompleted:
		c.handleSweepCompleted(msg)
	case MsgGetStats:
		c.handleGetStats(msg)
	default:
		c.logger.Warn("unknown message type", "type", msg.Type)
	}
}

// handlePipelineStateChange records a mid-tick transition
func (c *Coordinator) handlePipelineStateChange(msg InboxMessage) {
	data := msg.Data.(PipelineStateChangeMsg)

	state, exists := c.states[data.Pipeline]
	if !exists {
		return
	}

	// A unit that already stopped never comes back
	if state.Status == PipelineStopped {
		return
	}

	state.Status = data.NewStatus
}

// handleTickDelivered marks the tick delivered and, for batch pipelines,
// registers the written artifact with the tracker. Registration here makes
// the artifact visible to sweeps processed after this message.
func (c *Coordinator) handleTickDelivered(msg InboxMessage) {
	data := msg.Data.(TickDeliveredMsg)

	state, exists := c.states[data.Pipeline]
	if !exists {
		return
	}

	if state.Status != PipelineStopped {
		state.Status = PipelineIdle
	}
	state.TicksDelivered++
	state.LastTickAt = data.Timestamp
	state.LastError = ""

	if data.Kind == KindBatch && data.Location != "" {
		artifact := tracker.NewArtifact(data.Pipeline, data.Location, data.Timestamp, c.cleanups[data.Pipeline])
		c.tracker.Add(artifact)

		c.logger.Debug("registered artifact",
			"artifact_id", artifact.ID,
			"pipeline", data.Pipeline,
			"location", data.Location)
	}
}

// handleTickFailed records a pipeline-local delivery failure. No artifact is
// registered and the pipeline stays on its normal schedule; the next natural
// tick is the retry.
func (c *Coordinator) handleTickFailed(msg InboxMessage) {
	data := msg.Data.(TickFailedMsg)

	state, exists := c.states[data.Pipeline]
	if !exists {
		return
	}

	if state.Status != PipelineStopped {
		state.Status = PipelineFailed
	}
	state.TicksFailed++
	state.LastTickAt = data.Timestamp
	if data.Error != nil {
		state.LastError = data.Error.Error()
	}
}

// handlePipelineStopped marks an execution unit terminal
func (c *Coordinator) handlePipelineStopped(msg InboxMessage) {
	data := msg.Data.(PipelineStoppedMsg)

	state, exists := c.states[data.Pipeline]
	if !exists {
		return
	}

	state.Status = PipelineStopped
	state.StoppedAt = data.Timestamp

	c.logger.Info("pipeline stopped", "pipeline", data.Pipeline)
}

// handleListExpired answers the sweeper with the current expired snapshot
func (c *Coordinator) handleListExpired(msg InboxMessage) {
	data := msg.Data.(ListExpiredMsg)

	if msg.ResponseChan != nil {
		msg.ResponseChan <- ExpiredArtifactsResponse{
			Artifacts: c.tracker.Expired(data.Now),
		}
	}
}

// handleSweepCompleted removes swept artifacts from tracking. Only artifacts
// whose delete succeeded are listed, so failed deletes retry next sweep.
func (c *Coordinator) handleSweepCompleted(msg InboxMessage) {
	data := msg.Data.(SweepCompletedMsg)

	for _, id := range data.Deleted {
		c.tracker.Remove(id)
	}

	c.sweepCount++
	c.artifactsDeleted += len(data.Deleted)
	c.deleteFailures += data.DeleteFailures
}

// handleGetStats returns a snapshot of the coordinator state
func (c *Coordinator) handleGetStats(msg InboxMessage) {
	if msg.ResponseChan == nil {
		return
	}

	pipelines := make(map[string]PipelineState, len(c.states))
	for name, state := range c.states {
		pipelines[name] = *state
	}

	msg.ResponseChan <- StatsResponse{
		Stats: Stats{
			Pipelines:        pipelines,
			TrackedArtifacts: c.tracker.Len(),
			Sweeps:           c.sweepCount,
			ArtifactsDeleted: c.artifactsDeleted,
			DeleteFailures:   c.deleteFailures,
			Inbox:            c.inbox.Stats(),
		},
	}
}
