package scheduler

import (
	"context"
	"time"

	"github.com/livinlefevreloca/fakeout/internal/synth"
)

// runPipeline is the execution unit for one pipeline. Ticks are scheduled at
// absolute times (start + n*interval) so variable delivery latency never
// accumulates drift; because the loop is sequential, at most one tick is in
// flight per pipeline at any time. Cancellation is observed while waiting for
// the next tick and between synthesis and delivery; an in-flight delivery is
// left to finish or fail on its own.
func (c *Coordinator) runPipeline(ctx context.Context, p Pipeline) {
	defer c.unitWG.Done()
	defer func() {
		if err := p.Sink.Close(); err != nil {
			c.logger.Warn("failed to close sink",
				"pipeline", p.Name,
				"error", err)
		}
		c.inbox.Send(InboxMessage{
			Type: MsgPipelineStopped,
			Data: PipelineStoppedMsg{
				Pipeline:  p.Name,
				Timestamp: time.Now(),
			},
		})
	}()

	seed := p.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gen := synth.New(seed)

	start := time.Now()
	for n := 1; ; n++ {
		next := start.Add(time.Duration(n) * p.Interval)

		wait := time.Until(next)
		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		} else {
			// The previous delivery overran the interval. Fire now instead
			// of queueing overlapping ticks; the absolute schedule keeps
			// later ticks on their original times.
			c.logger.Warn("tick overrun",
				"pipeline", p.Name,
				"tick", n,
				"behind", -wait)
			if ctx.Err() != nil {
				return
			}
		}

		c.tick(ctx, p, gen, n)
	}
}

// tick runs one synthesize-and-deliver cycle
func (c *Coordinator) tick(ctx context.Context, p Pipeline, gen *synth.Generator, n int) {
	c.reportState(p.Name, PipelineTicking)

	now := time.Now()
	batch := gen.Generate(p.Schema, p.Size, now)

	// Do not start a delivery that is already abandoned
	if ctx.Err() != nil {
		return
	}

	c.reportState(p.Name, PipelineDelivering)

	location, err := p.Sink.Deliver(ctx, now, batch)
	if err != nil {
		c.logger.Error("tick delivery failed",
			"pipeline", p.Name,
			"tick", n,
			"tick_at", now,
			"error", err)
		c.inbox.Send(InboxMessage{
			Type: MsgTickFailed,
			Data: TickFailedMsg{
				Pipeline:  p.Name,
				Timestamp: now,
				Error:     err,
			},
		})
		return
	}

	c.inbox.Send(InboxMessage{
		Type: MsgTickDelivered,
		Data: TickDeliveredMsg{
			Pipeline:  p.Name,
			Kind:      p.Kind,
			Records:   len(batch),
			Location:  location,
			Timestamp: now,
		},
	})
}

// reportState notifies the coordinator of a mid-tick state transition
func (c *Coordinator) reportState(pipeline string, status PipelineStatus) {
	c.inbox.Send(InboxMessage{
		Type: MsgPipelineStateChange,
		Data: PipelineStateChangeMsg{
			Pipeline:  pipeline,
			NewStatus: status,
			Timestamp: time.Now(),
		},
	})
}
