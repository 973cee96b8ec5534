package scheduler

import (
	"context"
	"time"

	"github.com/livinlefevreloca/fakeout/internal/tracker"
)

// runSweeper is the retention sweep execution unit. It never touches the
// tracker directly: each sweep asks the coordinator for the expired-artifact
// snapshot, performs the sink deletes outside the coordinator loop, and
// reports back which deletions succeeded. Failed deletes stay tracked and are
// retried on the next sweep.
func (c *Coordinator) runSweeper(ctx context.Context) {
	defer c.unitWG.Done()

	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sweep(ctx)
		}
	}
}

// sweep runs one retention pass over all tracked artifacts
func (c *Coordinator) sweep(ctx context.Context) {
	now := time.Now()

	responseChan := make(chan interface{}, 1)
	sent := c.inbox.Send(InboxMessage{
		Type:         MsgListExpired,
		Data:         ListExpiredMsg{Now: now},
		ResponseChan: responseChan,
	})
	if !sent {
		return
	}

	var expired []tracker.Artifact
	select {
	case response := <-responseChan:
		expired = response.(ExpiredArtifactsResponse).Artifacts
	case <-ctx.Done():
		return
	}

	if len(expired) == 0 {
		return
	}

	deleted := make([]string, 0, len(expired))
	failures := 0
	for _, artifact := range expired {
		s, ok := c.batchSinks[artifact.Pipeline]
		if !ok {
			// Restored from a previous run under a config that no longer
			// has this pipeline; nothing can delete its bytes anymore.
			c.logger.Warn("no sink for tracked artifact, dropping from tracking",
				"artifact_id", artifact.ID,
				"pipeline", artifact.Pipeline,
				"location", artifact.Location)
			deleted = append(deleted, artifact.ID)
			continue
		}

		if err := s.Delete(ctx, artifact.Location); err != nil {
			failures++
			c.logger.Error("artifact delete failed, will retry next sweep",
				"artifact_id", artifact.ID,
				"pipeline", artifact.Pipeline,
				"location", artifact.Location,
				"error", err)
			continue
		}

		c.logger.Info("deleted expired artifact",
			"artifact_id", artifact.ID,
			"pipeline", artifact.Pipeline,
			"location", artifact.Location,
			"age", now.Sub(artifact.CreatedAt))
		deleted = append(deleted, artifact.ID)
	}

	c.inbox.Send(InboxMessage{
		Type: MsgSweepCompleted,
		Data: SweepCompletedMsg{
			Deleted:        deleted,
			DeleteFailures: failures,
			Timestamp:      now,
		},
	})
}
