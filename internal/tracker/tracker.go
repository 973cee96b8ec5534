// Package tracker maintains the authoritative list of live batch artifacts.
// The tracker is owned by the coordinator, which is its single writer; it is
// deliberately not synchronized. Pipeline units and the retention sweeper
// request mutations through coordinator messages, never directly.
package tracker

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/livinlefevreloca/fakeout/internal/db"
)

// Artifact is one written batch output unit subject to retention. A zero
// ExpiresAt means cleanup is disabled and the artifact is kept forever.
type Artifact struct {
	ID        string
	Pipeline  string
	Location  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// NewArtifact derives the deterministic artifact identity from the pipeline
// name and creation time, in the same pipeline:unixNano composite format used
// for log correlation.
func NewArtifact(pipeline, location string, createdAt time.Time, cleanupAfter time.Duration) Artifact {
	a := Artifact{
		ID:        fmt.Sprintf("%s:%d", pipeline, createdAt.UnixNano()),
		Pipeline:  pipeline,
		Location:  location,
		CreatedAt: createdAt,
	}
	if cleanupAfter > 0 {
		a.ExpiresAt = createdAt.Add(cleanupAfter)
	}
	return a
}

// Tracker is the in-memory artifact registry with optional write-through
// persistence, so retention resumes across restarts.
type Tracker struct {
	database  *db.DB // nil for memory-only tracking
	logger    *slog.Logger
	artifacts map[string]Artifact
}

// New creates a tracker. database may be nil to disable persistence.
func New(database *db.DB, logger *slog.Logger) *Tracker {
	return &Tracker{
		database:  database,
		logger:    logger,
		artifacts: make(map[string]Artifact),
	}
}

// Load restores artifacts persisted by a previous run and returns how many
// were restored. A nil database loads nothing.
func (t *Tracker) Load() (int, error) {
	if t.database == nil {
		return 0, nil
	}

	rows, err := t.database.ListArtifacts()
	if err != nil {
		return 0, fmt.Errorf("restore artifacts: %w", err)
	}

	for _, row := range rows {
		a := Artifact{
			ID:        row.ID,
			Pipeline:  row.Pipeline,
			Location:  row.Location,
			CreatedAt: row.CreatedAt,
		}
		if row.ExpiresAt != nil {
			a.ExpiresAt = *row.ExpiresAt
		}
		t.artifacts[a.ID] = a
	}

	return len(rows), nil
}

// Add registers a newly delivered artifact. Persistence failures are logged
// and do not drop the artifact from in-memory tracking.
func (t *Tracker) Add(a Artifact) {
	t.artifacts[a.ID] = a

	if t.database == nil {
		return
	}

	row := &db.Artifact{
		ID:        a.ID,
		Pipeline:  a.Pipeline,
		Location:  a.Location,
		CreatedAt: a.CreatedAt,
	}
	if !a.ExpiresAt.IsZero() {
		expiresAt := a.ExpiresAt
		row.ExpiresAt = &expiresAt
	}

	if err := t.database.InsertArtifact(row); err != nil {
		t.logger.Error("failed to persist artifact",
			"artifact_id", a.ID,
			"pipeline", a.Pipeline,
			"error", err)
	}
}

// Remove forgets an artifact after its bytes were deleted by the sink
func (t *Tracker) Remove(id string) {
	delete(t.artifacts, id)

	if t.database == nil {
		return
	}

	if err := t.database.DeleteArtifact(id); err != nil {
		t.logger.Error("failed to remove persisted artifact",
			"artifact_id", id,
			"error", err)
	}
}

// Expired returns the artifacts whose retention window has passed at now,
// oldest first. Artifacts with cleanup disabled are never returned.
func (t *Tracker) Expired(now time.Time) []Artifact {
	var expired []Artifact
	for _, a := range t.artifacts {
		if !a.ExpiresAt.IsZero() && !now.Before(a.ExpiresAt) {
			expired = append(expired, a)
		}
	}

	sort.Slice(expired, func(i, j int) bool {
		return expired[i].CreatedAt.Before(expired[j].CreatedAt)
	})

	return expired
}

// Live returns all tracked artifacts, oldest first
func (t *Tracker) Live() []Artifact {
	live := make([]Artifact, 0, len(t.artifacts))
	for _, a := range t.artifacts {
		live = append(live, a)
	}

	sort.Slice(live, func(i, j int) bool {
		return live[i].CreatedAt.Before(live[j].CreatedAt)
	})

	return live
}

// Len returns the number of tracked artifacts
func (t *Tracker) Len() int {
	return len(t.artifacts)
}
