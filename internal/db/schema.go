package db

import "time"

// Artifact is one durable batch output unit tracked for retention. ExpiresAt
// is nil when cleanup is disabled for the pipeline that produced it.
type Artifact struct {
	ID        string
	Pipeline  string
	Location  string
	CreatedAt time.Time
	ExpiresAt *time.Time
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS artifacts (
    id         TEXT PRIMARY KEY,
    pipeline   TEXT NOT NULL,
    location   TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    expires_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_artifacts_pipeline ON artifacts (pipeline);
CREATE INDEX IF NOT EXISTS idx_artifacts_expires_at ON artifacts (expires_at);
`

// EnsureSchema creates the artifact table on first open. A single table does
// not warrant versioned migrations.
func (db *DB) EnsureSchema() error {
	_, err := db.Exec(schemaSQL)
	return err
}
