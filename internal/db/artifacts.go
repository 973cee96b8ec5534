package db

import (
	"database/sql"
	"fmt"
	"time"
)

// InsertArtifact records a newly delivered batch artifact
func (db *DB) InsertArtifact(a *Artifact) error {
	query := `
		INSERT INTO artifacts (id, pipeline, location, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
	`

	var expiresAt sql.NullTime
	if a.ExpiresAt != nil {
		expiresAt = sql.NullTime{Time: *a.ExpiresAt, Valid: true}
	}

	_, err := db.Exec(query, a.ID, a.Pipeline, a.Location, a.CreatedAt, expiresAt)
	if err != nil {
		return fmt.Errorf("insert artifact %s: %w", a.ID, err)
	}

	return nil
}

// DeleteArtifact removes an artifact from tracking after its bytes were
// deleted by the sink
func (db *DB) DeleteArtifact(id string) error {
	_, err := db.Exec(`DELETE FROM artifacts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete artifact %s: %w", id, err)
	}

	return nil
}

// GetArtifact retrieves a tracked artifact by ID
func (db *DB) GetArtifact(id string) (*Artifact, error) {
	query := `
		SELECT id, pipeline, location, created_at, expires_at
		FROM artifacts
		WHERE id = ?
	`

	a, err := scanArtifact(db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get artifact %s: %w", id, err)
	}

	return a, nil
}

// ListArtifacts returns all tracked artifacts ordered by creation time
func (db *DB) ListArtifacts() ([]*Artifact, error) {
	query := `
		SELECT id, pipeline, location, created_at, expires_at
		FROM artifacts
		ORDER BY created_at
	`

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []*Artifact
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, fmt.Errorf("list artifacts: %w", err)
		}
		artifacts = append(artifacts, a)
	}

	return artifacts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArtifact(row rowScanner) (*Artifact, error) {
	a := &Artifact{}
	var createdAt time.Time
	var expiresAt sql.NullTime

	if err := row.Scan(&a.ID, &a.Pipeline, &a.Location, &createdAt, &expiresAt); err != nil {
		return nil, err
	}

	a.CreatedAt = createdAt
	if expiresAt.Valid {
		t := expiresAt.Time
		a.ExpiresAt = &t
	}

	return a, nil
}
