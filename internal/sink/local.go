package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/livinlefevreloca/fakeout/internal/synth"
)

// LocalSink writes batch exports into a local directory. The directory can be
// served read-only over HTTP by the webserver package.
type LocalSink struct {
	dir      string
	pipeline string
	filetype string
}

// NewLocalSink creates the export directory if needed
func NewLocalSink(cfg Config, pipeline, filetype string) (*LocalSink, error) {
	if err := os.MkdirAll(cfg.Directory, 0o755); err != nil {
		return nil, fmt.Errorf("create export directory %s: %w", cfg.Directory, err)
	}

	return &LocalSink{
		dir:      cfg.Directory,
		pipeline: pipeline,
		filetype: filetype,
	}, nil
}

// Deliver writes the encoded batch to a temp file and renames it into place,
// so readers of the export directory never observe a partial file.
func (s *LocalSink) Deliver(ctx context.Context, at time.Time, batch []synth.Record) (string, error) {
	payload, err := Encode(s.filetype, batch)
	if err != nil {
		return "", fmt.Errorf("encode batch: %w", err)
	}

	target := filepath.Join(s.dir, artifactName(s.pipeline, at, s.filetype))
	tmp := target + ".tmp"

	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("rename %s: %w", target, err)
	}

	return target, nil
}

// Delete removes the export file; a missing file is treated as already deleted
func (s *LocalSink) Delete(ctx context.Context, location string) error {
	if err := os.Remove(location); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete %s: %w", location, err)
	}
	return nil
}

func (s *LocalSink) Close() error {
	return nil
}
