package exporters

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// SnapshotWriter stores export documents in a directory, one file per run.
type SnapshotWriter struct {
	Dir string
}

func NewSnapshotWriter(dir string) *SnapshotWriter {
	return &SnapshotWriter{Dir: dir}
}

func (w *SnapshotWriter) ensureDir() error {
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return nil
}

// Write saves data as weengz-air-export-<timestamp>.xml and returns the path.
func (w *SnapshotWriter) Write(data []byte, at time.Time) (string, error) {
	if err := w.ensureDir(); err != nil {
		return "", err
	}

	name := fmt.Sprintf("weengz-air-export-%s.xml", at.UTC().Format("20060102-150405"))
	path := filepath.Join(w.Dir, name)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	return path, nil
}
