package ical

import (
	"fmt"
	"os"
	"path/filepath"
)

const Extension = ".ics"

// Writer stores calendars as <dir>/<name>.ics, replacing files atomically.
type Writer struct {
	dir string
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

func (w *Writer) Path(name string) string {
	return filepath.Join(w.dir, name+Extension)
}

// Run writes data to a temporary file next to the target and renames it
// into place, so readers never observe a partial calendar.
func (w *Writer) Run(name string, data string) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := w.Path(name)

	tmp, err := os.CreateTemp(w.dir, "."+name+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.WriteString(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write calendar: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to sync calendar: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close calendar: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return "", fmt.Errorf("failed to set calendar permissions: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return "", fmt.Errorf("failed to move calendar into place: %w", err)
	}

	return path, nil
}
