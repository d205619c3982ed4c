package filesystem

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"action-classifier/application/classify"
)

// ReportWriter persists classification reports as indented JSON files
type ReportWriter struct {
	dir string
}

// NewReportWriter creates a writer for the given directory; it is created on first write
func NewReportWriter(dir string) *ReportWriter {
	return &ReportWriter{dir: dir}
}

// Write stores report as <dir>/<run id>.json and returns the file path.
// The file is written to a temporary name first so readers never see a partial report.
func (w *ReportWriter) Write(report classify.Report) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize report: %w", err)
	}
	data = append(data, '\n')

	path := filepath.Join(w.dir, report.FileName())
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	return path, nil
}
