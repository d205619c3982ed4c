package filesystem

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"action-classifier/application/classify"
	"action-classifier/domain/prediction"
)

func TestChecker(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "clip.mp4")
	os.WriteFile(file, []byte("x"), 0644)

	c := NewChecker()
	if !c.Exists(file) || c.IsDir(file) {
		t.Error("expected file to exist and not be a directory")
	}
	if !c.Exists(dir) || !c.IsDir(dir) {
		t.Error("expected directory to exist")
	}
	if c.Exists(filepath.Join(dir, "missing")) {
		t.Error("expected missing path to not exist")
	}
}

func TestReportWriter_Write(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "reports")
	w := NewReportWriter(dir)

	report := classify.Report{
		RunID:       "run-42",
		Source:      "clip.mp4",
		CreatedAt:   time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		TotalFrames: 650,
		Predictions: prediction.Predictions{{Label: "juggling", Probability: 0.9}},
	}

	path, err := w.Write(report)
	if err != nil {
		t.Fatalf("Write() unexpected error: %v", err)
	}
	if path != filepath.Join(dir, "run-42.json") {
		t.Errorf("unexpected path %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	var decoded classify.Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if decoded.RunID != "run-42" || decoded.TotalFrames != 650 || len(decoded.Predictions) != 1 {
		t.Errorf("unexpected decoded report %+v", decoded)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("expected temporary file to be gone")
	}
}

func TestReportWriter_UnwritableDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	os.WriteFile(file, []byte("x"), 0644)

	w := NewReportWriter(filepath.Join(file, "reports"))
	if _, err := w.Write(classify.Report{RunID: "r"}); err == nil {
		t.Error("expected error when directory cannot be created")
	}
}
