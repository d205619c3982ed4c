package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"action-classifier/domain/prediction"
)

func TestRunLabelsWithDependencies(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "labels.txt")
	if err := os.WriteFile(path, []byte("# kinetics subset\nabseiling\nair drumming\n\narchery\n"), 0644); err != nil {
		t.Fatal(err)
	}

	output := &bytes.Buffer{}
	if err := RunLabelsWithDependencies(path, output); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := output.String()
	for _, want := range []string{"   0  abseiling", "   1  air drumming", "   2  archery", "3 label(s)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunLabelsWithDependencies_Errors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(empty, []byte("# nothing here\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := RunLabelsWithDependencies(filepath.Join(dir, "missing.txt"), &bytes.Buffer{}); err == nil {
		t.Error("expected error for missing file")
	}

	err := RunLabelsWithDependencies(empty, &bytes.Buffer{})
	if !errors.Is(err, prediction.ErrNoLabels) {
		t.Errorf("expected ErrNoLabels, got %v", err)
	}
}
