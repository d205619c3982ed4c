//go:build !onnx

package onnx

import (
	"context"
	"errors"
	"testing"
)

func TestNewClassifier_StubReportsUnavailable(t *testing.T) {
	if Available() {
		t.Fatal("expected stub build to report ONNX Runtime unavailable")
	}
	if _, err := NewClassifier(Config{}, []string{"a"}); !errors.Is(err, ErrNotAvailable) {
		t.Errorf("expected ErrNotAvailable, got %v", err)
	}
	var c Classifier
	if _, err := c.Classify(context.Background(), nil); !errors.Is(err, ErrNotAvailable) {
		t.Errorf("expected ErrNotAvailable, got %v", err)
	}
}
