//go:build !onnx

package onnx

import (
	"context"
	"errors"

	"action-classifier/domain/prediction"
	"action-classifier/domain/tensor"
)

// ErrNotAvailable is returned when the binary was built without ONNX Runtime
var ErrNotAvailable = errors.New("onnx classifier not available: build with '-tags=onnx' and install ONNX Runtime")

// Classifier is a stub when ONNX Runtime is not available
type Classifier struct {
	labels []string
}

// NewClassifier returns an error indicating ONNX Runtime is not available
func NewClassifier(cfg Config, labels []string) (*Classifier, error) {
	return nil, ErrNotAvailable
}

// Classify returns an error indicating ONNX Runtime is not available
func (c *Classifier) Classify(ctx context.Context, t *tensor.Tensor) (prediction.Probabilities, error) {
	return nil, ErrNotAvailable
}

// Labels returns the labels in output order
func (c *Classifier) Labels() []string { return c.labels }

// Close is a no-op in stub mode
func (c *Classifier) Close() error { return nil }

// Available reports whether the binary was built with ONNX Runtime support
func Available() bool { return false }

// Ensure Classifier implements prediction.Classifier
var _ prediction.Classifier = (*Classifier)(nil)
