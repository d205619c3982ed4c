package prediction

import (
	"context"

	"action-classifier/domain/tensor"
)

// Classifier defines the interface for running the model on a segment tensor.
// This is a port that can be implemented by different inference runtimes.
type Classifier interface {
	// Classify returns the probability of every class label for the segment
	Classify(ctx context.Context, t *tensor.Tensor) (Probabilities, error)
}
