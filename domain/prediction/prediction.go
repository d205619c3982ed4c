package prediction

import (
	"fmt"
	"sort"
)

// DefaultTopK is the number of labels kept per segment
const DefaultTopK = 5

// Prediction pairs a class label with the model's probability for it
type Prediction struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

func (p Prediction) String() string {
	return fmt.Sprintf("%s (%.4f)", p.Label, p.Probability)
}

// Predictions is an ordered list of predictions
type Predictions []Prediction

// Labels returns the labels in order
func (ps Predictions) Labels() []string {
	labels := make([]string, len(ps))
	for i, p := range ps {
		labels[i] = p.Label
	}
	return labels
}

// Append returns ps followed by block. Blocks are concatenated, never re-ranked.
func (ps Predictions) Append(block Predictions) Predictions {
	return append(ps, block...)
}

// Probabilities maps class labels to the model's output probability
type Probabilities map[string]float64

// TopK returns the k most probable labels in descending order of probability.
// Equal probabilities are ordered by label ascending. Fewer than k entries returns all.
func TopK(p Probabilities, k int) Predictions {
	if k <= 0 || len(p) == 0 {
		return Predictions{}
	}

	all := make(Predictions, 0, len(p))
	for label, prob := range p {
		all = append(all, Prediction{Label: label, Probability: prob})
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].Probability != all[j].Probability {
			return all[i].Probability > all[j].Probability
		}
		return all[i].Label < all[j].Label
	})

	if len(all) > k {
		all = all[:k]
	}
	return all
}
