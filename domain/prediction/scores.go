package prediction

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

var (
	// ErrNoLabels is returned when a label list is empty
	ErrNoLabels = errors.New("label list is empty")

	// ErrScoreCount is returned when the model emits fewer scores than there are labels
	ErrScoreCount = errors.New("score count does not match labels")
)

// FromScores pairs raw model outputs with labels by index.
// When softmax is set the scores are treated as logits and exponentiated first.
func FromScores(labels []string, scores []float32, softmax bool) (Probabilities, error) {
	if len(labels) == 0 {
		return nil, ErrNoLabels
	}
	if len(scores) < len(labels) {
		return nil, fmt.Errorf("%w: %d scores for %d labels", ErrScoreCount, len(scores), len(labels))
	}

	values := make([]float64, len(labels))
	for i := range labels {
		values[i] = float64(scores[i])
	}

	if softmax {
		maxLogit := math.Inf(-1)
		for _, v := range values {
			if v > maxLogit {
				maxLogit = v
			}
		}
		var sum float64
		for i, v := range values {
			values[i] = math.Exp(v - maxLogit)
			sum += values[i]
		}
		for i := range values {
			values[i] /= sum
		}
	}

	probs := make(Probabilities, len(labels))
	for i, label := range labels {
		probs[label] = values[i]
	}
	return probs, nil
}

// ParseLabels reads a label list. A JSON array of strings is accepted, otherwise
// one label per line with blank lines and lines starting with # skipped.
func ParseLabels(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var labels []string
		if err := json.Unmarshal([]byte(trimmed), &labels); err != nil {
			return nil, fmt.Errorf("failed to parse labels: %w", err)
		}
		if len(labels) == 0 {
			return nil, ErrNoLabels
		}
		return labels, nil
	}

	var labels []string
	scanner := bufio.NewScanner(strings.NewReader(trimmed))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		labels = append(labels, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}
	if len(labels) == 0 {
		return nil, ErrNoLabels
	}

	return labels, nil
}
