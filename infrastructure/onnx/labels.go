package onnx

import (
	"fmt"
	"os"

	"action-classifier/domain/prediction"
)

// Config holds the model settings for the ONNX classifier
type Config struct {
	ModelPath         string
	InputName         string
	OutputName        string
	ApplySoftmax      bool
	SharedLibraryPath string
}

// LoadLabels reads the label file that maps output indexes to action names
func LoadLabels(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open labels file: %w", err)
	}
	defer f.Close()

	labels, err := prediction.ParseLabels(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse labels file %s: %w", path, err)
	}
	return labels, nil
}
