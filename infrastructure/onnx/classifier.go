//go:build onnx

package onnx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"action-classifier/domain/prediction"
	"action-classifier/domain/tensor"
)

// Classifier implements prediction.Classifier with an ONNX Runtime session.
// The input frame dimension is dynamic, so the input tensor is created per call
// while the [1, labels] output tensor is reused.
type Classifier struct {
	mu      sync.Mutex
	session *ort.DynamicAdvancedSession
	output  *ort.Tensor[float32]
	labels  []string
	softmax bool
}

// NewClassifier loads the model and prepares a session
func NewClassifier(cfg Config, labels []string) (*Classifier, error) {
	if len(labels) == 0 {
		return nil, prediction.ErrNoLabels
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("model not found: %w", err)
	}
	if err := initializeEnvironment(cfg.SharedLibraryPath); err != nil {
		return nil, err
	}

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(len(labels))))
	if err != nil {
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{cfg.InputName}, []string{cfg.OutputName}, nil)
	if err != nil {
		output.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &Classifier{
		session: session,
		output:  output,
		labels:  labels,
		softmax: cfg.ApplySoftmax,
	}, nil
}

// Classify implements prediction.Classifier
func (c *Classifier) Classify(ctx context.Context, t *tensor.Tensor) (prediction.Probabilities, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return nil, errors.New("classifier is closed")
	}

	input, err := ort.NewTensor(ort.NewShape(t.Shape()...), t.Data())
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer input.Destroy()

	if err := c.session.Run([]ort.ArbitraryTensor{input}, []ort.ArbitraryTensor{c.output}); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	return prediction.FromScores(c.labels, c.output.GetData(), c.softmax)
}

// Labels returns the labels in output order
func (c *Classifier) Labels() []string {
	return c.labels
}

// Close releases the session and output tensor
func (c *Classifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.output != nil {
		c.output.Destroy()
		c.output = nil
	}
	if c.session != nil {
		c.session.Destroy()
		c.session = nil
	}
	return nil
}

// Available reports whether the binary was built with ONNX Runtime support
func Available() bool { return true }

var envOnce sync.Once
var envErr error

func initializeEnvironment(libraryPath string) error {
	envOnce.Do(func() {
		if libraryPath == "" {
			libraryPath = findSharedLibrary()
		}
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		if !ort.IsInitialized() {
			if err := ort.InitializeEnvironment(); err != nil {
				envErr = fmt.Errorf("failed to initialize ONNX environment: %w", err)
			}
		}
	})
	return envErr
}

func findSharedLibrary() string {
	var candidates []string
	switch runtime.GOOS {
	case "linux":
		candidates = []string{
			"/usr/local/lib/libonnxruntime.so",
			"/usr/lib/libonnxruntime.so",
			"/opt/onnxruntime/lib/libonnxruntime.so",
		}
	case "darwin":
		candidates = []string{
			"/opt/homebrew/lib/libonnxruntime.dylib",
			"/usr/local/lib/libonnxruntime.dylib",
		}
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Ensure Classifier implements prediction.Classifier
var _ prediction.Classifier = (*Classifier)(nil)
