//go:build !gocv

package opencv

import (
	"context"
	"errors"
	"io"

	"action-classifier/domain/frame"
)

// ErrNotAvailable is returned when the binary was built without OpenCV
var ErrNotAvailable = errors.New("opencv source not available: build with '-tags=gocv' and install OpenCV/GoCV")

// Source is a stub when GoCV/OpenCV is not available
type Source struct{}

// NewSource returns an error indicating OpenCV is not available
func NewSource(path string) (*Source, error) {
	return nil, ErrNotAvailable
}

// Count returns an error indicating OpenCV is not available
func (s *Source) Count(ctx context.Context) (int, error) { return 0, ErrNotAvailable }

// Next returns io.EOF in stub mode
func (s *Source) Next(ctx context.Context) (*frame.Buffer, error) { return nil, io.EOF }

// Reset returns an error indicating OpenCV is not available
func (s *Source) Reset(ctx context.Context) error { return ErrNotAvailable }

// Close is a no-op in stub mode
func (s *Source) Close() error { return nil }

// Available reports whether the binary was built with OpenCV support
func Available() bool { return false }

// Ensure Source implements frame.Source
var _ frame.Source = (*Source)(nil)
