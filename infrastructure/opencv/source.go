//go:build gocv

package opencv

import (
	"context"
	"fmt"
	"io"
	"os"

	"gocv.io/x/gocv"

	"action-classifier/domain/frame"
)

// Source implements frame.Source using an OpenCV VideoCapture
type Source struct {
	path    string
	capture *gocv.VideoCapture
	mat     gocv.Mat
	done    bool
}

// NewSource opens the video at path
func NewSource(path string) (*Source, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("video not found: %w", err)
	}

	s := &Source{path: path, mat: gocv.NewMat()}
	if err := s.open(); err != nil {
		s.mat.Close()
		return nil, err
	}
	return s, nil
}

func (s *Source) open() error {
	capture, err := gocv.VideoCaptureFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to open video: %w", err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return fmt.Errorf("failed to open video: %s", s.path)
	}
	s.capture = capture
	s.done = false
	return nil
}

// Count implements frame.Source. CAP_PROP_FRAME_COUNT is an estimate for
// some containers, so when it is unavailable the video is read once and rewound.
func (s *Source) Count(ctx context.Context) (int, error) {
	if n := int(s.capture.Get(gocv.VideoCaptureFrameCount)); n > 0 {
		return n, nil
	}

	n := 0
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if !s.capture.Read(&s.mat) || s.mat.Empty() {
			break
		}
		n++
	}

	if err := s.Reset(ctx); err != nil {
		return 0, err
	}
	return n, nil
}

// Next implements frame.Source
func (s *Source) Next(ctx context.Context) (*frame.Buffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.done || s.capture == nil {
		return nil, io.EOF
	}

	if !s.capture.Read(&s.mat) || s.mat.Empty() {
		s.done = true
		return nil, io.EOF
	}

	format := frame.FormatBGR24
	switch s.mat.Channels() {
	case 3:
	case 4:
		format = frame.FormatBGRA
	default:
		return nil, fmt.Errorf("%w: %d channel frame", frame.ErrFrameUnreadable, s.mat.Channels())
	}

	buf := &frame.Buffer{
		Width:  s.mat.Cols(),
		Height: s.mat.Rows(),
		Stride: s.mat.Cols() * format.BytesPerPixel(),
		Format: format,
		Pix:    s.mat.ToBytes(),
	}
	if err := buf.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", frame.ErrFrameUnreadable, err)
	}
	return buf, nil
}

// Reset implements frame.Source by reopening the capture; seeking is unreliable across codecs
func (s *Source) Reset(ctx context.Context) error {
	if s.capture != nil {
		s.capture.Close()
		s.capture = nil
	}
	return s.open()
}

// Close implements frame.Source
func (s *Source) Close() error {
	if s.capture != nil {
		s.capture.Close()
		s.capture = nil
	}
	s.mat.Close()
	s.done = true
	return nil
}

// Available reports whether the binary was built with OpenCV support
func Available() bool { return true }

// Ensure Source implements frame.Source
var _ frame.Source = (*Source)(nil)
