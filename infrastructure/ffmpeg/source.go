package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"io"

	"action-classifier/domain/frame"
)

// ErrDecodeFailed is returned when ffmpeg exits with an error before the end of the video
var ErrDecodeFailed = errors.New("ffmpeg decode failed")

// Source implements frame.Source by decoding a video to raw BGRA frames through an ffmpeg pipe
type Source struct {
	path        string
	ffmpegPath  string
	ffprobePath string
	runner      CommandRunner

	info   *StreamInfo
	stream io.ReadCloser
	done   bool
}

// SourceOption is a functional option for configuring Source
type SourceOption func(*Source)

// WithFFmpegPath sets a custom ffmpeg executable path
func WithFFmpegPath(path string) SourceOption {
	return func(s *Source) {
		if path != "" {
			s.ffmpegPath = path
		}
	}
}

// WithFFprobePath sets a custom ffprobe executable path
func WithFFprobePath(path string) SourceOption {
	return func(s *Source) {
		if path != "" {
			s.ffprobePath = path
		}
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func WithCommandRunner(runner CommandRunner) SourceOption {
	return func(s *Source) {
		s.runner = runner
	}
}

// NewSource creates an ffmpeg-backed frame source for the video at path
func NewSource(path string, opts ...SourceOption) *Source {
	s := &Source{
		path:        path,
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
		runner:      &ExecCommandRunner{},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Count implements frame.Source. When ffprobe cannot report a count the
// source is decoded once to count frames and then rewound.
func (s *Source) Count(ctx context.Context) (int, error) {
	info, err := s.probe(ctx)
	if err != nil {
		return 0, err
	}
	if info.Frames >= 0 {
		return info.Frames, nil
	}

	n := 0
	for {
		_, err := s.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, err
		}
		n++
	}

	if err := s.Reset(ctx); err != nil {
		return 0, err
	}
	s.info.Frames = n
	return n, nil
}

// Next implements frame.Source
func (s *Source) Next(ctx context.Context) (*frame.Buffer, error) {
	if s.done {
		return nil, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := s.probe(ctx)
	if err != nil {
		return nil, err
	}

	if s.stream == nil {
		stream, err := s.runner.Start(ctx, s.ffmpegPath, s.decodeArgs()...)
		if err != nil {
			return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
		}
		s.stream = stream
	}

	buf, err := frame.NewBuffer(info.Width, info.Height, frame.FormatBGRA)
	if err != nil {
		return nil, err
	}

	if _, err := io.ReadFull(s.stream, buf.Pix); err != nil {
		// a partial trailing frame means ffmpeg stopped mid-write; the exit status
		// decides whether that was the end of the video or a decoder failure
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			s.done = true
			stream := s.stream
			s.stream = nil
			if cerr := stream.Close(); cerr != nil {
				return nil, fmt.Errorf("%w: %w", ErrDecodeFailed, cerr)
			}
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to read frame: %w", err)
	}

	return buf, nil
}

// Reset implements frame.Source by stopping the decoder; the next read restarts it
func (s *Source) Reset(ctx context.Context) error {
	s.closeStream()
	s.done = false
	return nil
}

// Close implements frame.Source
func (s *Source) Close() error {
	s.closeStream()
	s.done = true
	return nil
}

// VerifyInstalled checks that ffmpeg and ffprobe are available
func (s *Source) VerifyInstalled(ctx context.Context) error {
	for _, bin := range []string{s.ffmpegPath, s.ffprobePath} {
		if _, err := s.runner.Output(ctx, bin, "-version"); err != nil {
			return fmt.Errorf("%s not found or not executable: %w", bin, err)
		}
	}
	return nil
}

func (s *Source) probe(ctx context.Context) (StreamInfo, error) {
	if s.info != nil {
		return *s.info, nil
	}
	info, err := NewProber(s.ffprobePath, s.runner).Probe(ctx, s.path)
	if err != nil {
		return StreamInfo{}, err
	}
	s.info = &info
	return info, nil
}

func (s *Source) decodeArgs() []string {
	return []string{
		"-v", "error",
		"-i", s.path,
		"-map", "0:v:0",
		"-vsync", "passthrough", // one output frame per decoded frame
		"-f", "rawvideo",
		"-pix_fmt", "bgra",
		"-",
	}
}

func (s *Source) closeStream() {
	if s.stream != nil {
		s.stream.Close()
		s.stream = nil
	}
}

// Ensure Source implements frame.Source
var _ frame.Source = (*Source)(nil)
