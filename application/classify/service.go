package classify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"action-classifier/domain/frame"
	"action-classifier/domain/prediction"
	"action-classifier/domain/segment"
	"action-classifier/domain/tensor"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Settings holds the pipeline's fixed dimensions
type Settings struct {
	SegmentSize int
	CropSize    int
	TopK        int
}

// DefaultSettings returns the dimensions the bundled model expects
func DefaultSettings() Settings {
	return Settings{
		SegmentSize: segment.DefaultSize,
		CropSize:    frame.DefaultCropSize,
		TopK:        prediction.DefaultTopK,
	}
}

// Observer receives per-frame and per-segment events (metrics, counters)
type Observer interface {
	FrameWritten()
	FrameDropped(reason DropReason)
	SegmentFinished(status SegmentStatus, frames int, inference time.Duration)
}

type nopObserver struct{}

func (nopObserver) FrameWritten() {}
func (nopObserver) FrameDropped(DropReason) {}
func (nopObserver) SegmentFinished(SegmentStatus, int, time.Duration) {}

// Service runs the segment pipeline over a frame source
type Service struct {
	resizer    *frame.Resizer
	classifier prediction.Classifier
	settings   Settings
	output     io.Writer
	logger     *zap.Logger
	observer   Observer
}

// Option is a functional option for configuring Service
type Option func(*Service)

// WithLogger sets the structured logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithObserver sets the event observer
func WithObserver(observer Observer) Option {
	return func(s *Service) {
		s.observer = observer
	}
}

// NewService creates a new classification service
func NewService(resizer *frame.Resizer, classifier prediction.Classifier, settings Settings, output io.Writer, opts ...Option) *Service {
	defaults := DefaultSettings()
	if settings.SegmentSize <= 0 {
		settings.SegmentSize = defaults.SegmentSize
	}
	if settings.CropSize <= 0 {
		settings.CropSize = defaults.CropSize
	}
	if settings.TopK <= 0 {
		settings.TopK = defaults.TopK
	}
	if output == nil {
		output = io.Discard
	}

	s := &Service{
		resizer:    resizer,
		classifier: classifier,
		settings:   settings,
		output:     output,
		logger:     zap.NewNop(),
		observer:   nopObserver{},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Classify counts the source's frames, rewinds it, and classifies it segment by segment.
// Frame and segment failures are recorded in the result; only an invalid frame count,
// a source that cannot be counted or rewound, or cancellation return an error.
func (s *Service) Classify(ctx context.Context, source frame.Source) (*Result, error) {
	started := time.Now()
	result := &Result{RunID: uuid.NewString()}
	logger := s.logger.With(zap.String("run_id", result.RunID))

	total, err := source.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count frames: %w", err)
	}
	result.TotalFrames = total

	segments, err := segment.Plan(total, s.settings.SegmentSize)
	if err != nil {
		return nil, err
	}

	if err := source.Reset(ctx); err != nil {
		return nil, fmt.Errorf("failed to rewind source: %w", err)
	}

	fmt.Fprintf(s.output, "Classifying %d frames in %d segment(s)...\n", total, len(segments))
	logger.Info("classification started",
		zap.Int("frames", total),
		zap.Int("segments", len(segments)),
		zap.Int("segment_size", s.settings.SegmentSize),
	)

	reader := &frameReader{source: source}
	for i, seg := range segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		outcome, err := s.classifySegment(ctx, reader, i, seg, logger)
		if err != nil {
			return nil, err
		}

		result.Segments = append(result.Segments, outcome)
		result.Predictions = result.Predictions.Append(outcome.Predictions)
		s.observer.SegmentFinished(outcome.Status, outcome.FramesWritten, outcome.InferenceTime)
		s.reportSegment(len(segments), outcome)
	}

	result.SourceErr = reader.err
	result.Duration = time.Since(started)

	logger.Info("classification finished",
		zap.Int("predictions", len(result.Predictions)),
		zap.Int("failed_segments", len(result.Failed())),
		zap.Int("frames_written", result.FramesWritten()),
		zap.Duration("duration", result.Duration),
	)

	return result, nil
}

// classifySegment fills one tensor and runs inference on it. The returned error is
// non-nil only for cancellation.
func (s *Service) classifySegment(ctx context.Context, reader *frameReader, index int, seg segment.Segment, logger *zap.Logger) (SegmentOutcome, error) {
	outcome := SegmentOutcome{
		Index:   index,
		Planned: seg,
		Dropped: make(map[DropReason]int),
	}

	builder, err := tensor.NewBuilder(seg.Count, s.settings.CropSize)
	if err != nil {
		return outcome, err
	}

	for !builder.Full() {
		buf, err := reader.next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return outcome, ctxErr
			}
			s.drop(&outcome, DropRead, err, logger)
			continue
		}

		resized, err := s.resizer.Resize(buf)
		if err != nil {
			s.drop(&outcome, DropResize, err, logger)
			continue
		}

		if err := builder.Add(resized); err != nil {
			s.drop(&outcome, DropCrop, err, logger)
			continue
		}
		s.observer.FrameWritten()
	}

	outcome.FramesWritten = builder.Len()
	if outcome.FramesWritten == 0 {
		outcome.Status = SegmentSkipped
		logger.Warn("segment skipped, no frames written",
			zap.Int("segment", index),
			zap.Stringer("planned", seg),
		)
		return outcome, nil
	}

	t, err := builder.Tensor()
	if err != nil {
		return outcome, err
	}

	inferenceStart := time.Now()
	probs, err := s.classifier.Classify(ctx, t)
	outcome.InferenceTime = time.Since(inferenceStart)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return outcome, ctxErr
		}
		outcome.Status = SegmentFailed
		outcome.Err = err
		logger.Warn("segment inference failed",
			zap.Int("segment", index),
			zap.Int("frames", outcome.FramesWritten),
			zap.Error(err),
		)
		return outcome, nil
	}

	outcome.Status = SegmentClassified
	outcome.Predictions = prediction.TopK(probs, s.settings.TopK)
	logger.Debug("segment classified",
		zap.Int("segment", index),
		zap.Int("frames", outcome.FramesWritten),
		zap.Duration("inference", outcome.InferenceTime),
	)

	return outcome, nil
}

func (s *Service) drop(outcome *SegmentOutcome, reason DropReason, err error, logger *zap.Logger) {
	outcome.Dropped[reason]++
	s.observer.FrameDropped(reason)
	logger.Debug("frame dropped",
		zap.Int("segment", outcome.Index),
		zap.String("reason", string(reason)),
		zap.Error(err),
	)
}

func (s *Service) reportSegment(total int, o SegmentOutcome) {
	prefix := fmt.Sprintf("[%d/%d] frames %s:", o.Index+1, total, o.Planned)
	switch o.Status {
	case SegmentClassified:
		top := "-"
		if len(o.Predictions) > 0 {
			top = o.Predictions[0].String()
		}
		fmt.Fprintf(s.output, "%s %d classified, top: %s\n", prefix, o.FramesWritten, top)
	case SegmentFailed:
		fmt.Fprintf(s.output, "%s inference failed: %v\n", prefix, o.Err)
	case SegmentSkipped:
		fmt.Fprintf(s.output, "%s skipped, no usable frames\n", prefix)
	}
	if dropped := o.FramesDropped(); dropped > 0 {
		fmt.Fprintf(s.output, "      Dropped %d frame(s)\n", dropped)
	}
}

// frameReader wraps a source so that once it reports end of stream or a hard error,
// later segments see io.EOF without calling the source again.
type frameReader struct {
	source frame.Source
	done   bool
	err    error
}

func (r *frameReader) next(ctx context.Context) (*frame.Buffer, error) {
	if r.done {
		return nil, io.EOF
	}

	buf, err := r.source.Next(ctx)
	switch {
	case err == nil:
		return buf, nil
	case errors.Is(err, io.EOF):
		r.done = true
		return nil, io.EOF
	case errors.Is(err, frame.ErrFrameUnreadable):
		return nil, err
	case ctx.Err() != nil:
		return nil, ctx.Err()
	default:
		r.done = true
		r.err = err
		return nil, io.EOF
	}
}
