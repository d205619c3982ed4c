package classify

import (
	"time"

	"action-classifier/domain/prediction"
	"action-classifier/domain/segment"
)

// SegmentStatus describes how a segment finished
type SegmentStatus string

const (
	// SegmentClassified indicates inference succeeded and predictions were kept
	SegmentClassified SegmentStatus = "classified"

	// SegmentFailed indicates inference returned an error; the segment contributes nothing
	SegmentFailed SegmentStatus = "failed"

	// SegmentSkipped indicates no frame could be written, so inference never ran
	SegmentSkipped SegmentStatus = "skipped"
)

// DropReason explains why a frame was left out of its segment
type DropReason string

const (
	// DropResize indicates the frame was too small or the scaler failed
	DropResize DropReason = "resize"

	// DropCrop indicates the resized frame could not be read for cropping
	DropCrop DropReason = "crop"

	// DropRead indicates the source could not decode the frame
	DropRead DropReason = "read"
)

// SegmentOutcome records what happened to one planned segment
type SegmentOutcome struct {
	// Index is the segment's position in the plan
	Index int

	// Planned is the segment as planned from the total frame count
	Planned segment.Segment

	Status SegmentStatus

	// FramesWritten is the frame dimension of the tensor handed to inference
	FramesWritten int

	// Dropped counts frames left out, by reason
	Dropped map[DropReason]int

	// Predictions holds the segment's top-K block (empty unless classified)
	Predictions prediction.Predictions

	// InferenceTime is how long the classifier took
	InferenceTime time.Duration

	// Err is the inference error for failed segments
	Err error
}

// FramesDropped returns the total number of dropped frames
func (o SegmentOutcome) FramesDropped() int {
	total := 0
	for _, n := range o.Dropped {
		total += n
	}
	return total
}

// Result is the outcome of classifying one video
type Result struct {
	// RunID identifies this classification run in logs and reports
	RunID string

	// TotalFrames is the frame count reported by the source
	TotalFrames int

	Segments []SegmentOutcome

	// Predictions is every classified segment's top-K block, in segment order
	Predictions prediction.Predictions

	// SourceErr is set when the source stopped with an error other than end of stream
	SourceErr error

	Duration time.Duration
}

// Failed returns the segments whose inference failed
func (r *Result) Failed() []SegmentOutcome {
	var failed []SegmentOutcome
	for _, o := range r.Segments {
		if o.Status == SegmentFailed {
			failed = append(failed, o)
		}
	}
	return failed
}

// FramesWritten returns the number of frames classified across all segments
func (r *Result) FramesWritten() int {
	total := 0
	for _, o := range r.Segments {
		total += o.FramesWritten
	}
	return total
}
