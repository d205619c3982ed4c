package segment

import (
	"errors"
	"fmt"
)

// DefaultSize is the maximum number of frames classified together
const DefaultSize = 300

// ErrUnsupportedFrameCount is returned for negative frame counts or non-positive segment sizes
var ErrUnsupportedFrameCount = errors.New("unsupported frame count")

// Segment is a run of consecutive frames classified as one unit
type Segment struct {
	// Start is the index of the first frame
	Start int

	// Count is the number of frames in the segment
	Count int
}

// End returns the index one past the last frame
func (s Segment) End() int {
	return s.Start + s.Count
}

func (s Segment) String() string {
	return fmt.Sprintf("[%d, %d)", s.Start, s.End())
}

// Plan splits total frames into ceil(total/size) consecutive segments of at most size frames.
// Zero frames yields zero segments.
func Plan(total, size int) ([]Segment, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: segment size %d", ErrUnsupportedFrameCount, size)
	}
	if total < 0 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedFrameCount, total)
	}

	n := (total + size - 1) / size
	segments := make([]Segment, 0, n)
	for i := 0; i < n; i++ {
		start := i * size
		count := size
		if remaining := total - start; remaining < size {
			count = remaining
		}
		segments = append(segments, Segment{Start: start, Count: count})
	}

	return segments, nil
}
