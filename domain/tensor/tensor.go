package tensor

import (
	"errors"
	"fmt"
)

// Channels is the number of color channels per position (red, green, blue)
const Channels = 3

// ErrFrameIndexOutOfRange is returned when a write targets a frame slot the tensor does not have
var ErrFrameIndexOutOfRange = errors.New("frame index out of range")

// Tensor is a dense float32 container of logical shape [1, frames, size, size, 3].
// Element [0, f, x, y, c] lives at ((f*size+x)*size+y)*3+c.
type Tensor struct {
	frames int
	size   int
	data   []float32
}

// New allocates a zeroed tensor for the given frame count and crop size
func New(frames, size int) (*Tensor, error) {
	if frames <= 0 {
		return nil, fmt.Errorf("tensor frame count must be positive, got %d", frames)
	}
	if size <= 0 {
		return nil, fmt.Errorf("tensor crop size must be positive, got %d", size)
	}

	return &Tensor{
		frames: frames,
		size:   size,
		data:   make([]float32, frames*size*size*Channels),
	}, nil
}

// Frames returns the frame dimension
func (t *Tensor) Frames() int {
	return t.frames
}

// Size returns the spatial side length
func (t *Tensor) Size() int {
	return t.size
}

// Shape returns the logical 5-D shape
func (t *Tensor) Shape() []int64 {
	return []int64{1, int64(t.frames), int64(t.size), int64(t.size), Channels}
}

// Data returns the backing slice in row-major order
func (t *Tensor) Data() []float32 {
	return t.data
}

func (t *Tensor) offset(f, x, y, c int) int {
	return ((f*t.size+x)*t.size+y)*Channels + c
}

// At returns element [0, f, x, y, c]
func (t *Tensor) At(f, x, y, c int) float32 {
	return t.data[t.offset(f, x, y, c)]
}

// Set writes element [0, f, x, y, c]
func (t *Tensor) Set(f, x, y, c int, v float32) {
	t.data[t.offset(f, x, y, c)] = v
}

// SetColor writes the three channels at [0, f, x, y, 0..2]
func (t *Tensor) SetColor(f, x, y int, col NormalizedColor) {
	i := t.offset(f, x, y, 0)
	t.data[i] = col.Red
	t.data[i+1] = col.Green
	t.data[i+2] = col.Blue
}

// Truncate returns a tensor over the first n frames. The data is shared, not copied.
func (t *Tensor) Truncate(n int) (*Tensor, error) {
	if n <= 0 || n > t.frames {
		return nil, fmt.Errorf("%w: cannot truncate %d frames to %d", ErrFrameIndexOutOfRange, t.frames, n)
	}
	if n == t.frames {
		return t, nil
	}

	return &Tensor{
		frames: n,
		size:   t.size,
		data:   t.data[:n*t.size*t.size*Channels],
	}, nil
}
