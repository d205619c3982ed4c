package tensor

import (
	"fmt"

	"action-classifier/domain/frame"
)

// Builder fills one segment tensor frame by frame
type Builder struct {
	tensor  *Tensor
	written int
}

// NewBuilder allocates a tensor for up to capacity frames
func NewBuilder(capacity, size int) (*Builder, error) {
	t, err := New(capacity, size)
	if err != nil {
		return nil, err
	}
	return &Builder{tensor: t}, nil
}

// Add crops buf into the next free slot. The slot counter advances only on success.
func (b *Builder) Add(buf *frame.Buffer) error {
	if b.Full() {
		return fmt.Errorf("%w: builder holds %d frames", ErrFrameIndexOutOfRange, b.Capacity())
	}
	if err := CenterCrop(buf, b.tensor, b.written); err != nil {
		return err
	}
	b.written++
	return nil
}

// Len returns the number of frames written
func (b *Builder) Len() int {
	return b.written
}

// Capacity returns the planned number of frames
func (b *Builder) Capacity() int {
	return b.tensor.frames
}

// Full returns true once every planned slot has been written
func (b *Builder) Full() bool {
	return b.written >= b.Capacity()
}

// Tensor returns the tensor shaped to the frames actually written
func (b *Builder) Tensor() (*Tensor, error) {
	if b.written == 0 {
		return nil, fmt.Errorf("%w: no frames written", ErrFrameIndexOutOfRange)
	}
	return b.tensor.Truncate(b.written)
}
