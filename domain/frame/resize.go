package frame

import (
	"fmt"
	"math"
)

const (
	// DefaultCropSize is the side of the square region the model consumes
	DefaultCropSize = 224

	// DefaultResizeTarget is the shorter side frames are scaled down to
	DefaultResizeTarget = 256
)

// Scaler defines the interface for resampling a buffer to new dimensions.
// This is a port implemented by image libraries in infrastructure.
type Scaler interface {
	Scale(buf *Buffer, width, height int) (*Buffer, error)
}

// ResizePlan is the outcome of sizing a frame for cropping
type ResizePlan struct {
	Width  int
	Height int

	// Needed is false when the frame is already within bounds and must be passed through
	Needed bool
}

// PlanResize computes the output size for a frame of width x height.
// Frames whose shorter side is below minSide are rejected; frames whose shorter side is
// above target are scaled down so that side becomes exactly target. Frames in between
// are left untouched. Upscaling never happens.
func PlanResize(width, height, minSide, target int) (ResizePlan, error) {
	shorter := width
	if height < shorter {
		shorter = height
	}

	if shorter < minSide {
		return ResizePlan{}, fmt.Errorf("%w: shorter side %d is below %d", ErrVideoFrameIsTooSmall, shorter, minSide)
	}
	if shorter <= target {
		return ResizePlan{Width: width, Height: height}, nil
	}

	scale := float64(target) / float64(shorter)
	plan := ResizePlan{
		Width:  int(math.Round(scale * float64(width))),
		Height: int(math.Round(scale * float64(height))),
		Needed: true,
	}

	// pin the shorter side so float error can never leave it at target-1
	if width <= height {
		plan.Width = target
	} else {
		plan.Height = target
	}

	return plan, nil
}

// Resizer bounds the shorter side of frames before cropping
type Resizer struct {
	scaler  Scaler
	minSide int
	target  int
}

// NewResizer creates a Resizer. minSide is the crop size, target the scaled shorter side.
func NewResizer(scaler Scaler, minSide, target int) *Resizer {
	if minSide <= 0 {
		minSide = DefaultCropSize
	}
	if target <= 0 {
		target = DefaultResizeTarget
	}
	return &Resizer{
		scaler:  scaler,
		minSide: minSide,
		target:  target,
	}
}

// Resize returns buf unchanged when no scaling is needed, otherwise a new scaled buffer
func (r *Resizer) Resize(buf *Buffer) (*Buffer, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	plan, err := PlanResize(buf.Width, buf.Height, r.minSide, r.target)
	if err != nil {
		return nil, err
	}
	if !plan.Needed {
		return buf, nil
	}

	out, err := r.scaler.Scale(buf, plan.Width, plan.Height)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResizingFailure, err)
	}
	if out == nil || out.Width != plan.Width || out.Height != plan.Height {
		return nil, fmt.Errorf("%w: scaler did not produce %dx%d", ErrResizingFailure, plan.Width, plan.Height)
	}

	return out, nil
}
