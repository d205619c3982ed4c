package tensor

import (
	"fmt"

	"action-classifier/domain/frame"
)

// CenterCrop reads the size x size region at the center of buf, normalizes it and writes
// it into frame slot frameIndex of t. Origin is (w/2 - size/2, h/2 - size/2).
// Nothing is written when buf cannot be read; the slot keeps its previous contents.
func CenterCrop(buf *frame.Buffer, t *Tensor, frameIndex int) error {
	if frameIndex < 0 || frameIndex >= t.frames {
		return fmt.Errorf("%w: slot %d of %d", ErrFrameIndexOutOfRange, frameIndex, t.frames)
	}
	if err := buf.Validate(); err != nil {
		return err
	}

	size := t.size
	if buf.ShorterSide() < size {
		return fmt.Errorf("%w: %dx%d cannot hold a %d crop", frame.ErrFrameUnreadable, buf.Width, buf.Height, size)
	}

	originX := buf.Width/2 - size/2
	originY := buf.Height/2 - size/2

	bpp := buf.Format.BytesPerPixel()
	ro, gofs, bo := buf.Format.Offsets()

	for x := 0; x < size; x++ {
		col := (originX + x) * bpp
		for y := 0; y < size; y++ {
			i := (originY+y)*buf.Stride + col
			t.SetColor(frameIndex, x, y, NewNormalizedColor(buf.Pix[i+ro], buf.Pix[i+gofs], buf.Pix[i+bo]))
		}
	}

	return nil
}
