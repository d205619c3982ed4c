package frame

import "fmt"

// PixelFormat describes the channel order of interleaved 8-bit samples
type PixelFormat string

const (
	// FormatBGRA is 4 bytes per pixel: blue, green, red, alpha
	FormatBGRA PixelFormat = "bgra"

	// FormatRGBA is 4 bytes per pixel: red, green, blue, alpha
	FormatRGBA PixelFormat = "rgba"

	// FormatBGR24 is 3 bytes per pixel: blue, green, red
	FormatBGR24 PixelFormat = "bgr24"

	// FormatRGB24 is 3 bytes per pixel: red, green, blue
	FormatRGB24 PixelFormat = "rgb24"
)

// channelLayout holds bytes per pixel and the red/green/blue byte offsets within a pixel
type channelLayout struct {
	bytesPerPixel int
	r, g, b       int
}

var layouts = map[PixelFormat]channelLayout{
	FormatBGRA:  {bytesPerPixel: 4, r: 2, g: 1, b: 0},
	FormatRGBA:  {bytesPerPixel: 4, r: 0, g: 1, b: 2},
	FormatBGR24: {bytesPerPixel: 3, r: 2, g: 1, b: 0},
	FormatRGB24: {bytesPerPixel: 3, r: 0, g: 1, b: 2},
}

// Valid returns true if the format has a known channel layout
func (f PixelFormat) Valid() bool {
	_, ok := layouts[f]
	return ok
}

// BytesPerPixel returns the number of bytes a single pixel occupies
func (f PixelFormat) BytesPerPixel() int {
	return layouts[f].bytesPerPixel
}

// Offsets returns the byte offsets of the red, green and blue samples within a pixel
func (f PixelFormat) Offsets() (r, g, b int) {
	l := layouts[f]
	return l.r, l.g, l.b
}

// Buffer is a rectangular grid of interleaved color samples.
// Stride is the number of bytes per row and may exceed Width*BytesPerPixel.
type Buffer struct {
	Width  int
	Height int
	Stride int
	Format PixelFormat
	Pix    []byte
}

// NewBuffer allocates a zeroed buffer with a tightly packed stride
func NewBuffer(width, height int, format PixelFormat) (*Buffer, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPixelFormat, format)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid buffer dimensions %dx%d", width, height)
	}

	stride := width * format.BytesPerPixel()
	return &Buffer{
		Width:  width,
		Height: height,
		Stride: stride,
		Format: format,
		Pix:    make([]byte, stride*height),
	}, nil
}

// Validate checks that the pixel slice covers every row the dimensions describe
func (b *Buffer) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil buffer", ErrFrameUnreadable)
	}
	if !b.Format.Valid() {
		return fmt.Errorf("%w: %q", ErrUnsupportedPixelFormat, b.Format)
	}
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrFrameUnreadable, b.Width, b.Height)
	}

	rowBytes := b.Width * b.Format.BytesPerPixel()
	if b.Stride < rowBytes {
		return fmt.Errorf("%w: stride %d shorter than row %d", ErrFrameUnreadable, b.Stride, rowBytes)
	}
	if need := (b.Height-1)*b.Stride + rowBytes; len(b.Pix) < need {
		return fmt.Errorf("%w: have %d bytes, need %d", ErrFrameUnreadable, len(b.Pix), need)
	}

	return nil
}

// ShorterSide returns min(Width, Height)
func (b *Buffer) ShorterSide() int {
	if b.Width < b.Height {
		return b.Width
	}
	return b.Height
}

// RGB returns the red, green and blue samples at column x, row y.
// The caller is responsible for bounds.
func (b *Buffer) RGB(x, y int) (r, g, bl uint8) {
	ro, gofs, bo := b.Format.Offsets()
	i := y*b.Stride + x*b.Format.BytesPerPixel()
	return b.Pix[i+ro], b.Pix[i+gofs], b.Pix[i+bo]
}

// SetRGB writes a pixel at column x, row y. Alpha, when present, is set opaque.
func (b *Buffer) SetRGB(x, y int, r, g, bl uint8) {
	ro, gofs, bo := b.Format.Offsets()
	bpp := b.Format.BytesPerPixel()
	i := y*b.Stride + x*bpp
	b.Pix[i+ro] = r
	b.Pix[i+gofs] = g
	b.Pix[i+bo] = bl
	if bpp == 4 {
		b.Pix[i+3] = 0xff
	}
}

// Fill paints the whole buffer with a single color
func (b *Buffer) Fill(r, g, bl uint8) {
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			b.SetRGB(x, y, r, g, bl)
		}
	}
}
