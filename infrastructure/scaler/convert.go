package scaler

import (
	"image"
	"image/color"

	"action-classifier/domain/frame"
)

// ToImage copies buf into an opaque NRGBA image
func ToImage(buf *frame.Buffer) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, buf.Width, buf.Height))
	for y := 0; y < buf.Height; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < buf.Width; x++ {
			r, g, b := buf.RGB(x, y)
			i := x * 4
			row[i], row[i+1], row[i+2], row[i+3] = r, g, b, 0xff
		}
	}
	return img
}

// FromImage copies img into a new buffer of the given pixel format
func FromImage(img image.Image, format frame.PixelFormat) (*frame.Buffer, error) {
	bounds := img.Bounds()
	buf, err := frame.NewBuffer(bounds.Dx(), bounds.Dy(), format)
	if err != nil {
		return nil, err
	}

	if nrgba, ok := img.(*image.NRGBA); ok {
		for y := 0; y < buf.Height; y++ {
			row := nrgba.Pix[(y+bounds.Min.Y-nrgba.Rect.Min.Y)*nrgba.Stride+(bounds.Min.X-nrgba.Rect.Min.X)*4:]
			for x := 0; x < buf.Width; x++ {
				i := x * 4
				buf.SetRGB(x, y, row[i], row[i+1], row[i+2])
			}
		}
		return buf, nil
	}

	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			buf.SetRGB(x, y, c.R, c.G, c.B)
		}
	}
	return buf, nil
}
