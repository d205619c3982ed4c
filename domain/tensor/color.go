package tensor

import "fmt"

// NormalizedColor is an RGB triple rescaled from 8-bit samples into [-1, 1]
type NormalizedColor struct {
	Red   float32
	Green float32
	Blue  float32
}

// Normalize maps an 8-bit sample c to 2*(c/255) - 1
func Normalize(c uint8) float32 {
	return float32(2*(float64(c)/255.0) - 1)
}

// NewNormalizedColor normalizes each channel independently
func NewNormalizedColor(r, g, b uint8) NormalizedColor {
	return NormalizedColor{
		Red:   Normalize(r),
		Green: Normalize(g),
		Blue:  Normalize(b),
	}
}

func (c NormalizedColor) String() string {
	return fmt.Sprintf("(%g, %g, %g)", c.Red, c.Green, c.Blue)
}
