package scaler

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"

	"action-classifier/domain/frame"
)

// Backend names
const (
	BackendNfnt    = "nfnt"
	BackendImaging = "imaging"
)

// ErrUnknownFilter is returned when the filter name is not supported by the backend
var ErrUnknownFilter = errors.New("unknown resize filter")

// NfntScaler scales frames with github.com/nfnt/resize
type NfntScaler struct {
	interp resize.InterpolationFunction
}

var _ frame.Scaler = (*NfntScaler)(nil)

var nfntFilters = map[string]resize.InterpolationFunction{
	"nearest":  resize.NearestNeighbor,
	"bilinear": resize.Bilinear,
	"bicubic":  resize.Bicubic,
	"mitchell": resize.MitchellNetravali,
	"lanczos":  resize.Lanczos3,
}

// NewNfnt creates an nfnt scaler; an empty filter selects bilinear
func NewNfnt(filter string) (*NfntScaler, error) {
	if filter == "" {
		filter = "bilinear"
	}
	interp, ok := nfntFilters[filter]
	if !ok {
		return nil, fmt.Errorf("%w: %q for %s", ErrUnknownFilter, filter, BackendNfnt)
	}
	return &NfntScaler{interp: interp}, nil
}

// Scale implements frame.Scaler
func (s *NfntScaler) Scale(buf *frame.Buffer, width, height int) (*frame.Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", width, height)
	}
	out := resize.Resize(uint(width), uint(height), ToImage(buf), s.interp)
	return FromImage(out, buf.Format)
}

// ImagingScaler scales frames with github.com/disintegration/imaging
type ImagingScaler struct {
	filter imaging.ResampleFilter
}

var _ frame.Scaler = (*ImagingScaler)(nil)

var imagingFilters = map[string]imaging.ResampleFilter{
	"nearest":  imaging.NearestNeighbor,
	"bilinear": imaging.Linear,
	"bicubic":  imaging.CatmullRom,
	"mitchell": imaging.MitchellNetravali,
	"lanczos":  imaging.Lanczos,
}

// NewImaging creates an imaging scaler; an empty filter selects lanczos
func NewImaging(filter string) (*ImagingScaler, error) {
	if filter == "" {
		filter = "lanczos"
	}
	f, ok := imagingFilters[filter]
	if !ok {
		return nil, fmt.Errorf("%w: %q for %s", ErrUnknownFilter, filter, BackendImaging)
	}
	return &ImagingScaler{filter: f}, nil
}

// Scale implements frame.Scaler
func (s *ImagingScaler) Scale(buf *frame.Buffer, width, height int) (*frame.Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", width, height)
	}
	var src image.Image = ToImage(buf)
	out := imaging.Resize(src, width, height, s.filter)
	return FromImage(out, buf.Format)
}

// New returns the scaler for backend
func New(backend, filter string) (frame.Scaler, error) {
	switch backend {
	case BackendNfnt, "":
		return NewNfnt(filter)
	case BackendImaging:
		return NewImaging(filter)
	default:
		return nil, fmt.Errorf("unknown resize backend %q", backend)
	}
}
