package frame

import "errors"

var (
	// ErrVideoFrameIsTooSmall is returned when a frame's shorter side is below the crop size
	ErrVideoFrameIsTooSmall = errors.New("video frame is too small")

	// ErrResizingFailure is returned when a scaler cannot produce the resized buffer
	ErrResizingFailure = errors.New("resizing failure")

	// ErrFrameUnreadable is returned when a buffer's pixels cannot be read
	ErrFrameUnreadable = errors.New("frame buffer is unreadable")

	// ErrUnsupportedPixelFormat is returned for pixel formats without a channel mapping
	ErrUnsupportedPixelFormat = errors.New("unsupported pixel format")
)
