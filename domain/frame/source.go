package frame

import "context"

// Source defines the interface for a sequential, resettable frame reader.
// This is a port implemented by decoder adapters (ffmpeg, gocv, image directories).
type Source interface {
	// Count returns the total number of frames the source will yield
	Count(ctx context.Context) (int, error)

	// Next returns the next frame, or io.EOF once the stream is exhausted.
	// Errors wrapping ErrFrameUnreadable affect only that frame; reading may continue.
	Next(ctx context.Context) (*Buffer, error)

	// Reset rewinds the source so the next call to Next yields the first frame
	Reset(ctx context.Context) error

	// Close releases decoder resources
	Close() error
}
