package imagedir

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"

	"action-classifier/domain/frame"
	"action-classifier/infrastructure/scaler"
)

var extensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".gif":  true,
	".tif":  true,
	".tiff": true,
}

// Source implements frame.Source over a directory of extracted frames,
// read in lexical file name order (frame_000001.png, frame_000002.png, ...)
type Source struct {
	dir   string
	files []string
	pos   int
}

// NewSource lists the image files in dir
func NewSource(dir string) (*Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if extensions[strings.ToLower(filepath.Ext(e.Name()))] {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	return &Source{dir: dir, files: files}, nil
}

// Count implements frame.Source
func (s *Source) Count(ctx context.Context) (int, error) {
	return len(s.files), nil
}

// Next implements frame.Source. Files that fail to decode are reported as unreadable frames.
func (s *Source) Next(ctx context.Context) (*frame.Buffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.files) {
		return nil, io.EOF
	}

	path := s.files[s.pos]
	s.pos++

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", frame.ErrFrameUnreadable, filepath.Base(path), err)
	}

	return scaler.FromImage(img, frame.FormatBGRA)
}

// Reset implements frame.Source
func (s *Source) Reset(ctx context.Context) error {
	s.pos = 0
	return nil
}

// Close implements frame.Source
func (s *Source) Close() error {
	s.pos = len(s.files)
	return nil
}

// Ensure Source implements frame.Source
var _ frame.Source = (*Source)(nil)
