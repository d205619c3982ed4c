package frame

import (
	"errors"
	"math"
	"testing"
)

// mockScaler implements Scaler for testing
type mockScaler struct {
	calls      int
	shouldFail bool
	failError  error
	wrongSize  bool
}

func (m *mockScaler) Scale(buf *Buffer, width, height int) (*Buffer, error) {
	m.calls++
	if m.shouldFail {
		return nil, m.failError
	}
	if m.wrongSize {
		width++
	}
	return NewBuffer(width, height, buf.Format)
}

func TestPlanResize(t *testing.T) {
	tests := []struct {
		name       string
		width      int
		height     int
		wantWidth  int
		wantHeight int
		wantNeeded bool
		wantErr    error
	}{
		{
			name:    "shorter side 200 is too small",
			width:   300,
			height:  200,
			wantErr: ErrVideoFrameIsTooSmall,
		},
		{
			name:    "shorter side 223 is too small",
			width:   223,
			height:  400,
			wantErr: ErrVideoFrameIsTooSmall,
		},
		{
			name:       "shorter side 224 passes through",
			width:      224,
			height:     300,
			wantWidth:  224,
			wantHeight: 300,
		},
		{
			name:       "shorter side 256 passes through",
			width:      256,
			height:     340,
			wantWidth:  256,
			wantHeight: 340,
		},
		{
			name:       "shorter side 512 halves",
			width:      512,
			height:     1024,
			wantWidth:  256,
			wantHeight: 512,
			wantNeeded: true,
		},
		{
			name:       "1080p landscape",
			width:      1920,
			height:     1080,
			wantWidth:  455,
			wantHeight: 256,
			wantNeeded: true,
		},
		{
			name:       "portrait 720x1280",
			width:      720,
			height:     1280,
			wantWidth:  256,
			wantHeight: 455,
			wantNeeded: true,
		},
		{
			name:       "square 257",
			width:      257,
			height:     257,
			wantWidth:  256,
			wantHeight: 256,
			wantNeeded: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PlanResize(tt.width, tt.height, DefaultCropSize, DefaultResizeTarget)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("PlanResize(%d, %d) error = %v, want %v", tt.width, tt.height, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("PlanResize(%d, %d) unexpected error: %v", tt.width, tt.height, err)
			}

			if got.Width != tt.wantWidth || got.Height != tt.wantHeight || got.Needed != tt.wantNeeded {
				t.Errorf("PlanResize(%d, %d) = %+v, want %dx%d needed=%v",
					tt.width, tt.height, got, tt.wantWidth, tt.wantHeight, tt.wantNeeded)
			}
		})
	}
}

func TestPlanResize_PreservesAspectRatio(t *testing.T) {
	for _, dims := range [][2]int{{512, 768}, {1920, 1080}, {640, 480}, {3840, 2160}, {1000, 300}} {
		plan, err := PlanResize(dims[0], dims[1], DefaultCropSize, DefaultResizeTarget)
		if err != nil {
			t.Fatalf("PlanResize(%v) unexpected error: %v", dims, err)
		}

		shorter := plan.Width
		if plan.Height < shorter {
			shorter = plan.Height
		}
		if shorter != DefaultResizeTarget {
			t.Errorf("PlanResize(%v) shorter side = %d, want %d", dims, shorter, DefaultResizeTarget)
		}

		in := float64(dims[0]) / float64(dims[1])
		out := float64(plan.Width) / float64(plan.Height)
		// one pixel of rounding on the longer side
		tolerance := 1.0 / float64(DefaultResizeTarget)
		if math.Abs(in-out) > tolerance*math.Max(in, 1) {
			t.Errorf("PlanResize(%v) aspect = %.4f, want %.4f", dims, out, in)
		}
	}
}

func TestResizer_Resize(t *testing.T) {
	t.Run("returns input unchanged at 256", func(t *testing.T) {
		scaler := &mockScaler{}
		r := NewResizer(scaler, DefaultCropSize, DefaultResizeTarget)
		buf, _ := NewBuffer(256, 300, FormatBGRA)

		got, err := r.Resize(buf)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != buf {
			t.Error("expected the same buffer to be returned")
		}
		if scaler.calls != 0 {
			t.Errorf("expected scaler not to be called, got %d calls", scaler.calls)
		}
	})

	t.Run("scales 512 down to 256", func(t *testing.T) {
		scaler := &mockScaler{}
		r := NewResizer(scaler, DefaultCropSize, DefaultResizeTarget)
		buf, _ := NewBuffer(512, 640, FormatBGRA)

		got, err := r.Resize(buf)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Width != 256 || got.Height != 320 {
			t.Errorf("expected 256x320, got %dx%d", got.Width, got.Height)
		}
	})

	t.Run("rejects small frames", func(t *testing.T) {
		r := NewResizer(&mockScaler{}, DefaultCropSize, DefaultResizeTarget)
		buf, _ := NewBuffer(200, 300, FormatBGRA)

		if _, err := r.Resize(buf); !errors.Is(err, ErrVideoFrameIsTooSmall) {
			t.Errorf("expected ErrVideoFrameIsTooSmall, got %v", err)
		}
	})

	t.Run("wraps scaler failure", func(t *testing.T) {
		scaler := &mockScaler{shouldFail: true, failError: errors.New("out of memory")}
		r := NewResizer(scaler, DefaultCropSize, DefaultResizeTarget)
		buf, _ := NewBuffer(600, 600, FormatBGRA)

		_, err := r.Resize(buf)
		if !errors.Is(err, ErrResizingFailure) {
			t.Errorf("expected ErrResizingFailure, got %v", err)
		}
	})

	t.Run("rejects scaler output of the wrong size", func(t *testing.T) {
		scaler := &mockScaler{wrongSize: true}
		r := NewResizer(scaler, DefaultCropSize, DefaultResizeTarget)
		buf, _ := NewBuffer(600, 600, FormatBGRA)

		if _, err := r.Resize(buf); !errors.Is(err, ErrResizingFailure) {
			t.Errorf("expected ErrResizingFailure, got %v", err)
		}
	})

	t.Run("rejects unreadable buffers", func(t *testing.T) {
		r := NewResizer(&mockScaler{}, DefaultCropSize, DefaultResizeTarget)
		buf := &Buffer{Width: 300, Height: 300, Stride: 1200, Format: FormatBGRA, Pix: make([]byte, 10)}

		if _, err := r.Resize(buf); !errors.Is(err, ErrFrameUnreadable) {
			t.Errorf("expected ErrFrameUnreadable, got %v", err)
		}
	})
}
