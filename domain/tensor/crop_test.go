package tensor

import (
	"errors"
	"testing"

	"action-classifier/domain/frame"
)

const cropSize = 224

// blockFrame builds a w x h frame filled with background and a centered
// cropSize x cropSize block of the given color
func blockFrame(t *testing.T, w, h int, format frame.PixelFormat, r, g, b uint8) *frame.Buffer {
	t.Helper()

	buf, err := frame.NewBuffer(w, h, format)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	buf.Fill(7, 7, 7)

	ox, oy := w/2-cropSize/2, h/2-cropSize/2
	for y := oy; y < oy+cropSize; y++ {
		for x := ox; x < ox+cropSize; x++ {
			buf.SetRGB(x, y, r, g, b)
		}
	}
	return buf
}

func TestCenterCrop_SolidBlock(t *testing.T) {
	formats := []frame.PixelFormat{frame.FormatBGRA, frame.FormatRGBA, frame.FormatBGR24, frame.FormatRGB24}

	for _, format := range formats {
		t.Run(string(format), func(t *testing.T) {
			buf := blockFrame(t, 300, 300, format, 255, 0, 51)
			tn, _ := New(2, cropSize)

			if err := CenterCrop(buf, tn, 1); err != nil {
				t.Fatalf("CenterCrop unexpected error: %v", err)
			}

			want := NewNormalizedColor(255, 0, 51)
			for x := 0; x < cropSize; x++ {
				for y := 0; y < cropSize; y++ {
					if tn.At(1, x, y, 0) != want.Red || tn.At(1, x, y, 1) != want.Green || tn.At(1, x, y, 2) != want.Blue {
						t.Fatalf("position (%d, %d) = (%v, %v, %v), want %s",
							x, y, tn.At(1, x, y, 0), tn.At(1, x, y, 1), tn.At(1, x, y, 2), want)
					}
				}
			}

			// slot 0 untouched
			for _, v := range tn.Data()[:cropSize*cropSize*Channels] {
				if v != 0 {
					t.Fatal("expected frame slot 0 to stay zero")
				}
			}
		})
	}
}

func TestCenterCrop_HonorsRowPadding(t *testing.T) {
	// 256x300 BGRA with 64 bytes of padding per row
	w, h := 256, 300
	stride := w*4 + 64
	buf := &frame.Buffer{Width: w, Height: h, Stride: stride, Format: frame.FormatBGRA, Pix: make([]byte, stride*h)}
	// gradient in x (red) and y (green) so misaddressing shows up
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			buf.SetRGB(x, y, uint8(x), uint8(y), 128)
		}
	}

	tn, _ := New(1, cropSize)
	if err := CenterCrop(buf, tn, 0); err != nil {
		t.Fatalf("CenterCrop unexpected error: %v", err)
	}

	ox, oy := w/2-cropSize/2, h/2-cropSize/2
	for _, p := range [][2]int{{0, 0}, {10, 200}, {223, 223}, {100, 5}} {
		x, y := p[0], p[1]
		if got, want := tn.At(0, x, y, 0), Normalize(uint8(ox+x)); got != want {
			t.Errorf("red at (%d, %d) = %v, want %v", x, y, got, want)
		}
		if got, want := tn.At(0, x, y, 1), Normalize(uint8(oy+y)); got != want {
			t.Errorf("green at (%d, %d) = %v, want %v", x, y, got, want)
		}
	}
}

func TestCenterCrop_Errors(t *testing.T) {
	tn, _ := New(1, cropSize)

	t.Run("frame smaller than crop", func(t *testing.T) {
		buf, _ := frame.NewBuffer(200, 300, frame.FormatBGRA)
		if err := CenterCrop(buf, tn, 0); !errors.Is(err, frame.ErrFrameUnreadable) {
			t.Errorf("expected ErrFrameUnreadable, got %v", err)
		}
	})

	t.Run("landscape frame too short", func(t *testing.T) {
		buf, _ := frame.NewBuffer(400, 223, frame.FormatBGRA)
		if err := CenterCrop(buf, tn, 0); !errors.Is(err, frame.ErrFrameUnreadable) {
			t.Errorf("expected ErrFrameUnreadable, got %v", err)
		}
	})

	t.Run("truncated pixel data", func(t *testing.T) {
		buf := &frame.Buffer{Width: 300, Height: 300, Stride: 1200, Format: frame.FormatBGRA, Pix: make([]byte, 1200)}
		if err := CenterCrop(buf, tn, 0); !errors.Is(err, frame.ErrFrameUnreadable) {
			t.Errorf("expected ErrFrameUnreadable, got %v", err)
		}
	})

	t.Run("slot out of range", func(t *testing.T) {
		buf, _ := frame.NewBuffer(300, 300, frame.FormatBGRA)
		if err := CenterCrop(buf, tn, 1); !errors.Is(err, ErrFrameIndexOutOfRange) {
			t.Errorf("expected ErrFrameIndexOutOfRange, got %v", err)
		}
	})
}

func TestBuilder(t *testing.T) {
	b, err := NewBuilder(3, cropSize)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	good := blockFrame(t, 256, 256, frame.FormatBGRA, 255, 255, 255)
	bad, _ := frame.NewBuffer(100, 100, frame.FormatBGRA)

	if err := b.Add(good); err != nil {
		t.Fatalf("Add(good) unexpected error: %v", err)
	}
	if err := b.Add(bad); err == nil {
		t.Fatal("expected Add(bad) to fail")
	}
	if b.Len() != 1 {
		t.Errorf("expected failed Add not to advance, Len() = %d", b.Len())
	}
	if err := b.Add(good); err != nil {
		t.Fatalf("Add(good) unexpected error: %v", err)
	}

	tn, err := b.Tensor()
	if err != nil {
		t.Fatalf("Tensor() unexpected error: %v", err)
	}
	if tn.Frames() != 2 {
		t.Errorf("expected tensor trimmed to 2 frames, got %d", tn.Frames())
	}
	if tn.At(1, 0, 0, 0) != 1 {
		t.Errorf("expected second slot to hold the second good frame")
	}

	if b.Capacity() != 3 || b.Full() {
		t.Fatalf("expected 3 slots with one free, got capacity %d full %v", b.Capacity(), b.Full())
	}
	_ = b.Add(good)
	if !b.Full() {
		t.Error("expected builder to be full")
	}
	if err := b.Add(good); !errors.Is(err, ErrFrameIndexOutOfRange) {
		t.Errorf("expected ErrFrameIndexOutOfRange once full, got %v", err)
	}
}

func TestBuilder_EmptyTensor(t *testing.T) {
	b, _ := NewBuilder(2, cropSize)
	if _, err := b.Tensor(); err == nil {
		t.Error("expected error for empty builder")
	}
}
