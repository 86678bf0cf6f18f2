package glf

import (
	"errors"
	"testing"
)

func TestLinearMapClamps(t *testing.T) {
	t.Parallel()

	m := LinearMap(50, 150)
	if got := m(0); got != 0 {
		t.Fatalf("below window: got %d", got)
	}
	if got := m(50); got != 0 {
		t.Fatalf("lower edge: got %d", got)
	}
	if got := m(150); got != 255 {
		t.Fatalf("upper edge: got %d", got)
	}
	if got := m(255); got != 255 {
		t.Fatalf("above window: got %d", got)
	}
	if got := m(100); got != 127 {
		t.Fatalf("midpoint: got %d", got)
	}

	// A degenerate window maps everything to black rather than wrapping.
	z := LinearMap(200, 100)
	if got := z(250); got != 0 {
		t.Fatalf("degenerate window: got %d", got)
	}
}

func TestBuildImageGeometry(t *testing.T) {
	t.Parallel()

	rec := &ImageRecord{Width: 4, Height: 4}
	if _, err := buildImage(make([]byte, 10), rec, nil, 0); !errors.Is(err, ErrGeometryMismatch) {
		t.Fatalf("ragged payload: got %v", err)
	}
	if _, err := buildImage(make([]byte, 12), rec, nil, 0); !errors.Is(err, ErrGeometryMismatch) {
		t.Fatalf("short payload: got %v", err)
	}

	payload := make([]byte, 16)
	for i := range payload {
		payload[i] = byte(i * 16)
	}
	img, err := buildImage(payload, rec, nil, 0)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if img.Width != 4 || img.Height != 4 {
		t.Fatalf("geometry: got %dx%d", img.Width, img.Height)
	}
	if img.At(1, 2) != payload[2*4+1] {
		t.Fatalf("row-major layout broken")
	}
	// The pixel buffer must be a copy, not a view of the payload.
	payload[0] = 0xFF
	if img.Pix[0] == 0xFF {
		t.Fatalf("image aliases source payload")
	}

	g := img.Gray()
	if g.Stride != 4 || g.Rect.Dx() != 4 || g.Rect.Dy() != 4 {
		t.Fatalf("gray wrapper: stride=%d rect=%v", g.Stride, g.Rect)
	}
}

func TestBuildImageAppliesMap(t *testing.T) {
	t.Parallel()

	rec := &ImageRecord{Width: 2, Height: 1}
	img, err := buildImage([]byte{100, 200}, rec, LinearMap(100, 200), 0)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if img.Pix[0] != 0 || img.Pix[1] != 255 {
		t.Fatalf("mapped pixels: got %v", img.Pix)
	}
}
