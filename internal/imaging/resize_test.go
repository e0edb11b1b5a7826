package imaging

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

// testPNG returns an encoded PNG of the given dimensions.
func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	return buf.Bytes()
}

func decodeDims(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding resized output: %v", err)
	}
	return cfg.Width, cfg.Height
}

func TestResizeDownscalesLongerSide(t *testing.T) {
	var r Resizer
	out, err := r.Resize(context.Background(), testPNG(t, 3200, 1600))
	if err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	w, h := decodeDims(t, out)
	if w != 1600 || h != 800 {
		t.Errorf("dimensions = %dx%d, want 1600x800", w, h)
	}
}

func TestResizePortraitAspect(t *testing.T) {
	var r Resizer
	out, err := r.Resize(context.Background(), testPNG(t, 1000, 4000))
	if err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	w, h := decodeDims(t, out)
	if h != 1600 || w != 400 {
		t.Errorf("dimensions = %dx%d, want 400x1600", w, h)
	}
}

func TestResizeNeverUpscales(t *testing.T) {
	var r Resizer
	out, err := r.Resize(context.Background(), testPNG(t, 320, 240))
	if err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	w, h := decodeDims(t, out)
	if w != 320 || h != 240 {
		t.Errorf("dimensions = %dx%d, want unchanged 320x240", w, h)
	}
}

func TestResizeDecodeError(t *testing.T) {
	var r Resizer
	_, err := r.Resize(context.Background(), []byte("definitely not an image"))
	if !errors.Is(err, ErrDecode) {
		t.Errorf("error = %v, want ErrDecode", err)
	}
}

func TestResizeBatchOrderAndBounds(t *testing.T) {
	var r Resizer
	files := [][]byte{
		testPNG(t, 2000, 1000),
		testPNG(t, 100, 100),
		testPNG(t, 1600, 3200),
		testPNG(t, 1601, 1601),
		testPNG(t, 50, 2000),
	}

	out, err := r.ResizeBatch(context.Background(), files)
	if err != nil {
		t.Fatalf("ResizeBatch() error = %v", err)
	}
	if len(out) != len(files) {
		t.Fatalf("got %d outputs, want %d", len(out), len(files))
	}

	wantDims := [][2]int{{1600, 800}, {100, 100}, {800, 1600}, {1600, 1600}, {40, 1600}}
	for i, data := range out {
		w, h := decodeDims(t, data)
		if w != wantDims[i][0] || h != wantDims[i][1] {
			t.Errorf("output %d = %dx%d, want %dx%d", i, w, h, wantDims[i][0], wantDims[i][1])
		}
		if w > MaxDimension || h > MaxDimension {
			t.Errorf("output %d exceeds bound: %dx%d", i, w, h)
		}
	}
}

func TestResizeBatchFailFast(t *testing.T) {
	var r Resizer
	files := [][]byte{
		testPNG(t, 200, 200),
		[]byte("corrupt"),
		testPNG(t, 200, 200),
	}

	out, err := r.ResizeBatch(context.Background(), files)
	if err == nil {
		t.Fatal("ResizeBatch() expected error for corrupt member")
	}
	if !errors.Is(err, ErrDecode) {
		t.Errorf("error = %v, want ErrDecode", err)
	}
	if out != nil {
		t.Errorf("got partial batch %d outputs, want nil", len(out))
	}
}

func TestResizeBatchEmpty(t *testing.T) {
	var r Resizer
	out, err := r.ResizeBatch(context.Background(), nil)
	if err != nil || out != nil {
		t.Errorf("ResizeBatch(nil) = %v, %v, want nil, nil", out, err)
	}
}
