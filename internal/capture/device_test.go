package capture

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
)

// fakeStream counts closes and serves a fixed frame.
type fakeStream struct {
	frame    image.Image
	frameErr error
	closes   int
}

func (s *fakeStream) Frame(ctx context.Context) (image.Image, error) {
	if s.frameErr != nil {
		return nil, s.frameErr
	}
	return s.frame, nil
}

func (s *fakeStream) Close() error {
	s.closes++
	return nil
}

// fakeBackend hands out streams or fails like a denied permission prompt.
type fakeBackend struct {
	streams []*fakeStream
	openErr error
	opens   int
}

func (b *fakeBackend) Open(ctx context.Context, c Constraints) (Stream, error) {
	b.opens++
	if b.openErr != nil {
		return nil, b.openErr
	}
	s := b.streams[b.opens-1]
	return s, nil
}

func testFrame(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	return img
}

func TestOpenCaptureCloseCycle(t *testing.T) {
	s := &fakeStream{frame: testFrame(64, 48)}
	b := &fakeBackend{streams: []*fakeStream{s}}
	d := NewDevice(b, Constraints{Width: 1280, Height: 720})

	if d.State() != StateClosed {
		t.Fatalf("initial state = %s, want closed", d.State())
	}
	if err := d.Open(context.Background()); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if d.State() != StateReady {
		t.Fatalf("state after open = %s, want ready", d.State())
	}

	data, err := d.CaptureFrame(context.Background())
	if err != nil {
		t.Fatalf("CaptureFrame() error = %v", err)
	}
	if len(data) == 0 {
		t.Error("captured frame is empty")
	}

	// One photo per open/close cycle: the session tears down after capture.
	if d.State() != StateClosed {
		t.Errorf("state after capture = %s, want closed", d.State())
	}
	if s.closes != 1 {
		t.Errorf("stream closed %d times, want 1", s.closes)
	}
}

func TestOpenDeniedGoesToError(t *testing.T) {
	b := &fakeBackend{openErr: errors.New("permission denied")}
	d := NewDevice(b, Constraints{})

	err := d.Open(context.Background())
	if err == nil {
		t.Fatal("Open() expected error")
	}
	if !errors.Is(err, ErrDeviceUnavailable) {
		t.Errorf("error = %v, want ErrDeviceUnavailable", err)
	}
	if d.State() != StateError {
		t.Errorf("state = %s, want error", d.State())
	}

	// captureFrame in Error is rejected, no frame produced.
	if _, err := d.CaptureFrame(context.Background()); !errors.Is(err, ErrNotReady) {
		t.Errorf("CaptureFrame error = %v, want ErrNotReady", err)
	}
}

func TestCaptureFrameWhenClosed(t *testing.T) {
	d := NewDevice(&fakeBackend{}, Constraints{})
	if _, err := d.CaptureFrame(context.Background()); !errors.Is(err, ErrNotReady) {
		t.Errorf("error = %v, want ErrNotReady", err)
	}
}

func TestReopenClosesPriorStream(t *testing.T) {
	s1 := &fakeStream{frame: testFrame(8, 8)}
	s2 := &fakeStream{frame: testFrame(8, 8)}
	b := &fakeBackend{streams: []*fakeStream{s1, s2}}
	d := NewDevice(b, Constraints{})

	if err := d.Open(context.Background()); err != nil {
		t.Fatalf("first Open() error = %v", err)
	}
	if err := d.Open(context.Background()); err != nil {
		t.Fatalf("second Open() error = %v", err)
	}

	if s1.closes != 1 {
		t.Errorf("prior stream closed %d times, want 1", s1.closes)
	}
	if s2.closes != 0 {
		t.Errorf("current stream closed %d times, want 0", s2.closes)
	}
	if d.State() != StateReady {
		t.Errorf("state = %s, want ready", d.State())
	}

	d.Close()
	if s2.closes != 1 {
		t.Errorf("current stream closed %d times after Close, want 1", s2.closes)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	s := &fakeStream{frame: testFrame(8, 8)}
	b := &fakeBackend{streams: []*fakeStream{s}}
	d := NewDevice(b, Constraints{})

	d.Open(context.Background())
	d.Close()
	d.Close()
	d.Close()

	if s.closes != 1 {
		t.Errorf("stream closed %d times, want 1", s.closes)
	}
	if d.State() != StateClosed {
		t.Errorf("state = %s, want closed", d.State())
	}
}

func TestFrameFailureTearsDownSession(t *testing.T) {
	s := &fakeStream{frameErr: errors.New("device wedged")}
	b := &fakeBackend{streams: []*fakeStream{s}}
	d := NewDevice(b, Constraints{})

	d.Open(context.Background())
	if _, err := d.CaptureFrame(context.Background()); err == nil {
		t.Fatal("CaptureFrame() expected error")
	}
	if d.State() != StateClosed {
		t.Errorf("state = %s, want closed", d.State())
	}
	if s.closes != 1 {
		t.Errorf("stream closed %d times, want 1", s.closes)
	}
}

func TestDefaultFacing(t *testing.T) {
	d := NewDevice(&fakeBackend{}, Constraints{})
	if d.constraints.Facing != "environment" {
		t.Errorf("Facing = %q, want environment (back camera)", d.constraints.Facing)
	}
}
