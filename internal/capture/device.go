// Package capture acquires still frames from a camera.
//
// Device is an explicit state machine:
//
//	Closed → Requesting → Ready → Capturing → Closed
//
// with Requesting → Error on permission or hardware failure. The Device
// is the exclusive owner of the live stream: at most one stream is open
// at a time, opening while open tears down the prior stream first, and
// Close stops the stream unconditionally from any state.
package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/Joszi2006/pillinfo/internal/imaging"
)

// State is the capture device lifecycle state.
type State int

const (
	StateClosed State = iota
	StateRequesting
	StateReady
	StateCapturing
	StateError
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateRequesting:
		return "requesting"
	case StateReady:
		return "ready"
	case StateCapturing:
		return "capturing"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

var (
	// ErrNotReady is returned by CaptureFrame outside the Ready state.
	ErrNotReady = errors.New("capture device is not ready")
	// ErrDeviceUnavailable wraps permission and hardware failures.
	ErrDeviceUnavailable = errors.New("camera unavailable")
)

// Constraints hint the backend at the stream to acquire.
type Constraints struct {
	// Facing is the preferred camera facing; "environment" selects the
	// back-facing camera.
	Facing string
	Width  int
	Height int
}

// Stream is a live camera session. Close stops the underlying media
// tracks.
type Stream interface {
	// Frame extracts one still at the stream's native resolution.
	Frame(ctx context.Context) (image.Image, error)
	Close() error
}

// Backend acquires camera streams. Implementations: FFmpegBackend for
// real hardware, fakes in tests.
type Backend interface {
	Open(ctx context.Context, c Constraints) (Stream, error)
}

// Device drives one camera through its open/capture/close lifecycle.
type Device struct {
	backend     Backend
	constraints Constraints
	resizer     imaging.Resizer

	mu      sync.Mutex
	state   State
	gen     uint64 // bumped on every open/close so stale opens detect replacement
	stream  Stream
	lastErr error
}

// NewDevice creates a closed Device using the given backend.
func NewDevice(b Backend, c Constraints) *Device {
	if c.Facing == "" {
		c.Facing = "environment"
	}
	return &Device{backend: b, constraints: c}
}

// State returns the current lifecycle state.
func (d *Device) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Err returns the user-facing failure after a transition to Error.
func (d *Device) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr
}

// Open requests a camera stream. On success the device is Ready; on
// permission or hardware failure it is Error with a user-facing message.
// Opening while a stream is open closes the prior stream first.
func (d *Device) Open(ctx context.Context) error {
	d.mu.Lock()
	if d.stream != nil {
		d.stream.Close()
		d.stream = nil
	}
	d.state = StateRequesting
	d.lastErr = nil
	d.gen++
	myGen := d.gen
	d.mu.Unlock()

	s, err := d.backend.Open(ctx, d.constraints)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.gen != myGen || d.state != StateRequesting {
		// Closed or reopened while we were negotiating; release whatever we
		// acquired so no stream is left dangling.
		if s != nil {
			s.Close()
		}
		return d.lastErr
	}

	if err != nil {
		d.state = StateError
		d.lastErr = fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
		return d.lastErr
	}

	d.stream = s
	d.state = StateReady
	return nil
}

// CaptureFrame extracts one still, pipes it through the resizer, and
// tears the session down: one photo per open/close cycle. Valid only in
// Ready; any other state is rejected with ErrNotReady.
func (d *Device) CaptureFrame(ctx context.Context) ([]byte, error) {
	d.mu.Lock()
	if d.state != StateReady {
		state := d.state
		d.mu.Unlock()
		return nil, fmt.Errorf("%w (state %s)", ErrNotReady, state)
	}
	d.state = StateCapturing
	stream := d.stream
	d.mu.Unlock()

	frame, err := stream.Frame(ctx)

	// Session is torn down whether or not the grab worked.
	d.mu.Lock()
	if d.stream == stream {
		stream.Close()
		d.stream = nil
		d.state = StateClosed
		d.gen++
	}
	d.mu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("capturing frame: %w", err)
	}
	return d.resizer.ResizeImage(ctx, frame)
}

// Close stops the stream unconditionally. Valid from any state and
// idempotent.
func (d *Device) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stream != nil {
		d.stream.Close()
		d.stream = nil
	}
	d.state = StateClosed
	d.lastErr = nil
	d.gen++
}
