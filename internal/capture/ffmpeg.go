package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
)

// FFmpegBackend grabs frames from a V4L2 device via the ffmpeg binary.
// Each Frame call runs a short-lived grab process; the "stream" is the
// claim on the device, not a persistent pipe.
type FFmpegBackend struct {
	BinPath    string
	DevicePath string
}

// Open verifies the device node is present and readable. A missing node
// or a permission failure reports as device-unavailable; the caller's
// state machine turns that into its Error state.
func (b *FFmpegBackend) Open(ctx context.Context, c Constraints) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(b.DevicePath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", b.DevicePath, err)
	}
	f.Close()

	return &ffmpegStream{
		bin:    b.BinPath,
		device: b.DevicePath,
		width:  c.Width,
		height: c.Height,
	}, nil
}

type ffmpegStream struct {
	bin    string
	device string
	width  int
	height int
	closed bool
}

func (s *ffmpegStream) Frame(ctx context.Context) (image.Image, error) {
	if s.closed {
		return nil, fmt.Errorf("stream closed")
	}

	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-f", "v4l2",
	}
	if s.width > 0 && s.height > 0 {
		args = append(args, "-video_size", fmt.Sprintf("%dx%d", s.width, s.height))
	}
	args = append(args,
		"-i", s.device,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)

	cmd := exec.CommandContext(ctx, s.bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg grab failed: %w (%s)", err, bytes.TrimSpace(stderr.Bytes()))
	}

	img, err := png.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("decoding grabbed frame: %w", err)
	}
	return img, nil
}

func (s *ffmpegStream) Close() error {
	s.closed = true
	return nil
}
