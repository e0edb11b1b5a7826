package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/png" // register PNG decoding

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoding

	"golang.org/x/sync/errgroup"
)

const (
	// MaxDimension bounds the longer side of a resized image.
	MaxDimension = 1600
	// jpegQuality is the fixed re-encode quality.
	jpegQuality = 93
)

var (
	// ErrDecode indicates the source bytes could not be decoded as an image.
	ErrDecode = errors.New("image decode failed")
	// ErrEncode indicates re-encoding produced no output.
	ErrEncode = errors.New("image encode failed")
)

// Resizer decodes an image, downsamples it so the longer side does not
// exceed MaxDimension, and re-encodes it as JPEG. Stateless; safe for
// concurrent use.
type Resizer struct{}

// Resize converts one image to the transport format. The aspect ratio is
// preserved and images within bounds are never upscaled. A decode or
// encode failure is terminal for this image.
func (r Resizer) Resize(ctx context.Context, data []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return r.ResizeImage(ctx, src)
}

// ResizeImage is Resize for an already-decoded frame, used by the camera
// capture path where the still is extracted from a raster surface rather
// than a file.
func (r Resizer) ResizeImage(ctx context.Context, src image.Image) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: empty image", ErrDecode)
	}

	nw, nh := fit(w, h, MaxDimension)
	out := src
	if nw != w || nh != h {
		dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		out = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	if buf.Len() == 0 {
		return nil, ErrEncode
	}
	return buf.Bytes(), nil
}

// ResizeBatch resizes every file concurrently and waits for all to finish
// or for the first failure. The batch is all-or-nothing: one bad image
// fails the whole set and cancels outstanding work. On success the output
// has one element per input, in input order.
func (r Resizer) ResizeBatch(ctx context.Context, files [][]byte) ([][]byte, error) {
	if len(files) == 0 {
		return nil, nil
	}

	results := make([][]byte, len(files))
	g, gCtx := errgroup.WithContext(ctx)

	for i, data := range files {
		g.Go(func() error {
			out, err := r.Resize(gCtx, data)
			if err != nil {
				return fmt.Errorf("image %d: %w", i, err)
			}
			results[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// fit scales (w, h) so the longer side is at most max, preserving aspect
// ratio. Dimensions already within the bound are returned unchanged.
func fit(w, h, max int) (int, int) {
	if w <= max && h <= max {
		return w, h
	}
	if w >= h {
		nh := h * max / w
		if nh < 1 {
			nh = 1
		}
		return max, nh
	}
	nw := w * max / h
	if nw < 1 {
		nw = 1
	}
	return nw, max
}
