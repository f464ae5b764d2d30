// Package imaging re-encodes captured photos into a bounded JPEG before
// they are shipped to the vision model.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
)

const (
	DefaultQuality = 85
	DefaultMaxDim  = 1024
)

type Options struct {
	// Quality is the JPEG quality factor. A tunable constant, not a
	// correctness knob.
	Quality int
	// MaxDim bounds the longer image edge; larger photos are scaled
	// down proportionally. Zero keeps the original size.
	MaxDim uint
}

// PrepareJPEG decodes any supported photo format, scales it down to the
// configured bound, and re-encodes it as JPEG.
func PrepareJPEG(data []byte, opts Options) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode photo: %w", err)
	}

	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}

	if opts.MaxDim > 0 {
		bounds := img.Bounds()
		if uint(bounds.Dx()) > opts.MaxDim || uint(bounds.Dy()) > opts.MaxDim {
			img = resize.Thumbnail(opts.MaxDim, opts.MaxDim, img, resize.Lanczos3)
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
