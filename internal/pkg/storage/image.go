package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"

	"github.com/disintegration/imaging"
)

// Thumbnailer produces JPEG thumbnails bounded by a maximum box size.
type Thumbnailer struct {
	MaxWidth  int
	MaxHeight int
	Quality   int
}

// NewThumbnailer returns a Thumbnailer with the given bounding box and a
// default JPEG quality.
func NewThumbnailer(maxWidth, maxHeight int) *Thumbnailer {
	return &Thumbnailer{MaxWidth: maxWidth, MaxHeight: maxHeight, Quality: 80}
}

// Generate decodes the source image, fits it into the bounding box and
// returns the result encoded as JPEG.
func (t *Thumbnailer) Generate(content io.Reader) (io.Reader, error) {
	img, _, err := image.Decode(content)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	fitted := imaging.Fit(img, t.MaxWidth, t.MaxHeight, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, fitted, &jpeg.Options{Quality: t.Quality}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf, nil
}
