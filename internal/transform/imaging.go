package transform

import (
	"bytes"
	"context"
	"fmt"
	"math"

	"github.com/disintegration/imaging"

	"github.com/dmitrijs2005/photoupload/internal/models"
)

const defaultJPEGQuality = 80

// ImagingBackend decodes with disintegration/imaging, fits the image inside the
// requested box without upscaling and encodes JPEG.
type ImagingBackend struct{}

func (ImagingBackend) Resize(ctx context.Context, path string, spec models.ResizeSpec) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	bounds := img.Bounds()
	w, h := spec.MaxWidth, spec.MaxHeight
	if w <= 0 {
		w = bounds.Dx()
	}
	if h <= 0 {
		h = bounds.Dy()
	}

	var buf bytes.Buffer
	fitted := imaging.Fit(img, w, h, imaging.Lanczos)
	if err := imaging.Encode(&buf, fitted, imaging.JPEG, imaging.JPEGQuality(jpegQuality(spec.Quality))); err != nil {
		return nil, fmt.Errorf("encode %s: %w", path, err)
	}
	return buf.Bytes(), nil
}

func jpegQuality(q float64) int {
	if q <= 0 || q > 1 {
		return defaultJPEGQuality
	}
	return max(1, int(math.Round(q*100)))
}
