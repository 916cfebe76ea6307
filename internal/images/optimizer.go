package images

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/disintegration/imaging"
)

const (
	maxDimension = 1536
	jpegQuality  = 85
)

// Optimize re-encodes an uploaded photo as JPEG, downscaling it so the
// longest edge is at most 1536 px. Smaller images pass through unresized.
func Optimize(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	resized := img
	if width > maxDimension || height > maxDimension {
		if width >= height {
			resized = imaging.Resize(img, maxDimension, 0, imaging.Lanczos)
		} else {
			resized = imaging.Resize(img, 0, maxDimension, imaging.Lanczos)
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
