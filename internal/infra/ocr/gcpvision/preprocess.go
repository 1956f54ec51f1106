package gcpvision

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// Preprocess downsizes to maxDimension on the long edge, then applies
// grayscale and a contrast boost. Output is PNG.
func Preprocess(data []byte, maxDimension int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	if maxDimension > 0 {
		b := img.Bounds()
		if b.Dx() > maxDimension || b.Dy() > maxDimension {
			if b.Dx() >= b.Dy() {
				img = imaging.Resize(img, maxDimension, 0, imaging.Lanczos)
			} else {
				img = imaging.Resize(img, 0, maxDimension, imaging.Lanczos)
			}
		}
	}

	out := imaging.Grayscale(img)
	out = imaging.AdjustContrast(out, 25)
	out = imaging.Sharpen(out, 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}
