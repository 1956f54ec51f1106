package ocr

import "context"

// Engine recognises printed text in a raster image.
type Engine interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}
