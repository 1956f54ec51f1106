package ai

import "context"

// LLM runs a chat completion in JSON mode and returns the raw JSON text.
type LLM interface {
	CompleteJSON(ctx context.Context, system, user string) (string, error)
}

// Vision reads all text visible in an image or document.
type Vision interface {
	ReadImage(ctx context.Context, data []byte, mimeType string) (string, error)
}
