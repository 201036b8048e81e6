package service

import "context"

// OCRCapability is the deterministic text-recognition provider. A failed OCR
// call is equivalent to "no text found": callers proceed to the fallback and
// never treat it as fatal.
type OCRCapability interface {
	OCR(ctx context.Context, image []byte) (string, error)
}

// VisionCapability is the semantic provider: image transcription and
// schema-constrained JSON generation. Both calls are synchronous
// request/response.
type VisionCapability interface {
	Describe(ctx context.Context, image []byte, prompt string) (string, error)
	GenerateJSON(ctx context.Context, systemPrompt, userText string) (string, error)
}
