package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// minPrimaryTextLength is the cutoff below which a unit is treated as
// scanned/non-text and routed to the vision fallback.
const minPrimaryTextLength = 10

const transcribePrompt = "Transcribe the text in this document page exactly as it appears. ignore images."

// ExtractionMethod tags which tier produced a unit's text.
type ExtractionMethod string

const (
	MethodPrimary  ExtractionMethod = "primary"
	MethodFallback ExtractionMethod = "fallback"
)

// Outcome is the result of resolving one unit: the text and the tier that
// produced it. Fallback failures still yield an Outcome (with an inline error
// marker as text), never an error: one bad unit must not abort a document.
type Outcome struct {
	Text   string
	Method ExtractionMethod
}

// UsedFallback reports whether the fallback tier was attempted, regardless of
// whether it ultimately succeeded.
func (o Outcome) UsedFallback() bool {
	return o.Method == MethodFallback
}

// RenderFunc produces the image of a unit for the vision fallback. It is only
// invoked when the fallback tier is actually needed.
type RenderFunc func(ctx context.Context) ([]byte, error)

// ExtractionService resolves the text of one extraction unit with a tiered
// strategy: the deterministic layer first, the semantic vision fallback when
// that layer yields too little. It holds no state between calls.
type ExtractionService struct {
	ocr             OCRCapability
	vision          VisionCapability
	providerTimeout time.Duration
	maxRetries      int
	logger          *zap.Logger
}

func NewExtractionService(ocr OCRCapability, vision VisionCapability, providerTimeout time.Duration, maxRetries int, logger *zap.Logger) *ExtractionService {
	if providerTimeout <= 0 {
		providerTimeout = 30 * time.Second
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &ExtractionService{
		ocr:             ocr,
		vision:          vision,
		providerTimeout: providerTimeout,
		maxRetries:      maxRetries,
		logger:          logger,
	}
}

// ExtractPage resolves one document page. primaryText is what the
// deterministic layout layer produced for the page; render supplies the page
// image if the fallback is needed.
func (s *ExtractionService) ExtractPage(ctx context.Context, index int, primaryText string, render RenderFunc) Outcome {
	if len(strings.TrimSpace(primaryText)) >= minPrimaryTextLength {
		return Outcome{Text: primaryText, Method: MethodPrimary}
	}

	s.logger.Debug("Page treated as scanned/empty, using vision fallback", zap.Int("page", index))

	image, err := render(ctx)
	if err != nil {
		return Outcome{Text: inlineErrorMarker(err), Method: MethodFallback}
	}
	return s.fallback(ctx, image)
}

// ExtractImage resolves one standalone image: deterministic OCR first, vision
// fallback when OCR fails or yields too little text. OCR failure is treated
// identically to "no text found".
func (s *ExtractionService) ExtractImage(ctx context.Context, image []byte) Outcome {
	text, err := s.ocr.OCR(ctx, image)
	if err != nil {
		s.logger.Warn("OCR failed, proceeding to vision fallback", zap.Error(err))
		text = ""
	}
	if len(strings.TrimSpace(text)) >= minPrimaryTextLength {
		return Outcome{Text: text, Method: MethodPrimary}
	}
	return s.fallback(ctx, image)
}

func (s *ExtractionService) fallback(ctx context.Context, image []byte) Outcome {
	text, err := s.describeWithRetry(ctx, image, transcribePrompt)
	if err != nil {
		return Outcome{Text: inlineErrorMarker(err), Method: MethodFallback}
	}
	return Outcome{Text: text, Method: MethodFallback}
}

// describeWithRetry issues the vision call with a bounded timeout and at most
// maxRetries additional attempts on failure. Parse-type failures do not occur
// here; transcription responses are free text.
func (s *ExtractionService) describeWithRetry(ctx context.Context, image []byte, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		callCtx, cancel := context.WithTimeout(ctx, s.providerTimeout)
		text, err := s.vision.Describe(callCtx, image, prompt)
		cancel()
		if err == nil {
			return text, nil
		}

		lastErr = err
		if attempt < s.maxRetries {
			s.logger.Warn("Vision call failed, retrying", zap.Int("attempt", attempt+1), zap.Error(err))
		}
	}
	return "", lastErr
}

func inlineErrorMarker(err error) string {
	return fmt.Sprintf("[Error reading scanned page: %v]", err)
}
