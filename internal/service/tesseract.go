package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"
)

// TesseractOCR implements OCRCapability on top of the system tesseract
// installation. A fresh client is created per call; gosseract clients are not
// safe for concurrent use.
type TesseractOCR struct {
	languages []string
	logger    *zap.Logger
}

func NewTesseractOCR(languages []string, logger *zap.Logger) *TesseractOCR {
	return &TesseractOCR{
		languages: languages,
		logger:    logger,
	}
}

func (t *TesseractOCR) OCR(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if len(t.languages) > 0 {
		if err := client.SetLanguage(t.languages...); err != nil {
			return "", fmt.Errorf("failed to set OCR languages: %w", err)
		}
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("failed to load image for OCR: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}

	text = strings.TrimSpace(text)
	t.logger.Debug("OCR completed", zap.Int("text_length", len(text)))
	return text, nil
}
