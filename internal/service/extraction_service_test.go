package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestExtraction(ocr *fakeOCR, vision *fakeVision) *ExtractionService {
	return NewExtractionService(ocr, vision, time.Second, 1, zap.NewNop())
}

func TestExtractPage_PrimaryTextKeptVerbatim(t *testing.T) {
	vision := &fakeVision{}
	svc := newTestExtraction(&fakeOCR{}, vision)

	primary := "  Opening balance: 1,204.99  "
	outcome := svc.ExtractPage(context.Background(), 1, primary, func(ctx context.Context) ([]byte, error) {
		t.Fatal("render must not be called when primary text is sufficient")
		return nil, nil
	})

	assert.Equal(t, primary, outcome.Text, "primary text must not be trimmed or rewritten")
	assert.Equal(t, MethodPrimary, outcome.Method)
	assert.False(t, outcome.UsedFallback())
	assert.Zero(t, vision.describeCalls)
}

func TestExtractPage_ShortTextRoutesToFallback(t *testing.T) {
	vision := &fakeVision{
		describeFn: func(ctx context.Context, image []byte, prompt string) (string, error) {
			return "Transcribed statement text", nil
		},
	}
	svc := newTestExtraction(&fakeOCR{}, vision)

	outcome := svc.ExtractPage(context.Background(), 1, "   \n\t  ", func(ctx context.Context) ([]byte, error) {
		return []byte("png"), nil
	})

	assert.Equal(t, "Transcribed statement text", outcome.Text)
	assert.True(t, outcome.UsedFallback())
	assert.Equal(t, 1, vision.describeCalls)
}

func TestExtractPage_ThresholdIsTrimmedLength(t *testing.T) {
	vision := &fakeVision{
		describeFn: func(ctx context.Context, image []byte, prompt string) (string, error) {
			return "fallback", nil
		},
	}
	svc := newTestExtraction(&fakeOCR{}, vision)

	// 9 significant chars surrounded by whitespace: below the cutoff.
	outcome := svc.ExtractPage(context.Background(), 1, "  123456789  ", func(ctx context.Context) ([]byte, error) {
		return []byte("png"), nil
	})
	assert.True(t, outcome.UsedFallback())

	// Exactly 10 significant chars: primary wins.
	outcome = svc.ExtractPage(context.Background(), 1, " 1234567890 ", nil)
	assert.False(t, outcome.UsedFallback())
}

func TestExtractPage_FallbackFailureYieldsInlineMarker(t *testing.T) {
	vision := &fakeVision{
		describeFn: func(ctx context.Context, image []byte, prompt string) (string, error) {
			return "", fmt.Errorf("provider unavailable")
		},
	}
	svc := newTestExtraction(&fakeOCR{}, vision)

	outcome := svc.ExtractPage(context.Background(), 3, "", func(ctx context.Context) ([]byte, error) {
		return []byte("png"), nil
	})

	assert.Equal(t, "[Error reading scanned page: provider unavailable]", outcome.Text)
	assert.True(t, outcome.UsedFallback(), "failed fallback still counts as a fallback attempt")
	assert.Equal(t, 2, vision.describeCalls, "transport failure retried once")
}

func TestExtractPage_RenderFailureYieldsInlineMarker(t *testing.T) {
	vision := &fakeVision{}
	svc := newTestExtraction(&fakeOCR{}, vision)

	outcome := svc.ExtractPage(context.Background(), 1, "", func(ctx context.Context) ([]byte, error) {
		return nil, fmt.Errorf("render failed")
	})

	assert.Equal(t, "[Error reading scanned page: render failed]", outcome.Text)
	assert.True(t, outcome.UsedFallback())
	assert.Zero(t, vision.describeCalls)
}

func TestExtractPage_RetrySucceedsOnSecondAttempt(t *testing.T) {
	attempt := 0
	vision := &fakeVision{
		describeFn: func(ctx context.Context, image []byte, prompt string) (string, error) {
			attempt++
			if attempt == 1 {
				return "", fmt.Errorf("timeout")
			}
			return "second try", nil
		},
	}
	svc := newTestExtraction(&fakeOCR{}, vision)

	outcome := svc.ExtractPage(context.Background(), 1, "", func(ctx context.Context) ([]byte, error) {
		return []byte("png"), nil
	})

	assert.Equal(t, "second try", outcome.Text)
	assert.Equal(t, 2, vision.describeCalls)
}

func TestExtractImage_OCRFailureFallsThrough(t *testing.T) {
	ocr := &fakeOCR{err: fmt.Errorf("tesseract crashed")}
	vision := &fakeVision{
		describeFn: func(ctx context.Context, image []byte, prompt string) (string, error) {
			return "vision result", nil
		},
	}
	svc := newTestExtraction(ocr, vision)

	outcome := svc.ExtractImage(context.Background(), []byte("png"))

	require.Equal(t, 1, ocr.calls)
	assert.Equal(t, "vision result", outcome.Text)
	assert.True(t, outcome.UsedFallback())
}

func TestExtractImage_OCRTextSufficient(t *testing.T) {
	ocr := &fakeOCR{text: "Statement period: Jan 2024"}
	vision := &fakeVision{}
	svc := newTestExtraction(ocr, vision)

	outcome := svc.ExtractImage(context.Background(), []byte("png"))

	assert.Equal(t, "Statement period: Jan 2024", outcome.Text)
	assert.False(t, outcome.UsedFallback())
	assert.Zero(t, vision.describeCalls)
}
