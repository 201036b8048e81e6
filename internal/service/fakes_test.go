package service

import (
	"context"
	"fmt"
)

type fakeOCR struct {
	text  string
	err   error
	calls int
}

func (f *fakeOCR) OCR(ctx context.Context, image []byte) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeVision struct {
	describeFn    func(ctx context.Context, image []byte, prompt string) (string, error)
	generateFn    func(ctx context.Context, systemPrompt, userText string) (string, error)
	describeCalls int
	generateCalls int
}

func (f *fakeVision) Describe(ctx context.Context, image []byte, prompt string) (string, error) {
	f.describeCalls++
	if f.describeFn == nil {
		return "", fmt.Errorf("describe not configured")
	}
	return f.describeFn(ctx, image, prompt)
}

func (f *fakeVision) GenerateJSON(ctx context.Context, systemPrompt, userText string) (string, error) {
	f.generateCalls++
	if f.generateFn == nil {
		return "", fmt.Errorf("generate not configured")
	}
	return f.generateFn(ctx, systemPrompt, userText)
}

// fakeSource is an in-memory document: pages[i] is the deterministic text of
// page i, renderErr poisons PageImage.
type fakeSource struct {
	pages     []string
	pageErrs  map[int]error
	renderErr error
	closed    bool
}

func (f *fakeSource) NumPages() int { return len(f.pages) }

func (f *fakeSource) PageText(page int) (string, error) {
	if err, ok := f.pageErrs[page]; ok {
		return "", err
	}
	return f.pages[page], nil
}

func (f *fakeSource) PageImage(page int) ([]byte, error) {
	if f.renderErr != nil {
		return nil, f.renderErr
	}
	return []byte(fmt.Sprintf("image-%d", page)), nil
}

func (f *fakeSource) Close() error {
	f.closed = true
	return nil
}

type fakeOpener struct {
	source  *fakeSource
	openErr error
}

func (f *fakeOpener) Open(path string) (PageSource, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return f.source, nil
}
