package service

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/gen2brain/go-fitz"
)

// PageSource gives the structurer access to one open document's pages.
// Page numbers are 0-based here; ExtractionUnit indices are 1-based.
type PageSource interface {
	NumPages() int
	PageText(page int) (string, error)
	// PageImage renders the page as PNG bytes for the vision fallback.
	PageImage(page int) ([]byte, error)
	Close() error
}

// DocumentOpener opens a source document for structuring. An error here is a
// structural failure: the whole document is rejected, not single units.
type DocumentOpener interface {
	Open(path string) (PageSource, error)
}

const renderDPI = 300

// FitzOpener opens PDF documents via go-fitz.
type FitzOpener struct{}

func (FitzOpener) Open(path string) (PageSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	return &fitzSource{doc: doc}, nil
}

type fitzSource struct {
	doc *fitz.Document
}

func (s *fitzSource) NumPages() int {
	return s.doc.NumPage()
}

func (s *fitzSource) PageText(page int) (string, error) {
	return s.doc.Text(page)
}

func (s *fitzSource) PageImage(page int) ([]byte, error) {
	img, err := s.doc.ImageDPI(page, renderDPI)
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d: %w", page+1, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode page %d: %w", page+1, err)
	}
	return buf.Bytes(), nil
}

func (s *fitzSource) Close() error {
	return s.doc.Close()
}
