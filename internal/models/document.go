package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Table is one harvested tabular region: rows of cells, in reading order.
type Table [][]string

// ExtractionUnit is one page of a multi-page document, or one standalone
// image. Units are immutable once produced. Tables only ever come from the
// deterministic extraction layer; the vision fallback never produces them.
type ExtractionUnit struct {
	Index        int     `json:"index"`
	Text         string  `json:"text"`
	UsedFallback bool    `json:"used_fallback"`
	Tables       []Table `json:"tables,omitempty"`
}

// StructuredDocument is the page-indexed result of structuring one source
// document. Unit indices are contiguous starting at 1.
type StructuredDocument struct {
	SourcePath string           `json:"source_path"`
	Units      []ExtractionUnit `json:"units"`
}

// JoinedText returns the fallback-resolved text of all units in index order,
// separated by a blank line.
func (d *StructuredDocument) JoinedText() string {
	parts := make([]string, len(d.Units))
	for i, unit := range d.Units {
		parts[i] = unit.Text
	}
	return strings.Join(parts, "\n\n")
}

// FallbackCount returns the number of units resolved via the vision fallback.
func (d *StructuredDocument) FallbackCount() int {
	n := 0
	for _, unit := range d.Units {
		if unit.UsedFallback {
			n++
		}
	}
	return n
}

// Document is the stored record of an uploaded source file.
type Document struct {
	ID            uuid.UUID
	UserID        string
	FileName      string
	SourcePath    string
	PageCount     int
	FallbackPages int
	ExtractedText string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
