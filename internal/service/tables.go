package service

import (
	"regexp"
	"strings"

	"finpulse/internal/models"
)

var columnGap = regexp.MustCompile(`\s{2,}`)

// harvestTables finds tabular regions in layout text: runs of two or more
// consecutive lines that split into the same multi-column shape on wide
// whitespace gaps. Good enough for statement tables; prose lines rarely keep
// a stable column count across neighbours.
func harvestTables(text string) []models.Table {
	var tables []models.Table
	var current models.Table

	flush := func() {
		if len(current) >= 2 {
			tables = append(tables, current)
		}
		current = nil
	}

	for _, line := range strings.Split(text, "\n") {
		cells := splitColumns(line)
		if len(cells) < 2 {
			flush()
			continue
		}
		if len(current) > 0 && len(current[len(current)-1]) != len(cells) {
			flush()
		}
		current = append(current, cells)
	}
	flush()

	return tables
}

func splitColumns(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	return columnGap.Split(line, -1)
}
