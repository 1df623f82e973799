// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/pdiddy/transfer-tracker/pkg/types"
)

// cellSep splits a text line into cells on tabs or runs of two or more
// spaces. The ideographic space (U+3000) counts: Japanese roster PDFs pad
// columns with it.
var cellSep = regexp.MustCompile(`\t+|[ \x{3000}]{2,}`)

// StreamStrategy extracts tables from the raw text stream of each page,
// splitting lines into cells on whitespace runs. It is the fallback for PDFs
// whose tables carry no usable geometry (no ruling lines, irregular fragment
// positions).
type StreamStrategy struct {
	// MinRows is the minimum number of multi-cell lines (header included) a
	// page must produce to count as containing a table.
	MinRows int
}

// Name returns "stream".
func (s *StreamStrategy) Name() string { return "stream" }

// Extract pulls each page's text and keeps the lines that split into two or
// more cells. Pages producing fewer than MinRows such lines contribute
// nothing.
func (s *StreamStrategy) Extract(pdfPath string) (types.RosterTable, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return types.RosterTable{}, fmt.Errorf("opening pdf: %w", err)
	}
	defer doc.Close()

	minRows := s.MinRows
	if minRows <= 0 {
		minRows = 2
	}

	var grids [][][]string
	for p := 0; p < doc.NumPage(); p++ {
		pageText, err := doc.Text(p)
		if err != nil {
			continue
		}
		grid := splitGrid(pageText)
		if len(grid) < minRows {
			continue
		}
		grids = append(grids, grid)
	}

	return buildTable(grids), nil
}

// splitGrid turns page text into rows of cells, keeping only lines that split
// into at least two cells. Single-cell lines are page titles, footers, or
// paragraph text, not table rows.
func splitGrid(pageText string) [][]string {
	var grid [][]string
	for _, line := range strings.Split(pageText, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cells := splitCells(line)
		if len(cells) < 2 {
			continue
		}
		grid = append(grid, cells)
	}
	return grid
}

// splitCells splits one line on cell separators and drops empty fields. An
// empty cell leaves no trace in the text stream, so a row with blank title
// cells splits short and is dropped later by the header cell-count check —
// the stream strategy cannot place such a row safely.
func splitCells(line string) []string {
	var cells []string
	for _, cell := range cellSep.Split(line, -1) {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		cells = append(cells, cell)
	}
	return cells
}
