// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"

	"github.com/tsawler/tabula/model"
	"github.com/tsawler/tabula/reader"
	"github.com/tsawler/tabula/tables"
	"github.com/tsawler/tabula/text"

	"github.com/pdiddy/transfer-tracker/pkg/types"
)

// GridStrategy detects tables geometrically: text fragments are clustered by
// position and analyzed for row/column alignment, using drawn lines when the
// PDF has them. This is the primary strategy; it handles the ruled tables the
// roster PDFs normally contain.
type GridStrategy struct {
	// MinRows is the minimum row count (header included) for a detected
	// region to count as a table. Zero means the detector default.
	MinRows int
}

// Name returns "grid".
func (s *GridStrategy) Name() string { return "grid" }

// Extract detects at most one table per page and concatenates them in page
// order. Pages without a detectable table contribute nothing.
func (s *GridStrategy) Extract(pdfPath string) (types.RosterTable, error) {
	r, err := reader.Open(pdfPath)
	if err != nil {
		return types.RosterTable{}, fmt.Errorf("opening pdf: %w", err)
	}
	defer r.Close()

	pageCount, err := r.PageCount()
	if err != nil {
		return types.RosterTable{}, fmt.Errorf("reading page count: %w", err)
	}

	detector := tables.NewGeometricDetector()
	cfg := tables.DefaultConfig()
	cfg.UseLines = true
	if s.MinRows > 0 {
		cfg.MinRows = s.MinRows
	}
	if err := detector.Configure(cfg); err != nil {
		return types.RosterTable{}, fmt.Errorf("configuring detector: %w", err)
	}

	var grids [][][]string
	for i := 0; i < pageCount; i++ {
		page, err := r.GetPage(i)
		if err != nil {
			continue
		}
		fragments, err := r.ExtractTextFragments(page)
		if err != nil || len(fragments) == 0 {
			continue
		}

		width, _ := page.Width()
		height, _ := page.Height()
		modelPage := model.NewPage(width, height)
		modelPage.Number = i + 1
		modelPage.RawText = toModelFragments(fragments)

		found, err := detector.Detect(modelPage)
		if err != nil || len(found) == 0 {
			continue
		}
		// One tabular region per page is assumed; take the first detection.
		grids = append(grids, cellGrid(found[0]))
	}

	return buildTable(grids), nil
}

// toModelFragments converts reader-level text fragments into the model
// fragments the detector consumes.
func toModelFragments(fragments []text.TextFragment) []model.TextFragment {
	out := make([]model.TextFragment, len(fragments))
	for i, f := range fragments {
		out[i] = model.TextFragment{
			Text:     f.Text,
			BBox:     model.BBox{X: f.X, Y: f.Y, Width: f.Width, Height: f.Height},
			FontSize: f.FontSize,
			FontName: f.FontName,
		}
	}
	return out
}

// cellGrid flattens a detected table into rows of cell text.
func cellGrid(t *model.Table) [][]string {
	grid := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = cell.Text
		}
		grid = append(grid, cells)
	}
	return grid
}
