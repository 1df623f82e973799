// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns roster snapshot PDFs into flat record tables. Table
// detection is performed by pluggable strategies tried in order until one
// yields a non-empty table.
package extract

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdiddy/transfer-tracker/pkg/types"
)

// ErrNoTable is returned when no strategy could detect a table in the
// document. Callers decide whether to report "no data" or abort.
var ErrNoTable = errors.New("no table detected in document")

// Strategy extracts tabular content from one PDF document. Implementations
// exist for geometric grid detection and whitespace-delimited text streams.
type Strategy interface {
	// Name returns the strategy identifier ("grid", "stream").
	Name() string

	// Extract returns the roster table found in the PDF at pdfPath. An empty
	// table with a nil error means the document was readable but contained no
	// detectable table.
	Extract(pdfPath string) (types.RosterTable, error)
}

// Extractor runs an ordered list of strategies against a document.
type Extractor struct {
	strategies []Strategy
}

// NewExtractor builds an Extractor from configuration. Unknown strategy names
// are ignored; an empty or fully unknown list falls back to grid then stream.
func NewExtractor(cfg types.ExtractionConfig) *Extractor {
	var strategies []Strategy
	for _, name := range cfg.Strategies {
		switch name {
		case "grid":
			strategies = append(strategies, &GridStrategy{MinRows: cfg.MinRows})
		case "stream":
			strategies = append(strategies, &StreamStrategy{MinRows: cfg.MinRows})
		}
	}
	if len(strategies) == 0 {
		strategies = []Strategy{
			&GridStrategy{MinRows: cfg.MinRows},
			&StreamStrategy{MinRows: cfg.MinRows},
		}
	}
	return &Extractor{strategies: strategies}
}

// NewExtractorWith builds an Extractor from explicit strategies. Used by
// tests and callers that construct strategies themselves.
func NewExtractorWith(strategies ...Strategy) *Extractor {
	return &Extractor{strategies: strategies}
}

// ExtractFile runs the strategies in order against the PDF at path and
// returns the first non-empty table. Per-strategy progress is written to w.
// When every strategy comes back empty or failing, the zero table and
// ErrNoTable are returned.
func (e *Extractor) ExtractFile(path string, w io.Writer) (types.RosterTable, error) {
	for _, s := range e.strategies {
		tbl, err := runStrategy(s, path)
		if err != nil {
			fmt.Fprintf(w, "failed:    %s strategy: %v\n", s.Name(), err)
			continue
		}
		if tbl.Empty() {
			fmt.Fprintf(w, "empty:     %s strategy found no table\n", s.Name())
			continue
		}
		fmt.Fprintf(w, "extracted: %d row(s), %d column(s) via %s strategy\n",
			len(tbl.Rows), len(tbl.Columns), s.Name())
		return tbl, nil
	}
	return types.RosterTable{}, ErrNoTable
}

// ExtractReader stages a PDF byte stream through a temporary file and runs
// ExtractFile on it. Both underlying PDF libraries want a path.
func (e *Extractor) ExtractReader(r io.Reader, w io.Writer) (types.RosterTable, error) {
	tmp, err := os.CreateTemp("", "roster-*.pdf")
	if err != nil {
		return types.RosterTable{}, fmt.Errorf("staging pdf: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return types.RosterTable{}, fmt.Errorf("staging pdf: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return types.RosterTable{}, fmt.Errorf("staging pdf: %w", err)
	}
	return e.ExtractFile(tmp.Name(), w)
}

// runStrategy invokes one strategy, converting panics from the underlying PDF
// library into errors so a malformed document cannot take down the pipeline.
func runStrategy(s Strategy, path string) (tbl types.RosterTable, err error) {
	defer func() {
		if r := recover(); r != nil {
			tbl = types.RosterTable{}
			err = fmt.Errorf("%s strategy panicked: %v", s.Name(), r)
		}
	}()
	return s.Extract(path)
}

// buildTable assembles per-page cell grids into one RosterTable. The first
// row of the first grid is the column header; each later grid's first row is
// consumed as that page's repeated header. Data rows are kept only when their
// cell count exactly equals the header's, so a short or merged row can never
// be mapped onto the wrong columns. All cells are trimmed.
func buildTable(grids [][][]string) types.RosterTable {
	var tbl types.RosterTable
	for _, grid := range grids {
		if len(grid) == 0 {
			continue
		}
		if tbl.Columns == nil {
			tbl.Columns = trimCells(grid[0])
		}
		for _, row := range grid[1:] {
			if len(row) != len(tbl.Columns) {
				continue
			}
			rec := make(types.FlatRecord, len(tbl.Columns))
			for i, col := range tbl.Columns {
				rec[col] = strings.TrimSpace(row[i])
			}
			tbl.Rows = append(tbl.Rows, rec)
		}
	}
	return tbl
}

func trimCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}
	return out
}
