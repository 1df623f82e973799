// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/transfer-tracker/internal/export"
	"github.com/pdiddy/transfer-tracker/internal/extract"
	"github.com/pdiddy/transfer-tracker/internal/reshape"
	"github.com/pdiddy/transfer-tracker/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract [pdf]",
	Short: "Extract and reshape one roster snapshot",
	Long: `Extract pulls the staff table out of a roster snapshot PDF, reshapes the
title columns into (department, title, name) entries, and writes the
normalized roster. The dump can later be fed to "diff --from-csv" instead
of re-extracting the PDF.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("strategy", "", "force one extraction strategy: grid or stream")
	extractCmd.Flags().String("format", "csv", "dump format: csv or yaml")
	extractCmd.Flags().String("out", "", "output file (default: stdout)")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()
	if strategy, _ := cmd.Flags().GetString("strategy"); strategy != "" {
		cfg.Extraction.Strategies = []string{strategy}
	}

	roster, err := extractSnapshot(args[0], cfg)
	if err != nil {
		return err
	}

	out := os.Stdout
	if path, _ := cmd.Flags().GetString("out"); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		defer f.Close()
		out = f
	}

	format, _ := cmd.Flags().GetString("format")
	switch strings.ToLower(format) {
	case "csv":
		return export.WriteRosterCSV(out, roster, cfg.Schema)
	case "yaml":
		return export.WriteRosterYAML(out, roster)
	default:
		return fmt.Errorf("unsupported format %q: use csv or yaml", format)
	}
}

// extractSnapshot runs extraction and reshaping for one PDF, reporting
// progress to stderr.
func extractSnapshot(pdfPath string, cfg types.PipelineConfig) (types.NormalizedRoster, error) {
	fmt.Fprintf(os.Stderr, "processing %s\n", filepath.Base(pdfPath))

	extractor := extract.NewExtractor(cfg.Extraction)
	tbl, err := extractor.ExtractFile(pdfPath, os.Stderr)
	if err != nil {
		if errors.Is(err, extract.ErrNoTable) {
			return nil, fmt.Errorf("%s: no roster table found (tried %v)", filepath.Base(pdfPath), cfg.Extraction.Strategies)
		}
		return nil, fmt.Errorf("%s: %w", filepath.Base(pdfPath), err)
	}

	roster, err := reshape.Reshape(tbl, cfg.Schema)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(pdfPath), err)
	}
	fmt.Fprintf(os.Stderr, "reshaped:  %d entr(ies) across %d department(s)\n",
		len(roster), len(roster.Departments()))
	return roster, nil
}
