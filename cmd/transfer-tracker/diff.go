// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/transfer-tracker/internal/diff"
	"github.com/pdiddy/transfer-tracker/internal/export"
	"github.com/pdiddy/transfer-tracker/internal/normalize"
	"github.com/pdiddy/transfer-tracker/pkg/types"
)

var diffCmd = &cobra.Command{
	Use:   "diff [previous] [current]",
	Short: "Report department transfers between two roster snapshots",
	Long: `Diff extracts both roster snapshot PDFs, reshapes them, and joins them on
employee identity. Every employee whose department differs between the
previous and current snapshot is reported.

With --from-csv the arguments are normalized roster dumps produced by
"extract" instead of PDFs. With --normalize each department string is
cleaned through the configured AI endpoint before comparison; a failed
cleanup call keeps the original value and never aborts the run.`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().Bool("from-csv", false, "arguments are roster CSV dumps, not PDFs")
	diffCmd.Flags().Bool("normalize", false, "clean department strings via the AI endpoint before the join")
	diffCmd.Flags().String("format", "", "report format: table, csv, xlsx, or json")
	diffCmd.Flags().String("out", "", "report file (default: stdout for csv/json)")
	diffCmd.Flags().String("dump-rosters", "", "directory to write both normalized rosters to, for inspection")

	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()
	ctx := context.Background()

	engine := diff.New(cfg.Schema)
	if enabled, _ := cmd.Flags().GetBool("normalize"); enabled || cfg.Normalization.Enabled {
		n, err := normalize.NewAINormalizer(cfg.Normalization, &http.Client{Timeout: httpTimeoutOrDefault(cfg)})
		if err != nil {
			return err
		}
		n.UserAgent = cfg.HTTP.UserAgent
		engine.Normalizer = &normalize.Batcher{
			N:        n,
			Parallel: cfg.Normalization.MaxParallel,
			Warn:     os.Stderr,
		}
	}

	fromCSV, _ := cmd.Flags().GetBool("from-csv")

	var result types.DiffResult
	if fromCSV {
		prev, curr, err := loadRosterDumps(args[0], args[1])
		if err != nil {
			return err
		}
		result, err = engine.DiffTables(ctx, prev, curr)
		if err != nil {
			return err
		}
	} else {
		// Each snapshot is extracted independently so a failure on one side
		// still reports the other side's outcome.
		prev, prevErr := extractSnapshot(args[0], cfg)
		curr, currErr := extractSnapshot(args[1], cfg)
		if prevErr != nil || currErr != nil {
			if prevErr != nil {
				fmt.Fprintf(os.Stderr, "previous snapshot failed: %v\n", prevErr)
			}
			if currErr != nil {
				fmt.Fprintf(os.Stderr, "current snapshot failed: %v\n", currErr)
			}
			return fmt.Errorf("snapshot processing failed")
		}

		if dumpDir, _ := cmd.Flags().GetString("dump-rosters"); dumpDir != "" {
			if err := dumpRosters(dumpDir, prev, curr); err != nil {
				return err
			}
		}

		var err error
		result, err = engine.Diff(ctx, prev, curr)
		if err != nil {
			return err
		}
	}

	return writeDiffResult(cmd, cfg, result)
}

func loadRosterDumps(prevPath, currPath string) (prev, curr types.RosterTable, err error) {
	load := func(path string) (types.RosterTable, error) {
		f, err := os.Open(path)
		if err != nil {
			return types.RosterTable{}, fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()
		return export.ReadTableCSV(f)
	}
	if prev, err = load(prevPath); err != nil {
		return
	}
	curr, err = load(currPath)
	return
}

func dumpRosters(dir string, prev, curr types.NormalizedRoster) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	for name, roster := range map[string]types.NormalizedRoster{
		"previous.yaml": prev,
		"current.yaml":  curr,
	} {
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		if err := export.WriteRosterYAML(f, roster); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

func writeDiffResult(cmd *cobra.Command, cfg types.PipelineConfig, result types.DiffResult) error {
	format, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("out")
	if format == "" {
		format = cfg.Export.Format
	}

	switch strings.ToLower(format) {
	case "", "table":
		export.RenderTransfers(os.Stdout, result)
		return nil
	case "csv":
		out, closeFn, err := openOut(outPath)
		if err != nil {
			return err
		}
		defer closeFn()
		return export.WriteTransfersCSV(out, result.Transfers)
	case "json":
		out, closeFn, err := openOut(outPath)
		if err != nil {
			return err
		}
		defer closeFn()
		return export.WriteTransfersJSON(out, result)
	case "xlsx":
		if outPath == "" {
			outPath = filepath.Join(cfg.Export.OutDir, "transfers.xlsx")
		}
		data, err := export.TransfersXLSX(result.Transfers)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", outPath)
		return nil
	default:
		return fmt.Errorf("unsupported format %q: use table, csv, xlsx, or json", format)
	}
}

// openOut returns the report writer: the named file, or stdout when path is
// empty.
func openOut(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}
