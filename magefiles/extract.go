package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Extract runs the extraction stage over every PDF in rosters/raw, writing a
// normalized roster dump per snapshot into rosters/dumps.
func Extract() error {
	mg.Deps(Build)

	pdfs, err := filepath.Glob("rosters/raw/*.pdf")
	if err != nil {
		return err
	}
	if len(pdfs) == 0 {
		fmt.Println("[extract] No PDFs in rosters/raw. Run `mage init` and drop snapshots there.")
		return nil
	}

	bin := filepath.Join(binDir, binName)
	for _, pdf := range pdfs {
		base := strings.TrimSuffix(filepath.Base(pdf), ".pdf")
		out := filepath.Join("rosters", "dumps", base+".csv")
		fmt.Printf("[extract] %s -> %s\n", pdf, out)
		if err := sh.RunV(bin, "extract", pdf, "--out", out); err != nil {
			return err
		}
	}
	return nil
}
