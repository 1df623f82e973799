package main

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Diff compares the two most recent roster dumps in rosters/dumps (sorted by
// name, so date-stamped dumps line up) and writes the transfer report to
// output/transfers.csv.
func Diff() error {
	mg.Deps(Build)

	dumps, err := filepath.Glob("rosters/dumps/*.csv")
	if err != nil {
		return err
	}
	if len(dumps) < 2 {
		fmt.Println("[diff] Need at least two dumps in rosters/dumps. Run `mage extract` first.")
		return nil
	}
	sort.Strings(dumps)
	prev, curr := dumps[len(dumps)-2], dumps[len(dumps)-1]

	out := filepath.Join("output", "transfers.csv")
	fmt.Printf("[diff] %s vs %s -> %s\n", prev, curr, out)
	bin := filepath.Join(binDir, binName)
	return sh.RunV(bin, "diff", "--from-csv", prev, curr, "--format", "csv", "--out", out)
}
