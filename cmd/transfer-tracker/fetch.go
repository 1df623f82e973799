// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/transfer-tracker/internal/fetch"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [url]...",
	Short: "Download roster snapshot PDFs",
	Long: `Fetch downloads one or more roster snapshot PDFs into rosters/raw, writing
a YAML sidecar per snapshot with the source URL and fetch time. Snapshots
already on disk are skipped, so re-running a batch only downloads what is
missing.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()

	f := &fetch.Fetcher{
		Client:    &http.Client{Timeout: httpTimeoutOrDefault(cfg)},
		UserAgent: cfg.HTTP.UserAgent,
		Config:    cfg.Fetch,
	}

	result := f.FetchBatch(context.Background(), args, os.Stderr)
	if result.HasFailures() {
		return fmt.Errorf("%d of %d downloads failed", result.Failed, result.Total())
	}
	return nil
}
