// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch downloads roster snapshot PDFs and records where they came
// from. Downloads are atomic: the PDF is written to a temp file and renamed
// into place only on success, and a YAML sidecar holds the snapshot metadata.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/transfer-tracker/internal/httputil"
	"github.com/pdiddy/transfer-tracker/pkg/types"
)

const rawDir = "raw"

// BatchResult holds the outcome of a batch fetch run.
type BatchResult struct {
	Downloaded int
	Skipped    int
	Failed     int
	Snapshots  []*types.SnapshotMeta
}

// Total returns the total number of URLs processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// HasFailures reports whether any downloads failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Fetcher downloads roster snapshots over HTTP.
type Fetcher struct {
	Client    *http.Client
	UserAgent string
	Config    types.FetchConfig
}

// FetchSnapshot downloads one roster PDF. If a PDF with the same label
// already exists on disk the download is skipped and the existing sidecar is
// returned. The skipped return value reports whether the download was skipped.
func (f *Fetcher) FetchSnapshot(ctx context.Context, rawURL string, w io.Writer) (meta *types.SnapshotMeta, skipped bool, err error) {
	label, err := labelFromURL(rawURL)
	if err != nil {
		return nil, false, err
	}

	pdfPath := filepath.Join(f.Config.RostersDir, rawDir, label+".pdf")
	metaPath := filepath.Join(f.Config.RostersDir, rawDir, label+".yaml")

	if _, statErr := os.Stat(pdfPath); statErr == nil {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", label)
		m, readErr := readMeta(metaPath)
		if readErr != nil {
			m = &types.SnapshotMeta{Label: label, SourceURL: rawURL, PDFPath: pdfPath}
		}
		return m, true, nil
	}

	if err := os.MkdirAll(filepath.Dir(pdfPath), 0o755); err != nil {
		return nil, false, fmt.Errorf("creating directory: %w", err)
	}

	fmt.Fprintf(w, "downloading: %s\n", label)

	size, err := f.downloadFile(ctx, rawURL, pdfPath)
	if err != nil {
		return nil, false, fmt.Errorf("downloading %s: %w", label, err)
	}

	m := &types.SnapshotMeta{
		Label:     label,
		SourceURL: rawURL,
		PDFPath:   pdfPath,
		FetchedAt: time.Now().UTC(),
		Bytes:     size,
	}
	if err := writeMeta(m, metaPath); err != nil {
		return nil, false, fmt.Errorf("writing metadata for %s: %w", label, err)
	}
	return m, false, nil
}

// FetchBatch downloads multiple roster PDFs, printing per-item status and
// returning a summary. It continues after individual failures and applies a
// delay between consecutive downloads.
func (f *Fetcher) FetchBatch(ctx context.Context, urls []string, w io.Writer) BatchResult {
	var result BatchResult
	for i, u := range urls {
		if i > 0 && f.Config.DownloadDelay > 0 {
			time.Sleep(f.Config.DownloadDelay)
		}
		meta, wasSkipped, err := f.FetchSnapshot(ctx, u, w)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", u, err)
			result.Failed++
			continue
		}
		if wasSkipped {
			result.Skipped++
		} else {
			result.Downloaded++
		}
		result.Snapshots = append(result.Snapshots, meta)
	}
	fmt.Fprintf(w, "\nBatch summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		result.Downloaded, result.Skipped, result.Failed, result.Total())
	return result
}

// downloadFile fetches url to destPath via a temp file renamed on success,
// returning the downloaded size.
func (f *Fetcher) downloadFile(ctx context.Context, rawURL, destPath string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}
	req.Header.Set("Accept", "application/pdf")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := httputil.DoWithRetry(ctx, client, req, 2)
	if err != nil {
		return 0, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP %d from %s", resp.StatusCode, rawURL)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".fetch-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	size, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("renaming temp file: %w", err)
	}
	return size, nil
}

// labelFromURL derives a filesystem-safe snapshot label from the URL's last
// path element, stripping any .pdf suffix.
func labelFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	base := filepath.Base(u.Path)
	base = strings.TrimSuffix(base, ".pdf")
	if base == "" || base == "." || base == "/" {
		return "", fmt.Errorf("cannot derive a snapshot label from %q", rawURL)
	}

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String(), nil
}

func writeMeta(m *types.SnapshotMeta, path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func readMeta(path string) (*types.SnapshotMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m types.SnapshotMeta
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
