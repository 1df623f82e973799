// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// SnapshotMeta records where a roster snapshot PDF came from and when it was
// fetched. It is written as a YAML sidecar next to the downloaded PDF.
type SnapshotMeta struct {
	// Label identifies the snapshot, usually derived from the source URL
	// (e.g. "roster-2026-04").
	Label string `json:"label" yaml:"label"`

	// SourceURL is the URL the PDF was downloaded from.
	SourceURL string `json:"source_url" yaml:"source_url"`

	// PDFPath is the local path of the downloaded PDF.
	PDFPath string `json:"pdf_path" yaml:"pdf_path"`

	// FetchedAt is when the download completed.
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`

	// Bytes is the size of the downloaded PDF.
	Bytes int64 `json:"bytes" yaml:"bytes"`
}

// FetchConfig holds settings for downloading roster snapshot PDFs.
type FetchConfig struct {
	// RostersDir is the base directory for snapshots; PDFs land in
	// RostersDir/raw with YAML sidecars alongside.
	RostersDir string `json:"rosters_dir" yaml:"rosters_dir"`

	// DownloadDelay is the pause between consecutive downloads in a batch.
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay"`
}
