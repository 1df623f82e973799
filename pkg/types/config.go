// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "transfer-tracker/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SchemaConfig describes the expected roster table schema: the department
// column, the identity column created by reshaping, the fixed vocabulary of
// title columns, and known aliases for column labels.
type SchemaConfig struct {
	// DepartmentColumn is the canonical label of the department column.
	DepartmentColumn string `json:"department_column" yaml:"department_column"`

	// IdentityColumn is the canonical label under which employee names are
	// exposed after reshaping. Employee names are the only identity available
	// in the source documents.
	IdentityColumn string `json:"identity_column" yaml:"identity_column"`

	// TitleColumn is the canonical label of the title column in reshaped output.
	TitleColumn string `json:"title_column" yaml:"title_column"`

	// TitleColumns is the fixed vocabulary of job-title category columns whose
	// cells hold employee names.
	TitleColumns []string `json:"title_columns" yaml:"title_columns"`

	// ColumnAliases maps known alternate column labels onto canonical ones,
	// so tables extracted from independently produced PDFs can be joined.
	ColumnAliases map[string]string `json:"column_aliases,omitempty" yaml:"column_aliases,omitempty"`
}

// DefaultSchema returns the roster schema used by the Japanese municipal
// staff tables this tool was built for.
func DefaultSchema() SchemaConfig {
	return SchemaConfig{
		DepartmentColumn: "部署",
		IdentityColumn:   "氏名",
		TitleColumn:      "役職",
		TitleColumns: []string{
			"部長", "課長・主幹", "課長補佐", "係長・相当職",
			"職員", "単労職", "会計年度職員", "臨時職員",
		},
		ColumnAliases: map[string]string{
			"名前":        "氏名",
			"職員名":       "氏名",
			"full name": "氏名",
			"name":      "氏名",
			"所属":        "部署",
			"部":         "部署",
		},
	}
}

// ExtractionConfig holds settings for the extraction stage.
type ExtractionConfig struct {
	// Strategies is the ordered list of extraction strategies to try:
	// "grid" (geometric line/alignment detection) and "stream"
	// (whitespace-delimited text). The first strategy yielding a non-empty
	// table wins.
	Strategies []string `json:"strategies" yaml:"strategies"`

	// MinRows is the minimum row count for a detected region to count as a
	// table (header included).
	MinRows int `json:"min_rows" yaml:"min_rows"`
}

// NormalizationConfig holds settings for the optional department-name
// normalization collaborator. Normalization is advisory: any failure falls
// back to the unnormalized value and the pipeline continues.
type NormalizationConfig struct {
	// Enabled turns on AI-backed normalization of department strings before
	// the diff join.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Model is the model identifier (e.g. "gpt-4.1-mini").
	Model string `json:"model" yaml:"model"`

	// Endpoint is the chat-completions URL.
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// APIKey is the authentication key. Usually loaded from .secrets/openai-api-key.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Timeout is the per-call deadline; on timeout the original value is kept.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// MaxParallel bounds concurrent normalization calls.
	MaxParallel int `json:"max_parallel" yaml:"max_parallel"`
}

// ExportConfig holds settings for result export.
type ExportConfig struct {
	// Format selects the transfer report format: table, csv, xlsx, or json.
	Format string `json:"format" yaml:"format"`

	// OutDir is the directory for exported reports and roster dumps.
	OutDir string `json:"out_dir" yaml:"out_dir"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Schema        SchemaConfig        `json:"schema" yaml:"schema"`
	Fetch         FetchConfig         `json:"fetch" yaml:"fetch"`
	Extraction    ExtractionConfig    `json:"extraction" yaml:"extraction"`
	Normalization NormalizationConfig `json:"normalization" yaml:"normalization"`
	Export        ExportConfig        `json:"export" yaml:"export"`
	HTTP          HTTPConfig          `json:"http" yaml:"http"`
}

// DefaultConfig returns the pipeline configuration used when no config file
// or flags override it.
func DefaultConfig() PipelineConfig {
	return PipelineConfig{
		Schema: DefaultSchema(),
		Fetch: FetchConfig{
			RostersDir:    "rosters",
			DownloadDelay: time.Second,
		},
		Extraction: ExtractionConfig{
			Strategies: []string{"grid", "stream"},
			MinRows:    2,
		},
		Normalization: NormalizationConfig{
			Enabled:     false,
			Model:       "gpt-4.1-mini",
			Endpoint:    "https://api.openai.com/v1/chat/completions",
			Timeout:     30 * time.Second,
			MaxParallel: 4,
		},
		Export: ExportConfig{
			Format: "table",
			OutDir: "output",
		},
		HTTP: HTTPConfig{
			Timeout:   45 * time.Second,
			UserAgent: "transfer-tracker/0.1",
		},
	}
}
