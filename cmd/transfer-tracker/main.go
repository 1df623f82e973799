// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the transfer-tracker CLI. It wires
// configuration and secrets into the pipeline stages; all logic lives in
// internal/ packages.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/transfer-tracker/internal/secrets"
	"github.com/pdiddy/transfer-tracker/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when set, otherwise the secret value for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the transfer-tracker CLI.
var rootCmd = &cobra.Command{
	Use:   "transfer-tracker",
	Short: "Track staff department transfers between roster snapshot PDFs",
	Long: `transfer-tracker compares staff roster tables extracted from two PDF
snapshots (for example last year's and this year's staff directory) and
reports every employee whose department changed.

Each pipeline stage is a subcommand: extract pulls and reshapes one
snapshot's roster table, diff runs the full comparison between two
snapshots.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./transfer-tracker.yaml or ~/.config/transfer-tracker/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("transfer-tracker")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "transfer-tracker"))
		}
	}

	viper.SetEnvPrefix("TRANSFER_TRACKER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// pipelineConfig merges defaults with the config file. Flag overrides are
// applied per subcommand.
func pipelineConfig() types.PipelineConfig {
	cfg := types.DefaultConfig()

	if cols := viper.GetStringSlice("schema.title_columns"); len(cols) > 0 {
		cfg.Schema.TitleColumns = cols
	}
	if v := viper.GetString("schema.department_column"); v != "" {
		cfg.Schema.DepartmentColumn = v
	}
	if v := viper.GetString("schema.identity_column"); v != "" {
		cfg.Schema.IdentityColumn = v
	}
	if v := viper.GetString("schema.title_column"); v != "" {
		cfg.Schema.TitleColumn = v
	}
	if aliases := viper.GetStringMapString("schema.column_aliases"); len(aliases) > 0 {
		cfg.Schema.ColumnAliases = aliases
	}

	if v := viper.GetString("fetch.rosters_dir"); v != "" {
		cfg.Fetch.RostersDir = v
	}
	if viper.IsSet("fetch.download_delay") {
		cfg.Fetch.DownloadDelay = viper.GetDuration("fetch.download_delay")
	}

	if strategies := viper.GetStringSlice("extraction.strategies"); len(strategies) > 0 {
		cfg.Extraction.Strategies = strategies
	}
	if v := viper.GetInt("extraction.min_rows"); v > 0 {
		cfg.Extraction.MinRows = v
	}

	if viper.IsSet("normalization.enabled") {
		cfg.Normalization.Enabled = viper.GetBool("normalization.enabled")
	}
	if v := viper.GetString("normalization.model"); v != "" {
		cfg.Normalization.Model = v
	}
	if v := viper.GetString("normalization.endpoint"); v != "" {
		cfg.Normalization.Endpoint = v
	}
	if v := viper.GetDuration("normalization.timeout"); v > 0 {
		cfg.Normalization.Timeout = v
	}
	if v := viper.GetInt("normalization.max_parallel"); v > 0 {
		cfg.Normalization.MaxParallel = v
	}
	cfg.Normalization.APIKey = secretDefault("openai-api-key", viper.GetString("normalization.api_key"))

	if v := viper.GetString("export.format"); v != "" {
		cfg.Export.Format = v
	}
	if v := viper.GetString("export.out_dir"); v != "" {
		cfg.Export.OutDir = v
	}
	if v := viper.GetDuration("http.timeout"); v > 0 {
		cfg.HTTP.Timeout = v
	}

	return cfg
}

// httpTimeoutOrDefault keeps a sane floor on the shared HTTP timeout.
func httpTimeoutOrDefault(cfg types.PipelineConfig) time.Duration {
	if cfg.HTTP.Timeout > 0 {
		return cfg.HTTP.Timeout
	}
	return 45 * time.Second
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
