// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the health-ingest CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/health-ingest/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the health-ingest CLI.
var rootCmd = &cobra.Command{
	Use:   "health-ingest",
	Short: "Acquisition and deduplication pipeline for authoritative health content",
	Long: `health-ingest fetches long-form health articles from a configured set of
authoritative sites, extracts clean title and body text, validates the
result against quality thresholds, checks it against previously ingested
content, and stores normalized article records with citations.

Each pipeline stage is reachable as a subcommand: discover finds candidate
URLs, ingest runs the full pipeline, store queries and exports the content
store, and sources lists the configured target sites.`,
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

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./health-ingest.yaml or ~/.config/health-ingest/config.yaml)")
	rootCmd.PersistentFlags().String("sources-file", "sources.yaml", "path to the YAML source table")
	rootCmd.PersistentFlags().String("data-dir", "data", "base directory for the content store (contains index/, export/)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("health-ingest")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "health-ingest"))
		}
	}

	viper.SetEnvPrefix("HEALTH_INGEST")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
