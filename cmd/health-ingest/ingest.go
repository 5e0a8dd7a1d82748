package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/health-ingest/internal/discover"
	"github.com/pdiddy/health-ingest/internal/ingest"
	"github.com/pdiddy/health-ingest/internal/sources"
	"github.com/pdiddy/health-ingest/internal/store"
	"github.com/pdiddy/health-ingest/pkg/types"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultItemDelay = 1 * time.Second
	defaultUserAgent = "health-ingest/0.1"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [urls...]",
	Short: "Fetch, extract, validate, and store candidate articles",
	Long: `Ingest runs the full pipeline for each candidate URL: fetch the page,
extract title and body, validate quality, check for duplicates, and insert
an article record with its citation. Candidates come from the command line,
or from the source table's discovery endpoints with --from-discovery.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().String("source", "", "source name from the source table")
	ingestCmd.Flags().String("strategy", "", "override fetch strategy: static or rendered")
	ingestCmd.Flags().Duration("timeout", 0, "fetch timeout per attempt (default 30s)")
	ingestCmd.Flags().Duration("delay", 0, "delay between consecutive candidates (default 1s)")
	ingestCmd.Flags().Int("max-attempts", 0, "fetch attempts for retryable errors (default 3)")
	ingestCmd.Flags().Bool("from-discovery", false, "discover candidates from the source table instead of taking URLs")
	ingestCmd.Flags().Int("workers", 2, "concurrent sources in --from-discovery mode (max 4, never concurrent against one site)")

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	table, err := loadTable(cmd)
	if err != nil {
		return err
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	delay, _ := cmd.Flags().GetDuration("delay")
	if delay == 0 {
		delay = defaultItemDelay
	}
	coordinator := ingest.New(st, types.IngestConfig{ItemDelay: delay}, fetchConfigFromFlags(cmd))
	ctx := context.Background()

	fromDiscovery, _ := cmd.Flags().GetBool("from-discovery")
	sourceName, _ := cmd.Flags().GetString("source")

	if fromDiscovery {
		if len(args) > 0 {
			return fmt.Errorf("--from-discovery does not take URL arguments")
		}
		return runIngestFromDiscovery(ctx, cmd, coordinator, table, sourceName)
	}

	if len(args) == 0 {
		return fmt.Errorf("provide one or more candidate URLs, or use --from-discovery")
	}
	if sourceName == "" {
		return fmt.Errorf("--source is required when passing URLs")
	}
	src, ok := table.ByName(sourceName)
	if !ok {
		return fmt.Errorf("unknown source %q (see: health-ingest sources)", sourceName)
	}

	candidates := make([]types.CandidateURL, len(args))
	for i, u := range args {
		candidates[i] = types.CandidateURL{URL: u, Source: src.Name}
	}

	report, err := coordinator.IngestBatch(ctx, candidates, src, os.Stdout)
	if err != nil {
		return err
	}
	if report.HasFailures() {
		return fmt.Errorf("%d candidate(s) failed ingestion", report.Failed)
	}
	return nil
}

func runIngestFromDiscovery(ctx context.Context, cmd *cobra.Command, coordinator *ingest.Coordinator, table *sources.Table, sourceName string) error {
	selected := table.Sources
	if sourceName != "" {
		src, ok := table.ByName(sourceName)
		if !ok {
			return fmt.Errorf("unknown source %q (see: health-ingest sources)", sourceName)
		}
		selected = []sources.Source{src}
	}

	discoveryCfg := discoveryConfigFromFlags(cmd)
	var batches []ingest.SourceBatch
	for _, src := range selected {
		backends := discover.BackendsFor(src)
		if len(backends) == 0 {
			fmt.Fprintf(os.Stderr, "warning: source %s has no discovery endpoints\n", src.Name)
			continue
		}
		out, err := discover.Discover(ctx, backends, discoveryCfg, os.Stderr)
		if err != nil {
			return fmt.Errorf("discovering for %s: %w", src.Name, err)
		}
		if len(out.Candidates) == 0 {
			continue
		}
		batches = append(batches, ingest.SourceBatch{Source: src, Candidates: out.Candidates})
	}
	if len(batches) == 0 {
		return fmt.Errorf("discovery produced no candidates")
	}

	workers, _ := cmd.Flags().GetInt("workers")
	report, err := coordinator.IngestAll(ctx, batches, workers, os.Stdout)
	if err != nil {
		return err
	}
	if report.HasFailures() {
		return fmt.Errorf("%d candidate(s) failed ingestion", report.Failed)
	}
	return nil
}

// --- shared helpers ---

func loadTable(cmd *cobra.Command) (*sources.Table, error) {
	path, _ := cmd.Flags().GetString("sources-file")
	return sources.Load(path)
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	return store.Open(types.StoreConfig{DataDir: dataDir, MaxResults: maxResults})
}

func fetchConfigFromFlags(cmd *cobra.Command) types.FetchConfig {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	strategy, _ := cmd.Flags().GetString("strategy")
	maxAttempts, _ := cmd.Flags().GetInt("max-attempts")

	return types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		Strategy:    types.FetchStrategy(strategy),
		MaxAttempts: maxAttempts,
	}
}

func discoveryConfigFromFlags(cmd *cobra.Command) types.DiscoveryConfig {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	maxCandidates, _ := cmd.Flags().GetInt("max-candidates")

	return types.DiscoveryConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		MaxCandidates:     maxCandidates,
		InterBackendDelay: 1 * time.Second,
	}
}
