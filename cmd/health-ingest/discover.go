package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/health-ingest/internal/discover"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find candidate article URLs for a configured source",
	Long: `Discover queries a source's feeds and index pages for candidate URLs
without ingesting anything. With --query it additionally asks the Custom
Search API (requires search-api-key and search-engine-id secrets).`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().String("source", "", "source name from the source table (required)")
	discoverCmd.Flags().String("query", "", "additional search API query")
	discoverCmd.Flags().String("api-key", "", "search API key (default: search-api-key secret)")
	discoverCmd.Flags().String("engine-id", "", "search engine ID (default: search-engine-id secret)")
	discoverCmd.Flags().Duration("timeout", 0, "HTTP timeout (default 30s)")
	discoverCmd.Flags().Int("max-candidates", 0, "maximum candidates to return (default 50)")
	discoverCmd.Flags().Bool("json", false, "output candidates as JSON")

	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	sourceName, _ := cmd.Flags().GetString("source")
	if sourceName == "" {
		return fmt.Errorf("--source is required (see: health-ingest sources)")
	}

	table, err := loadTable(cmd)
	if err != nil {
		return err
	}
	src, ok := table.ByName(sourceName)
	if !ok {
		return fmt.Errorf("unknown source %q (see: health-ingest sources)", sourceName)
	}

	backends := discover.BackendsFor(src)
	if query, _ := cmd.Flags().GetString("query"); query != "" {
		apiKey, _ := cmd.Flags().GetString("api-key")
		engineID, _ := cmd.Flags().GetString("engine-id")
		backends = append(backends, &discover.SearchBackend{
			Source:   src,
			Query:    query,
			APIKey:   secretDefault("search-api-key", apiKey),
			EngineID: secretDefault("search-engine-id", engineID),
		})
	}
	if len(backends) == 0 {
		return fmt.Errorf("source %q has no feeds or index pages; use --query", src.Name)
	}

	out, err := discover.Discover(context.Background(), backends, discoveryConfigFromFlags(cmd), os.Stderr)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out.Candidates)
	}

	for _, c := range out.Candidates {
		if c.Title != "" {
			fmt.Printf("%s\t%s\n", c.URL, c.Title)
		} else {
			fmt.Println(c.URL)
		}
	}
	fmt.Fprintf(os.Stderr, "\n%d candidates (%d duplicates removed)\n", len(out.Candidates), out.DupsRemoved)
	return nil
}
