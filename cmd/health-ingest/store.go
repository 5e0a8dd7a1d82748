// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/health-ingest/internal/store"
	"github.com/pdiddy/health-ingest/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Query, export, and summarize the content store",
	Long: `Store operates on the local SQLite content store built by ingest. Use
subcommands to query articles with full-text search, export them, or print
summary statistics.`,
}

// --- query subcommand ---

var storeQueryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Search stored articles with full-text search and filters",
	Long: `Query searches stored articles using FTS5 full-text search over title
and body, structured filters (status, region, keyword), or a combination.`,
	RunE: runStoreQuery,
}

func runStoreQuery(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide search text, --status, --region, or --keyword")
	}

	results, err := st.Retrieve(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatQueryOutput(results, jsonOutput)
}

func formatQueryOutput(results []types.ArticleRecord, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-40s  %-44s  %-8s  %-9s\n", "Slug", "Title", "Region", "Status")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 107))

	for _, r := range results {
		slug := r.Slug
		if len(slug) > 40 {
			slug = slug[:37] + "..."
		}
		title := r.Title
		if len(title) > 44 {
			title = title[:41] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-40s  %-44s  %-8s  %-9s\n", slug, title, r.Region, r.Status)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- export subcommand ---

var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored articles and citations to YAML or JSON",
	Long: `Export writes the full content store (or a filtered subset) to
<data-dir>/export/export.yaml or export.json. Supports the same filter
flags as query for partial exports.`,
	RunE: runStoreExport,
}

func runStoreExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	dataDir, _ := cmd.Flags().GetString("data-dir")
	opts := queryOptsFromFlags(cmd, args)

	switch format {
	case "yaml", "":
		if err := st.ExportYAML(context.Background(), opts); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/export/export.yaml\n", dataDir)
	case "json":
		if err := st.ExportJSON(context.Background(), opts); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/export/export.json\n", dataDir)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

// --- stats subcommand ---

var storeStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print article and citation counts",
	RunE:  runStoreStats,
}

func runStoreStats(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := st.CollectStats(context.Background())
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	fmt.Printf("Articles:  %d\n", stats.Articles)
	fmt.Printf("Citations: %d\n", stats.Citations)
	if len(stats.ByStatus) > 0 {
		fmt.Println("By status:")
		for status, n := range stats.ByStatus {
			fmt.Printf("  %-10s %d\n", status, n)
		}
	}
	if len(stats.ByPublisher) > 0 {
		fmt.Println("By publisher:")
		for publisher, n := range stats.ByPublisher {
			fmt.Printf("  %-10s %d\n", publisher, n)
		}
	}
	return nil
}

// --- shared helpers ---

func queryOptsFromFlags(cmd *cobra.Command, args []string) store.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	status, _ := cmd.Flags().GetString("status")
	region, _ := cmd.Flags().GetString("region")
	keyword, _ := cmd.Flags().GetString("keyword")
	limit, _ := cmd.Flags().GetInt("limit")

	return store.QueryOptions{
		Query:      queryText,
		Status:     types.ArticleStatus(status),
		Region:     region,
		Keyword:    keyword,
		MaxResults: limit,
	}
}

func init() {
	storeCmd.PersistentFlags().Int("max-results", 20, "default maximum number of query results")

	storeQueryCmd.Flags().String("query", "", "full-text search query")
	storeQueryCmd.Flags().String("status", "", "filter by status: draft or published")
	storeQueryCmd.Flags().String("region", "", "filter by region")
	storeQueryCmd.Flags().String("keyword", "", "filter by keyword")
	storeQueryCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	storeQueryCmd.Flags().Bool("json", false, "output results as JSON")

	storeExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	storeExportCmd.Flags().String("query", "", "full-text search filter for partial export")
	storeExportCmd.Flags().String("status", "", "filter by status for partial export")
	storeExportCmd.Flags().String("region", "", "filter by region for partial export")
	storeExportCmd.Flags().String("keyword", "", "filter by keyword for partial export")
	storeExportCmd.Flags().Int("limit", 0, "maximum articles to export (0 = all)")

	storeStatsCmd.Flags().Bool("json", false, "output stats as JSON")

	storeCmd.AddCommand(storeQueryCmd)
	storeCmd.AddCommand(storeExportCmd)
	storeCmd.AddCommand(storeStatsCmd)

	rootCmd.AddCommand(storeCmd)
}
