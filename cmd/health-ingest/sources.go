package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the configured target sites",
	Long: `Sources prints the source table: each configured site with its fetch
strategy and discovery endpoints.`,
	RunE: runSources,
}

func init() {
	sourcesCmd.Flags().Bool("json", false, "output the source table as JSON")

	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	table, err := loadTable(cmd)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(table.Sources)
	}

	fmt.Fprintf(os.Stdout, "%-28s  %-16s  %-9s  %-8s  %s\n",
		"Name", "Organization", "Strategy", "Region", "Discovery")
	for _, s := range table.Sources {
		strategy := string(s.Strategy)
		if strategy == "" {
			strategy = "static"
		}
		fmt.Fprintf(os.Stdout, "%-28s  %-16s  %-9s  %-8s  %d feeds, %d index pages\n",
			s.Name, s.Organization, strategy, s.Region, len(s.Feeds), len(s.IndexPages))
	}
	fmt.Fprintf(os.Stdout, "\n%d sources\n", len(table.Sources))
	return nil
}
