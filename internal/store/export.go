// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/health-ingest/pkg/types"
)

// exportEnvelope is the on-disk export document shape.
type exportEnvelope struct {
	Articles []exportArticle `json:"articles" yaml:"articles"`
}

type exportArticle struct {
	types.ArticleRecord `yaml:",inline"`
	Citations           []types.CitationRecord `json:"citations,omitempty" yaml:"citations,omitempty"`
}

// ExportYAML writes matching articles with their citations to
// dataDir/export/export.yaml.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) error {
	env, err := s.buildExport(ctx, opts)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshaling export: %w", err)
	}
	return s.writeExport("export.yaml", data)
}

// ExportJSON writes matching articles with their citations to
// dataDir/export/export.json.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions) error {
	env, err := s.buildExport(ctx, opts)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling export: %w", err)
	}
	return s.writeExport("export.json", data)
}

func (s *Store) buildExport(ctx context.Context, opts QueryOptions) (exportEnvelope, error) {
	if opts.MaxResults <= 0 {
		// Exports default to everything, unlike interactive queries.
		opts.MaxResults = 1 << 30
	}
	articles, err := s.Retrieve(ctx, opts)
	if err != nil {
		return exportEnvelope{}, err
	}

	env := exportEnvelope{Articles: make([]exportArticle, 0, len(articles))}
	for _, a := range articles {
		citations, err := s.CitationsFor(ctx, a.Slug)
		if err != nil {
			return exportEnvelope{}, err
		}
		env.Articles = append(env.Articles, exportArticle{ArticleRecord: a, Citations: citations})
	}
	return env, nil
}

func (s *Store) writeExport(name string, data []byte) error {
	dir := filepath.Join(s.dataDir, exportDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Stats summarizes store contents for the operator-facing CLI.
type Stats struct {
	Articles    int            `json:"articles" yaml:"articles"`
	Citations   int            `json:"citations" yaml:"citations"`
	ByStatus    map[string]int `json:"by_status" yaml:"by_status"`
	ByPublisher map[string]int `json:"by_publisher" yaml:"by_publisher"`
}

// CollectStats counts articles and citations, grouped by status and by
// citation publisher.
func (s *Store) CollectStats(ctx context.Context) (Stats, error) {
	stats := Stats{
		ByStatus:    make(map[string]int),
		ByPublisher: make(map[string]int),
	}

	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM articles`).Scan(&stats.Articles); err != nil {
		return Stats{}, fmt.Errorf("counting articles: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM citations`).Scan(&stats.Citations); err != nil {
		return Stats{}, fmt.Errorf("counting citations: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT status, count(*) FROM articles GROUP BY status`)
	if err != nil {
		return Stats{}, fmt.Errorf("grouping by status: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return Stats{}, fmt.Errorf("scanning status group: %w", err)
		}
		stats.ByStatus[status] = n
	}
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}

	pubRows, err := s.db.QueryContext(ctx, `SELECT publisher, count(*) FROM citations GROUP BY publisher`)
	if err != nil {
		return Stats{}, fmt.Errorf("grouping by publisher: %w", err)
	}
	defer pubRows.Close()
	for pubRows.Next() {
		var publisher string
		var n int
		if err := pubRows.Scan(&publisher, &n); err != nil {
			return Stats{}, fmt.Errorf("scanning publisher group: %w", err)
		}
		stats.ByPublisher[publisher] = n
	}
	return stats, pubRows.Err()
}
