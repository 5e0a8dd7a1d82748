// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/pdiddy/health-ingest/pkg/types"
)

// QueryOptions holds parameters for content store queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string over title and body.
	Query string

	// Status filters by editorial status.
	Status types.ArticleStatus

	// Region filters by region.
	Region string

	// Keyword filters articles carrying the keyword.
	Keyword string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Status == "" && q.Region == "" && q.Keyword == ""
}

// Retrieve queries stored articles with optional full-text search and
// structured filters. Full-text queries rank by FTS relevance; filter-only
// queries sort by slug.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]types.ArticleRecord, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	cols := make([]string, len(articleColumns))
	for i, c := range articleColumns {
		cols[i] = "a." + c
	}

	var b sq.SelectBuilder
	if opts.Query != "" {
		b = sq.Select(cols...).
			From("articles_fts").
			Join("articles a ON a.rowid = articles_fts.rowid").
			Where(sq.Expr("articles_fts MATCH ?", opts.Query)).
			OrderBy("articles_fts.rank")
	} else {
		b = sq.Select(cols...).
			From("articles a").
			OrderBy("a.slug")
	}

	if opts.Status != "" {
		b = b.Where(sq.Eq{"a.status": string(opts.Status)})
	}
	if opts.Region != "" {
		b = b.Where(sq.Eq{"a.region": opts.Region})
	}
	if opts.Keyword != "" {
		b = b.Where(sq.Expr("EXISTS (SELECT 1 FROM json_each(a.keywords) WHERE value = ?)", opts.Keyword))
	}
	b = b.Limit(uint64(maxResults))

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building retrieve query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w", err)
	}
	defer rows.Close()

	var out []types.ArticleRecord
	for rows.Next() {
		rec, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}
