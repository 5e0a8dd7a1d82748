// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists article and citation records in SQLite and serves
// the lookups duplicate resolution depends on. The UNIQUE constraint on the
// article slug is the final dedup authority: a conflicting insert surfaces
// as ErrSlugConflict so the coordinator can classify it even when the
// pre-insert check raced with another writer.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/pdiddy/health-ingest/pkg/types"
)

const (
	indexDir  = "index"
	exportDir = "export"
	dbFile    = "content.db"
)

// ErrSlugConflict marks an insert that lost to an existing slug.
var ErrSlugConflict = errors.New("article slug already exists")

// Store manages the content SQLite database.
type Store struct {
	db         *sql.DB
	dataDir    string
	maxResults int
}

// Open opens or creates the content database at dataDir/index/content.db
// and creates the schema if it does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.DataDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, dataDir: cfg.DataDir, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS articles (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			slug TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			body_markdown TEXT NOT NULL,
			one_liner TEXT,
			key_facts TEXT,
			entities TEXT,
			age_range TEXT,
			region TEXT,
			last_reviewed TEXT,
			reviewed_by TEXT,
			provenance TEXT NOT NULL,
			source_url TEXT,
			status TEXT NOT NULL DEFAULT 'draft',
			keywords TEXT,
			created_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_source_url ON articles(source_url)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_status ON articles(status)`,
		`CREATE TABLE IF NOT EXISTS citations (
			id TEXT PRIMARY KEY,
			article_slug TEXT NOT NULL REFERENCES articles(slug),
			title TEXT,
			url TEXT,
			publisher TEXT,
			date TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_citations_article ON citations(article_slug)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='articles_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE articles_fts USING fts5(title, body_markdown, content=articles, content_rowid=rowid)`,
			`CREATE TRIGGER articles_ai AFTER INSERT ON articles BEGIN
				INSERT INTO articles_fts(rowid, title, body_markdown) VALUES (new.rowid, new.title, new.body_markdown);
			END`,
			`CREATE TRIGGER articles_ad AFTER DELETE ON articles BEGIN
				INSERT INTO articles_fts(articles_fts, rowid, title, body_markdown) VALUES('delete', old.rowid, old.title, old.body_markdown);
			END`,
			`CREATE TRIGGER articles_au AFTER UPDATE ON articles BEGIN
				INSERT INTO articles_fts(articles_fts, rowid, title, body_markdown) VALUES('delete', old.rowid, old.title, old.body_markdown);
				INSERT INTO articles_fts(rowid, title, body_markdown) VALUES (new.rowid, new.title, new.body_markdown);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// FindBySlug returns the article with the given slug, or nil when absent.
func (s *Store) FindBySlug(ctx context.Context, slug string) (*types.ArticleRecord, error) {
	query, args, err := articleSelect().Where(sq.Eq{"slug": slug}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building slug query: %w", err)
	}

	row := s.db.QueryRowContext(ctx, query, args...)
	rec, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("slug lookup: %w", err)
	}
	return rec, nil
}

// FindByProvenanceSubstring returns articles whose provenance field or
// structured source URL contains text, case-insensitively. SQLite LIKE is
// case-insensitive for ASCII, which covers URLs.
func (s *Store) FindByProvenanceSubstring(ctx context.Context, text string) ([]types.ArticleRecord, error) {
	pattern := "%" + escapeLike(text) + "%"
	query, args, err := articleSelect().
		Where(sq.Or{
			sq.Expr(`provenance LIKE ? ESCAPE '\'`, pattern),
			sq.Expr(`source_url LIKE ? ESCAPE '\'`, pattern),
		}).
		OrderBy("slug").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building provenance query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("provenance lookup: %w", err)
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

// InsertArticle writes a new article record. A slug collision returns
// ErrSlugConflict; the record is never updated through this path.
func (s *Store) InsertArticle(ctx context.Context, rec types.ArticleRecord) error {
	keyFacts, _ := json.Marshal(rec.KeyFacts)
	entities, _ := json.Marshal(rec.Entities)
	keywords, _ := json.Marshal(rec.Keywords)

	lastReviewed := ""
	if !rec.LastReviewed.IsZero() {
		lastReviewed = rec.LastReviewed.Format(time.RFC3339)
	}
	status := rec.Status
	if status == "" {
		status = types.StatusDraft
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO articles (slug, title, body_markdown, one_liner, key_facts,
			entities, age_range, region, last_reviewed, reviewed_by,
			provenance, source_url, status, keywords, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Slug, rec.Title, rec.BodyMarkdown, rec.OneLiner, string(keyFacts),
		string(entities), rec.AgeRange, rec.Region, lastReviewed, rec.ReviewedBy,
		rec.Provenance, rec.SourceURL, string(status), string(keywords),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return fmt.Errorf("inserting %q: %w", rec.Slug, ErrSlugConflict)
		}
		return fmt.Errorf("inserting article %q: %w", rec.Slug, err)
	}
	return nil
}

// InsertCitation writes a citation record, generating an ID when absent.
func (s *Store) InsertCitation(ctx context.Context, rec types.CitationRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	date := ""
	if !rec.Date.IsZero() {
		date = rec.Date.Format(time.RFC3339)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO citations (id, article_slug, title, url, publisher, date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ArticleSlug, rec.Title, rec.URL, rec.Publisher, date,
	)
	if err != nil {
		return "", fmt.Errorf("inserting citation for %q: %w", rec.ArticleSlug, err)
	}
	return rec.ID, nil
}

// CitationsFor returns the citations attached to an article.
func (s *Store) CitationsFor(ctx context.Context, slug string) ([]types.CitationRecord, error) {
	query, args, err := sq.Select("id", "article_slug", "title", "url", "publisher", "date").
		From("citations").
		Where(sq.Eq{"article_slug": slug}).
		OrderBy("date").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building citation query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("citation lookup: %w", err)
	}
	defer rows.Close()

	var out []types.CitationRecord
	for rows.Next() {
		var rec types.CitationRecord
		var date sql.NullString
		if err := rows.Scan(&rec.ID, &rec.ArticleSlug, &rec.Title, &rec.URL, &rec.Publisher, &date); err != nil {
			return nil, fmt.Errorf("scanning citation: %w", err)
		}
		if date.Valid && date.String != "" {
			if t, perr := time.Parse(time.RFC3339, date.String); perr == nil {
				rec.Date = t
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// articleColumns lists the scan order shared by the select helpers.
var articleColumns = []string{
	"slug", "title", "body_markdown", "one_liner", "key_facts", "entities",
	"age_range", "region", "last_reviewed", "reviewed_by", "provenance",
	"source_url", "status", "keywords",
}

func articleSelect() sq.SelectBuilder {
	return sq.Select(articleColumns...).From("articles")
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*types.ArticleRecord, error) {
	var (
		rec          types.ArticleRecord
		oneLiner     sql.NullString
		keyFacts     sql.NullString
		entities     sql.NullString
		ageRange     sql.NullString
		region       sql.NullString
		lastReviewed sql.NullString
		reviewedBy   sql.NullString
		sourceURL    sql.NullString
		status       string
		keywords     sql.NullString
	)

	if err := row.Scan(
		&rec.Slug, &rec.Title, &rec.BodyMarkdown, &oneLiner, &keyFacts, &entities,
		&ageRange, &region, &lastReviewed, &reviewedBy, &rec.Provenance,
		&sourceURL, &status, &keywords,
	); err != nil {
		return nil, err
	}

	rec.OneLiner = oneLiner.String
	rec.AgeRange = ageRange.String
	rec.Region = region.String
	rec.ReviewedBy = reviewedBy.String
	rec.SourceURL = sourceURL.String
	rec.Status = types.ArticleStatus(status)

	if keyFacts.Valid {
		json.Unmarshal([]byte(keyFacts.String), &rec.KeyFacts)
	}
	if entities.Valid {
		json.Unmarshal([]byte(entities.String), &rec.Entities)
	}
	if keywords.Valid {
		json.Unmarshal([]byte(keywords.String), &rec.Keywords)
	}
	if lastReviewed.Valid && lastReviewed.String != "" {
		if t, err := time.Parse(time.RFC3339, lastReviewed.String); err == nil {
			rec.LastReviewed = t
		}
	}
	return &rec, nil
}

// escapeLike escapes LIKE wildcards in user-derived text.
func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
