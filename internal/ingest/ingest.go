// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest orchestrates the pipeline for candidate URLs: fetch,
// extract, validate, duplicate-check, persist. Each candidate runs the
// stages in order and lands in exactly one terminal status; one candidate's
// failure never aborts the rest of a batch.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/health-ingest/internal/dedup"
	"github.com/pdiddy/health-ingest/internal/extract"
	"github.com/pdiddy/health-ingest/internal/fetch"
	"github.com/pdiddy/health-ingest/internal/sources"
	"github.com/pdiddy/health-ingest/internal/store"
	"github.com/pdiddy/health-ingest/internal/validate"
	"github.com/pdiddy/health-ingest/pkg/types"
)

const maxOneLinerLength = 140

// Status is the terminal state of one candidate.
type Status string

const (
	StatusInserted          Status = "inserted"
	StatusSkippedDuplicate  Status = "skipped_duplicate"
	StatusSkippedLowQuality Status = "skipped_low_quality"
	StatusFailed            Status = "failed"
)

// Outcome records how one candidate finished.
type Outcome struct {
	URL    string
	Slug   string
	Status Status

	// Detail explains skips and failures: failure reasons for low quality,
	// matched slugs for duplicates, the error for failures.
	Detail string

	Duplicate  types.DuplicateVerdict
	Validation types.ValidationVerdict
}

// Store is the persistence surface the coordinator needs.
type Store interface {
	dedup.Lookup
	InsertArticle(ctx context.Context, rec types.ArticleRecord) error
	InsertCitation(ctx context.Context, rec types.CitationRecord) (string, error)
}

// Report summarizes a batch run.
type Report struct {
	Inserted          int
	SkippedDuplicate  int
	SkippedLowQuality int
	Failed            int

	// InsertedSlugs lists the slugs written during the run.
	InsertedSlugs []string
}

// Total returns the number of candidates processed.
func (r Report) Total() int {
	return r.Inserted + r.SkippedDuplicate + r.SkippedLowQuality + r.Failed
}

// HasFailures reports whether any candidate failed.
func (r Report) HasFailures() bool {
	return r.Failed > 0
}

func (r *Report) merge(other Report) {
	r.Inserted += other.Inserted
	r.SkippedDuplicate += other.SkippedDuplicate
	r.SkippedLowQuality += other.SkippedLowQuality
	r.Failed += other.Failed
	r.InsertedSlugs = append(r.InsertedSlugs, other.InsertedSlugs...)
}

// Coordinator runs the pipeline against one content store.
type Coordinator struct {
	store    Store
	cfg      types.IngestConfig
	fetchCfg types.FetchConfig

	now func() time.Time
}

// New returns a coordinator using cfg defaults for every source that does
// not override them.
func New(st Store, cfg types.IngestConfig, fetchCfg types.FetchConfig) *Coordinator {
	return &Coordinator{store: st, cfg: cfg, fetchCfg: fetchCfg, now: time.Now}
}

// IngestOne runs the pipeline for a single candidate, printing per-stage
// status to w. The returned error is non-nil only for run-fatal conditions
// (the store unreachable); all per-candidate problems land in the Outcome.
func (c *Coordinator) IngestOne(ctx context.Context, cand types.CandidateURL, src sources.Source, w io.Writer) (Outcome, error) {
	out := Outcome{URL: cand.URL}

	fetchCfg := src.FetchConfig(c.fetchCfg)
	f, err := fetch.New(fetchCfg)
	if err != nil {
		return out, fmt.Errorf("configuring fetcher for %s: %w", src.Name, err)
	}
	return c.ingest(ctx, f, fetchCfg, cand, src, w)
}

func (c *Coordinator) ingest(ctx context.Context, f fetch.Fetcher, fetchCfg types.FetchConfig, cand types.CandidateURL, src sources.Source, w io.Writer) (Outcome, error) {
	out := Outcome{URL: cand.URL}

	res, err := fetch.WithRetry(ctx, f, cand.URL, fetchCfg)
	if err != nil {
		out.Status = StatusFailed
		out.Detail = err.Error()
		fmt.Fprintf(w, "failed:  %s (%v)\n", cand.URL, err)
		return out, nil
	}

	content, err := extract.Extract(res.HTML)
	if err != nil {
		out.Status = StatusFailed
		out.Detail = err.Error()
		fmt.Fprintf(w, "failed:  %s (extraction: %v)\n", cand.URL, err)
		return out, nil
	}

	verdict := validate.Check(content.Title, content.Content(), src.ValidationConfig(c.cfg.Validation))
	out.Validation = verdict
	if !verdict.Valid {
		out.Status = StatusSkippedLowQuality
		out.Detail = strings.Join(verdict.FailureReasons, "; ")
		fmt.Fprintf(w, "skipped: %s (low quality: %s)\n", cand.URL, out.Detail)
		return out, nil
	}

	slug := Slug(src.Organization, content.Title)
	out.Slug = slug

	dup, err := dedup.Resolve(ctx, c.store, slug, res.FinalURL)
	if err != nil {
		// A failed lookup means the store itself is unhealthy; every
		// remaining candidate would fail the same way.
		return out, fmt.Errorf("duplicate check for %s: %w", slug, err)
	}
	out.Duplicate = dup
	if dup.IsDuplicate() {
		out.Status = StatusSkippedDuplicate
		out.Detail = strings.Join(dup.Matches, ", ")
		fmt.Fprintf(w, "skipped: %s (duplicate of %s)\n", slug, out.Detail)
		return out, nil
	}

	rec := c.buildRecord(slug, content, res.FinalURL, cand, src)
	if err := c.store.InsertArticle(ctx, rec); err != nil {
		if errors.Is(err, store.ErrSlugConflict) {
			// The pre-check raced with another writer; the unique
			// constraint is the authority.
			out.Status = StatusSkippedDuplicate
			out.Duplicate = types.DuplicateVerdict{Kind: types.DuplicateExactSlug, Matches: []string{slug}}
			out.Detail = slug
			fmt.Fprintf(w, "skipped: %s (duplicate of %s)\n", slug, slug)
			return out, nil
		}
		out.Status = StatusFailed
		out.Detail = err.Error()
		fmt.Fprintf(w, "failed:  %s (insert: %v)\n", slug, err)
		return out, nil
	}

	citation := types.CitationRecord{
		ArticleSlug: slug,
		Title:       content.Title,
		URL:         res.FinalURL,
		Publisher:   src.Organization,
		Date:        c.now().UTC(),
	}
	if _, err := c.store.InsertCitation(ctx, citation); err != nil {
		// The article is usable without its citation; report the insert
		// and let the operator follow up.
		fmt.Fprintf(w, "  warning: citation write failed for %s: %v\n", slug, err)
	}

	out.Status = StatusInserted
	fmt.Fprintf(w, "inserted: %s\n", slug)
	return out, nil
}

func (c *Coordinator) buildRecord(slug string, content types.ExtractedContent, finalURL string, cand types.CandidateURL, src sources.Source) types.ArticleRecord {
	body := content.BodyMarkdown
	if body == "" {
		body = content.Content()
	}

	var keywords []string
	if cand.Category != "" {
		keywords = append(keywords, cand.Category)
	} else if src.Category != "" {
		keywords = append(keywords, src.Category)
	}

	return types.ArticleRecord{
		Slug:         slug,
		Title:        content.Title,
		BodyMarkdown: body,
		OneLiner:     oneLiner(content.Paragraphs),
		AgeRange:     src.AgeRange,
		Region:       src.Region,
		ReviewedBy:   src.Organization,
		Provenance:   fmt.Sprintf("%s — %s", src.Organization, finalURL),
		SourceURL:    finalURL,
		Status:       types.StatusDraft,
		Keywords:     keywords,
	}
}

// oneLiner summarizes the article with its leading paragraph, cut at a word
// boundary.
func oneLiner(paragraphs []string) string {
	if len(paragraphs) == 0 {
		return ""
	}
	p := paragraphs[0]
	if len(p) <= maxOneLinerLength {
		return p
	}
	cut := p[:maxOneLinerLength]
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}

// IngestBatch processes one source's candidates strictly in input order with
// a fixed inter-item delay, printing per-item status and a summary to w.
// It stops early only when the store becomes unreachable or ctx is done.
func (c *Coordinator) IngestBatch(ctx context.Context, candidates []types.CandidateURL, src sources.Source, w io.Writer) (Report, error) {
	fetchCfg := src.FetchConfig(c.fetchCfg)
	f, err := fetch.New(fetchCfg)
	if err != nil {
		return Report{}, fmt.Errorf("configuring fetcher for %s: %w", src.Name, err)
	}

	itemDelay := c.cfg.ItemDelay
	if itemDelay <= 0 {
		itemDelay = time.Second
	}

	var report Report
	for i, cand := range candidates {
		if i > 0 {
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			case <-time.After(itemDelay):
			}
		}

		out, err := c.ingest(ctx, f, fetchCfg, cand, src, w)
		if err != nil {
			return report, err
		}
		switch out.Status {
		case StatusInserted:
			report.Inserted++
			report.InsertedSlugs = append(report.InsertedSlugs, out.Slug)
		case StatusSkippedDuplicate:
			report.SkippedDuplicate++
		case StatusSkippedLowQuality:
			report.SkippedLowQuality++
		case StatusFailed:
			report.Failed++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d inserted, %d duplicate, %d low quality, %d failed (total: %d)\n",
		report.Inserted, report.SkippedDuplicate, report.SkippedLowQuality, report.Failed, report.Total())
	return report, nil
}

// SourceBatch pairs a source with its candidate list.
type SourceBatch struct {
	Source     sources.Source
	Candidates []types.CandidateURL
}

const maxSourceWorkers = 4

// IngestAll processes several sources' batches. Within a source, candidates
// run sequentially; across sources, up to workers batches run concurrently
// (never against the same site). Each source's output is buffered and
// written to w as a contiguous block.
func (c *Coordinator) IngestAll(ctx context.Context, batches []SourceBatch, workers int, w io.Writer) (Report, error) {
	if workers < 1 {
		workers = 1
	}
	if workers > maxSourceWorkers {
		workers = maxSourceWorkers
	}
	if workers > len(batches) {
		workers = len(batches)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan SourceBatch)
	var (
		mu       sync.Mutex
		total    Report
		fatalErr error
		wg       sync.WaitGroup
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range jobs {
				var buf bytes.Buffer
				fmt.Fprintf(&buf, "=== %s ===\n", batch.Source.Name)
				report, err := c.IngestBatch(ctx, batch.Candidates, batch.Source, &buf)

				mu.Lock()
				io.Copy(w, &buf)
				total.merge(report)
				if err != nil && fatalErr == nil {
					fatalErr = fmt.Errorf("source %s: %w", batch.Source.Name, err)
					cancel()
				}
				mu.Unlock()
			}
		}()
	}

	for _, batch := range batches {
		select {
		case jobs <- batch:
		case <-ctx.Done():
		}
	}
	close(jobs)
	wg.Wait()

	if fatalErr != nil {
		return total, fatalErr
	}
	fmt.Fprintf(w, "\nRun summary: %d inserted, %d duplicate, %d low quality, %d failed (total: %d)\n",
		total.Inserted, total.SkippedDuplicate, total.SkippedLowQuality, total.Failed, total.Total())
	return total, nil
}
