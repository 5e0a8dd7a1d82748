// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pdiddy/health-ingest/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.StoreConfig{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleArticle(slug string) types.ArticleRecord {
	return types.ArticleRecord{
		Slug:         slug,
		Title:        "Starting Solid Foods",
		BodyMarkdown: "## When to start\n\nMost infants are ready around six months of age.",
		OneLiner:     "When and how to introduce solid foods.",
		KeyFacts:     []string{"readiness around 6 months", "iron-rich first foods"},
		Entities:     []string{"CDC"},
		AgeRange:     "4-12 months",
		Region:       "US",
		LastReviewed: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		ReviewedBy:   "CDC",
		Provenance:   "CDC — https://www.cdc.gov/infant-feeding/solid-foods.html",
		SourceURL:    "https://www.cdc.gov/infant-feeding/solid-foods.html",
		Status:       types.StatusDraft,
		Keywords:     []string{"weaning", "solid foods"},
	}
}

func TestInsertAndFindBySlug(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := sampleArticle("cdc-starting-solid-foods")
	if err := s.InsertArticle(ctx, want); err != nil {
		t.Fatalf("InsertArticle() error = %v", err)
	}

	got, err := s.FindBySlug(ctx, "cdc-starting-solid-foods")
	if err != nil {
		t.Fatalf("FindBySlug() error = %v", err)
	}
	if got == nil {
		t.Fatal("FindBySlug() = nil, want record")
	}
	if got.Title != want.Title || got.Provenance != want.Provenance || got.SourceURL != want.SourceURL {
		t.Errorf("record mismatch: got %+v", got)
	}
	if len(got.KeyFacts) != 2 || got.KeyFacts[0] != want.KeyFacts[0] {
		t.Errorf("KeyFacts = %v, want %v", got.KeyFacts, want.KeyFacts)
	}
	if len(got.Keywords) != 2 {
		t.Errorf("Keywords = %v", got.Keywords)
	}
	if !got.LastReviewed.Equal(want.LastReviewed) {
		t.Errorf("LastReviewed = %v, want %v", got.LastReviewed, want.LastReviewed)
	}
}

func TestFindBySlugAbsent(t *testing.T) {
	s := newTestStore(t)

	got, err := s.FindBySlug(context.Background(), "no-such-slug")
	if err != nil {
		t.Fatalf("FindBySlug() error = %v", err)
	}
	if got != nil {
		t.Errorf("FindBySlug() = %+v, want nil", got)
	}
}

func TestInsertArticleSlugConflict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.InsertArticle(ctx, sampleArticle("cdc-breastfeeding-faq")); err != nil {
		t.Fatalf("first insert error = %v", err)
	}

	err := s.InsertArticle(ctx, sampleArticle("cdc-breastfeeding-faq"))
	if !errors.Is(err, ErrSlugConflict) {
		t.Fatalf("second insert error = %v, want ErrSlugConflict", err)
	}
}

func TestFindByProvenanceSubstring(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := sampleArticle("cdc-solid-foods")
	b := sampleArticle("cdc-solid-foods-reingested")
	b.Provenance = "Centers for Disease Control — see https://www.cdc.gov/infant-feeding/solid-foods.html"
	b.SourceURL = ""
	c := sampleArticle("nhs-weaning")
	c.Provenance = "NHS — https://www.nhs.uk/weaning"
	c.SourceURL = "https://www.nhs.uk/weaning"

	for _, rec := range []types.ArticleRecord{a, b, c} {
		if err := s.InsertArticle(ctx, rec); err != nil {
			t.Fatalf("InsertArticle(%s) error = %v", rec.Slug, err)
		}
	}

	t.Run("matches provenance and source url", func(t *testing.T) {
		got, err := s.FindByProvenanceSubstring(ctx, "https://www.cdc.gov/infant-feeding/solid-foods.html")
		if err != nil {
			t.Fatalf("FindByProvenanceSubstring() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("matches = %d, want 2: %+v", len(got), got)
		}
	})

	t.Run("case insensitive", func(t *testing.T) {
		got, err := s.FindByProvenanceSubstring(ctx, "HTTPS://WWW.NHS.UK/WEANING")
		if err != nil {
			t.Fatalf("FindByProvenanceSubstring() error = %v", err)
		}
		if len(got) != 1 || got[0].Slug != "nhs-weaning" {
			t.Fatalf("matches = %+v, want nhs-weaning", got)
		}
	})

	t.Run("escapes LIKE wildcards", func(t *testing.T) {
		got, err := s.FindByProvenanceSubstring(ctx, "https://www.cdc.gov/%")
		if err != nil {
			t.Fatalf("FindByProvenanceSubstring() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("matches = %+v, want none for literal %% pattern", got)
		}
	})
}

func TestInsertCitationAndLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.InsertArticle(ctx, sampleArticle("cdc-solid-foods")); err != nil {
		t.Fatalf("InsertArticle() error = %v", err)
	}

	id, err := s.InsertCitation(ctx, types.CitationRecord{
		ArticleSlug: "cdc-solid-foods",
		Title:       "Starting Solid Foods",
		URL:         "https://www.cdc.gov/infant-feeding/solid-foods.html",
		Publisher:   "CDC",
		Date:        time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("InsertCitation() error = %v", err)
	}
	if id == "" {
		t.Fatal("InsertCitation() returned empty id")
	}

	citations, err := s.CitationsFor(ctx, "cdc-solid-foods")
	if err != nil {
		t.Fatalf("CitationsFor() error = %v", err)
	}
	if len(citations) != 1 {
		t.Fatalf("citations = %d, want 1", len(citations))
	}
	if citations[0].Publisher != "CDC" || citations[0].ID != id {
		t.Errorf("citation = %+v", citations[0])
	}
}

func TestRetrieve(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := sampleArticle("cdc-solid-foods")
	b := sampleArticle("nhs-sleep-safety")
	b.Title = "Safe Sleep for Babies"
	b.BodyMarkdown = "Place babies on their backs to sleep for every sleep."
	b.Region = "UK"
	b.Status = types.StatusPublished
	for _, rec := range []types.ArticleRecord{a, b} {
		if err := s.InsertArticle(ctx, rec); err != nil {
			t.Fatalf("InsertArticle() error = %v", err)
		}
	}

	t.Run("full text", func(t *testing.T) {
		got, err := s.Retrieve(ctx, QueryOptions{Query: "sleep"})
		if err != nil {
			t.Fatalf("Retrieve() error = %v", err)
		}
		if len(got) != 1 || got[0].Slug != "nhs-sleep-safety" {
			t.Fatalf("Retrieve() = %+v, want nhs-sleep-safety", got)
		}
	})

	t.Run("status filter", func(t *testing.T) {
		got, err := s.Retrieve(ctx, QueryOptions{Status: types.StatusPublished})
		if err != nil {
			t.Fatalf("Retrieve() error = %v", err)
		}
		if len(got) != 1 || got[0].Slug != "nhs-sleep-safety" {
			t.Fatalf("Retrieve() = %+v", got)
		}
	})

	t.Run("keyword filter", func(t *testing.T) {
		got, err := s.Retrieve(ctx, QueryOptions{Keyword: "weaning"})
		if err != nil {
			t.Fatalf("Retrieve() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("Retrieve() = %d records, want 2", len(got))
		}
	})

	t.Run("region filter", func(t *testing.T) {
		got, err := s.Retrieve(ctx, QueryOptions{Region: "UK"})
		if err != nil {
			t.Fatalf("Retrieve() error = %v", err)
		}
		if len(got) != 1 || got[0].Region != "UK" {
			t.Fatalf("Retrieve() = %+v", got)
		}
	})
}

func TestCollectStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := sampleArticle("cdc-solid-foods")
	b := sampleArticle("nhs-weaning")
	b.Status = types.StatusPublished
	for _, rec := range []types.ArticleRecord{a, b} {
		if err := s.InsertArticle(ctx, rec); err != nil {
			t.Fatalf("InsertArticle() error = %v", err)
		}
	}
	if _, err := s.InsertCitation(ctx, types.CitationRecord{ArticleSlug: "cdc-solid-foods", Publisher: "CDC"}); err != nil {
		t.Fatalf("InsertCitation() error = %v", err)
	}

	stats, err := s.CollectStats(ctx)
	if err != nil {
		t.Fatalf("CollectStats() error = %v", err)
	}
	if stats.Articles != 2 || stats.Citations != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.ByStatus["draft"] != 1 || stats.ByStatus["published"] != 1 {
		t.Errorf("ByStatus = %v", stats.ByStatus)
	}
	if stats.ByPublisher["CDC"] != 1 {
		t.Errorf("ByPublisher = %v", stats.ByPublisher)
	}
}

func TestExportYAML(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(types.StoreConfig{DataDir: dir})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	if err := s.InsertArticle(ctx, sampleArticle("cdc-solid-foods")); err != nil {
		t.Fatalf("InsertArticle() error = %v", err)
	}
	if _, err := s.InsertCitation(ctx, types.CitationRecord{ArticleSlug: "cdc-solid-foods", Publisher: "CDC"}); err != nil {
		t.Fatalf("InsertCitation() error = %v", err)
	}

	if err := s.ExportYAML(ctx, QueryOptions{}); err != nil {
		t.Fatalf("ExportYAML() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "export", "export.yaml"))
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("export.yaml is empty")
	}
}
