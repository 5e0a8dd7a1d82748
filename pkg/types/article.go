// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ArticleStatus indicates the editorial state of a stored article.
type ArticleStatus string

const (
	StatusDraft     ArticleStatus = "draft"
	StatusPublished ArticleStatus = "published"
)

// ArticleRecord holds a normalized article stored in the content store.
// Slug is the globally unique storage key. Provenance is a free-text field
// embedding the source organization and, where available, the exact source
// URL; SourceURL carries the URL in structured form for newer records.
type ArticleRecord struct {
	// Slug is the human-readable unique identifier (e.g. "cdc-breastfeeding-faq").
	Slug string `json:"slug" yaml:"slug"`

	// Title is the article title as extracted from the source page.
	Title string `json:"title" yaml:"title"`

	// BodyMarkdown is the article body in Markdown.
	BodyMarkdown string `json:"body_markdown" yaml:"body_markdown"`

	// OneLiner is a short summary line.
	OneLiner string `json:"one_liner,omitempty" yaml:"one_liner,omitempty"`

	// KeyFacts lists standalone facts in document order.
	KeyFacts []string `json:"key_facts,omitempty" yaml:"key_facts,omitempty"`

	// Entities names organizations, conditions, and substances mentioned.
	Entities []string `json:"entities,omitempty" yaml:"entities,omitempty"`

	// AgeRange and Region scope the guidance (e.g. "0-12 months", "US").
	AgeRange string `json:"age_range,omitempty" yaml:"age_range,omitempty"`
	Region   string `json:"region,omitempty" yaml:"region,omitempty"`

	// LastReviewed is the date the source last reviewed the content.
	LastReviewed time.Time `json:"last_reviewed,omitempty" yaml:"last_reviewed,omitempty"`

	// ReviewedBy names the reviewing organization or person.
	ReviewedBy string `json:"reviewed_by,omitempty" yaml:"reviewed_by,omitempty"`

	// Provenance embeds the source organization and source URL as free text.
	// Duplicate detection matches candidate URLs against this field by
	// substring, so it must contain the exact source URL where available.
	Provenance string `json:"provenance" yaml:"provenance"`

	// SourceURL is the structured source URL. Legacy records may have only
	// the URL embedded in Provenance.
	SourceURL string `json:"source_url,omitempty" yaml:"source_url,omitempty"`

	// Status is the editorial state; the pipeline always inserts drafts.
	Status ArticleStatus `json:"status" yaml:"status"`

	// Keywords lists search keywords.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// CitationRecord holds provenance data for a stored article. Citations are
// created alongside the article's first insert and never updated or deleted
// by the pipeline.
type CitationRecord struct {
	// ID is a generated unique identifier.
	ID string `json:"id" yaml:"id"`

	// ArticleSlug references the ArticleRecord this citation belongs to.
	ArticleSlug string `json:"article_slug" yaml:"article_slug"`

	// Title is the cited page title.
	Title string `json:"title" yaml:"title"`

	// URL is the cited page URL.
	URL string `json:"url" yaml:"url"`

	// Publisher is the source organization (e.g. "CDC", "NHS").
	Publisher string `json:"publisher" yaml:"publisher"`

	// Date is the citation date (usually the ingest date).
	Date time.Time `json:"date" yaml:"date"`
}
