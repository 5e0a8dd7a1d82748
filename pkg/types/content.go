// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// CandidateURL is a URL proposed for ingestion, with optional hint metadata
// from the discovery page. Candidates are consumed once and not persisted.
type CandidateURL struct {
	// URL is the absolute page URL.
	URL string `json:"url" yaml:"url"`

	// Title is the display title from the discovery page, if any.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Category is a hint category from the discovery page, if any.
	Category string `json:"category,omitempty" yaml:"category,omitempty"`

	// Source names the configured source the candidate belongs to.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}

// ExtractedContent holds the title and segmented body text produced by the
// structural extractor. It is never mutated after creation: every paragraph
// is 30-2000 characters with a link-to-word ratio below 0.3, in document
// order, with byte-identical duplicates removed.
type ExtractedContent struct {
	// Title is the discovered page title.
	Title string `json:"title" yaml:"title"`

	// Paragraphs holds the accepted text blocks in document order.
	Paragraphs []string `json:"paragraphs" yaml:"paragraphs"`

	// BodyMarkdown is the chosen content region converted to Markdown.
	BodyMarkdown string `json:"body_markdown" yaml:"body_markdown"`

	// ContentLength is the length of the paragraphs joined with "\n\n".
	ContentLength int `json:"content_length" yaml:"content_length"`

	// ParagraphCount is len(Paragraphs).
	ParagraphCount int `json:"paragraph_count" yaml:"paragraph_count"`

	// WordCount is the whitespace-split token count over the joined content.
	WordCount int `json:"word_count" yaml:"word_count"`

	// SourceSelector records which content selector matched, or "body" for
	// the full-document fallback.
	SourceSelector string `json:"source_selector" yaml:"source_selector"`
}

// Content returns the paragraphs joined with the paragraph separator.
func (e ExtractedContent) Content() string {
	out := ""
	for i, p := range e.Paragraphs {
		if i > 0 {
			out += "\n\n"
		}
		out += p
	}
	return out
}

// ValidationVerdict holds the outcome of quality validation. FailureReasons
// is the full set of failed checks, not just the first, so an operator can
// decide between adjusting thresholds and abandoning the source.
type ValidationVerdict struct {
	Valid          bool     `json:"valid" yaml:"valid"`
	FailureReasons []string `json:"failure_reasons,omitempty" yaml:"failure_reasons,omitempty"`

	TitleLength    int `json:"title_length" yaml:"title_length"`
	ContentLength  int `json:"content_length" yaml:"content_length"`
	ParagraphCount int `json:"paragraph_count" yaml:"paragraph_count"`
}

// DuplicateKind classifies the outcome of duplicate resolution.
type DuplicateKind string

const (
	// DuplicateNone means no existing record matches the candidate.
	DuplicateNone DuplicateKind = "new"

	// DuplicateExactSlug means a record with the candidate's slug exists.
	DuplicateExactSlug DuplicateKind = "exact_slug"

	// DuplicateProvenanceURL means one or more records embed the candidate's
	// source URL in their provenance field under a different slug.
	DuplicateProvenanceURL DuplicateKind = "provenance_url"

	// DuplicateSlugCollision means a record with the candidate's slug exists
	// but its provenance references a different source page: two distinct
	// pages generated the same slug, usually through title formatting drift.
	DuplicateSlugCollision DuplicateKind = "slug_collision"
)

// DuplicateVerdict is computed fresh per candidate; the store is the single
// source of truth and verdicts are never cached across runs.
type DuplicateVerdict struct {
	Kind DuplicateKind `json:"kind" yaml:"kind"`

	// Matches lists the slugs of all matching existing records.
	Matches []string `json:"matches,omitempty" yaml:"matches,omitempty"`
}

// IsDuplicate reports whether the candidate already exists in the store.
func (v DuplicateVerdict) IsDuplicate() bool {
	return v.Kind != DuplicateNone
}
