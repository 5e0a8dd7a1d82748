// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dedup decides whether a candidate article already exists in the
// content store. The slug is the storage-level unique key and is checked
// first; a substring search over the provenance field catches records that
// were stored under a different slug for the same source page, which the
// unique key alone cannot detect. Provenance matching works retroactively
// over historical records that predate the structured source_url column.
package dedup

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/health-ingest/pkg/types"
)

// Lookup is the narrow store surface the resolver consumes.
type Lookup interface {
	// FindBySlug returns the record with the given slug, or nil.
	FindBySlug(ctx context.Context, slug string) (*types.ArticleRecord, error)

	// FindByProvenanceSubstring returns records whose provenance or
	// structured source URL contains text, case-insensitively.
	FindByProvenanceSubstring(ctx context.Context, text string) ([]types.ArticleRecord, error)
}

// Resolve classifies a candidate by slug and provenance URL, in that
// precedence order, so each candidate gets one deterministic verdict.
// An empty sourceURL skips provenance matching and only the slug check
// applies; free-text provenance is not guaranteed to embed a URL.
func Resolve(ctx context.Context, store Lookup, slug, sourceURL string) (types.DuplicateVerdict, error) {
	sourceURL = strings.TrimSpace(sourceURL)

	existing, err := store.FindBySlug(ctx, slug)
	if err != nil {
		return types.DuplicateVerdict{}, fmt.Errorf("slug lookup for %q: %w", slug, err)
	}
	if existing != nil {
		kind := types.DuplicateExactSlug
		if sourceURL != "" && !recordReferencesURL(existing, sourceURL) {
			// Same slug, different page: title formatting drift produced a
			// colliding slug for distinct content.
			kind = types.DuplicateSlugCollision
		}
		return types.DuplicateVerdict{
			Kind:    kind,
			Matches: []string{existing.Slug},
		}, nil
	}

	if sourceURL == "" {
		return types.DuplicateVerdict{Kind: types.DuplicateNone}, nil
	}

	matches, err := store.FindByProvenanceSubstring(ctx, sourceURL)
	if err != nil {
		return types.DuplicateVerdict{}, fmt.Errorf("provenance lookup for %q: %w", sourceURL, err)
	}
	if len(matches) > 0 {
		// A single source URL may have been ingested more than once under
		// different slugs before this resolver existed; surface every match.
		slugs := make([]string, 0, len(matches))
		for _, m := range matches {
			slugs = append(slugs, m.Slug)
		}
		return types.DuplicateVerdict{
			Kind:    types.DuplicateProvenanceURL,
			Matches: slugs,
		}, nil
	}

	return types.DuplicateVerdict{Kind: types.DuplicateNone}, nil
}

// recordReferencesURL reports whether the record's provenance text or
// structured source URL embeds sourceURL.
func recordReferencesURL(rec *types.ArticleRecord, sourceURL string) bool {
	needle := strings.ToLower(sourceURL)
	return strings.Contains(strings.ToLower(rec.Provenance), needle) ||
		strings.Contains(strings.ToLower(rec.SourceURL), needle)
}
