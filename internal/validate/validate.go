// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate scores extracted content against quality thresholds.
// All checks run independently and every failure is collected, so an
// operator can decide between adjusting thresholds and abandoning a source.
package validate

import (
	"fmt"
	"strings"

	"github.com/pdiddy/health-ingest/pkg/types"
)

const (
	// minTitleLength matches the extractor's acceptance threshold.
	minTitleLength = 5

	// minCountedParagraphLength filters entries when re-deriving the
	// paragraph count from joined content.
	minCountedParagraphLength = 30

	paragraphSeparator = "\n\n"
)

// Fixed failure-reason taxonomy.
const (
	ReasonMissingTitle     = "missing or too-short title"
	ReasonContentTooShort  = "content too short"
	ReasonContentTooLong   = "content too long"
	ReasonTooFewParagraphs = "too few paragraphs"
)

// Check validates title and joined content against cfg thresholds and
// returns the verdict with measured stats.
func Check(title, content string, cfg types.ValidationConfig) types.ValidationVerdict {
	cfg = cfg.Defaulted()

	paragraphCount := countParagraphs(content)
	v := types.ValidationVerdict{
		TitleLength:    len(title),
		ContentLength:  len(content),
		ParagraphCount: paragraphCount,
	}

	if len(strings.TrimSpace(title)) <= minTitleLength {
		v.FailureReasons = append(v.FailureReasons, ReasonMissingTitle)
	}
	if len(content) < cfg.MinContentLength {
		v.FailureReasons = append(v.FailureReasons,
			fmt.Sprintf("%s (%d < %d)", ReasonContentTooShort, len(content), cfg.MinContentLength))
	}
	if len(content) > cfg.MaxContentLength {
		v.FailureReasons = append(v.FailureReasons,
			fmt.Sprintf("%s (%d > %d)", ReasonContentTooLong, len(content), cfg.MaxContentLength))
	}
	if paragraphCount < cfg.MinParagraphs {
		v.FailureReasons = append(v.FailureReasons,
			fmt.Sprintf("%s (%d < %d)", ReasonTooFewParagraphs, paragraphCount, cfg.MinParagraphs))
	}

	v.Valid = len(v.FailureReasons) == 0
	return v
}

// countParagraphs re-derives the paragraph count by splitting on the
// separator and keeping entries over the minimum counted length.
func countParagraphs(content string) int {
	count := 0
	for _, p := range strings.Split(content, paragraphSeparator) {
		if len(strings.TrimSpace(p)) > minCountedParagraphLength {
			count++
		}
	}
	return count
}
