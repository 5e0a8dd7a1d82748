// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import "strings"

const maxSlugLength = 80

// Slug derives the unique storage key for an article from its publisher and
// extracted title, e.g. ("CDC", "Breastfeeding FAQ") -> "cdc-breastfeeding-faq".
// Non-alphanumeric runs collapse to a single hyphen; overly long slugs are
// cut at a word boundary.
func Slug(organization, title string) string {
	var b strings.Builder
	hyphenPending := false
	for _, r := range strings.ToLower(organization + " " + title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if hyphenPending && b.Len() > 0 {
				b.WriteByte('-')
			}
			hyphenPending = false
			b.WriteRune(r)
		default:
			hyphenPending = true
		}
	}
	s := b.String()
	if len(s) > maxSlugLength {
		cut := s[:maxSlugLength]
		if i := strings.LastIndex(cut, "-"); i > 0 {
			cut = cut[:i]
		}
		s = cut
	}
	return s
}
