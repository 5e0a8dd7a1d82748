// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract locates the title and main content region in arbitrary
// HTML and segments it into clean text blocks. Target sites vary widely in
// markup conventions, so both title and region discovery walk an ordered
// list of fallback selectors and stop at the first acceptance.
package extract

import (
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/health-ingest/pkg/types"
)

const (
	// minTitleLength rejects stub titles like "FAQ".
	minTitleLength = 5

	// minRegionTextLength qualifies a candidate main-content region.
	minRegionTextLength = 100

	// minParagraphLength and maxParagraphLength bound accepted text blocks.
	minParagraphLength = 30
	maxParagraphLength = 2000

	// maxLinkRatio rejects blocks where links dominate the words; high link
	// density signals navigation or listing content, not prose.
	maxLinkRatio = 0.3

	// paragraphSeparator joins accepted blocks into the content string.
	paragraphSeparator = "\n\n"
)

// titleStrategy is one entry in the ordered title discovery chain.
type titleStrategy struct {
	name string
	find func(doc *goquery.Document) string
}

// titleChain is evaluated in priority order; the first result longer than
// minTitleLength wins. Some pages mark the true heading with a metadata tag
// rather than a semantic heading element, hence the og:title entry.
var titleChain = []titleStrategy{
	{"h1", func(doc *goquery.Document) string {
		return doc.Find("h1").First().Text()
	}},
	{"header-title", func(doc *goquery.Document) string {
		return doc.Find(".article-title, .entry-title, .page-title, header h1, .post-title").First().Text()
	}},
	{"og:title", func(doc *goquery.Document) string {
		v, _ := doc.Find("meta[property='og:title']").Attr("content")
		return v
	}},
	{"title", func(doc *goquery.Document) string {
		return doc.Find("title").First().Text()
	}},
}

// noiseSelector matches elements removed before paragraph extraction:
// scripts, navigation chrome, and a fixed denylist of presentational classes.
const noiseSelector = "script, style, noscript, iframe, svg, form, nav, footer, aside, " +
	"[role='navigation'], [role='banner'], [role='complementary'], " +
	".sidebar, .advertisement, .ad, .ads, .ad-container, .comments, .comment, " +
	".share, .social, .social-share, .related, .related-links, .newsletter, " +
	".cookie-banner, .breadcrumb, .breadcrumbs, .menu, .pagination, .skip-link"

// contentSelectors is the ordered main-region chain: semantic containers
// first, then common content class names. The first region whose text
// exceeds minRegionTextLength is chosen; the document body is the fallback.
var contentSelectors = []string{
	"article",
	"main",
	"[role='main']",
	"#content",
	".article-content",
	".article-body",
	".post-content",
	".entry-content",
	".main-content",
	".page-content",
	".content",
	".story-body",
}

// blockSelector matches paragraph-like elements harvested from the chosen region.
const blockSelector = "p, li, td, blockquote, dd, h2, h3, h4"

// Extract parses html and returns the title and segmented main content.
// Extraction is pure and never retried; thin or empty pages come back as
// under-threshold content for the validator to reject, not as an error.
func Extract(html string) (types.ExtractedContent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return types.ExtractedContent{}, err
	}

	// Title discovery runs before noise removal: heading elements may sit
	// inside regions the denylist strips.
	title := findTitle(doc)

	// The document was parsed from the caller's string, so removal below
	// mutates only this isolated copy.
	doc.Find(noiseSelector).Remove()

	region, selector := findContentRegion(doc)

	paragraphs := collectParagraphs(region)
	content := strings.Join(paragraphs, paragraphSeparator)

	bodyMarkdown := ""
	if len(paragraphs) > 0 {
		conv := md.NewConverter("", true, nil)
		bodyMarkdown = strings.TrimSpace(conv.Convert(region))
	}

	return types.ExtractedContent{
		Title:          title,
		Paragraphs:     paragraphs,
		BodyMarkdown:   bodyMarkdown,
		ContentLength:  len(content),
		ParagraphCount: len(paragraphs),
		WordCount:      len(strings.Fields(content)),
		SourceSelector: selector,
	}, nil
}

// findTitle walks the title chain and returns the first acceptable result.
func findTitle(doc *goquery.Document) string {
	for _, s := range titleChain {
		t := normalizeSpace(s.find(doc))
		if len(t) > minTitleLength {
			return t
		}
	}
	return ""
}

// findContentRegion walks the content selector chain and returns the first
// region with enough text, or the document body when none qualifies.
func findContentRegion(doc *goquery.Document) (*goquery.Selection, string) {
	for _, sel := range contentSelectors {
		region := doc.Find(sel).First()
		if region.Length() == 0 {
			continue
		}
		if len(normalizeSpace(region.Text())) > minRegionTextLength {
			return region, sel
		}
	}
	return doc.Find("body"), "body"
}

// collectParagraphs harvests text blocks from the region in document order,
// keeping blocks within the length bounds and below the link-density cap,
// and dropping byte-identical repeats.
func collectParagraphs(region *goquery.Selection) []string {
	var paragraphs []string
	seen := make(map[string]struct{})

	region.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		text := normalizeSpace(s.Text())
		if len(text) < minParagraphLength || len(text) > maxParagraphLength {
			return
		}

		words := len(strings.Fields(text))
		if words == 0 {
			return
		}
		links := s.Find("a").Length()
		if float64(links)/float64(words) >= maxLinkRatio {
			return
		}

		if _, dup := seen[text]; dup {
			return
		}
		seen[text] = struct{}{}
		paragraphs = append(paragraphs, text)
	})

	return paragraphs
}

// normalizeSpace trims and collapses runs of whitespace to single spaces.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
