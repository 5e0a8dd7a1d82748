// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/health-ingest/internal/sources"
	"github.com/pdiddy/health-ingest/pkg/types"
)

// IndexBackend discovers candidates by scraping article links from a
// category or listing page.
type IndexBackend struct {
	Source sources.Source
	Page   sources.IndexPage
}

func (b *IndexBackend) Name() string { return "index " + b.Page.URL }

// Discover fetches the listing page and collects anchors matching the
// configured link selector. Relative hrefs resolve against the page URL.
func (b *IndexBackend) Discover(ctx context.Context, cfg types.DiscoveryConfig) ([]types.CandidateURL, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.Page.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	client := &http.Client{Timeout: cfg.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching index page %s: %w", b.Page.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("index page %s returned HTTP %d", b.Page.URL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing index page %s: %w", b.Page.URL, err)
	}

	base, err := url.Parse(b.Page.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing index page URL: %w", err)
	}

	var candidates []types.CandidateURL
	doc.Find(b.Page.LinkSelector).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		candidates = append(candidates, types.CandidateURL{
			URL:      base.ResolveReference(ref).String(),
			Title:    strings.Join(strings.Fields(sel.Text()), " "),
			Category: b.Source.Category,
			Source:   b.Source.Name,
		})
	})
	return candidates, nil
}
