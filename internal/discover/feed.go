// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mmcdole/gofeed"

	"github.com/pdiddy/health-ingest/internal/sources"
	"github.com/pdiddy/health-ingest/pkg/types"
)

// FeedBackend discovers candidates from one RSS or Atom feed.
type FeedBackend struct {
	Source  sources.Source
	FeedURL string
}

func (b *FeedBackend) Name() string { return "feed " + b.FeedURL }

// Discover parses the feed and turns each item into a candidate. Item
// categories take precedence over the source's default category.
func (b *FeedBackend) Discover(ctx context.Context, cfg types.DiscoveryConfig) ([]types.CandidateURL, error) {
	parser := gofeed.NewParser()
	parser.UserAgent = cfg.UserAgent
	parser.Client = &http.Client{Timeout: cfg.Timeout}

	feed, err := parser.ParseURLWithContext(b.FeedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing feed %s: %w", b.FeedURL, err)
	}

	candidates := make([]types.CandidateURL, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link == "" {
			continue
		}
		category := b.Source.Category
		if len(item.Categories) > 0 {
			category = item.Categories[0]
		}
		candidates = append(candidates, types.CandidateURL{
			URL:      item.Link,
			Title:    item.Title,
			Category: category,
			Source:   b.Source.Name,
		})
	}
	return candidates, nil
}
