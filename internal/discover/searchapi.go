// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pdiddy/health-ingest/internal/httputil"
	"github.com/pdiddy/health-ingest/internal/sources"
	"github.com/pdiddy/health-ingest/pkg/types"
)

const searchAPIBase = "https://www.googleapis.com/customsearch/v1"

// SearchBackend discovers candidates through the Custom Search JSON API,
// scoped to the source's site. Requires the search-api-key and
// search-engine-id secrets.
type SearchBackend struct {
	Source   sources.Source
	Query    string
	APIKey   string
	EngineID string

	// BaseURL overrides the API endpoint. Empty uses the public API.
	BaseURL string
}

func (b *SearchBackend) Name() string { return "search " + b.Query }

type searchResponse struct {
	Items []searchItem `json:"items"`
}

type searchItem struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// Discover queries the search API and turns each result into a candidate.
func (b *SearchBackend) Discover(ctx context.Context, cfg types.DiscoveryConfig) ([]types.CandidateURL, error) {
	if b.APIKey == "" || b.EngineID == "" {
		return nil, fmt.Errorf("search backend needs search-api-key and search-engine-id secrets")
	}

	base := b.BaseURL
	if base == "" {
		base = searchAPIBase
	}
	params := url.Values{
		"key": {b.APIKey},
		"cx":  {b.EngineID},
		"q":   {b.Query},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	client := &http.Client{Timeout: cfg.Timeout}
	resp, err := httputil.DoWithRetry(ctx, client, req, 3)
	if err != nil {
		return nil, fmt.Errorf("search API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API returned HTTP %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}

	candidates := make([]types.CandidateURL, 0, len(sr.Items))
	for _, item := range sr.Items {
		if item.Link == "" {
			continue
		}
		candidates = append(candidates, types.CandidateURL{
			URL:      item.Link,
			Title:    item.Title,
			Category: b.Source.Category,
			Source:   b.Source.Name,
		})
	}
	return candidates, nil
}
