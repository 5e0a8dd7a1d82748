// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package discover produces candidate URLs for a configured source. Each
// backend (RSS feed, category index page) yields candidates independently;
// the fan-out deduplicates by URL and caps the result. Discovery is a thin
// producer: downstream duplicate resolution is the real gatekeeper, so a
// stale or overlapping candidate here is harmless.
package discover

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pdiddy/health-ingest/internal/sources"
	"github.com/pdiddy/health-ingest/pkg/types"
)

const defaultMaxCandidates = 50

// Backend discovers candidates from a single endpoint.
type Backend interface {
	Name() string
	Discover(ctx context.Context, cfg types.DiscoveryConfig) ([]types.CandidateURL, error)
}

// BackendsFor builds the backends implied by a source's configuration: one
// per feed URL and one per index page.
func BackendsFor(src sources.Source) []Backend {
	var backends []Backend
	for _, feedURL := range src.Feeds {
		backends = append(backends, &FeedBackend{Source: src, FeedURL: feedURL})
	}
	for _, page := range src.IndexPages {
		backends = append(backends, &IndexBackend{Source: src, Page: page})
	}
	return backends
}

// Output holds the merged candidates and fan-out statistics.
type Output struct {
	Candidates    []types.CandidateURL
	DupsRemoved   int
	BackendErrors []string
}

// Discover fans out to all backends concurrently, staggered by the
// inter-backend delay, then merges and deduplicates candidates by URL.
// Individual backend failures are reported as warnings and do not fail the
// run; only an empty backend list is an error.
func Discover(ctx context.Context, backends []Backend, cfg types.DiscoveryConfig, w io.Writer) (Output, error) {
	if len(backends) == 0 {
		return Output{}, fmt.Errorf("no discovery backends configured")
	}

	type backendResult struct {
		candidates []types.CandidateURL
		err        error
		name       string
		order      int
	}

	ch := make(chan backendResult, len(backends))
	var wg sync.WaitGroup

	for i, b := range backends {
		if i > 0 && cfg.InterBackendDelay > 0 {
			time.Sleep(cfg.InterBackendDelay)
		}
		wg.Add(1)
		go func(b Backend, order int) {
			defer wg.Done()
			candidates, err := b.Discover(ctx, cfg)
			ch <- backendResult{candidates: candidates, err: err, name: b.Name(), order: order}
		}(b, i)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	results := make([][]types.CandidateURL, len(backends))
	var backendErrors []string
	for br := range ch {
		if br.err != nil {
			backendErrors = append(backendErrors, fmt.Sprintf("%s: %v", br.name, br.err))
			fmt.Fprintf(w, "warning: backend %s failed: %v\n", br.name, br.err)
			continue
		}
		results[br.order] = br.candidates
	}

	// Merge in backend declaration order so output is stable run to run.
	var merged []types.CandidateURL
	for _, candidates := range results {
		merged = append(merged, candidates...)
	}
	deduped, removed := deduplicate(merged)

	maxCandidates := cfg.MaxCandidates
	if maxCandidates <= 0 {
		maxCandidates = defaultMaxCandidates
	}
	if len(deduped) > maxCandidates {
		deduped = deduped[:maxCandidates]
	}

	return Output{
		Candidates:    deduped,
		DupsRemoved:   removed,
		BackendErrors: backendErrors,
	}, nil
}

// deduplicate removes candidates sharing a URL, keeping the first
// occurrence so feed metadata wins over bare index links.
func deduplicate(candidates []types.CandidateURL) ([]types.CandidateURL, int) {
	seen := make(map[string]bool, len(candidates))
	out := candidates[:0:0]
	removed := 0
	for _, c := range candidates {
		if c.URL == "" || seen[c.URL] {
			removed++
			continue
		}
		seen[c.URL] = true
		out = append(out, c)
	}
	return out, removed
}
