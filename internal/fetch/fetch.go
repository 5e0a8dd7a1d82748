// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch retrieves raw HTML for candidate URLs. Two interchangeable
// strategies are provided: a static HTTP GET and a headless-browser fetch
// for sites that serve meaningful content only after client-side rendering.
package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/pdiddy/health-ingest/pkg/types"
)

// ErrorKind classifies a fetch failure.
type ErrorKind string

const (
	KindTimeout  ErrorKind = "timeout"
	KindNotFound ErrorKind = "not_found"
	KindNetwork  ErrorKind = "network"
	KindBlocked  ErrorKind = "blocked"
)

// Error is a typed fetch failure. NotFound and Blocked are terminal;
// Timeout and Network errors are retryable.
type Error struct {
	Kind ErrorKind
	URL  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether another attempt could succeed.
func (e *Error) Retryable() bool {
	return e.Kind == KindTimeout || e.Kind == KindNetwork
}

// Result holds a fetched page. It is owned by the fetcher's caller for the
// lifetime of one processing attempt and discarded after extraction.
type Result struct {
	// HTML is the raw page body.
	HTML string

	// FinalURL is the resolved URL after redirects.
	FinalURL string

	// StatusCode is the HTTP status, or 200 for a successful render.
	StatusCode int

	// Latency is the wall time of the successful attempt.
	Latency time.Duration
}

// Fetcher retrieves a single page. Implementations must honor ctx and free
// all per-request resources on every exit path.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, url string) (*Result, error)
}

// New returns the fetcher selected by cfg.Strategy.
func New(cfg types.FetchConfig) (Fetcher, error) {
	switch cfg.Strategy {
	case types.StrategyStatic, "":
		return NewStatic(cfg), nil
	case types.StrategyRendered:
		return NewRendered(cfg), nil
	default:
		return nil, fmt.Errorf("unknown fetch strategy %q", cfg.Strategy)
	}
}

// WithRetry fetches url through f, retrying retryable errors up to
// cfg.MaxAttempts times with a linearly increasing delay
// (RetryBaseDelay x attempt number). Terminal errors return immediately.
func WithRetry(ctx context.Context, f Fetcher, url string, cfg types.FetchConfig) (*Result, error) {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	baseDelay := cfg.RetryBaseDelay
	if baseDelay <= 0 {
		baseDelay = 2 * time.Second
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(baseDelay * time.Duration(attempt-1)):
			}
		}

		res, err := f.Fetch(ctx, url)
		if err == nil {
			return res, nil
		}
		lastErr = err

		fe, ok := err.(*Error)
		if !ok || !fe.Retryable() {
			return nil, err
		}
	}
	return nil, lastErr
}
