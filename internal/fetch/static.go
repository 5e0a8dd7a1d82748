// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/health-ingest/internal/httputil"
	"github.com/pdiddy/health-ingest/pkg/types"
)

const defaultStaticTimeout = 15 * time.Second

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 10 << 20

// Static fetches pages with a single HTTP GET per attempt.
type Static struct {
	client *http.Client
	cfg    types.FetchConfig
}

// NewStatic builds a static fetcher from cfg.
func NewStatic(cfg types.FetchConfig) *Static {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultStaticTimeout
	}
	return &Static{
		client: &http.Client{Timeout: timeout},
		cfg:    cfg,
	}
}

// Name identifies the strategy.
func (s *Static) Name() string { return "static" }

// Fetch performs one HTTP GET. HTTP 404 is terminal; 5xx and transport
// errors are retryable; 401/403 and access-denied body markers are
// classified as blocked.
func (s *Static) Fetch(ctx context.Context, url string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, URL: url, Err: err}
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	if s.cfg.AcceptLanguage != "" {
		req.Header.Set("Accept-Language", s.cfg.AcceptLanguage)
	}

	start := time.Now()
	resp, err := httputil.DoWithRetry(ctx, s.client, req, 0)
	if err != nil {
		return nil, &Error{Kind: classifyTransportError(err), URL: url, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &Error{Kind: KindNotFound, URL: url}
	case resp.StatusCode == http.StatusForbidden, resp.StatusCode == http.StatusUnauthorized:
		return nil, &Error{Kind: KindBlocked, URL: url}
	case resp.StatusCode >= 500:
		return nil, &Error{Kind: KindNetwork, URL: url, Err: errors.New(resp.Status)}
	case resp.StatusCode != http.StatusOK:
		return nil, &Error{Kind: KindNetwork, URL: url, Err: errors.New(resp.Status)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{Kind: classifyTransportError(err), URL: url, Err: err}
	}

	html := string(body)
	if looksBlocked(html) {
		return nil, &Error{Kind: KindBlocked, URL: url}
	}

	finalURL := url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Result{
		HTML:       html,
		FinalURL:   finalURL,
		StatusCode: resp.StatusCode,
		Latency:    time.Since(start),
	}, nil
}

// classifyTransportError separates timeouts from other network failures.
func classifyTransportError(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindNetwork
}

// blockedMarkers are response phrases that signal an anti-automation denial
// delivered with a 200 status.
var blockedMarkers = []string{
	"access denied",
	"403 forbidden",
	"request blocked",
	"verify you are a human",
}

func looksBlocked(html string) bool {
	// Only inspect the head of the page; denial pages are short.
	probe := html
	if len(probe) > 4096 {
		probe = probe[:4096]
	}
	probe = strings.ToLower(probe)
	for _, marker := range blockedMarkers {
		if strings.Contains(probe, marker) {
			return true
		}
	}
	return false
}
