// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/pdiddy/health-ingest/pkg/types"
)

const (
	defaultRenderedTimeout = 60 * time.Second
	defaultSettleDelay     = 3 * time.Second
	defaultViewportWidth   = 1280
	defaultViewportHeight  = 900
)

// Rendered fetches pages through a headless browser. Each request gets an
// isolated browsing context that is torn down unconditionally when the
// request finishes, on every exit path.
type Rendered struct {
	cfg types.FetchConfig
}

// NewRendered builds a rendered fetcher from cfg.
func NewRendered(cfg types.FetchConfig) *Rendered {
	return &Rendered{cfg: cfg}
}

// Name identifies the strategy.
func (r *Rendered) Name() string { return "rendered" }

// Fetch navigates to url, waits for DOM-ready plus a settle delay so that
// asynchronous content can populate, and returns the rendered document.
func (r *Rendered) Fetch(ctx context.Context, url string) (*Result, error) {
	timeout := r.cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRenderedTimeout
	}
	settle := r.cfg.SettleDelay
	if settle <= 0 {
		settle = defaultSettleDelay
	}
	width, height := r.cfg.ViewportWidth, r.cfg.ViewportHeight
	if width <= 0 {
		width = defaultViewportWidth
	}
	if height <= 0 {
		height = defaultViewportHeight
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.WindowSize(width, height),
	)
	if r.cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(r.cfg.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, timeout)
	defer cancelRun()

	var html, finalURL string
	start := time.Now()
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(settle),
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &Error{Kind: KindTimeout, URL: url, Err: err}
		}
		return nil, &Error{Kind: KindNetwork, URL: url, Err: err}
	}

	if looksBlocked(html) {
		return nil, &Error{Kind: KindBlocked, URL: url}
	}
	if finalURL == "" {
		finalURL = url
	}

	return &Result{
		HTML:       html,
		FinalURL:   finalURL,
		StatusCode: http.StatusOK,
		Latency:    time.Since(start),
	}, nil
}
