package posting

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// BrowserProvider renders the posting page in a headless browser. Needed for
// job boards that only render content client side. Requires Chrome/Chromium
// on the host.
type BrowserProvider struct {
	timeout time.Duration
}

// NewBrowserProvider creates a headless browser provider.
func NewBrowserProvider(timeout time.Duration) *BrowserProvider {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &BrowserProvider{timeout: timeout}
}

// Name identifies the provider in logs and failure reports.
func (p *BrowserProvider) Name() string { return "browser" }

// Acquire renders jobURL and parses the resulting HTML.
func (p *BrowserProvider) Acquire(ctx context.Context, jobURL string) (*Posting, error) {
	html, err := p.renderHTML(ctx, jobURL)
	if err != nil {
		return nil, fmt.Errorf("browser rendering failed: %w", err)
	}
	return ParseHTML(html, jobURL)
}

func (p *BrowserProvider) renderHTML(ctx context.Context, jobURL string) (string, error) {
	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, p.timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(jobURL),
		chromedp.WaitReady("body"),
		// Give client-side rendering a moment to finish.
		chromedp.Sleep(3*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	return html, err
}
