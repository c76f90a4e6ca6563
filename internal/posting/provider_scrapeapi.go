package posting

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// scrapeAPITimeout bounds a single remote scrape call.
const scrapeAPITimeout = 90 * time.Second

// ScrapeAPIProvider fetches rendered page HTML through a remote scraping API
// (credentialed, highest priority). The API receives the target URL and the
// key as query parameters and responds with the rendered HTML.
type ScrapeAPIProvider struct {
	apiURL string
	apiKey string
	client *http.Client
}

// NewScrapeAPIProvider creates a remote scraping provider.
func NewScrapeAPIProvider(apiURL, apiKey string) *ScrapeAPIProvider {
	return &ScrapeAPIProvider{
		apiURL: apiURL,
		apiKey: apiKey,
		client: &http.Client{Timeout: scrapeAPITimeout},
	}
}

// Name identifies the provider in logs and failure reports.
func (p *ScrapeAPIProvider) Name() string { return "scrape-api" }

// Acquire renders jobURL through the remote API and parses the HTML.
func (p *ScrapeAPIProvider) Acquire(ctx context.Context, jobURL string) (*Posting, error) {
	endpoint, err := url.Parse(p.apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid scrape API URL: %w", err)
	}

	q := endpoint.Query()
	q.Set("api_key", p.apiKey)
	q.Set("url", jobURL)
	q.Set("render", "true")
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create scrape API request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scrape API request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scrape API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read scrape API response: %w", err)
	}

	return ParseHTML(string(body), jobURL)
}
