package posting

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

const (
	readabilityTimeout = 30 * time.Second
	readabilityAgent   = "Mozilla/5.0 (compatible; JobPilot/1.0)"
)

// ReadabilityProvider is the generalist last-resort provider: a plain HTTP
// fetch followed by readability content extraction. It needs no credentials
// and no browser, so it always terminates the chain.
type ReadabilityProvider struct {
	client *http.Client
}

// NewReadabilityProvider creates the generic extraction provider.
func NewReadabilityProvider() *ReadabilityProvider {
	return &ReadabilityProvider{
		client: &http.Client{Timeout: readabilityTimeout},
	}
}

// Name identifies the provider in logs and failure reports.
func (p *ReadabilityProvider) Name() string { return "readability" }

// Acquire fetches jobURL and extracts the main article content.
func (p *ReadabilityProvider) Acquire(ctx context.Context, jobURL string) (*Posting, error) {
	parsed, err := url.Parse(jobURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid URL %q", jobURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, jobURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", readabilityAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	article, err := readability.FromReader(strings.NewReader(string(body)), parsed)
	if err != nil {
		return nil, fmt.Errorf("content extraction failed: %w", err)
	}

	company := strings.TrimSpace(article.SiteName)
	if company == "" {
		company = strings.TrimPrefix(parsed.Hostname(), "www.")
	}

	return &Posting{
		JobTitle: strings.TrimSpace(article.Title),
		Company:  company,
		JobDesc:  cleanWhitespace(article.TextContent),
		JobURL:   jobURL,
	}, nil
}
