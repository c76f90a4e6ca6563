package posting

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/gdalmoro/jobpilot/internal/config"
	"github.com/gdalmoro/jobpilot/internal/logger"
)

// Provider acquires a posting from a URL. Implementations return an error
// for transport failures; validation of the result happens in the resolver.
type Provider interface {
	Name() string
	Acquire(ctx context.Context, jobURL string) (*Posting, error)
}

// AcquireError reports that every configured provider failed for a URL.
type AcquireError struct {
	URL      string
	Attempts []string
}

func (e *AcquireError) Error() string {
	return fmt.Sprintf("failed to acquire posting from %s: %s", e.URL, strings.Join(e.Attempts, "; "))
}

// Resolver tries providers in priority order and returns the first result
// that passes validation. It never panics past this boundary; total failure
// is an explicit *AcquireError.
type Resolver struct {
	providers []Provider
	log       *zap.Logger
}

// NewResolver builds the provider chain from configuration. The remote
// scraping API leads when credentialed, then the headless browser, then the
// generic readability extractor.
func NewResolver(cfg *config.Config, log *zap.Logger) *Resolver {
	var providers []Provider

	if cfg.ScrapeAPIURL != "" && cfg.ScrapeAPIKey != "" {
		providers = append(providers, NewScrapeAPIProvider(cfg.ScrapeAPIURL, cfg.ScrapeAPIKey))
	}
	if cfg.BrowserEnabled {
		providers = append(providers, NewBrowserProvider(cfg.BrowserTimeout))
	}
	providers = append(providers, NewReadabilityProvider())

	return &Resolver{providers: providers, log: logger.Or(log)}
}

// NewResolverWithProviders builds a resolver over an explicit provider list.
func NewResolverWithProviders(log *zap.Logger, providers ...Provider) *Resolver {
	return &Resolver{providers: providers, log: logger.Or(log)}
}

// Acquire resolves a posting from jobURL via the provider chain.
func (r *Resolver) Acquire(ctx context.Context, jobURL string) (*Posting, error) {
	attempts := make([]string, 0, len(r.providers))

	for _, provider := range r.providers {
		p, err := provider.Acquire(ctx, jobURL)
		if err != nil {
			r.log.Warn("acquisition provider failed",
				zap.String("provider", provider.Name()),
				zap.String("url", jobURL),
				zap.Error(err))
			attempts = append(attempts, fmt.Sprintf("%s: %v", provider.Name(), err))
			continue
		}

		if err := p.Validate(); err != nil {
			r.log.Warn("acquisition result rejected",
				zap.String("provider", provider.Name()),
				zap.String("url", jobURL),
				zap.Error(err))
			attempts = append(attempts, fmt.Sprintf("%s: %v", provider.Name(), err))
			continue
		}

		r.log.Info("acquired posting",
			zap.String("provider", provider.Name()),
			zap.String("title", p.JobTitle),
			zap.String("company", p.Company))
		return p, nil
	}

	if len(attempts) == 0 {
		attempts = append(attempts, "no providers configured")
	}
	return nil, &AcquireError{URL: jobURL, Attempts: attempts}
}
