package crawler

import (
	"context"
	"io"
	"time"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/reviewworker/logger"
	scrapeerrors "sjsage522/reviewworker/pkg/errors"
	"sjsage522/reviewworker/services/cache"
	"sjsage522/reviewworker/services/metrics"
)

// BaseCrawler provides the fetch and parse steps shared by all review sources
type BaseCrawler struct {
	Provider string
	CacheKey string
	Fetcher  Fetcher
	Guard    *cache.RateLimitGuard
}

// fetchWithCache fetches a page unless the source is blocked after a rate limit
func (c *BaseCrawler) fetchWithCache(ctx context.Context, pageURL string) (io.Reader, error) {
	if c.Guard.Blocked(c.CacheKey) {
		metrics.ObserveFetch(c.Provider, "blocked", 0)
		return nil, scrapeerrors.NewRateLimit(c.Provider, c.Guard.BlockTime())
	}

	start := time.Now()
	body, err := c.Fetcher.Fetch(ctx, pageURL)
	elapsed := time.Since(start)
	if err != nil {
		metrics.ObserveFetch(c.Provider, "error", elapsed)
		if scrapeerrors.IsType(err, scrapeerrors.ErrorTypeRateLimit) {
			_ = c.Guard.Block(c.CacheKey)
		}
		return nil, err
	}

	metrics.ObserveFetch(c.Provider, "ok", elapsed)
	logger.ForSource(c.Provider).Debug().
		Str("url", pageURL).
		Dur("elapsed", elapsed).
		Msg("Fetched page")
	return body, nil
}

// createDocument creates a goquery document from a reader
func (c *BaseCrawler) createDocument(reader io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, scrapeerrors.NewParsing(c.Provider, "failed to parse HTML", err)
	}
	return doc, nil
}

// GetName returns the crawler's name for logging
func (c *BaseCrawler) GetName() string {
	return c.Provider + "Crawler"
}

// GetProvider returns the provider name
func (c *BaseCrawler) GetProvider() string {
	return c.Provider
}
