package crawler

import (
	"context"

	"sjsage522/reviewworker/logger"
	"sjsage522/reviewworker/services/metrics"
)

// ReviewCrawler fetches, parses and extracts pages using one site's selector table
type ReviewCrawler struct {
	BaseCrawler
	Site      SiteConfig
	PageURL   PageURLFunc
	extractor *Extractor
}

// NewReviewCrawler creates a crawler for site, rejecting an invalid selector table
func NewReviewCrawler(site SiteConfig, pageURL PageURLFunc, base BaseCrawler) (*ReviewCrawler, error) {
	extractor, err := NewExtractor(site)
	if err != nil {
		return nil, err
	}
	base.Provider = site.Name
	if base.CacheKey == "" {
		base.CacheKey = site.CacheKey
	}
	return &ReviewCrawler{
		BaseCrawler: base,
		Site:        site,
		PageURL:     pageURL,
		extractor:   extractor,
	}, nil
}

// Crawl walks pages 1, 2, ... until one has no review containers. Sites that
// are not paginated stop after the first page. A fetch failure ends the crawl
// with OutcomeFetchFailed, or OutcomeCanceled when ctx ended during the fetch;
// the records gathered so far stay in the result.
func (c *ReviewCrawler) Crawl(ctx context.Context, job Job) (*Result, error) {
	log := logger.ForSource(c.Provider)
	result := &Result{Source: c.Provider}

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			result.Outcome = OutcomeCanceled
			result.Err = err
			return result, err
		}
		if c.Site.Paginated && job.MaxPages > 0 && page > job.MaxPages {
			result.Outcome = OutcomeMaxPages
			return result, nil
		}

		pageResult, err := c.crawlPage(ctx, c.PageURL(job, page), page, job.Window)
		if err != nil {
			// An interrupted request is a cancellation, not a fetch failure.
			if ctxErr := ctx.Err(); ctxErr != nil {
				log.Warn().Int("page", page).Msg("Crawl canceled during fetch")
				result.Outcome = OutcomeCanceled
				result.Err = ctxErr
				return result, ctxErr
			}
			log.Error().Err(err).Int("page", page).Msg("Fetch failed, stopping")
			result.Outcome = OutcomeFetchFailed
			result.Err = err
			return result, err
		}

		result.Pages++
		result.Records = append(result.Records, pageResult.Records...)

		log.Info().
			Int("page", page).
			Int("containers", pageResult.Containers).
			Int("kept", len(pageResult.Records)).
			Int("outside_window", pageResult.OutsideWindow).
			Int("undated", pageResult.Undated).
			Msg("Extracted page")

		if !c.Site.Paginated {
			result.Outcome = OutcomeSinglePage
			return result, nil
		}
		if pageResult.Exhausted() {
			result.Outcome = OutcomeExhausted
			return result, nil
		}
	}
}

// crawlPage fetches, parses and extracts one page
func (c *ReviewCrawler) crawlPage(ctx context.Context, pageURL string, page int, window DateWindow) (PageResult, error) {
	body, err := c.fetchWithCache(ctx, pageURL)
	if err != nil {
		return PageResult{}, err
	}

	doc, err := c.createDocument(body)
	if err != nil {
		return PageResult{}, err
	}

	pageResult := c.extractor.Extract(doc, window, page)
	metrics.ObserveExtraction(c.Provider, len(pageResult.Records),
		pageResult.MissingBlocks, pageResult.OutsideWindow, pageResult.Undated)
	return pageResult, nil
}
