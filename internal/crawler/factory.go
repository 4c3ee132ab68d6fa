package crawler

import (
	"fmt"
	"sort"
	"strings"

	"sjsage522/reviewworker/config"
	"sjsage522/reviewworker/helpers"
	"sjsage522/reviewworker/services/cache"
)

// Supported review sources
const (
	SiteG2       = "g2"
	SiteCapterra = "capterra"
)

// Dependencies are the collaborators shared by every crawler
type Dependencies struct {
	Fetcher Fetcher
	Guard   *cache.RateLimitGuard
}

// DefaultSiteConfigs returns the built-in selector tables keyed by site name
func DefaultSiteConfigs() map[string]SiteConfig {
	return map[string]SiteConfig{
		SiteG2: {
			Name:      SiteG2,
			Container: "div.paper.paper--white.paper--box",
			Required:  []string{"div[itemprop='reviewBody']"},
			Fields: []FieldRule{
				{Field: "reviewer_name", Selector: "div.review-user-info [itemprop='author']"},
				// Role and company size share a selector; only order tells them apart.
				{Field: "reviewer_role", Selector: "div.review-user-info div.mt-4th", Position: 0},
				{Field: "reviewer_company_size", Selector: "div.review-user-info div.mt-4th", Position: 1},
				{Field: "rating", Selector: "div.stars", Transform: TransformStarClass},
				{Field: "date", Selector: "div.time-stamp", Transform: TransformDate},
				{Field: "title", Selector: "h3.m-0.l2"},
				{Field: "description", Selector: "div[itemprop='reviewBody']"},
			},
			Paginated:    true,
			FilterByDate: true,
			CacheKey:     "g2_rate_limited",
		},
		SiteCapterra: {
			Name:      SiteCapterra,
			Container: "div[data-testid='review-card']",
			Required:  []string{"[data-testid='review-content']"},
			Fields: []FieldRule{
				{Field: "reviewer_name", Scope: ScopeFirstChild, Selector: "[data-testid='reviewer-full-name']"},
				{Field: "reviewer_job_title", Scope: ScopeFirstChild, Selector: "[data-testid='reviewer-job-title']"},
				{Field: "reviewer_industry", Scope: ScopeFirstChild, Selector: "[data-testid='reviewer-industry']"},
				{Field: "reviewer_time_used_product", Scope: ScopeFirstChild, Selector: "[data-testid='reviewer-time-used-product']"},
				{Field: "rating.ease_of_use", Scope: ScopeFirstChild, Selector: "[data-testid='ease-of-use-rating']"},
				{Field: "rating.customer_service", Scope: ScopeFirstChild, Selector: "[data-testid='customer-service-rating']"},
				{Field: "rating.features", Scope: ScopeFirstChild, Selector: "[data-testid='features-rating']"},
				{Field: "rating.value_for_money", Scope: ScopeFirstChild, Selector: "[data-testid='value-for-money-rating']"},
				{Field: "date", Selector: "[data-testid='review-date']", Transform: TransformDate},
				{Field: "body.overall", Scope: "[data-testid='review-content']", Selector: "p", Label: "Overall: ", Transform: TransformStripLabel},
				{Field: "body.pros", Scope: "[data-testid='review-content']", Selector: "p", Label: "Pros: ", Transform: TransformStripLabel},
				{Field: "body.cons", Scope: "[data-testid='review-content']", Selector: "p", Label: "Cons: ", Transform: TransformStripLabel},
				{Field: "vendor_response", Selector: "[data-testid='vendor-response-text']"},
			},
			CacheKey: "capterra_rate_limited",
		},
	}
}

// SiteNames returns the supported site names in stable order
func SiteNames(sites map[string]SiteConfig) []string {
	names := make([]string, 0, len(sites))
	for name := range sites {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CreateCrawler creates the crawler for one site
func CreateCrawler(cfg *config.Config, site string, sites map[string]SiteConfig, deps Dependencies) (*ReviewCrawler, error) {
	siteCfg, ok := sites[site]
	if !ok {
		return nil, fmt.Errorf("unsupported website %q (want one of %s)", site, strings.Join(SiteNames(sites), ", "))
	}
	if deps.Fetcher == nil {
		return nil, fmt.Errorf("site %s: no fetcher", site)
	}

	var pageURL PageURLFunc
	switch site {
	case SiteG2:
		pageURL = g2PageURL(cfg.G2PageURL)
	default:
		pageURL = directPageURL
	}

	return NewReviewCrawler(siteCfg, pageURL, BaseCrawler{
		Fetcher: deps.Fetcher,
		Guard:   deps.Guard,
	})
}

// g2PageURL fills the company slug and page number into the template
func g2PageURL(template string) PageURLFunc {
	return func(job Job, page int) string {
		return fmt.Sprintf(template, helpers.Slugify(job.Company), page)
	}
}

// directPageURL uses the caller-supplied URL for every page
func directPageURL(job Job, _ int) string {
	return job.URL
}
