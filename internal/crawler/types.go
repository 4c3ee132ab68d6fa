package crawler

import (
	"context"
	"io"
)

// Fetcher returns the raw HTML of a page. Implementations tag failures
// with *errors.ScrapeError so callers can tell network, status and empty
// responses apart.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (io.Reader, error)
}

// Crawler interface defines the contract for all review sources
type Crawler interface {
	// Crawl fetches and extracts every page the job covers
	Crawl(ctx context.Context, job Job) (*Result, error)

	// GetName returns the crawler's name for logging and identification
	GetName() string

	// GetProvider returns the provider name for the crawler
	GetProvider() string
}

// Job describes one run against a review source
type Job struct {
	Company  string
	URL      string
	Window   DateWindow
	MaxPages int
}

// Outcome tells why a crawl stopped
type Outcome string

const (
	// OutcomeExhausted means a page yielded zero review containers
	OutcomeExhausted Outcome = "exhausted"
	// OutcomeSinglePage means a non-paginated source fetched its one page
	OutcomeSinglePage Outcome = "single_page"
	// OutcomeMaxPages means the job's page limit was reached
	OutcomeMaxPages Outcome = "max_pages"
	// OutcomeFetchFailed means fetching or parsing a page failed
	OutcomeFetchFailed Outcome = "fetch_failed"
	// OutcomeCanceled means the context was canceled between pages
	OutcomeCanceled Outcome = "canceled"
)

// Result is the accumulator owned by a single crawl
type Result struct {
	Source  string
	Records []ReviewRecord
	Pages   int
	Outcome Outcome
	Err     error
}

// PageResult is what the extractor produced for one document
type PageResult struct {
	Page          int
	Containers    int
	Records       []ReviewRecord
	MissingBlocks int
	OutsideWindow int
	Undated       int
}

// Exhausted reports whether the page had no review containers at all
func (p PageResult) Exhausted() bool {
	return p.Containers == 0
}

// Transform names the post-processing applied to a located node
type Transform string

const (
	// TransformText yields trimmed, whitespace-collapsed text (or Attr's value)
	TransformText Transform = "text"
	// TransformStarClass yields N from a `star-N` class token, N in 1..5
	TransformStarClass Transform = "star_class"
	// TransformStripLabel yields the first match starting with Label, label removed
	TransformStripLabel Transform = "strip_label"
	// TransformDate yields a YYYY-MM-DD date parsed from site-local text
	TransformDate Transform = "date"
)

// ScopeFirstChild restricts a rule to the container's first child element
const ScopeFirstChild = "@first-child"

// FieldRule maps one record field to the node holding it
type FieldRule struct {
	Field     string    `yaml:"field"`
	Scope     string    `yaml:"scope,omitempty"`
	Selector  string    `yaml:"selector"`
	Attr      string    `yaml:"attr,omitempty"`
	Position  int       `yaml:"position,omitempty"`
	Label     string    `yaml:"label,omitempty"`
	Transform Transform `yaml:"transform,omitempty"`
}

// SiteConfig is the selector table for one review source
type SiteConfig struct {
	Name         string      `yaml:"name"`
	Container    string      `yaml:"container"`
	Required     []string    `yaml:"required,omitempty"`
	Fields       []FieldRule `yaml:"fields"`
	Paginated    bool        `yaml:"paginated"`
	FilterByDate bool        `yaml:"filter_by_date"`
	CacheKey     string      `yaml:"cache_key,omitempty"`
}

// PageURLFunc builds the URL of a page for a job
type PageURLFunc func(job Job, page int) string
