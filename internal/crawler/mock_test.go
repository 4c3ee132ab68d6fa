package crawler

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// mockFetcher serves canned HTML per URL and records every request
type mockFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	errs  map[string]error
	calls []string
}

func newMockFetcher() *mockFetcher {
	return &mockFetcher{
		pages: make(map[string]string),
		errs:  make(map[string]error),
	}
}

func (m *mockFetcher) Fetch(_ context.Context, pageURL string) (io.Reader, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, pageURL)
	if err, ok := m.errs[pageURL]; ok {
		return nil, err
	}
	return strings.NewReader(m.pages[pageURL]), nil
}

func (m *mockFetcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func mustDocument(html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		panic(err)
	}
	return doc
}

// g2Review renders one g2 review container. An empty date omits the time-stamp node.
func g2Review(name, date, starClass, title string) string {
	var b strings.Builder
	b.WriteString(`<div class="paper paper--white paper--box">`)
	b.WriteString(`<div class="review-user-info"><span itemprop="author">` + name + `</span>`)
	b.WriteString(`<div class="mt-4th">Product Manager</div><div class="mt-4th">Mid-Market (51-1000 emp.)</div></div>`)
	b.WriteString(`<div class="stars large ` + starClass + `"></div>`)
	if date != "" {
		b.WriteString(`<div class="time-stamp">` + date + `</div>`)
	}
	b.WriteString(`<h3 class="m-0 l2">` + title + `</h3>`)
	b.WriteString(`<div itemprop="reviewBody">  Solid   product,
		easy onboarding. </div>`)
	b.WriteString(`</div>`)
	return b.String()
}

func htmlPage(containers ...string) string {
	return "<html><body><main>" + strings.Join(containers, "") + "</main></body></html>"
}

const capterraCard = `
<div data-testid="review-card">
  <div>
    <span data-testid="reviewer-full-name">Sam Lee</span>
    <span data-testid="reviewer-job-title">CTO</span>
    <span data-testid="reviewer-industry">Computer Software</span>
    <span data-testid="reviewer-time-used-product">Used the software for: 2+ years</span>
    <span data-testid="ease-of-use-rating">4.0</span>
    <span data-testid="customer-service-rating">5.0</span>
    <span data-testid="features-rating">4.5</span>
    <span data-testid="value-for-money-rating">3.5</span>
  </div>
  <div>
    <span data-testid="review-date">January 12, 2023</span>
    <div data-testid="review-content">
      <p>Overall: Happy with it.</p>
      <p>Pros: Great support</p>
      <p>Cons: Pricey for small teams</p>
    </div>
    <div data-testid="vendor-response-text">Thanks for the feedback, Sam!</div>
  </div>
</div>`
