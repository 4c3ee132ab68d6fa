package crawler

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func march2024(t *testing.T) DateWindow {
	t.Helper()
	w, err := ParseDateWindow("2024-03-01", "2024-03-31")
	require.NoError(t, err)
	return w
}

func mustExtractor(t *testing.T, site SiteConfig) *Extractor {
	t.Helper()
	ex, err := NewExtractor(site)
	require.NoError(t, err)
	return ex
}

// TestNewExtractorRejectsInvalidTable tests that an unknown field is not dropped silently
func TestNewExtractorRejectsInvalidTable(t *testing.T) {
	site := DefaultSiteConfigs()[SiteG2]
	site.Fields = append([]FieldRule{}, site.Fields...)
	site.Fields[0].Field = "reviewer_nickname"

	ex, err := NewExtractor(site)
	assert.Nil(t, ex)
	assert.ErrorContains(t, err, `unknown field "reviewer_nickname"`)

	_, err = NewReviewCrawler(site, directPageURL, BaseCrawler{Fetcher: newMockFetcher()})
	assert.ErrorContains(t, err, "reviewer_nickname")
}

// TestExtractNoContainers tests that an empty page signals exhaustion
func TestExtractNoContainers(t *testing.T) {
	ex := mustExtractor(t, DefaultSiteConfigs()[SiteG2])
	result := ex.Extract(mustDocument(htmlPage()), march2024(t), 3)

	assert.Equal(t, 0, result.Containers)
	assert.Empty(t, result.Records)
	assert.True(t, result.Exhausted())
}

// TestExtractG2Window tests whole-record exclusion by date
func TestExtractG2Window(t *testing.T) {
	ex := mustExtractor(t, DefaultSiteConfigs()[SiteG2])
	doc := mustDocument(htmlPage(
		g2Review("Jane Doe", "2024-03-05", "star-4", "Great tool"),
		g2Review("Old Timer", "2024-02-10", "star-2", "Meh"),
		g2Review("No Date", "", "star-5", "Undated"),
	))

	result := ex.Extract(doc, march2024(t), 1)

	assert.Equal(t, 3, result.Containers)
	assert.False(t, result.Exhausted())
	assert.Equal(t, 1, result.OutsideWindow)
	assert.Equal(t, 1, result.Undated)
	require.Len(t, result.Records, 1)

	want := ReviewRecord{
		Source:              SiteG2,
		Page:                1,
		ReviewerName:        "Jane Doe",
		ReviewerRole:        "Product Manager",
		ReviewerCompanySize: "Mid-Market (51-1000 emp.)",
		Rating:              SingleStar(4),
		Date:                "2024-03-05",
		Title:               "Great tool",
		Description:         "Solid product, easy onboarding.",
	}
	if diff := cmp.Diff(want, result.Records[0]); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

// TestExtractWindowBoundsInclusive tests that both bounds are kept
func TestExtractWindowBoundsInclusive(t *testing.T) {
	ex := mustExtractor(t, DefaultSiteConfigs()[SiteG2])
	doc := mustDocument(htmlPage(
		g2Review("First", "2024-03-01", "star-3", "a"),
		g2Review("Last", "Mar 31, 2024", "star-3", "b"),
		g2Review("After", "2024-04-01", "star-3", "c"),
	))

	result := ex.Extract(doc, march2024(t), 1)
	require.Len(t, result.Records, 2)
	assert.Equal(t, "First", result.Records[0].ReviewerName)
	assert.Equal(t, "Last", result.Records[1].ReviewerName)
	assert.Equal(t, "2024-03-31", result.Records[1].Date)
}

// TestExtractStarRating tests the star_class transform
func TestExtractStarRating(t *testing.T) {
	ex := mustExtractor(t, DefaultSiteConfigs()[SiteG2])
	doc := mustDocument(htmlPage(
		g2Review("Four", "2024-03-02", "star-4", "t"),
		g2Review("None", "2024-03-02", "star-unknown", "t"),
	))

	result := ex.Extract(doc, DateWindow{}, 1)
	require.Len(t, result.Records, 2)
	assert.Equal(t, SingleStar(4), result.Records[0].Rating)
	assert.Nil(t, result.Records[1].Rating)
}

// TestExtractMissingRequiredBlock tests that incomplete containers are skipped
func TestExtractMissingRequiredBlock(t *testing.T) {
	ex := mustExtractor(t, DefaultSiteConfigs()[SiteG2])
	doc := mustDocument(htmlPage(
		`<div class="paper paper--white paper--box"><h3 class="m-0 l2">No body</h3></div>`,
		g2Review("Kept", "2024-03-02", "star-5", "t"),
	))

	result := ex.Extract(doc, march2024(t), 1)
	assert.Equal(t, 2, result.Containers)
	assert.Equal(t, 1, result.MissingBlocks)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "Kept", result.Records[0].ReviewerName)
}

// TestExtractCapterra tests first-child metadata, sub-ratings and label stripping
func TestExtractCapterra(t *testing.T) {
	ex := mustExtractor(t, DefaultSiteConfigs()[SiteCapterra])

	// Capterra applies no date filter, so the narrow window is ignored.
	result := ex.Extract(mustDocument(htmlPage(capterraCard)), march2024(t), 1)
	require.Len(t, result.Records, 1)

	want := ReviewRecord{
		Source:                  SiteCapterra,
		Page:                    1,
		ReviewerName:            "Sam Lee",
		ReviewerJobTitle:        "CTO",
		ReviewerIndustry:        "Computer Software",
		ReviewerTimeUsedProduct: "Used the software for: 2+ years",
		Rating: NamedSubratings(map[string]string{
			"ease_of_use":      "4.0",
			"customer_service": "5.0",
			"features":         "4.5",
			"value_for_money":  "3.5",
		}),
		Date: "2023-01-12",
		Body: &ReviewBody{
			Overall: "Happy with it.",
			Pros:    "Great support",
			Cons:    "Pricey for small teams",
		},
		VendorResponse: "Thanks for the feedback, Sam!",
	}
	if diff := cmp.Diff(want, result.Records[0]); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

// TestExtractCapterraScopes tests that metadata outside the first child is ignored
func TestExtractCapterraScopes(t *testing.T) {
	ex := mustExtractor(t, DefaultSiteConfigs()[SiteCapterra])
	card := `
<div data-testid="review-card">
  <div><span data-testid="reviewer-job-title">Engineer</span></div>
  <div>
    <span data-testid="reviewer-full-name">Misplaced Name</span>
    <div data-testid="review-content"><p>Pros: Fast</p><p>Something else</p></div>
  </div>
</div>`

	result := ex.Extract(mustDocument(htmlPage(card)), DateWindow{}, 1)
	require.Len(t, result.Records, 1)

	record := result.Records[0]
	assert.Empty(t, record.ReviewerName)
	assert.Equal(t, "Engineer", record.ReviewerJobTitle)
	assert.Nil(t, record.Rating)
	assert.Empty(t, record.Date)
	require.NotNil(t, record.Body)
	assert.Equal(t, "Fast", record.Body.Pros)
	assert.Empty(t, record.Body.Overall)
	assert.Empty(t, record.Body.Cons)
	assert.Empty(t, record.VendorResponse)
}

// TestRecordsJSONRoundTrip tests that serialised records parse back unchanged
func TestRecordsJSONRoundTrip(t *testing.T) {
	g2 := mustExtractor(t, DefaultSiteConfigs()[SiteG2]).Extract(mustDocument(htmlPage(
		g2Review("Jane Doe", "2024-03-05", "star-4", "Great tool"),
		g2Review("No Stars", "2024-03-06", "", "Quiet"),
	)), march2024(t), 1)
	capterra := mustExtractor(t, DefaultSiteConfigs()[SiteCapterra]).Extract(
		mustDocument(htmlPage(capterraCard)), DateWindow{}, 1)

	records := append(g2.Records, capterra.Records...)
	require.Len(t, records, 3)

	data, err := json.Marshal(records)
	require.NoError(t, err)

	var decoded []ReviewRecord
	require.NoError(t, json.Unmarshal(data, &decoded))
	if diff := cmp.Diff(records, decoded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
