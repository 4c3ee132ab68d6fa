package crawler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const overrideYAML = `
sites:
  - name: g2
    container: article.review
    required: ["div.body"]
    paginated: true
    filter_by_date: true
    cache_key: g2_rate_limited
    fields:
      - field: reviewer_name
        selector: span.author
      - field: date
        selector: time
        attr: datetime
        transform: date
      - field: rating
        selector: div.stars
        transform: star_class
`

func TestLoadSiteOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selectors.yaml")
	require.NoError(t, os.WriteFile(path, []byte(overrideYAML), 0o644))

	base := DefaultSiteConfigs()
	sites, err := LoadSiteOverrides(path, base)
	require.NoError(t, err)

	g2 := sites[SiteG2]
	assert.Equal(t, "article.review", g2.Container)
	assert.True(t, g2.Paginated)
	require.Len(t, g2.Fields, 3)
	assert.Equal(t, "datetime", g2.Fields[1].Attr)
	assert.Equal(t, TransformStarClass, g2.Fields[2].Transform)
	assert.Equal(t, base[SiteCapterra], sites[SiteCapterra])
	assert.Equal(t, "div.paper.paper--white.paper--box", base[SiteG2].Container)

	doc := mustDocument(`<article class="review"><span class="author">Kim</span>
		<time datetime="2024-03-05T08:00:00Z">last week</time>
		<div class="stars star-5"></div><div class="body">ok</div></article>`)
	result := mustExtractor(t, g2).Extract(doc, march2024(t), 1)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "Kim", result.Records[0].ReviewerName)
	assert.Equal(t, SingleStar(5), result.Records[0].Rating)
}

func TestLoadSiteOverridesErrors(t *testing.T) {
	base := DefaultSiteConfigs()

	sites, err := LoadSiteOverrides("", base)
	require.NoError(t, err)
	assert.Equal(t, base, sites)

	_, err = LoadSiteOverrides(filepath.Join(t.TempDir(), "missing.yaml"), base)
	assert.Error(t, err)

	_, err = ParseSiteOverrides([]byte("sites: [:"), base)
	assert.Error(t, err)

	_, err = ParseSiteOverrides([]byte("sites:\n  - name: g2\n    fields: []\n"), base)
	assert.Error(t, err)
}

// TestParseSiteOverridesRejectsUnknownSite tests that a file cannot add a site no job can run
func TestParseSiteOverridesRejectsUnknownSite(t *testing.T) {
	data := []byte(`
sites:
  - name: trustradius
    container: div.review
    fields:
      - field: reviewer_name
        selector: span.author
`)
	sites, err := ParseSiteOverrides(data, DefaultSiteConfigs())
	assert.Nil(t, sites)
	assert.ErrorContains(t, err, `unknown site "trustradius"`)
	assert.ErrorContains(t, err, "capterra, g2")
}
