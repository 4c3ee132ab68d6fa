package crawler

import (
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Extractor turns a parsed document into review records using a site's selector table.
// It performs no I/O.
type Extractor struct {
	site SiteConfig
}

// NewExtractor validates site and creates an extractor for it
func NewExtractor(site SiteConfig) (*Extractor, error) {
	if err := site.Validate(); err != nil {
		return nil, err
	}
	return &Extractor{site: site}, nil
}

// Extract walks every review container of doc. Containers missing a required
// block are skipped; when the site filters by date, records that are undated
// or outside window are dropped as a whole.
func (e *Extractor) Extract(doc *goquery.Document, window DateWindow, page int) PageResult {
	containers := doc.Find(e.site.Container)
	result := PageResult{
		Page:       page,
		Containers: containers.Length(),
	}

	containers.Each(func(_ int, s *goquery.Selection) {
		if !e.hasRequiredBlocks(s) {
			result.MissingBlocks++
			return
		}

		record := ReviewRecord{Source: e.site.Name, Page: page}

		if e.site.FilterByDate {
			date, ok := e.reviewDate(s)
			if !ok {
				result.Undated++
				return
			}
			if !window.Contains(date) {
				result.OutsideWindow++
				return
			}
		}

		for _, rule := range e.site.Fields {
			value, ok := applyRule(s, rule)
			if !ok {
				continue
			}
			// NewExtractor rejected unknown fields.
			_ = setField(&record, rule.Field, value)
		}

		result.Records = append(result.Records, record)
	})

	return result
}

func (e *Extractor) hasRequiredBlocks(s *goquery.Selection) bool {
	for _, selector := range e.site.Required {
		if s.Find(selector).Length() == 0 {
			return false
		}
	}
	return true
}

// reviewDate evaluates the site's date rule ahead of the other fields
func (e *Extractor) reviewDate(s *goquery.Selection) (time.Time, bool) {
	for _, rule := range e.site.Fields {
		if rule.Field != "date" {
			continue
		}
		value, ok := applyRule(s, rule)
		if !ok {
			return time.Time{}, false
		}
		t, err := time.Parse(DateLayout, value)
		return t, err == nil
	}
	return time.Time{}, false
}
