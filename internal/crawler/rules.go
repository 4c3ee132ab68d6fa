package crawler

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"sjsage522/reviewworker/helpers"

	"github.com/PuerkitoBio/goquery"
)

var starClassRegex = regexp.MustCompile(`^star-([1-5])$`)

// recordSetters maps rule field names onto ReviewRecord slots.
// Sub-ratings ("rating.<key>") and body sections ("body.<section>") are handled in setField.
var recordSetters = map[string]func(*ReviewRecord, string){
	"reviewer_name":              func(r *ReviewRecord, v string) { r.ReviewerName = v },
	"reviewer_role":              func(r *ReviewRecord, v string) { r.ReviewerRole = v },
	"reviewer_company_size":      func(r *ReviewRecord, v string) { r.ReviewerCompanySize = v },
	"reviewer_job_title":         func(r *ReviewRecord, v string) { r.ReviewerJobTitle = v },
	"reviewer_industry":          func(r *ReviewRecord, v string) { r.ReviewerIndustry = v },
	"reviewer_time_used_product": func(r *ReviewRecord, v string) { r.ReviewerTimeUsedProduct = v },
	"date":                       func(r *ReviewRecord, v string) { r.Date = v },
	"title":                      func(r *ReviewRecord, v string) { r.Title = v },
	"description":                func(r *ReviewRecord, v string) { r.Description = v },
	"vendor_response":            func(r *ReviewRecord, v string) { r.VendorResponse = v },
}

var bodySections = map[string]func(*ReviewBody, string){
	"overall": func(b *ReviewBody, v string) { b.Overall = v },
	"pros":    func(b *ReviewBody, v string) { b.Pros = v },
	"cons":    func(b *ReviewBody, v string) { b.Cons = v },
}

// setField stores value in the record slot named by field
func setField(r *ReviewRecord, field, value string) error {
	if setter, ok := recordSetters[field]; ok {
		setter(r, value)
		return nil
	}

	switch {
	case field == "rating":
		stars, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("star rating %q is not a number", value)
		}
		r.Rating = SingleStar(stars)
	case strings.HasPrefix(field, "rating."):
		if r.Rating == nil || r.Rating.Kind != RatingSubratings {
			r.Rating = NamedSubratings(map[string]string{})
		}
		r.Rating.Subratings[strings.TrimPrefix(field, "rating.")] = value
	case strings.HasPrefix(field, "body."):
		section, ok := bodySections[strings.TrimPrefix(field, "body.")]
		if !ok {
			return fmt.Errorf("unknown body section in %q", field)
		}
		if r.Body == nil {
			r.Body = &ReviewBody{}
		}
		section(r.Body, value)
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}

// knownField reports whether setField accepts the field name
func knownField(field string) bool {
	if _, ok := recordSetters[field]; ok {
		return true
	}
	if field == "rating" {
		return true
	}
	if key, ok := strings.CutPrefix(field, "rating."); ok {
		return key != ""
	}
	if section, ok := strings.CutPrefix(field, "body."); ok {
		_, known := bodySections[section]
		return known
	}
	return false
}

// scopeOf returns the search root of a rule inside a container
func scopeOf(container *goquery.Selection, scope string) *goquery.Selection {
	switch scope {
	case "":
		return container
	case ScopeFirstChild:
		return container.Children().First()
	default:
		return container.Find(scope).First()
	}
}

// applyRule locates the rule's node inside container and post-processes it.
// ok is false when the node is absent or yields nothing usable.
func applyRule(container *goquery.Selection, rule FieldRule) (string, bool) {
	root := scopeOf(container, rule.Scope)
	if root.Length() == 0 {
		return "", false
	}

	matches := root
	if rule.Selector != "" {
		matches = root.Find(rule.Selector)
	}
	if matches.Length() == 0 {
		return "", false
	}

	switch rule.Transform {
	case TransformStarClass:
		return starFromClasses(matches)
	case TransformStripLabel:
		return firstLabelled(matches, rule.Label)
	}

	node := nthMatch(matches, rule.Position)
	if node.Length() == 0 {
		return "", false
	}

	raw := node.Text()
	if rule.Attr != "" {
		value, exists := node.Attr(rule.Attr)
		if !exists {
			return "", false
		}
		raw = value
	}

	if rule.Transform == TransformDate {
		t, ok := ParseReviewDate(raw)
		if !ok {
			return "", false
		}
		return t.Format(DateLayout), true
	}

	value := helpers.CleanText(raw)
	return value, value != ""
}

// nthMatch picks a match by position. Sibling nodes that share a shape and
// carry no semantic key (role vs. company size) are told apart this way.
func nthMatch(matches *goquery.Selection, position int) *goquery.Selection {
	if position <= 0 {
		return matches.First()
	}
	return matches.Eq(position)
}

// starFromClasses scans the class tokens of every match for `star-N`
func starFromClasses(matches *goquery.Selection) (string, bool) {
	var stars string
	matches.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		for _, token := range strings.Fields(class) {
			if m := starClassRegex.FindStringSubmatch(token); m != nil {
				stars = m[1]
				return false
			}
		}
		return true
	})
	return stars, stars != ""
}

// firstLabelled returns the first match whose text starts with label, with the label stripped
func firstLabelled(matches *goquery.Selection, label string) (string, bool) {
	var value string
	var found bool
	matches.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if v, ok := helpers.StripLabel(s.Text(), label); ok && v != "" {
			value, found = v, true
			return false
		}
		return true
	})
	return value, found
}

// Validate checks a selector table before it is used
func (c SiteConfig) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("site config without name")
	}
	if strings.TrimSpace(c.Container) == "" {
		return fmt.Errorf("site %s: container selector is required", c.Name)
	}
	if len(c.Fields) == 0 {
		return fmt.Errorf("site %s: no field rules", c.Name)
	}

	hasDate := false
	for i, rule := range c.Fields {
		if !knownField(rule.Field) {
			return fmt.Errorf("site %s: rule %d: unknown field %q", c.Name, i, rule.Field)
		}
		if rule.Position < 0 {
			return fmt.Errorf("site %s: rule %s: negative position", c.Name, rule.Field)
		}
		switch rule.Transform {
		case "", TransformText, TransformStarClass, TransformDate:
		case TransformStripLabel:
			if strings.TrimSpace(rule.Label) == "" {
				return fmt.Errorf("site %s: rule %s: strip_label needs a label", c.Name, rule.Field)
			}
		default:
			return fmt.Errorf("site %s: rule %s: unknown transform %q", c.Name, rule.Field, rule.Transform)
		}
		if rule.Field == "date" {
			hasDate = true
			if rule.Transform != TransformDate {
				return fmt.Errorf("site %s: date rule must use the date transform", c.Name)
			}
		}
		if rule.Field == "rating" && rule.Transform != TransformStarClass {
			return fmt.Errorf("site %s: rating rule must use the star_class transform", c.Name)
		}
	}
	if c.FilterByDate && !hasDate {
		return fmt.Errorf("site %s: filter_by_date needs a date rule", c.Name)
	}
	return nil
}
