package crawler

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ReviewRecord represents a scraped review. Fields a source does not carry are omitted.
type ReviewRecord struct {
	Source                  string      `json:"source"`
	Page                    int         `json:"page,omitempty"`
	ReviewerName            string      `json:"reviewer_name,omitempty"`
	ReviewerRole            string      `json:"reviewer_role,omitempty"`
	ReviewerCompanySize     string      `json:"reviewer_company_size,omitempty"`
	ReviewerJobTitle        string      `json:"reviewer_job_title,omitempty"`
	ReviewerIndustry        string      `json:"reviewer_industry,omitempty"`
	ReviewerTimeUsedProduct string      `json:"reviewer_time_used_product,omitempty"`
	Rating                  *Rating     `json:"rating,omitempty"`
	Date                    string      `json:"date,omitempty"`
	Title                   string      `json:"title,omitempty"`
	Description             string      `json:"description,omitempty"`
	Body                    *ReviewBody `json:"body,omitempty"`
	VendorResponse          string      `json:"vendor_response,omitempty"`
}

// ReviewBody holds the labelled free-text sections of a review
type ReviewBody struct {
	Overall string `json:"overall,omitempty"`
	Pros    string `json:"pros,omitempty"`
	Cons    string `json:"cons,omitempty"`
}

// RatingKind tags which shape a Rating carries
type RatingKind int

const (
	// RatingNone is the zero value; it is never serialised
	RatingNone RatingKind = iota
	// RatingStars is a single 1-5 star score
	RatingStars
	// RatingSubratings maps named sub-ratings to their raw textual score
	RatingSubratings
)

// Rating is a tagged variant: either a single star score or named sub-ratings.
type Rating struct {
	Kind       RatingKind
	Stars      int
	Subratings map[string]string
}

// SingleStar returns a star rating
func SingleStar(stars int) *Rating {
	return &Rating{Kind: RatingStars, Stars: stars}
}

// NamedSubratings returns a sub-rating map rating
func NamedSubratings(subratings map[string]string) *Rating {
	return &Rating{Kind: RatingSubratings, Subratings: subratings}
}

// MarshalJSON encodes star ratings as a number and sub-ratings as an object
func (r Rating) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case RatingStars:
		return json.Marshal(r.Stars)
	case RatingSubratings:
		return json.Marshal(r.Subratings)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON restores the variant from the JSON shape
func (r *Rating) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*r = Rating{}
		return nil
	case len(data) > 0 && data[0] == '{':
		var subratings map[string]string
		if err := json.Unmarshal(data, &subratings); err != nil {
			return fmt.Errorf("invalid sub-ratings: %w", err)
		}
		*r = Rating{Kind: RatingSubratings, Subratings: subratings}
		return nil
	default:
		var stars int
		if err := json.Unmarshal(data, &stars); err != nil {
			return fmt.Errorf("invalid star rating: %w", err)
		}
		*r = Rating{Kind: RatingStars, Stars: stars}
		return nil
	}
}
