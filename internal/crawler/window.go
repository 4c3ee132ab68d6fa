package crawler

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DateLayout is the canonical layout of CLI dates and ReviewRecord.Date
const DateLayout = "2006-01-02"

// DateWindow is an inclusive [Start, End] range of calendar days.
// A zero Start or End leaves that side open.
type DateWindow struct {
	Start time.Time
	End   time.Time
}

// NewDateWindow truncates both bounds to calendar days and checks their order
func NewDateWindow(start, end time.Time) (DateWindow, error) {
	w := DateWindow{}
	if !start.IsZero() {
		w.Start = dayOf(start)
	}
	if !end.IsZero() {
		w.End = dayOf(end)
	}
	if !w.Start.IsZero() && !w.End.IsZero() && w.Start.After(w.End) {
		return DateWindow{}, fmt.Errorf("start date %s is after end date %s",
			w.Start.Format(DateLayout), w.End.Format(DateLayout))
	}
	return w, nil
}

// ParseDateWindow builds a window from two YYYY-MM-DD strings; empty strings are open bounds
func ParseDateWindow(start, end string) (DateWindow, error) {
	var s, e time.Time
	var err error
	if start = strings.TrimSpace(start); start != "" {
		if s, err = time.Parse(DateLayout, start); err != nil {
			return DateWindow{}, fmt.Errorf("invalid start date %q, want YYYY-MM-DD", start)
		}
	}
	if end = strings.TrimSpace(end); end != "" {
		if e, err = time.Parse(DateLayout, end); err != nil {
			return DateWindow{}, fmt.Errorf("invalid end date %q, want YYYY-MM-DD", end)
		}
	}
	return NewDateWindow(s, e)
}

// Contains reports whether t's calendar day falls inside the window
func (w DateWindow) Contains(t time.Time) bool {
	d := dayOf(t)
	if !w.Start.IsZero() && d.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && d.After(w.End) {
		return false
	}
	return true
}

// String renders the window for logs
func (w DateWindow) String() string {
	format := func(t time.Time) string {
		if t.IsZero() {
			return "*"
		}
		return t.Format(DateLayout)
	}
	return fmt.Sprintf("[%s, %s]", format(w.Start), format(w.End))
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

var (
	isoDateRegex       = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	slashDateRegex     = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`)
	monthFirstRegex    = regexp.MustCompile(`[A-Z][a-z]{2,8}\.? \d{1,2},? \d{4}`)
	dayFirstRegex      = regexp.MustCompile(`\d{1,2} [A-Z][a-z]{2,8}\.? \d{4}`)
	monthNameLayouts   = []string{"Jan 2, 2006", "January 2, 2006", "Jan 2 2006", "January 2 2006"}
	dayFirstNameLayout = []string{"2 Jan 2006", "2 January 2006"}
	septRegex          = regexp.MustCompile(`\bSept\b`)
)

// ParseReviewDate finds a calendar date inside site-local text such as
// "Reviewed on Mar 5, 2024" or "2024-03-05T10:00:00Z".
func ParseReviewDate(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, text); err == nil {
		return dayOf(t), true
	}

	if m := isoDateRegex.FindString(text); m != "" {
		if t, err := time.Parse(DateLayout, m); err == nil {
			return t, true
		}
	}
	if m := slashDateRegex.FindString(text); m != "" {
		if t, err := time.Parse("1/2/2006", m); err == nil {
			return t, true
		}
	}
	if m := monthFirstRegex.FindString(text); m != "" {
		if t, ok := parseAny(normalizeMonth(m), monthNameLayouts); ok {
			return t, true
		}
	}
	if m := dayFirstRegex.FindString(text); m != "" {
		if t, ok := parseAny(normalizeMonth(m), dayFirstNameLayout); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// normalizeMonth drops the abbreviation dot and maps "Sept" to the "Sep" Go expects
func normalizeMonth(m string) string {
	return septRegex.ReplaceAllString(strings.Replace(m, ".", "", 1), "Sep")
}

func parseAny(value string, layouts []string) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
