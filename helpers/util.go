package helpers

import (
	"strings"
)

// CleanText trims s and collapses internal runs of whitespace to single spaces.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// StripLabel removes a literal label prefix such as "Pros: " from text.
// Both the text and the label are trimmed before comparison; ok is false
// when text does not start with the label.
func StripLabel(text, label string) (string, bool) {
	text = strings.TrimSpace(text)
	label = strings.TrimSpace(label)
	if label == "" {
		return CleanText(text), true
	}
	if !strings.HasPrefix(text, label) {
		return "", false
	}
	return CleanText(strings.TrimPrefix(text, label)), true
}

// Slugify lowercases name and joins its words with dashes, the form
// review sites use in product URLs.
func Slugify(name string) string {
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	return strings.Join(fields, "-")
}
