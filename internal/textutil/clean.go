package textutil

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Clean unescapes HTML entities, drops any markup and folds runs of
// whitespace into single spaces.
func Clean(value string) string {
	value = html.UnescapeString(value)
	if strings.Contains(value, "<") && strings.Contains(value, ">") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(value)); err == nil {
			value = doc.Text()
		}
	}
	return strings.Join(strings.Fields(value), " ")
}

// Truncate caps value at limit runes.
func Truncate(value string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if len(value) <= limit {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}

// FirstNonEmpty returns the first value that is not blank after trimming.
func FirstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
