package generation

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

const wordsPerMinute = 200

var (
	headingExpr  = regexp.MustCompile(`(?m)^#{1,6} .+$`)
	linkExpr     = regexp.MustCompile(`\[[^\]]+\]\([^)]+\)`)
	listItemExpr = regexp.MustCompile(`(?m)^[*-] .+$`)
)

// Quality summarizes the structure of a generated Markdown document.
type Quality struct {
	WordCount      int      `json:"word_count"`
	ReadingMinutes int      `json:"reading_time"`
	Headings       int      `json:"heading_count"`
	Links          int      `json:"link_count"`
	Warnings       []string `json:"warnings"`
}

// AssessQuality counts words, headings, links and list items and reports
// advisory warnings. It never rejects content.
func AssessQuality(content string) Quality {
	words := len(strings.Fields(content))
	q := Quality{
		WordCount:      words,
		ReadingMinutes: max(1, int(math.Round(float64(words)/wordsPerMinute))),
		Headings:       len(headingExpr.FindAllString(content, -1)),
		Links:          len(linkExpr.FindAllString(content, -1)),
		Warnings:       []string{},
	}

	switch {
	case words < 300:
		q.Warnings = append(q.Warnings, "content is quite short (< 300 words)")
	case words > 2000:
		q.Warnings = append(q.Warnings, "content is quite long (> 2000 words), consider a series")
	}
	if q.Headings < 2 {
		q.Warnings = append(q.Warnings, "consider adding more headings")
	}
	if q.Links < 2 {
		q.Warnings = append(q.Warnings, "consider adding more links to sources")
	}
	if len(listItemExpr.FindAllString(content, -1)) < 3 {
		q.Warnings = append(q.Warnings, "consider using bullet points")
	}

	long := 0
	for _, paragraph := range strings.Split(content, "\n\n") {
		trimmed := strings.TrimSpace(paragraph)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if len(strings.Fields(trimmed)) > 150 {
			long++
		}
	}
	if long > 0 {
		q.Warnings = append(q.Warnings, fmt.Sprintf("%d paragraphs are quite long (> 150 words)", long))
	}
	return q
}
