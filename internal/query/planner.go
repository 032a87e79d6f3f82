// Package query expands a keyword set into targeted search strings.
package query

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"ContentCurator/internal/domain"
)

// MaxQueries is the hard cap on the number of planned queries.
const MaxQueries = 50

var (
	broadTerms = []string{"news", "policy", "event", "regulation"}
	eventTerms = []string{"conference", "webinar", "hearing", "summit"}
)

// Planner builds domain-restricted, broad and event-specific queries.
type Planner struct {
	domains       []string
	resourceLinks []string
	now           func() time.Time
}

// NewPlanner wires the trusted domain suffixes and priority resource links.
func NewPlanner(domains, resourceLinks []string) *Planner {
	return &Planner{
		domains:       domains,
		resourceLinks: resourceLinks,
		now:           time.Now,
	}
}

// Build plans queries for keywords in generation order: per keyword the
// domain-restricted variants, then broad, then event-specific, and finally one
// query per priority resource link. Duplicates are dropped keeping the first
// occurrence and the result is truncated to MaxQueries.
func (p *Planner) Build(keywords []string, countryCode string, daysBack int) []domain.SearchQuery {
	since := startOfDay(p.now().UTC().AddDate(0, 0, -daysBack))
	anchor := "after:" + since.Format("2006-01-02")

	planned := make([]domain.SearchQuery, 0, MaxQueries)
	seen := make(map[string]struct{})
	add := func(text string) bool {
		if len(planned) >= MaxQueries {
			return false
		}
		if _, ok := seen[text]; ok {
			return true
		}
		seen[text] = struct{}{}
		planned = append(planned, domain.SearchQuery{
			Text:    text,
			Since:   since,
			Country: strings.ToUpper(strings.TrimSpace(countryCode)),
		})
		return true
	}

	for _, keyword := range keywords {
		keyword = strings.TrimSpace(keyword)
		if keyword == "" {
			continue
		}
		quoted := fmt.Sprintf("%q", keyword)

		for _, suffix := range p.domains {
			suffix = strings.TrimPrefix(strings.TrimSpace(suffix), ".")
			if suffix == "" {
				continue
			}
			if !add(fmt.Sprintf("%s site:%s %s", quoted, suffix, anchor)) {
				return planned
			}
		}
		for _, term := range broadTerms {
			if !add(fmt.Sprintf("%s %s %s", quoted, term, anchor)) {
				return planned
			}
		}
		for _, term := range eventTerms {
			if !add(fmt.Sprintf("%s %s %s", quoted, term, anchor)) {
				return planned
			}
		}
	}

	for _, link := range p.resourceLinks {
		target := siteTarget(link)
		if target == "" {
			continue
		}
		if !add(fmt.Sprintf("site:%s %s", target, anchor)) {
			return planned
		}
	}

	return planned
}

func siteTarget(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	parsed, err := url.Parse(link)
	if err != nil || parsed.Host == "" {
		return strings.TrimSuffix(link, "/")
	}
	host := strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")
	return strings.TrimSuffix(host+parsed.Path, "/")
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
