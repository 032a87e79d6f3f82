// Package feed implements the RSS fallback used when the primary search
// capability is unavailable.
package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

// DefaultTemplate is the Google News search feed. Placeholders: {q}, {lang}, {country}.
const DefaultTemplate = "https://news.google.com/rss/search?q={q}&hl={lang}&gl={country}&ceid={country}:{lang}"

// maxFeedBytes bounds how much of a feed response is parsed.
const maxFeedBytes = 5 << 20

// Source fetches and parses a templated RSS search feed.
type Source struct {
	template string
	language string
	client   *http.Client
}

var _ ports.FeedSource = (*Source)(nil)

// NewSource configures the feed template and language. Country comes from the
// query itself.
func NewSource(template, language string, client *http.Client) *Source {
	if strings.TrimSpace(template) == "" {
		template = DefaultTemplate
	}
	if strings.TrimSpace(language) == "" {
		language = "en"
	}
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Source{template: template, language: language, client: client}
}

// Fetch runs query against the feed and returns up to limit items.
func (s *Source) Fetch(ctx context.Context, query domain.SearchQuery, limit int) ([]domain.RawResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.feedURL(query), nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", "ContentCurator/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned %s", resp.Status)
	}

	parsed, err := gofeed.NewParser().Parse(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	results := make([]domain.RawResult, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if limit > 0 && len(results) >= limit {
			break
		}
		link := item.Link
		if link == "" && strings.HasPrefix(item.GUID, "http") {
			link = item.GUID
		}
		if link == "" {
			continue
		}

		raw := domain.RawResult{
			"title":       item.Title,
			"link":        link,
			"description": item.Description,
			"pubDate":     item.Published,
		}
		if item.PublishedParsed != nil {
			raw["pubDate"] = item.PublishedParsed.UTC().Format(time.RFC3339)
		}
		if len(item.Categories) > 0 {
			raw["categories"] = item.Categories
		}
		results = append(results, raw)
	}

	return results, nil
}

func (s *Source) feedURL(query domain.SearchQuery) string {
	country := strings.ToUpper(strings.TrimSpace(query.Country))
	if country == "" {
		country = "US"
	}
	return strings.NewReplacer(
		"{q}", url.QueryEscape(query.Text),
		"{lang}", url.QueryEscape(s.language),
		"{country}", url.QueryEscape(country),
	).Replace(s.template)
}
