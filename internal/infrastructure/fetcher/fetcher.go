// Package fetcher downloads article pages and extracts their main text and
// metadata.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
	"ContentCurator/internal/textutil"
)

const (
	userAgent    = "Mozilla/5.0 (ContentCurator)"
	maxPageBytes = 5 << 20
)

// dateSelectors are tried in order when the extractor found no date.
var dateSelectors = []struct {
	selector string
	attr     string
}{
	{`meta[property="article:published_time"]`, "content"},
	{`meta[name="article:published_time"]`, "content"},
	{`meta[property="og:updated_time"]`, "content"},
	{`meta[property="og:published_time"]`, "content"},
	{`meta[name="pubdate"]`, "content"},
	{`meta[name="date"]`, "content"},
	{`time[datetime]`, "datetime"},
}

// Fetcher implements ports.ContentFetcher with go-readability and a goquery
// metadata fallback.
type Fetcher struct {
	client *http.Client
}

var _ ports.ContentFetcher = (*Fetcher)(nil)

// New wires an HTTP client; nil yields a client with a 20s timeout.
func New(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Fetcher{client: client}
}

// Fetch downloads pageURL and extracts what it can. Missing fields are left
// empty; only transport failures are returned as errors.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (domain.Page, error) {
	page := domain.Page{URL: pageURL}

	body, err := f.download(ctx, pageURL)
	if err != nil {
		return page, err
	}

	parsedURL, err := url.Parse(pageURL)
	if err == nil {
		if article, rErr := readability.FromReader(strings.NewReader(body), parsedURL); rErr == nil {
			page.Title = strings.TrimSpace(article.Title)
			page.Text = textutil.Clean(article.TextContent)
			if byline := strings.TrimSpace(article.Byline); byline != "" {
				page.Authors = []string{byline}
			}
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return page, nil
	}

	if page.Title == "" {
		page.Title = metaTitle(doc)
	}
	page.PublishedAt = metaDate(doc)
	if len(page.Authors) == 0 {
		if author := metaAuthor(doc); author != "" {
			page.Authors = []string{author}
		}
	}
	if page.Text == "" {
		page.Text = textutil.Clean(doc.Find("article").First().Text())
	}
	if page.Text == "" {
		page.Text = textutil.Clean(doc.Find("body").Text())
	}

	return page, nil
}

func (f *Fetcher) download(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page returned %s", resp.Status)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("read page: %w", err)
	}
	return string(raw), nil
}

func metaTitle(doc *goquery.Document) string {
	if content, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		if title := strings.TrimSpace(content); title != "" {
			return title
		}
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func metaDate(doc *goquery.Document) string {
	for _, candidate := range dateSelectors {
		var found string
		doc.Find(candidate.selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			value, _ := sel.Attr(candidate.attr)
			if iso, ok := textutil.NormalizeDate(value); ok {
				found = iso
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}

func metaAuthor(doc *goquery.Document) string {
	for _, selector := range []string{`meta[name="author"]`, `meta[property="article:author"]`} {
		if content, ok := doc.Find(selector).First().Attr("content"); ok {
			if author := strings.TrimSpace(content); author != "" {
				return author
			}
		}
	}
	return ""
}
