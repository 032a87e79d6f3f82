// Package calendar crawls public event calendar pages with colly and turns
// their listings into event hits for discovery.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
	"ContentCurator/internal/textutil"
)

const (
	userAgent   = "Mozilla/5.0 (ContentCurator)"
	maxBodySize = 5 << 20
)

// entrySelector matches the element wrapping one listed event.
const entrySelector = `.event, [itemtype$="/Event"], li:has(time[datetime]), article:has(time[datetime]), tr:has(time[datetime])`

// Crawler implements ports.EventCalendar.
type Crawler struct {
	timeout time.Duration
	logger  *slog.Logger
}

var _ ports.EventCalendar = (*Crawler)(nil)

// NewCrawler returns a crawler with the given per-request timeout.
func NewCrawler(timeout time.Duration, logger *slog.Logger) *Crawler {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Crawler{timeout: timeout, logger: logger}
}

// Events visits every calendar page and returns one raw hit per listed event.
// Pages that fail are logged and skipped; an error is returned only when
// every page failed.
func (c *Crawler) Events(ctx context.Context, calendarURLs []string) ([]domain.RawResult, error) {
	if len(calendarURLs) == 0 {
		return nil, nil
	}

	collector := colly.NewCollector(
		colly.StdlibContext(ctx),
		colly.UserAgent(userAgent),
		colly.MaxDepth(1),
		colly.MaxBodySize(maxBodySize),
		colly.AllowURLRevisit(),
	)
	collector.SetRequestTimeout(c.timeout)

	var (
		mu      sync.Mutex
		results []domain.RawResult
		seen    = map[string]struct{}{}
		errs    []error
	)

	collector.OnHTML(entrySelector, func(e *colly.HTMLElement) {
		raw, ok := parseEntry(e)
		if !ok {
			return
		}
		link, _ := raw["url"].(string)

		mu.Lock()
		defer mu.Unlock()
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		results = append(results, raw)
	})

	for _, calendarURL := range calendarURLs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if err := collector.Visit(calendarURL); err != nil {
			errs = append(errs, fmt.Errorf("calendar %s: %w", calendarURL, err))
		}
	}
	collector.Wait()

	for _, err := range errs {
		c.logger.Warn("calendar page failed", "error", err)
	}
	if len(results) == 0 && len(errs) == len(calendarURLs) {
		return nil, errors.Join(errs...)
	}

	return results, nil
}

func parseEntry(e *colly.HTMLElement) (domain.RawResult, bool) {
	anchor := e.DOM.Find("a[href]").First()
	href, ok := anchor.Attr("href")
	if !ok {
		return nil, false
	}
	link := e.Request.AbsoluteURL(strings.TrimSpace(href))
	if link == "" {
		return nil, false
	}

	title := textutil.FirstNonEmpty(
		textutil.Clean(e.DOM.Find("h1, h2, h3, h4, .title, [itemprop=name]").First().Text()),
		textutil.Clean(anchor.Text()),
	)
	if title == "" {
		return nil, false
	}

	start, _ := e.DOM.Find("time[datetime]").First().Attr("datetime")
	if start == "" {
		start, _ = e.DOM.Find(`[itemprop="startDate"]`).First().Attr("content")
	}

	raw := domain.RawResult{
		"title":    title,
		"url":      link,
		"type":     string(domain.KindEvent),
		"summary":  textutil.Clean(e.DOM.Find(".description, .summary, p").First().Text()),
		"start":    strings.TrimSpace(start),
		"location": textutil.Clean(e.DOM.Find(`.location, [itemprop="location"]`).First().Text()),
		"source":   hostOf(e.Request.URL),
	}
	return raw, true
}

func hostOf(u *url.URL) string {
	if u == nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
