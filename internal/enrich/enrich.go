// Package enrich augments discovered records with the content of their pages.
package enrich

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
	"ContentCurator/internal/textutil"
)

// DefaultTextLimit caps ScrapedText.
const DefaultTextLimit = 10000

// Enricher fetches record URLs and merges page metadata into records.
type Enricher struct {
	fetcher   ports.ContentFetcher
	textLimit int
	logger    *slog.Logger
}

// New builds an Enricher. A non-positive textLimit falls back to DefaultTextLimit.
func New(fetcher ports.ContentFetcher, textLimit int, logger *slog.Logger) *Enricher {
	if textLimit <= 0 {
		textLimit = DefaultTextLimit
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Enricher{fetcher: fetcher, textLimit: textLimit, logger: logger}
}

// Enrich never fails: on fetch errors the record comes back with an empty
// ScrapedText and its other fields untouched.
func (e *Enricher) Enrich(ctx context.Context, record domain.ContentRecord) domain.ContentRecord {
	record.ScrapedText = ""
	if e.fetcher == nil {
		return record
	}

	page, err := e.fetcher.Fetch(ctx, record.URL)
	if err != nil {
		e.logger.Debug("enrichment fetch failed", "url", record.URL, "error", err)
		return record
	}

	return Merge(record, page, e.textLimit)
}

// Merge fills title, date and author only where the record has none, and
// always replaces ScrapedText with the capped page text.
func Merge(record domain.ContentRecord, page domain.Page, textLimit int) domain.ContentRecord {
	if strings.TrimSpace(record.Title) == "" {
		record.Title = textutil.Clean(page.Title)
	}
	if !record.HasDate() {
		if iso, ok := textutil.NormalizeDate(page.PublishedAt); ok {
			record.PublishedAt = iso
		}
	}
	if strings.TrimSpace(record.Author) == "" && len(page.Authors) > 0 {
		record.Author = textutil.Clean(strings.Join(page.Authors, ", "))
	}
	record.ScrapedText = textutil.Truncate(page.Text, textLimit)
	return record
}
