// Package source executes planned queries against the primary search
// capability and falls back to the feed endpoint when it is unavailable.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

var (
	// ErrCallShape signals that a search backend rejected the request shape of
	// one call convention. The client treats it as "try the next convention".
	ErrCallShape = errors.New("search call shape not supported")
	// ErrSourceUnavailable is returned when neither the primary capability nor
	// the feed fallback produced results for a query.
	ErrSourceUnavailable = errors.New("source unavailable")
)

// Client runs one query at a time against the configured conventions.
type Client struct {
	conventions []ports.SearchConvention
	feed        ports.FeedSource
	logger      *slog.Logger
}

// NewClient wires the primary conventions (tried in order) and the feed fallback.
func NewClient(conventions []ports.SearchConvention, feed ports.FeedSource, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{conventions: conventions, feed: feed, logger: logger}
}

// Search returns up to limit raw hits for query. Primary conventions are tried
// in order until one returns results; only then is the feed consulted. Feed
// failures never propagate as hard errors: the caller gets an empty slice and
// ErrSourceUnavailable, which discovery absorbs.
func (c *Client) Search(ctx context.Context, query domain.SearchQuery, limit int) ([]domain.RawResult, error) {
	for _, convention := range c.conventions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		results, err := convention.Search(ctx, query.Text, limit)
		switch {
		case errors.Is(err, ErrCallShape):
			c.logger.Debug("search convention rejected", "convention", convention.Name(), "query", query.Text)
			continue
		case err != nil:
			c.logger.Warn("search convention failed", "convention", convention.Name(), "query", query.Text, "error", err)
			continue
		case len(results) == 0:
			c.logger.Debug("search convention returned nothing", "convention", convention.Name(), "query", query.Text)
			continue
		}

		return capResults(results, limit), nil
	}

	if c.feed == nil {
		return []domain.RawResult{}, fmt.Errorf("query %q: %w", query.Text, ErrSourceUnavailable)
	}

	results, err := c.feed.Fetch(ctx, query, limit)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Warn("feed fallback failed", "query", query.Text, "error", err)
		return []domain.RawResult{}, fmt.Errorf("query %q: %w: %v", query.Text, ErrSourceUnavailable, err)
	}

	c.logger.Debug("feed fallback used", "query", query.Text, "count", len(results))
	return capResults(results, limit), nil
}

func capResults(results []domain.RawResult, limit int) []domain.RawResult {
	if limit > 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}
