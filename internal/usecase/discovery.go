package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/normalize"
	"ContentCurator/internal/ports"
	"ContentCurator/internal/textutil"
)

const (
	// ResultsPerQuery is the oversampling factor per planned query.
	ResultsPerQuery = 5
	minCandidateCap = 80
	candidateFactor = 6
)

// QueryPlanner turns keywords into search queries.
type QueryPlanner interface {
	Build(keywords []string, countryCode string, daysBack int) []domain.SearchQuery
}

// Searcher runs one query. Errors are absorbed by the pipeline.
type Searcher interface {
	Search(ctx context.Context, query domain.SearchQuery, limit int) ([]domain.RawResult, error)
}

// Enricher augments a record with page content. It must not fail.
type Enricher interface {
	Enrich(ctx context.Context, record domain.ContentRecord) domain.ContentRecord
}

// DiscoveryDeps wires the collaborators of the discovery pipeline.
type DiscoveryDeps struct {
	Planner    QueryPlanner
	Searcher   Searcher
	Calendar   ports.EventCalendar
	Enricher   Enricher
	Repository ports.RecordRepository
	Logger     *slog.Logger
}

// DiscoveryRequest are the per-run discovery settings.
type DiscoveryRequest struct {
	Keywords       []string
	CountryCode    string
	DaysBack       int
	MaxResults     int
	EventCalendars []string
	SkipKnownURLs  bool
	SearchWorkers  int
	EnrichWorkers  int
}

// CandidateCap is the number of raw hits collected before searching stops.
func (r DiscoveryRequest) CandidateCap() int {
	return max(minCandidateCap, r.MaxResults*candidateFactor)
}

// Discovery implements the news discovery pipeline: plan, search, normalize,
// window, sort, enrich, truncate.
type Discovery struct {
	planner    QueryPlanner
	searcher   Searcher
	calendar   ports.EventCalendar
	enricher   Enricher
	repository ports.RecordRepository
	logger     *slog.Logger
	now        func() time.Time
}

// NewDiscovery constructs the pipeline.
func NewDiscovery(deps DiscoveryDeps) *Discovery {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Discovery{
		planner:    deps.Planner,
		searcher:   deps.Searcher,
		calendar:   deps.Calendar,
		enricher:   deps.Enricher,
		repository: deps.Repository,
		logger:     logger,
		now:        time.Now,
	}
}

// Gather returns at most req.MaxResults records. An empty slice with a nil
// error means nothing survived; errors are reserved for cancellation.
func (d *Discovery) Gather(ctx context.Context, req DiscoveryRequest) ([]domain.ContentRecord, error) {
	if d.planner == nil || d.searcher == nil {
		return []domain.ContentRecord{}, nil
	}

	queries := d.planner.Build(req.Keywords, req.CountryCode, req.DaysBack)
	d.logger.Info("queries planned", "count", len(queries))

	raws, err := d.search(ctx, queries, req)
	if err != nil {
		return nil, err
	}

	if d.calendar != nil && len(req.EventCalendars) > 0 {
		events, calErr := d.calendar.Events(ctx, req.EventCalendars)
		if calErr != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			d.logger.Warn("event calendars failed", "error", calErr)
		}
		raws = append(raws, events...)
	}

	records := normalize.Validate(normalize.DedupeByURL(normalize.NormalizeAll(raws)))
	d.logger.Info("candidates normalized", "raw", len(raws), "records", len(records))

	if req.SkipKnownURLs {
		records = d.dropKnown(ctx, records)
	}

	cutoff := startOfDay(d.now().UTC().AddDate(0, 0, -req.DaysBack))
	records = FilterSince(records, cutoff)
	SortByDate(records)

	records, err = d.enrich(ctx, records, req.EnrichWorkers)
	if err != nil {
		return nil, err
	}
	SortByDate(records)

	if req.MaxResults >= 0 && len(records) > req.MaxResults {
		records = records[:req.MaxResults]
	}

	d.logger.Info("discovery finished", "records", len(records))
	return records, nil
}

// search fans queries out in batches of SearchWorkers and merges results in
// query order until the candidate cap is reached.
func (d *Discovery) search(ctx context.Context, queries []domain.SearchQuery, req DiscoveryRequest) ([]domain.RawResult, error) {
	limit := req.CandidateCap()
	workers := max(1, req.SearchWorkers)
	candidates := make([]domain.RawResult, 0, limit)

	for start := 0; start < len(queries) && len(candidates) < limit; start += workers {
		batch := queries[start:min(start+workers, len(queries))]
		results := make([][]domain.RawResult, len(batch))

		g, gctx := errgroup.WithContext(ctx)
		for i, q := range batch {
			g.Go(func() error {
				hits, err := d.searcher.Search(gctx, q, ResultsPerQuery)
				if err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					d.logger.Debug("query yielded nothing", "query", q.Text, "error", err)
				}
				results[i] = hits
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		for _, hits := range results {
			candidates = append(candidates, hits...)
		}
	}

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

func (d *Discovery) dropKnown(ctx context.Context, records []domain.ContentRecord) []domain.ContentRecord {
	if d.repository == nil || len(records) == 0 {
		return records
	}

	urls := make([]string, len(records))
	for i, r := range records {
		urls[i] = r.URL
	}
	known, err := d.repository.KnownURLs(ctx, urls)
	if err != nil {
		d.logger.Warn("known url lookup failed", "error", err)
		return records
	}

	kept := records[:0]
	for _, r := range records {
		if !known[r.URL] {
			kept = append(kept, r)
		}
	}
	return kept
}

// enrich runs the enricher over a bounded pool, once per URL.
func (d *Discovery) enrich(ctx context.Context, records []domain.ContentRecord, workers int) ([]domain.ContentRecord, error) {
	if d.enricher == nil || len(records) == 0 {
		return records, nil
	}

	seen := make(map[string]struct{}, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, workers))

	for i := range records {
		if _, done := seen[records[i].URL]; done {
			continue
		}
		seen[records[i].URL] = struct{}{}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records[i] = d.enricher.Enrich(gctx, records[i])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		d.logger.Warn("enrichment interrupted", "error", err)
	}
	return records, nil
}

// FilterSince drops records published before cutoff. Records with no date, or
// a date that cannot be read, are kept.
func FilterSince(records []domain.ContentRecord, cutoff time.Time) []domain.ContentRecord {
	kept := make([]domain.ContentRecord, 0, len(records))
	for _, r := range records {
		if day, ok := textutil.DateOf(r.PublishedAt); ok && day.Before(cutoff) {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

// SortByDate orders dated records first, ascending by their ISO string, then
// undated records in their existing order.
func SortByDate(records []domain.ContentRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.HasDate() != b.HasDate() {
			return a.HasDate()
		}
		if !a.HasDate() {
			return false
		}
		return a.PublishedAt < b.PublishedAt
	})
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
