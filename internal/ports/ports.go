package ports

import (
	"context"
	"time"

	"ContentCurator/internal/domain"
)

// SearchConvention is one way of calling the primary search capability.
// Implementations return source.ErrCallShape when the backend rejects the
// request shape so the client can move on to the next convention.
type SearchConvention interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]domain.RawResult, error)
}

// FeedSource is the secondary, feed-based search capability.
type FeedSource interface {
	Fetch(ctx context.Context, query domain.SearchQuery, limit int) ([]domain.RawResult, error)
}

// ContentFetcher downloads a URL and extracts its main text and metadata.
type ContentFetcher interface {
	Fetch(ctx context.Context, url string) (domain.Page, error)
}

// EventCalendar scrapes public event calendars into raw results.
type EventCalendar interface {
	Events(ctx context.Context, calendarURLs []string) ([]domain.RawResult, error)
}

// Agent is the narrow boundary around an LLM agent: a state mapping in, a
// result mapping out.
type Agent interface {
	Invoke(ctx context.Context, state map[string]any) (map[string]any, error)
}

// RecordRepository keeps run history for cross-run deduplication and audit.
type RecordRepository interface {
	KnownURLs(ctx context.Context, urls []string) (map[string]bool, error)
	SaveRecords(ctx context.Context, workflowID string, records []domain.ContentRecord) error
	SaveRun(ctx context.Context, run domain.RunSummary) error
}

// ArtifactStore writes run artifacts under the configured output root.
type ArtifactStore interface {
	SaveStepResult(step string, result any) (string, error)
	SaveContent(name, content string) (string, error)
	SaveReport(report string) (string, error)
	SaveState(workflowID string, state any) (string, error)
}

// Notifier streams finished runs to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
