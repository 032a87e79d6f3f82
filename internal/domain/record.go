package domain

import "strings"

// Kind classifies a discovered item.
type Kind string

const (
	KindNews         Kind = "news"
	KindEvent        Kind = "event"
	KindPressRelease Kind = "press_release"
	KindReport       Kind = "report"
)

// ParseKind maps free-form labels onto a known Kind.
func ParseKind(value string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "news", "article":
		return KindNews, true
	case "event":
		return KindEvent, true
	case "press_release", "press release", "press-release":
		return KindPressRelease, true
	case "report":
		return KindReport, true
	default:
		return "", false
	}
}

// RawResult is a loosely-typed hit as returned by a search source or feed.
// Field names vary by source; the normalizer resolves them through aliases.
type RawResult map[string]any

// ContentRecord is the canonical unit produced by the discovery pipeline.
//
// PublishedAt holds an ISO-8601 date or datetime; the empty string means the
// date is unknown. EventStart and EventLocation are only meaningful for events.
type ContentRecord struct {
	Title           string   `json:"title"`
	URL             string   `json:"url"`
	Source          string   `json:"source"`
	Summary         string   `json:"summary"`
	Kind            Kind     `json:"type"`
	PublishedAt     string   `json:"published_at,omitempty"`
	Topics          []string `json:"topics"`
	RelevanceReason string   `json:"relevance_reason,omitempty"`
	EventStart      string   `json:"event_start,omitempty"`
	EventLocation   string   `json:"event_location,omitempty"`
	Author          string   `json:"author,omitempty"`
	ScrapedText     string   `json:"scraped_text"`
}

// HasDate reports whether the record carries a publication date.
func (r ContentRecord) HasDate() bool {
	return strings.TrimSpace(r.PublishedAt) != ""
}
