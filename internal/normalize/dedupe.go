package normalize

import (
	"strings"

	"ContentCurator/internal/domain"
)

type pairKey struct {
	url   string
	title string
}

// Dedupe keeps the first record for every (url, title) pair, preserving order.
func Dedupe(records []domain.ContentRecord) []domain.ContentRecord {
	seen := make(map[pairKey]struct{}, len(records))
	out := make([]domain.ContentRecord, 0, len(records))
	for _, record := range records {
		key := pairKey{url: record.URL, title: record.Title}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, record)
	}
	return out
}

// DedupeByURL keeps the first record for every URL, preserving order.
func DedupeByURL(records []domain.ContentRecord) []domain.ContentRecord {
	seen := make(map[string]struct{}, len(records))
	out := make([]domain.ContentRecord, 0, len(records))
	for _, record := range records {
		if _, ok := seen[record.URL]; ok {
			continue
		}
		seen[record.URL] = struct{}{}
		out = append(out, record)
	}
	return out
}

// Validate drops records missing a title, URL or source. An empty summary is
// acceptable.
func Validate(records []domain.ContentRecord) []domain.ContentRecord {
	out := make([]domain.ContentRecord, 0, len(records))
	for _, record := range records {
		if strings.TrimSpace(record.Title) == "" ||
			strings.TrimSpace(record.URL) == "" ||
			strings.TrimSpace(record.Source) == "" {
			continue
		}
		if record.Topics == nil {
			record.Topics = []string{}
		}
		out = append(out, record)
	}
	return out
}
