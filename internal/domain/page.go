package domain

import "time"

// Page is the content extracted from a fetched URL.
type Page struct {
	URL         string
	Title       string
	Text        string
	PublishedAt string
	Authors     []string
}

// RunSummary is the persisted snapshot of one workflow run.
type RunSummary struct {
	WorkflowID string
	Status     string
	StartedAt  time.Time
	EndedAt    time.Time
	StateJSON  []byte
}
