package domain

import "time"

// SearchQuery is one planned search string plus the freshness window it encodes.
type SearchQuery struct {
	Text    string
	Since   time.Time
	Country string
}

func (q SearchQuery) String() string {
	return q.Text
}
